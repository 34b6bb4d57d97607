package xmd

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-xmd/internal/assets"
	"github.com/alnah/go-xmd/internal/codeeval"
	"github.com/alnah/go-xmd/internal/generator"
	"github.com/alnah/go-xmd/internal/image"
	"github.com/alnah/go-xmd/internal/parser"
	"github.com/alnah/go-xmd/internal/render"
)

// Template identifies one of the four backends.
type Template = render.Template

// Supported templates.
const (
	HTMLTufte  = render.HTMLTufte
	HTMLSlides = render.HTMLSlides
	TeXDoc     = render.TeXDoc
	TeXTufte   = render.TeXTufte
)

// Templates returns every template id.
func Templates() []Template {
	return render.Templates()
}

// ParseTemplate validates a template id.
func ParseTemplate(s string) (Template, error) {
	return render.ParseTemplate(s)
}

// Image is a virtual, path-addressed collection of files: the input
// package of a compilation or its output.
type Image = image.Image

// NewImage creates an empty image.
func NewImage(name string) *Image {
	return image.New(name)
}

// Serializer writes an output image somewhere once compilation is over.
type Serializer = image.Serializer

// Serializers.
type (
	DirSerializer     = image.DirSerializer
	PayloadSerializer = image.PayloadSerializer
)

// Evaluator runs code chunks. EvalResult is what it returns.
type (
	Evaluator  = codeeval.Evaluator
	EvalResult = codeeval.Result
)

// DefaultSourceName is the virtual path of a source compiled without a name.
const DefaultSourceName = "/main.xmd"

// Input is one compilation request.
type Input struct {
	// Source is the XMD text of the root document.
	Source []byte
	// Name is the virtual path of the root document inside Files, used to
	// resolve relative references and detect circular imports.
	// DefaultSourceName when empty.
	Name string
	// Files holds imported documents and pictures. May be nil.
	Files    *Image
	Template Template
}

// Result is the outcome of a compilation.
type Result struct {
	// Output holds the rendered document and its resources. On a
	// generation failure it holds whatever was produced before the failure.
	Output   *Image
	Template Template
	Duration time.Duration
}

// Option configures a Compiler.
type Option func(*compilerConfig)

type compilerConfig struct {
	evaluator    Evaluator
	evalURL      string
	pingAttempts int
	pingDelay    time.Duration
	assetPath    string
	debug        bool
	progress     func(done, total int)
	log          *zap.SugaredLogger
}

// WithEvaluator sets the evaluator shared by every compilation.
func WithEvaluator(ev Evaluator) Option {
	return func(c *compilerConfig) {
		c.evaluator = ev
	}
}

// WithEvaluatorURL makes every compilation open its own session on the
// evaluation service at url. Ignored when WithEvaluator is set.
func WithEvaluatorURL(url string) Option {
	return func(c *compilerConfig) {
		c.evalURL = url
	}
}

// WithPing sets the readiness polling budget of evaluator clients created
// from WithEvaluatorURL.
func WithPing(attempts int, delay time.Duration) Option {
	return func(c *compilerConfig) {
		c.pingAttempts = attempts
		c.pingDelay = delay
	}
}

// WithAssetPath overrides embedded template bundles with the ones found
// below dir.
func WithAssetPath(dir string) Option {
	return func(c *compilerConfig) {
		c.assetPath = dir
	}
}

// WithDebug stores the tree before and after the transformer passes in the
// output image under /__debug.
func WithDebug(enabled bool) Option {
	return func(c *compilerConfig) {
		c.debug = enabled
	}
}

// WithProgress reports rendered top-level nodes.
func WithProgress(fn func(done, total int)) Option {
	return func(c *compilerConfig) {
		c.progress = fn
	}
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *compilerConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Compiler compiles XMD documents. Safe for concurrent use: every
// compilation owns its output image, directive state and evaluator session.
type Compiler struct {
	cfg    compilerConfig
	assets assets.Loader
	parser *parser.Parser
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		cfg: compilerConfig{
			pingAttempts: codeeval.DefaultPingAttempts,
			pingDelay:    codeeval.DefaultPingDelay,
			log:          zap.NewNop().Sugar(),
		},
		assets: assets.NewEmbeddedLoader(),
		parser: parser.New(),
	}
	for _, opt := range opts {
		opt(&c.cfg)
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, categorize(err)
		}
		c.assets = resolver
	}
	return c, nil
}

// Compile parses and generates one document. On a generation failure the
// returned Result still carries the partial output image.
func (c *Compiler) Compile(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	if _, err := render.ParseTemplate(string(in.Template)); err != nil {
		return nil, err
	}
	if len(in.Source) == 0 {
		return nil, ErrEmptySource
	}

	name := in.Name
	if name == "" {
		name = DefaultSourceName
	}
	name = path.Clean("/" + name)

	root, err := c.parser.Parse(in.Source)
	if err != nil {
		return nil, categorize(err)
	}

	out := image.New(image.OutputDirName(path.Base(name), string(in.Template)))
	hooks := generator.Hooks{Progress: c.cfg.progress}
	if c.cfg.debug {
		hooks.Debug = generator.DebugToImage(out)
	}

	log := c.cfg.log.With("template", in.Template, "source", name)
	gen, err := generator.New(generator.Options{
		Template:  in.Template,
		Mode:      render.Standalone,
		Output:    out,
		Input:     in.Files,
		Evaluator: c.evaluator(),
		Assets:    c.assets,
		Parse:     c.parser.Parse,
		Dir:       path.Dir(name),
		Stack:     []string{name},
		Hooks:     hooks,
		Logger:    log,
	})
	if err != nil {
		return nil, categorize(err)
	}

	res := &Result{Output: out, Template: in.Template}
	_, err = gen.Generate(ctx, root)
	res.Duration = time.Since(start)
	if err != nil {
		return res, categorize(err)
	}
	log.Infow("compiled document", "components", out.Len(), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// CompileTo compiles in and hands the output image to s. A generation
// failure is logged and the partial output is still serialized before the
// failure is returned.
func (c *Compiler) CompileTo(ctx context.Context, in Input, s Serializer) (*Result, error) {
	res, err := c.Compile(ctx, in)
	if res == nil {
		return nil, err
	}
	if err != nil {
		c.cfg.log.Errorw("generation failed, serializing partial output", "template", in.Template, "error", err)
	}
	// Serialization runs even when ctx is done so the partial output lands.
	if serr := s.Serialize(context.WithoutCancel(ctx), res.Output); serr != nil {
		return res, errors.Join(err, fmt.Errorf("serializing output: %w", categorize(serr)))
	}
	return res, err
}

// evaluator returns the shared evaluator or a fresh client for one
// compilation. Nil when neither is configured.
func (c *Compiler) evaluator() Evaluator {
	if c.cfg.evaluator != nil {
		return c.cfg.evaluator
	}
	if c.cfg.evalURL == "" {
		return nil
	}
	return codeeval.New(c.cfg.evalURL,
		codeeval.WithPing(c.cfg.pingAttempts, c.cfg.pingDelay),
		codeeval.WithLogger(c.cfg.log))
}
