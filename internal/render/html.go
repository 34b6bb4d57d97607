package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/alnah/go-xmd/internal/extension"
)

// Compile-time interface checks.
var (
	_ Renderer = (*HTMLTufteRenderer)(nil)
	_ Renderer = (*HTMLSlidesRenderer)(nil)
)

// htmlMarkup holds the markup shared by the HTML backends. Text runs are
// escaped; equations are escaped too since MathJax reads decoded text.
type htmlMarkup struct {
	mode Mode
	refs refCounter
}

func (h *htmlMarkup) WriteHeading(text string, level int) (string, error) {
	if level < 1 || level > 6 {
		return "", fmt.Errorf("%w: %d, allowed 1..6", ErrInvalidHeadingLevel, level)
	}
	return fmt.Sprintf("<h%d>%s</h%d>", level, html.EscapeString(text), level), nil
}

func (h *htmlMarkup) WriteParagraph(content string) string {
	return "<p>" + content + "</p>"
}

func (h *htmlMarkup) WriteText(text string) string {
	return html.EscapeString(text)
}

func (h *htmlMarkup) WriteBold(text string) string {
	return "<strong>" + html.EscapeString(text) + "</strong>"
}

func (h *htmlMarkup) WriteItalic(text string) string {
	return "<em>" + html.EscapeString(text) + "</em>"
}

func (h *htmlMarkup) WriteEquationInline(equation string) string {
	return `\(` + html.EscapeString(equation) + `\)`
}

func (h *htmlMarkup) WriteCodeInline(src, result string) string {
	if result != "" {
		return `<code title="Evaluated from: '` + html.EscapeString(src) + `'">` +
			html.EscapeString(result) + "</code>"
	}
	return "<code>" + html.EscapeString(src) + "</code>"
}

func (h *htmlMarkup) WriteEquationBlock(equation string) string {
	return `<p>\[` + html.EscapeString(equation) + `\]</p>`
}

func (h *htmlMarkup) WriteTheorem(title, statement, proof string) string {
	var b strings.Builder
	b.WriteString("<div class='theorem'>")
	b.WriteString("<p><strong>" + html.EscapeString(title) + "</strong></p>")
	b.WriteString("<p>" + html.EscapeString(statement) + "</p>")
	if proof != "" {
		b.WriteString("<p><em>Proof.</em> " + html.EscapeString(proof) + "</p>")
	}
	b.WriteString("</div>")
	return b.String()
}

func (h *htmlMarkup) OutputPath() string {
	return "/index.html"
}

func plainCodeBlock(src, result string) string {
	out := "<pre><code>" + html.EscapeString(src) + "</code></pre>"
	if result != "" {
		out += "<pre><code>" + html.EscapeString(result) + "</code></pre>"
	}
	return out
}

func langAttr(lang string) string {
	if lang == "" {
		return ""
	}
	return ` lang="` + html.EscapeString(lang) + `"`
}

// ---------------------------------------------------------------------------
// html_tufte
// ---------------------------------------------------------------------------

// HTMLTufteRenderer renders a Tufte-style HTML article.
type HTMLTufteRenderer struct {
	htmlMarkup
}

// NewHTMLTufte creates an html_tufte renderer.
func NewHTMLTufte(mode Mode) *HTMLTufteRenderer {
	return &HTMLTufteRenderer{htmlMarkup{mode: mode}}
}

// Template returns HTMLTufte.
func (r *HTMLTufteRenderer) Template() Template { return HTMLTufte }

// WriteCodeBlock highlights src; the result follows in a plain block.
func (r *HTMLTufteRenderer) WriteCodeBlock(src, result string, _ extension.Attributes) (string, error) {
	out, err := highlight(src)
	if err != nil {
		return "", err
	}
	if result != "" {
		out += "<pre><code>" + html.EscapeString(result) + "</code></pre>"
	}
	return out, nil
}

// WriteImage renders a figure with a margin note, or a full-width figure.
func (r *HTMLTufteRenderer) WriteImage(alt, ref, title string, attrs extension.Attributes) string {
	img := `<img src="` + html.EscapeString(ref) + `" alt="` + html.EscapeString(alt) + `" />`
	if attrs.IsTrue(extension.Fullwidth) {
		return "<figure class='fullwidth'>" + img + "</figure>"
	}

	note := title
	if note == "" {
		note = alt
	}
	id := r.refs.nextRef()
	return "<figure>" +
		`<label for="` + id + `" class="margin-toggle">&#8853;</label>` +
		`<input type="checkbox" id="` + id + `" class="margin-toggle"/>` +
		`<span class="marginnote">` + html.EscapeString(note) + "</span>" +
		img +
		"</figure>"
}

// WriteHRule leaves a marker comment.
func (r *HTMLTufteRenderer) WriteHRule() string {
	return "<!--HRULE-->"
}

// WriteSlide returns content unchanged; articles have no slides.
func (r *HTMLTufteRenderer) WriteSlide(content string) string {
	return content
}

// WriteRoot wraps flow in the article page.
func (r *HTMLTufteRenderer) WriteRoot(flow string, info DocInfo) (string, error) {
	if r.mode == Embedded {
		return flow, nil
	}

	title := html.EscapeString(titleOrDefault(info.Title))
	parts := []string{
		"<!DOCTYPE html>",
		"<html" + langAttr(info.Language) + ">",
		"<head>",
		"<meta charset='utf-8'/>",
		"<title>" + title + "</title>",
		"<link rel='stylesheet' href='__res/latex.css'>",
		"<link rel='stylesheet' href='__res/tufte.css'>",
		"<link rel='stylesheet' href='" + HighlightCSSPath + "'>",
		"<script id='MathJax-script' async src='__res/mathjax/tex-chtml.js'></script>",
		"<meta name='viewport' content='width=device-width, initial-scale=1'>",
		"</head>",
		"<body>",
		"<article>",
	}
	if info.Title != "" {
		parts = append(parts, "<h1>"+html.EscapeString(info.Title)+"</h1>")
	}
	if info.Author != "" {
		parts = append(parts, "<p class='subtitle'>"+html.EscapeString(info.Author)+"</p>")
	}
	if info.Abstract != "" {
		parts = append(parts, "<h2>Abstract</h2>", "<p>"+html.EscapeString(info.Abstract)+"</p>")
	}
	parts = append(parts, flow, "</article>", "</body>", "</html>")
	return strings.Join(parts, ""), nil
}

// ---------------------------------------------------------------------------
// html_slides
// ---------------------------------------------------------------------------

// HTMLSlidesRenderer renders a reveal.js presentation.
type HTMLSlidesRenderer struct {
	htmlMarkup
}

// NewHTMLSlides creates an html_slides renderer.
func NewHTMLSlides(mode Mode) *HTMLSlidesRenderer {
	return &HTMLSlidesRenderer{htmlMarkup{mode: mode}}
}

// Template returns HTMLSlides.
func (r *HTMLSlidesRenderer) Template() Template { return HTMLSlides }

// WriteCodeBlock renders plain blocks; reveal.js highlights client side.
func (r *HTMLSlidesRenderer) WriteCodeBlock(src, result string, _ extension.Attributes) (string, error) {
	return plainCodeBlock(src, result), nil
}

// WriteImage renders a bare image.
func (r *HTMLSlidesRenderer) WriteImage(alt, ref, _ string, _ extension.Attributes) string {
	return `<img src="` + html.EscapeString(ref) + `" alt="` + html.EscapeString(alt) + `" />`
}

// WriteHRule renders nothing: slide partitioning consumes hrules.
func (r *HTMLSlidesRenderer) WriteHRule() string {
	return ""
}

// WriteSlide wraps content in a reveal.js section.
func (r *HTMLSlidesRenderer) WriteSlide(content string) string {
	return "<section>" + content + "</section>"
}

// WriteRoot wraps flow in the reveal.js page.
func (r *HTMLSlidesRenderer) WriteRoot(flow string, info DocInfo) (string, error) {
	if r.mode == Embedded {
		return flow, nil
	}

	const dist, plugin = "__res/dist", "__res/plugin"
	return strings.Join([]string{
		"<!DOCTYPE html>",
		"<html" + langAttr(info.Language) + ">",
		"<head>",
		"<meta charset='utf-8'/>",
		"<meta name='viewport' content='width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no'>",
		"<title>" + html.EscapeString(titleOrDefault(info.Title)) + "</title>",
		`<link rel="stylesheet" href="` + dist + `/reset.css">`,
		`<link rel="stylesheet" href="` + dist + `/reveal.css">`,
		`<link rel="stylesheet" href="` + dist + `/theme/white.css">`,
		`<link rel="stylesheet" href="` + plugin + `/highlight/monokai.css">`,
		"</head>",
		"<body>",
		`<div class="reveal">`,
		`<div class="slides">`,
		flow,
		"</div>",
		"</div>",
		`<script src="` + dist + `/reveal.js"></script>`,
		`<script src="` + plugin + `/notes/notes.js"></script>`,
		`<script src="` + plugin + `/highlight/highlight.js"></script>`,
		`<script src="` + plugin + `/math/math.js"></script>`,
		"<script>",
		"Reveal.initialize({hash: true, plugins: [ RevealHighlight, RevealNotes, RevealMath.MathJax3 ]});",
		"</script>",
		"</body>",
		"</html>",
	}, ""), nil
}
