// Package xmd compiles XMD documents into HTML articles, reveal.js slides
// or LaTeX sources.
//
// # Quick Start
//
// Create a compiler and compile a document into an output image:
//
//	c, err := xmd.NewCompiler()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := c.Compile(ctx, xmd.Input{
//	    Source:   []byte("# Hello\n\nWorld"),
//	    Template: xmd.HTMLTufte,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page, _ := res.Output.Get("/index.html")
//
// The output image holds the page together with the resources it links
// to: pictures under /__res/images and the template stylesheets and
// scripts. Hand it to a serializer to write it out:
//
//	err = (&xmd.DirSerializer{Dir: "hello_html_tufte"}).Serialize(ctx, res.Output)
//
// # Templates
//
//	html_tufte   Tufte-style HTML article      /index.html
//	html_slides  reveal.js slide deck          /index.html
//	tex_doc      LaTeX article                 /main.tex
//	tex_tufte    Tufte-LaTeX handout           /main.tex
//
// # Imports and Pictures
//
// Documents may import other documents and reference pictures. Both are
// read from the input image, which BuildInputImage fills from disk:
//
//	files, name, err := xmd.BuildInputImage("report/main.xmd")
//	src, _ := files.Get(name)
//	res, err := c.Compile(ctx, xmd.Input{Source: src, Name: name, Files: files, Template: xmd.TeXDoc})
//
// # Code Evaluation
//
// Fenced code marked "run" and inline code starting with '!' are sent to
// an evaluation service:
//
//	c, err := xmd.NewCompiler(xmd.WithEvaluatorURL("http://127.0.0.1:5000"))
//
// Each compilation opens its own session, so definitions made by one
// document never leak into another.
//
// # Errors
//
// Failures are wrapped with one category (ErrMalformedTree, ErrDirective,
// ErrEvaluation, ErrResource or ErrUnknownTemplate) on top of the precise
// cause, so both can be tested with errors.Is. A generation failure still
// returns the partial output image; CompileTo serializes it before
// returning the error.
//
// # Remote Compilation
//
// RemoteClient sends a source and its input image to "xmd serve" and
// returns the output image.
package xmd
