package render

import (
	"fmt"
	"strings"

	"github.com/alnah/go-xmd/internal/extension"
)

// Compile-time interface checks.
var (
	_ Renderer = (*TeXDocRenderer)(nil)
	_ Renderer = (*TeXTufteRenderer)(nil)
)

// eol separates LaTeX lines.
const eol = "\n"

// Title and author live in the page shell, so levels 1 and 2 both map to
// \section.
var texSections = []string{"section", "section", "subsection", "subsubsection", "paragraph"}

// texMarkup holds the markup shared by the LaTeX backends. Text is emitted
// verbatim so documents can carry raw LaTeX.
type texMarkup struct {
	mode Mode
	refs refCounter
	// floatAlign emits \setfloatalignment, which only tufte classes define.
	floatAlign bool
}

func (t *texMarkup) WriteHeading(text string, level int) (string, error) {
	if level < 1 || level > len(texSections) {
		return "", fmt.Errorf("%w: %d, allowed 1..%d", ErrInvalidHeadingLevel, level, len(texSections))
	}
	return `\` + texSections[level-1] + "{" + text + "}" + eol, nil
}

func (t *texMarkup) WriteParagraph(content string) string {
	return content + eol
}

func (t *texMarkup) WriteText(text string) string {
	return text
}

func (t *texMarkup) WriteBold(text string) string {
	return `\textbf{` + text + "}"
}

func (t *texMarkup) WriteItalic(text string) string {
	return `\textit{` + text + "}"
}

func (t *texMarkup) WriteEquationInline(equation string) string {
	return "$" + equation + "$"
}

func (t *texMarkup) WriteCodeInline(src, result string) string {
	if result != "" {
		return `\Verb|` + result + "|"
	}
	return `\Verb|` + src + "|"
}

func (t *texMarkup) WriteEquationBlock(equation string) string {
	return lines(`\begin{equation}`, equation, `\end{equation}`)
}

func (t *texMarkup) WriteImage(_, ref, title string, attrs extension.Attributes) string {
	label := t.refs.nextRef()
	if attrs.IsTrue(extension.Fullwidth) {
		return lines(
			`\begin{figure*}[h]`,
			`\includegraphics{`+ref+"}",
			`\caption{`+title+"}",
			`\label{`+label+"}",
			`\end{figure*}`,
		)
	}
	parts := []string{
		`\begin{figure}`,
		`\includegraphics{` + ref + "}",
		`\caption{` + title + "}",
		`\label{` + label + "}",
	}
	if t.floatAlign {
		parts = append(parts, `\setfloatalignment{b}`)
	}
	return lines(append(parts, `\end{figure}`)...)
}

func (t *texMarkup) WriteHRule() string {
	return eol + "%HRULE" + eol
}

func (t *texMarkup) WriteTheorem(title, statement, proof string) string {
	parts := []string{`\begin{theorem}[` + title + "]", statement, `\end{theorem}`}
	if proof != "" {
		parts = append(parts, `\begin{proof}`, proof, `\end{proof}`)
	}
	return lines(parts...)
}

func (t *texMarkup) WriteSlide(content string) string {
	return content
}

func (t *texMarkup) OutputPath() string {
	return "/main.tex"
}

// lines joins parts with eol and terminates the block.
func lines(parts ...string) string {
	return strings.Join(parts, eol) + eol
}

// ---------------------------------------------------------------------------
// tex_doc
// ---------------------------------------------------------------------------

// Code block output styles selected by the output clause.
const outputLaTeX = "latex"

// TeXDocRenderer renders a LaTeX article.
type TeXDocRenderer struct {
	texMarkup
}

// NewTeXDoc creates a tex_doc renderer.
func NewTeXDoc(mode Mode) *TeXDocRenderer {
	return &TeXDocRenderer{texMarkup{mode: mode}}
}

// Template returns TeXDoc.
func (r *TeXDocRenderer) Template() Template { return TeXDoc }

// WriteCodeBlock frames src as a listing. With output=latex the result is
// typeset as math, otherwise as a second listing.
func (r *TeXDocRenderer) WriteCodeBlock(src, result string, attrs extension.Attributes) (string, error) {
	parts := []string{
		`\begin{mdframed}[backgroundcolor=codebackcolor]`,
		`\begin{lstlisting}`,
		src,
		`\end{lstlisting}`,
	}
	if result != "" {
		parts = append(parts, `\begin{mdframed}[rightline=false,leftline=false,bottomline=false]`)
		if attrs.Get(extension.Output) == outputLaTeX {
			parts = append(parts, `\begin{equation*}`, result, `\end{equation*}`)
		} else {
			parts = append(parts, `\begin{lstlisting}[frame=none]`, result, `\end{lstlisting}`)
		}
		parts = append(parts, `\end{mdframed}`)
	}
	parts = append(parts, `\end{mdframed}`)
	return lines(parts...), nil
}

// WriteRoot wraps flow in the article preamble.
func (r *TeXDocRenderer) WriteRoot(flow string, info DocInfo) (string, error) {
	if r.mode == Embedded {
		return flow, nil
	}

	parts := []string{
		`\documentclass{article}`,
		`\usepackage[utf8]{inputenc}`,
		`\usepackage{amsfonts}`,
		`\usepackage{amsmath} % extended mathematics`,
		`\usepackage{fancyvrb} % extended verbatim environments`,
		`\usepackage{amsthm} % theorems`,
		`\usepackage{graphicx} % allow embedded images`,
		`\usepackage{sidecap}`,
		`\usepackage{listings} % better code snippets`,
		`\usepackage{xcolor}`,
		`\usepackage{mdframed}`,
		`\definecolor{codebackcolor}{rgb}{0.95,0.95,0.95}`,
		`% defining custom envs for theorems`,
		`\newtheorem{theorem}{Theorem}`,
		`\newtheorem{prop}{Proposition}`,
		`\newtheorem{lemma}{Lemma}`,
		`\title{` + titleOrDefault(info.Title) + "}",
	}
	if info.Author != "" {
		parts = append(parts, `\author{`+info.Author+"}")
	}
	parts = append(parts,
		`\date{\today}`,
		`\begin{document}`,
		`\maketitle`,
		flow,
		`%\tableofcontents`,
		`\end{document}`,
	)
	return strings.Join(parts, eol), nil
}

// ---------------------------------------------------------------------------
// tex_tufte
// ---------------------------------------------------------------------------

// TeXTufteRenderer renders a tufte-handout document.
type TeXTufteRenderer struct {
	texMarkup
}

// NewTeXTufte creates a tex_tufte renderer.
func NewTeXTufte(mode Mode) *TeXTufteRenderer {
	return &TeXTufteRenderer{texMarkup{mode: mode, floatAlign: true}}
}

// Template returns TeXTufte.
func (r *TeXTufteRenderer) Template() Template { return TeXTufte }

// WriteCodeBlock renders src and its result as docspec environments.
func (r *TeXTufteRenderer) WriteCodeBlock(src, result string, _ extension.Attributes) (string, error) {
	parts := []string{`\begin{docspec}`, src, `\end{docspec}`}
	if result != "" {
		parts = append(parts, "Result:", `\begin{docspec}`, result, `\end{docspec}`)
	}
	return lines(parts...), nil
}

// WriteRoot wraps flow in the handout preamble.
func (r *TeXTufteRenderer) WriteRoot(flow string, info DocInfo) (string, error) {
	if r.mode == Embedded {
		return flow, nil
	}

	parts := []string{
		`\documentclass{tufte-handout}`,
		`\title{` + titleOrDefault(info.Title) + "}",
	}
	if info.Author != "" {
		parts = append(parts, `\author[`+info.Author+`]{`+info.Author+"}")
	}
	parts = append(parts,
		`\usepackage{graphicx} % allow embedded images`,
		`\setkeys{Gin}{width=\linewidth,totalheight=\textheight,keepaspectratio}`,
		`\graphicspath{{graphics/}} % set of paths to search for images`,
		`\usepackage{amsmath} % extended mathematics`,
		`\usepackage{amsthm} % theorems`,
		`\usepackage{booktabs} % book-quality tables`,
		`\usepackage{units} % non-stacked fractions and better unit spacing`,
		`\usepackage{multicol} % multiple column layout facilities`,
		`\usepackage{fancyvrb} % extended verbatim environments`,
		`\fvset{fontsize=\normalsize} % default font size for fancy-verbatim environments`,
		`\newtheorem{theorem}{Theorem}`,
		`\newcommand{\doccmd}[1]{\texttt{\textbackslash#1}}% command name -- adds backslash automatically`,
		`\newcommand{\docopt}[1]{\ensuremath{\langle}\textrm{\textit{#1}}\ensuremath{\rangle}}% optional command argument`,
		`\newcommand{\docarg}[1]{\textrm{\textit{#1}}}% (required) command argument`,
		`\newcommand{\docenv}[1]{\textsf{#1}}% environment name`,
		`\newcommand{\docpkg}[1]{\texttt{#1}}% package name`,
		`\newcommand{\doccls}[1]{\texttt{#1}}% document class name`,
		`\newcommand{\docclsopt}[1]{\texttt{#1}}% document class option name`,
		`\newenvironment{docspec}{\begin{quote}\noindent}{\end{quote}}% command specification environment`,
		`\begin{document}`,
		`\maketitle% this prints the handout title, author, and date`,
	)
	if info.Abstract != "" {
		parts = append(parts, `\begin{abstract}`, `\noindent`, info.Abstract, `\end{abstract}`)
	}
	parts = append(parts,
		flow,
		`\bibliography{sample-handout}`,
		`\bibliographystyle{plainnat}`,
		`\end{document}`,
	)
	return strings.Join(parts, eol), nil
}
