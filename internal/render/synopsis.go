package render

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/apigen/internal/descopt"
)

// Synopsis extracts a one-line summary from a Markdown docstring body.
// The first paragraph of the parsed document is flattened to a single line;
// in first-sentence mode it is further cut at the first sentence boundary.
func Synopsis(body, mode string) string {
	if mode == descopt.SynopsisNone || body == "" {
		return ""
	}

	src := []byte(body)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var para *gmast.Paragraph
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if p, ok := n.(*gmast.Paragraph); ok {
			para = p
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	if para == nil {
		return ""
	}

	lines := para.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
	}
	synopsis := strings.Join(parts, " ")

	if mode == descopt.SynopsisFirstSentence {
		synopsis = firstSentence(synopsis)
	}
	return synopsis
}

// firstSentence cuts at the first period followed by whitespace. Periods
// inside identifiers like "mymodule.MyClass" do not end a sentence.
func firstSentence(s string) string {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == '.' && (s[i+1] == ' ' || s[i+1] == '\t') {
			return s[:i+1]
		}
	}
	return s
}
