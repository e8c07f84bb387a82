package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Previewer renders generated Markdown pages to standalone HTML for local
// inspection. Cross-reference links get hover tooltips and object type
// icons injected during a post-processing pass over the parsed HTML tree.
type Previewer struct {
	md goldmark.Markdown

	// Tooltips maps link hrefs (page name plus extension) to hover text.
	Tooltips map[string]string

	// Icons maps link hrefs to the target's object type icon.
	Icons map[string]IconSpec
}

func NewPreviewer() *Previewer {
	return &Previewer{
		md:       goldmark.New(),
		Tooltips: make(map[string]string),
		Icons:    make(map[string]IconSpec),
	}
}

// AddTarget registers a page as a link target for tooltip and icon
// injection.
func (p *Previewer) AddTarget(page *Page) {
	href := page.Name + ".md"
	if page.Tooltip != "" {
		p.Tooltips[href] = page.Tooltip
	}
	if page.Icon.Text != "" {
		p.Icons[href] = page.Icon
	}
}

// Render converts a page's Markdown to HTML and applies link
// post-processing.
func (p *Previewer) Render(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.md.Convert(stripFrontMatter(markdown), &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return p.postprocess(buf.Bytes())
}

// postprocess decorates cross-reference links: a title attribute carrying
// the tooltip, and an icon span prepended to the link text.
func (p *Previewer) postprocess(raw []byte) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			p.decorateLink(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return out.Bytes(), nil
}

func (p *Previewer) decorateLink(n *html.Node) {
	href := getAttr(n, "href")
	if href == "" {
		return
	}

	if tooltip, ok := p.Tooltips[href]; ok && getAttr(n, "title") == "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "title", Val: tooltip})
	}

	if icon, ok := p.Icons[href]; ok {
		span := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Span,
			Data:     "span",
			Attr: []html.Attribute{{
				Key: "class",
				Val: "objinfo-icon objinfo-icon__" + icon.Class,
			}},
		}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: icon.Text})
		n.InsertBefore(span, n.FirstChild)
	}
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// stripFrontMatter removes a leading YAML front matter block.
func stripFrontMatter(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return content
	}
	end := bytes.Index(content[4:], []byte("\n---\n"))
	if end < 0 {
		return content
	}
	return content[4+end+5:]
}
