// Package render composes generated documentation pages: one Markdown page
// per entry with YAML front matter, plus an HTML preview renderer and the
// atomic output writer.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/apigen/internal/apimodel"
	"git.home.luguber.info/inful/apigen/internal/descopt"
	"git.home.luguber.info/inful/apigen/internal/entries"
	"git.home.luguber.info/inful/apigen/internal/gitmeta"
	"git.home.luguber.info/inful/apigen/internal/signature"
)

// IconSpec is the TOC icon attached to a page.
type IconSpec struct {
	Text  string
	Class string
}

// Page is one composed documentation page, ready to be written.
type Page struct {
	// Name is the document name without extension.
	Name string

	FrontMatter map[string]any
	Body        string

	// Synopsis is the extracted one-line summary, empty when synopsis
	// generation is disabled for the object type.
	Synopsis string

	Icon IconSpec

	// Tooltip is the cross-reference hover text for links targeting this
	// page.
	Tooltip string
}

// Markdown serializes the page as front matter plus body.
func (p *Page) Markdown() ([]byte, error) {
	fm, err := yaml.Marshal(p.FrontMatter)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(fm)
	sb.WriteString("---\n\n")
	sb.WriteString(p.Body)
	return []byte(sb.String()), nil
}

// PageBuilder composes pages for the entries of one module.
type PageBuilder struct {
	// ModuleName is stripped from displayed names.
	ModuleName string

	Registry *descopt.Registry
	Expander *entries.Expander

	// Source stamps generated pages with the inventory's git revision.
	Source gitmeta.SourceInfo
}

// Build composes the page for a single entry.
func (b *PageBuilder) Build(e entries.Entry) (*Page, error) {
	opts := b.Registry.Lookup("py", string(e.Object.ObjType))

	doc := ""
	if e.Overload.Doc != nil {
		doc = norm.NFC.String(*e.Overload.Doc)
	}

	rendered, wrap, body := b.signatureBlock(e, doc, opts)
	synopsis := Synopsis(body, opts.String("generate_synopses"))

	page := &Page{
		Name:        e.PageName(),
		FrontMatter: b.frontMatter(e, opts, synopsis),
		Synopsis:    synopsis,
		Icon: IconSpec{
			Text:  opts.String("toc_icon_text"),
			Class: opts.String("toc_icon_class"),
		},
		Tooltip: descopt.FormatTooltip(opts, e.ObjectName(), synopsis),
	}

	var sb strings.Builder
	if rendered != "" {
		if wrap {
			sb.WriteString("```python sig-wrap\n")
		} else {
			sb.WriteString("```python\n")
		}
		sb.WriteString(rendered)
		sb.WriteString("\n```\n")
	}
	if body != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
	}
	if err := b.appendMemberSummaries(&sb, e); err != nil {
		return nil, err
	}
	page.Body = sb.String()
	return page, nil
}

// signatureBlock splits the docstring into a corrected signature rendering
// and the remaining body. Non-callable objects keep the whole docstring as
// body.
func (b *PageBuilder) signatureBlock(e entries.Entry, doc string, opts descopt.Options) (rendered string, wrap bool, body string) {
	if !e.Object.ObjType.IsCallable() && !e.Subscript {
		return "", false, doc
	}

	line, rest, _ := strings.Cut(doc, "\n")
	sig, ok := signature.Parse(line)
	if !ok {
		return "", false, doc
	}

	sig.DropSelf()
	if e.IsConstructorLike() {
		sig.CleanInit()
	}
	if e.IsClassGetitem() {
		sig.CleanClassGetitem()
	}
	sig.Name = e.DisplayName(b.ModuleName)

	if e.Subscript || e.IsClassGetitem() {
		rendered = sig.RenderSubscript()
	} else {
		rendered = sig.Render()
	}

	limit := opts.Int("wrap_signatures_column_limit")
	wrap = opts.Bool("wrap_signatures_with_css") && signature.NeedsWrap(rendered, limit)
	return rendered, wrap, strings.TrimLeft(rest, "\n")
}

func (b *PageBuilder) frontMatter(e entries.Entry, opts descopt.Options, synopsis string) map[string]any {
	fm := map[string]any{
		"title":   e.TOCTitle(),
		"objtype": string(e.Object.ObjType),
		"object":  e.ObjectName(),
	}
	if synopsis != "" {
		fm["synopsis"] = synopsis
	}
	if !opts.Bool("include_in_toc") {
		fm["toc_exclude"] = true
	}
	if text := opts.String("toc_icon_text"); text != "" {
		fm["icon_text"] = text
		fm["icon_class"] = opts.String("toc_icon_class")
	}
	if e.IsInherited {
		fm["inherited"] = true
	}
	if b.Source.Commit != "" {
		fm["source_commit"] = b.Source.Commit
		if b.Source.Branch != "" {
			fm["source_branch"] = b.Source.Branch
		}
	}
	return fm
}

// appendMemberSummaries writes one section per member group with a summary
// line per member linking to its page. Only classes and modules have member
// sections.
func (b *PageBuilder) appendMemberSummaries(sb *strings.Builder, e entries.Entry) error {
	if e.Object.ObjType != apimodel.ObjTypeClass && e.Object.ObjType != apimodel.ObjTypeModule {
		return nil
	}
	members, err := b.Expander.Members(e.Object)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	var order []string
	grouped := make(map[string][]entries.Entry)
	for _, m := range members {
		group := m.GroupName()
		if _, ok := grouped[group]; !ok {
			order = append(order, group)
		}
		grouped[group] = append(grouped[group], m)
	}

	for _, group := range order {
		sb.WriteString("\n## ")
		sb.WriteString(group)
		sb.WriteString("\n\n")
		for _, m := range grouped[group] {
			sb.WriteString(b.summaryLine(m))
			sb.WriteString("\n")
		}
	}
	return nil
}

// summaryLine renders one member as a list item: the summarized signature
// as link text, the member's page as target, and the synopsis as trailing
// text.
func (b *PageBuilder) summaryLine(m entries.Entry) string {
	opts := b.Registry.Lookup("py", string(m.Object.ObjType))

	doc := ""
	if m.Overload.Doc != nil {
		doc = norm.NFC.String(*m.Overload.Doc)
	}

	label := m.TOCTitle()
	body := doc
	if m.Object.ObjType.IsCallable() || m.Subscript {
		line, rest, _ := strings.Cut(doc, "\n")
		if sig, ok := signature.Parse(line); ok {
			sig.Summarize(opts.Int("wrap_signatures_column_limit"))
			sig.Name = m.Name
			if m.Subscript || m.IsClassGetitem() {
				label = sig.RenderSubscript()
			} else {
				label = sig.Render()
			}
			body = strings.TrimLeft(rest, "\n")
		}
	}

	item := fmt.Sprintf("- [`%s`](%s.md)", label, m.PageName())
	if synopsis := Synopsis(body, opts.String("generate_synopses")); synopsis != "" {
		item += ": " + synopsis
	}
	return item
}
