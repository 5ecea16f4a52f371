package widget

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/eringen/pubtheme/content"
)

// KindTagCloud is the kind of the tag cloud widget.
const KindTagCloud = "tag_cloud"

// TermCount is a term with the number of published posts using it.
type TermCount struct {
	Term  content.Term
	Count int
}

// TermCounter lists the used terms of a taxonomy ordered by name.
type TermCounter interface {
	TermCounts(ctx context.Context, taxonomy string) ([]TermCount, error)
}

// TagCloud lists the terms of a taxonomy, all at the same font size.
type TagCloud struct {
	Terms TermCounter
	Links content.Permalinks
}

func (TagCloud) Kind() string { return KindTagCloud }
func (TagCloud) Name() string { return "Tag Cloud" }

func (TagCloud) Defaults() Settings {
	return Settings{Title: "Tags", Taxonomy: content.TaxonomyTag}
}

func (c TagCloud) Update(submitted, _ Settings) Settings {
	out := Settings{Title: StripTags(submitted.Title), Taxonomy: StripTags(submitted.Taxonomy)}
	if out.Taxonomy == "" {
		out.Taxonomy = c.Defaults().Taxonomy
	}
	return out
}

func (c TagCloud) Render(ctx context.Context, area Area, inst Instance, _ int64) (string, error) {
	tax := inst.Settings.Taxonomy
	if tax == "" {
		tax = c.Defaults().Taxonomy
	}
	terms, err := c.Terms.TermCounts(ctx, tax)
	if err != nil {
		return "", fmt.Errorf("count %s terms: %w", tax, err)
	}

	var b strings.Builder
	b.WriteString(area.Title(inst.Settings.Title))
	b.WriteString(`<div class="tagcloud">`)
	for i, tc := range terms {
		if i > 0 {
			b.WriteString("\n")
		}
		items := "items"
		if tc.Count == 1 {
			items = "item"
		}
		name := html.EscapeString(tc.Term.Name)
		fmt.Fprintf(&b, `<a href="%s" class="tag-cloud-link tag-link-%d" style="font-size: 1em;" aria-label="%s (%d %s)">%s</a>`,
			html.EscapeString(c.Links.Term(tc.Term)), tc.Term.ID, name, tc.Count, items, name)
	}
	b.WriteString("</div>")
	return b.String(), nil
}
