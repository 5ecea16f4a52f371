// Package breadcrumb builds the "You are here" trail for a page view by
// walking page and term parent chains.
package breadcrumb

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"

	"github.com/eringen/pubtheme/content"
)

// DefaultSeparator is placed between segments.
const DefaultSeparator = `<span class="sep">&rsaquo;</span>`

// Kind is the classification of a page view.
type Kind int

const (
	KindNone Kind = iota
	KindSingle
	KindPage
	KindTax
	KindCategory
	KindTag
	KindNotFound
	KindSearch
	KindYear
)

// View describes the current page view. More than one flag may be set;
// Kind picks the winner.
type View struct {
	Front      bool
	Single     bool
	Attachment bool // set together with Single
	Page       bool
	Tax        bool
	Category   bool
	Tag        bool
	NotFound   bool
	Search     bool
	Year       bool

	Post     content.Post // Single, Page
	Term     content.Term // Tax, Category, Tag
	YearName string       // Year
}

// Kind applies the fixed precedence single, page, taxonomy, category,
// tag, 404, search, year.
func (v View) Kind() Kind {
	switch {
	case v.Single:
		return KindSingle
	case v.Page:
		return KindPage
	case v.Tax:
		return KindTax
	case v.Category:
		return KindCategory
	case v.Tag:
		return KindTag
	case v.NotFound:
		return KindNotFound
	case v.Search:
		return KindSearch
	case v.Year:
		return KindYear
	}
	return KindNone
}

// Segment is one trail entry. URL is empty for the current page.
type Segment struct {
	Label string
	URL   string
}

// Trail is an ordered list of segments, root first.
type Trail []Segment

// Links returns the number of linked segments.
func (t Trail) Links() int {
	n := 0
	for _, s := range t {
		if s.URL != "" {
			n++
		}
	}
	return n
}

// Source is the content the builder reads.
type Source interface {
	Post(ctx context.Context, id int64) (content.Post, error)
	Term(ctx context.Context, id int64) (content.Term, error)
	PostTerms(ctx context.Context, postID int64, taxonomy string) ([]content.Term, error)
}

// CustomType configures the trail of a custom post type's single view.
type CustomType struct {
	Taxonomy     string // terms listed between the landing page and the title
	ParentPageID int64  // landing page linked first; 0 for none
}

// Builder builds trails. The zero value of optional fields is usable.
type Builder struct {
	Source   Source
	Links    content.Permalinks
	SiteName string

	CustomTypes map[string]CustomType
}

// Build returns the trail for v. Lookup failures drop the affected
// segments and are logged on the context logger.
func (b Builder) Build(ctx context.Context, v View) Trail {
	var t Trail
	if !v.Front {
		t = append(t, Segment{Label: b.SiteName, URL: b.Links.Home()})
	}

	switch v.Kind() {
	case KindSingle:
		if v.Attachment {
			t = append(t, b.attachmentParents(ctx, v.Post)...)
		} else {
			t = append(t, b.singleParents(ctx, v.Post)...)
		}
		t = append(t, Segment{Label: v.Post.Title})
	case KindPage:
		t = append(t, b.pageAncestors(ctx, v.Post)...)
		t = append(t, Segment{Label: v.Post.Title})
	case KindTax, KindCategory:
		t = append(t, b.termAncestors(ctx, v.Term)...)
		t = append(t, Segment{Label: v.Term.Name})
	case KindTag:
		t = append(t, Segment{Label: "Tag: " + v.Term.Name})
	case KindNotFound:
		t = append(t, Segment{Label: "404 - Page not Found"})
	case KindSearch:
		t = append(t, Segment{Label: "Search"})
	case KindYear:
		t = append(t, Segment{Label: v.YearName})
	}
	return t
}

func (b Builder) singleParents(ctx context.Context, p content.Post) []Segment {
	if p.Type == content.TypePost {
		return b.categoryChain(ctx, p.ID)
	}
	ct, ok := b.CustomTypes[p.Type]
	if !ok {
		return nil
	}
	var segs []Segment
	if ct.ParentPageID > 0 {
		if parent, err := b.Source.Post(ctx, ct.ParentPageID); err != nil {
			logMissing(ctx, err, "post", ct.ParentPageID)
		} else {
			segs = append(segs, Segment{Label: parent.Title, URL: b.Links.Post(parent)})
		}
	}
	if ct.Taxonomy != "" {
		terms, err := b.Source.PostTerms(ctx, p.ID, ct.Taxonomy)
		if err != nil {
			logMissing(ctx, err, "post terms", p.ID)
		}
		for _, term := range terms {
			segs = append(segs, Segment{Label: term.Name, URL: b.Links.Term(term)})
		}
	}
	return segs
}

// attachmentParents links the parent post's category chain and the
// parent post itself.
func (b Builder) attachmentParents(ctx context.Context, p content.Post) []Segment {
	if p.ParentID == 0 {
		return nil
	}
	parent, err := b.Source.Post(ctx, p.ParentID)
	if err != nil {
		logMissing(ctx, err, "post", p.ParentID)
		return nil
	}
	segs := b.categoryChain(ctx, parent.ID)
	return append(segs, Segment{Label: parent.Title, URL: b.Links.Post(parent)})
}

// categoryChain links the first category of postID and its ancestors.
func (b Builder) categoryChain(ctx context.Context, postID int64) []Segment {
	cats, err := b.Source.PostTerms(ctx, postID, content.TaxonomyCategory)
	if err != nil {
		logMissing(ctx, err, "post terms", postID)
		return nil
	}
	if len(cats) == 0 {
		return nil
	}
	return b.termChain(ctx, cats[0].ID, newVisited())
}

func (b Builder) pageAncestors(ctx context.Context, p content.Post) []Segment {
	seen := newVisited()
	seen.add(p.ID)
	chain := walk(ctx, p.ParentID, seen, func(ctx context.Context, id int64) (node, error) {
		page, err := b.Source.Post(ctx, id)
		if err != nil {
			return node{}, err
		}
		return node{id: page.ID, parent: page.ParentID, seg: Segment{Label: page.Title, URL: b.Links.Post(page)}}, nil
	})
	return chain
}

func (b Builder) termAncestors(ctx context.Context, t content.Term) []Segment {
	seen := newVisited()
	seen.add(t.ID)
	return b.termChain(ctx, t.ParentID, seen)
}

func (b Builder) termChain(ctx context.Context, start int64, seen visited) []Segment {
	return walk(ctx, start, seen, func(ctx context.Context, id int64) (node, error) {
		term, err := b.Source.Term(ctx, id)
		if err != nil {
			return node{}, err
		}
		return node{id: term.ID, parent: term.ParentID, seg: Segment{Label: term.Name, URL: b.Links.Term(term)}}, nil
	})
}

func logMissing(ctx context.Context, err error, what string, id int64) {
	zerolog.Ctx(ctx).Warn().Err(err).Str("lookup", what).Int64("id", id).Msg("breadcrumb segment dropped")
}

// HTML renders the trail. Labels are escaped, the last segment is never
// linked, and sep goes between segments only.
func HTML(t Trail, sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	var b strings.Builder
	b.WriteString(`<div class="breadcrumb"><p><span class="breadcrumb_info">You are here:</span> `)
	for i, s := range t {
		if i > 0 {
			b.WriteString(sep)
		}
		label := html.EscapeString(s.Label)
		if s.URL != "" && i < len(t)-1 {
			b.WriteString(`<a href="` + html.EscapeString(s.URL) + `">` + label + `</a>`)
		} else {
			b.WriteString(label)
		}
	}
	b.WriteString("</p></div>")
	return b.String()
}

// Component wraps HTML as a templ component.
func Component(t Trail, sep string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, HTML(t, sep))
		return err
	})
}
