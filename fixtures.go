package pubtheme

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/widget"
)

// Fixtures is a YAML content bundle for seeding a site. Parents are
// referenced by slug and must appear earlier in their list.
type Fixtures struct {
	Terms   []FixtureTerm   `yaml:"terms"`
	Posts   []FixturePost   `yaml:"posts"`
	Widgets []FixtureWidget `yaml:"widgets"`
}

type FixtureTerm struct {
	Taxonomy string `yaml:"taxonomy"`
	Name     string `yaml:"name"`
	Slug     string `yaml:"slug"`
	Parent   string `yaml:"parent"`
}

type FixturePost struct {
	Type       string   `yaml:"type"`
	Status     string   `yaml:"status"`
	Slug       string   `yaml:"slug"`
	Title      string   `yaml:"title"`
	Author     string   `yaml:"author"`
	Date       string   `yaml:"date"`
	Excerpt    string   `yaml:"excerpt"`
	Content    string   `yaml:"content"`
	MenuOrder  int      `yaml:"menu_order"`
	Parent     string   `yaml:"parent"` // slug of any earlier post
	MimeType   string   `yaml:"mime_type"`
	File       string   `yaml:"file"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
	// Terms maps further taxonomies to term slugs.
	Terms map[string][]string `yaml:"terms"`
}

type FixtureWidget struct {
	Area     string          `yaml:"area"`
	Kind     string          `yaml:"kind"`
	Position int             `yaml:"position"`
	Settings widget.Settings `yaml:"settings"`
}

// LoadFixtures reads a fixtures file.
func LoadFixtures(path string) (Fixtures, error) {
	var f Fixtures
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read fixtures: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse fixtures: %w", err)
	}
	return f, nil
}

// Import writes f into s. Category and tag names in posts are created on
// demand; other taxonomies must be listed under terms.
func (s *Store) Import(ctx context.Context, f Fixtures) error {
	log := zerolog.Ctx(ctx)
	terms := make(map[string]int64) // "taxonomy/slug" -> id
	termKey := func(tax, slug string) string { return tax + "/" + slug }

	for _, ft := range f.Terms {
		t := content.Term{Taxonomy: ft.Taxonomy, Name: ft.Name, Slug: ft.Slug}
		if t.Slug == "" {
			t.Slug = Slugify(t.Name)
		}
		if ft.Parent != "" {
			id, ok := terms[termKey(ft.Taxonomy, ft.Parent)]
			if !ok {
				return fmt.Errorf("term %s: unknown parent %q", t.Slug, ft.Parent)
			}
			t.ParentID = id
		}
		if err := s.SaveTerm(ctx, &t); err != nil {
			return fmt.Errorf("term %s: %w", t.Slug, err)
		}
		terms[termKey(t.Taxonomy, t.Slug)] = t.ID
	}

	termIDs := func(tax string, names []string, create bool) ([]int64, error) {
		var ids []int64
		for _, name := range names {
			slug := Slugify(name)
			if id, ok := terms[termKey(tax, slug)]; ok {
				ids = append(ids, id)
				continue
			}
			if !create {
				return nil, fmt.Errorf("unknown %s term %q", tax, name)
			}
			t := content.Term{Taxonomy: tax, Name: name, Slug: slug}
			if err := s.SaveTerm(ctx, &t); err != nil {
				return nil, err
			}
			terms[termKey(tax, slug)] = t.ID
			ids = append(ids, t.ID)
		}
		return ids, nil
	}

	posts := make(map[string]int64)
	for _, fp := range f.Posts {
		p := content.Post{
			Type:      fp.Type,
			Status:    fp.Status,
			Slug:      fp.Slug,
			Title:     fp.Title,
			Author:    fp.Author,
			Date:      fp.Date,
			Excerpt:   fp.Excerpt,
			Content:   fp.Content,
			MenuOrder: fp.MenuOrder,
			MimeType:  fp.MimeType,
			File:      fp.File,
			Width:     fp.Width,
			Height:    fp.Height,
		}
		if p.Slug == "" {
			p.Slug = Slugify(p.Title)
		}
		if p.Type == content.TypeAttachment && p.Status == "" {
			p.Status = content.StatusInherit
		}
		if fp.Parent != "" {
			id, ok := posts[fp.Parent]
			if !ok {
				return fmt.Errorf("post %s: unknown parent %q", p.Slug, fp.Parent)
			}
			p.ParentID = id
		}
		if err := s.SavePost(ctx, &p); err != nil {
			return fmt.Errorf("post %s: %w", p.Slug, err)
		}
		posts[p.Slug] = p.ID

		assign := map[string][]string{}
		if len(fp.Categories) > 0 {
			assign[content.TaxonomyCategory] = fp.Categories
		}
		if len(fp.Tags) > 0 {
			assign[content.TaxonomyTag] = fp.Tags
		}
		for tax, names := range fp.Terms {
			assign[tax] = names
		}
		for tax, names := range assign {
			create := tax == content.TaxonomyCategory || tax == content.TaxonomyTag
			ids, err := termIDs(tax, names, create)
			if err != nil {
				return fmt.Errorf("post %s: %w", p.Slug, err)
			}
			if err := s.SetPostTerms(ctx, p.ID, tax, ids); err != nil {
				return fmt.Errorf("post %s: %w", p.Slug, err)
			}
		}
	}

	for _, fw := range f.Widgets {
		w := widget.Instance{Area: fw.Area, Kind: fw.Kind, Position: fw.Position, Settings: fw.Settings}
		if err := s.SaveWidget(ctx, &w); err != nil {
			return fmt.Errorf("widget %s in %s: %w", fw.Kind, fw.Area, err)
		}
	}
	log.Info().Int("terms", len(terms)).Int("posts", len(posts)).Int("widgets", len(f.Widgets)).Msg("fixtures imported")
	return nil
}
