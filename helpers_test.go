package pubtheme

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/eringen/pubtheme/breadcrumb"
	"github.com/eringen/pubtheme/content"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":        "hello-world",
		"  Trim  me  ":       "trim-me",
		"C'est la vie!":      "c-est-la-vie",
		"--dashes--":         "dashes",
		"Ünïcode stays out":  "n-code-stays-out",
		"2024 Summer Photos": "2024-summer-photos",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"http://site.test", nil, "http://site.test/"},
		{"http://site.test/", []string{"blog", "hello"}, "http://site.test/blog/hello/"},
		{"http://site.test", []string{"sitemap.xml"}, "http://site.test/sitemap.xml"},
		{"http://site.test/sub", []string{"feed.xml"}, "http://site.test/sub/feed.xml"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestSplitListAndTermNames(t *testing.T) {
	if got := SplitList(" go, ,web ,"); !reflect.DeepEqual(got, []string{"go", "web"}) {
		t.Errorf("SplitList = %v", got)
	}
	terms := []content.Term{
		{Taxonomy: content.TaxonomyCategory, Name: "News"},
		{Taxonomy: content.TaxonomyTag, Name: "go"},
		{Taxonomy: "portfolio_entries", Name: "Print"},
	}
	if got := TermNames(terms, true); got != "go" {
		t.Errorf("tags = %q", got)
	}
	if got := TermNames(terms, false); got != "News, Print" {
		t.Errorf("categories = %q", got)
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	links := content.NewPermalinks("http://site.test")
	post := content.Post{Type: content.TypePost, Slug: "hi", Title: "Hi </script>", Date: "2024-01-01", Author: "Sam"}
	out := BlogPostingJsonLD(post, links, SiteConfig{Name: "Site"})
	if bytes.Contains([]byte(out), []byte("</script>")) {
		t.Fatalf("payload not escaped: %s", out)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc["url"] != "http://site.test/blog/hi/" {
		t.Errorf("url = %v", doc["url"])
	}
	if _, ok := doc["dateModified"]; ok {
		t.Errorf("dateModified should be omitted when unset")
	}
	if author, _ := doc["author"].(map[string]any); author["name"] != "Sam" {
		t.Errorf("author = %v", doc["author"])
	}
}

func TestCollectAssetsDedupes(t *testing.T) {
	h := newHooks()
	h.Assets = append(h.Assets,
		AssetFunc(themeAssets),
		AssetFunc(func(PageView) []Asset {
			return []Asset{{Handle: "theme-style", URL: "/other.css"}, {Handle: "extra", URL: "/x.js", Script: true}}
		}),
	)

	styles, scripts := h.collectAssets(PageView{})
	if len(styles) != 2 || styles[0].URL != "/public/theme/style.css" {
		t.Errorf("styles = %+v", styles)
	}
	if len(scripts) != 2 || scripts[1].Handle != "extra" {
		t.Errorf("scripts = %+v", scripts)
	}

	_, scripts = h.collectAssets(PageView{View: breadcrumb.View{Single: true, Attachment: true}})
	found := false
	for _, s := range scripts {
		if s.Handle == "keyboard-image-navigation" && !s.Footer {
			found = true
		}
	}
	if !found {
		t.Errorf("attachment views should load keyboard navigation in the head")
	}
}

func TestResponsiveSizes(t *testing.T) {
	thumb := responsiveSizes(map[string]string{}, content.Post{}, "post-thumbnail", PageView{SidebarActive: false})
	if thumb["sizes"] != "(max-width: 709px) 85vw, (max-width: 909px) 67vw, (max-width: 1362px) 88vw, 1200px" {
		t.Errorf("thumbnail sizes = %q", thumb["sizes"])
	}
	page := responsiveSizes(map[string]string{"width": "700"}, content.Post{}, "large",
		PageView{View: breadcrumb.View{Page: true, Post: content.Post{Type: content.TypePage}}})
	if page["sizes"] != "(max-width: 700px) 85vw, 700px" {
		t.Errorf("page sizes = %q", page["sizes"])
	}
	none := responsiveSizes(map[string]string{}, content.Post{}, "large", PageView{})
	if _, ok := none["sizes"]; ok {
		t.Errorf("sizes set without a width")
	}
}

func encodePNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestProcessImage(t *testing.T) {
	att, data, err := processImage(encodePNG(t, 2400, 600), "Beach Day.png", maxImageWidth)
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if att.Width != 1200 || att.Height != 300 {
		t.Errorf("size = %dx%d, want 1200x300", att.Width, att.Height)
	}
	if att.File != "beach-day.jpg" || att.Title != "Beach Day" || att.Status != content.StatusInherit {
		t.Errorf("attachment = %+v", att)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "jpeg" || cfg.Width != 1200 {
		t.Errorf("encoded = %v %s %d", err, format, cfg.Width)
	}

	small, _, err := processImage(encodePNG(t, 40, 30), "!!!.png", maxImageWidth)
	if err != nil {
		t.Fatal(err)
	}
	if small.Width != 40 || small.File != "image.jpg" {
		t.Errorf("small = %+v", small)
	}

	if _, _, err := processImage(bytes.NewReader([]byte("not an image")), "x.png", maxImageWidth); err == nil {
		t.Error("expected a decode error")
	}
}

func TestImportFixtures(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "site.yaml")
	doc := `
terms:
  - {taxonomy: portfolio_entries, name: Print}
posts:
  - {type: page, title: Portfolio}
  - {title: Trip, date: "2024-04-01", categories: [Travel], tags: [sea, sun], content: "[gallery]"}
  - {type: attachment, title: Shore, parent: trip, mime_type: image/jpeg, file: shore.jpg, width: 800, height: 600}
  - {type: portfolio, title: Alpha, terms: {portfolio_entries: [print]}}
widgets:
  - {area: sidebar-1, kind: cpt_menu, settings: {title: Work, custom_post_type: portfolio}}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFixtures(path)
	if err != nil {
		t.Fatalf("LoadFixtures failed: %v", err)
	}
	if err := s.Import(ctx, f); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	trip, err := s.PostBySlug(ctx, content.TypePost, "trip")
	if err != nil {
		t.Fatal(err)
	}
	tags, err := s.PostTerms(ctx, trip.ID, content.TaxonomyTag)
	if err != nil || len(tags) != 2 {
		t.Errorf("tags = %v, %v", tags, err)
	}
	kids, err := s.ChildAttachments(ctx, trip.ID, nil, content.ParseOrder(content.DefaultOrderBy, "ASC"))
	if err != nil || len(kids) != 1 || kids[0].Status != content.StatusInherit {
		t.Errorf("attachments = %+v, %v", kids, err)
	}
	alpha, err := s.PostBySlug(ctx, "portfolio", "alpha")
	if err != nil {
		t.Fatal(err)
	}
	entries, _ := s.PostTerms(ctx, alpha.ID, "portfolio_entries")
	if len(entries) != 1 || entries[0].Name != "Print" {
		t.Errorf("portfolio terms = %+v", entries)
	}
	widgets, _ := s.Widgets(ctx)
	if len(widgets) != 1 || widgets[0].Settings.CustomPostType != "portfolio" {
		t.Errorf("widgets = %+v", widgets)
	}
}

func TestImportRejectsUnknownParent(t *testing.T) {
	s := setupTestStore(t)
	err := s.Import(context.Background(), Fixtures{Posts: []FixturePost{{Title: "Orphan", Parent: "missing"}}})
	if err == nil {
		t.Fatal("expected an error for an unknown parent")
	}
	err = s.Import(context.Background(), Fixtures{Posts: []FixturePost{{Title: "X", Terms: map[string][]string{"genre": {"jazz"}}}}})
	if err == nil {
		t.Fatal("expected an error for an unlisted taxonomy term")
	}
}
