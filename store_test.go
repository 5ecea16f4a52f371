package pubtheme

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/widget"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustSavePost(t *testing.T, s *Store, p content.Post) content.Post {
	t.Helper()
	if err := s.SavePost(context.Background(), &p); err != nil {
		t.Fatalf("SavePost(%q) failed: %v", p.Slug, err)
	}
	return p
}

func mustSaveTerm(t *testing.T, s *Store, term content.Term) content.Term {
	t.Helper()
	if err := s.SaveTerm(context.Background(), &term); err != nil {
		t.Fatalf("SaveTerm(%q) failed: %v", term.Slug, err)
	}
	return term
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := mustSavePost(t, s, content.Post{
		Title:   "Test Post",
		Slug:    "test-post",
		Date:    "2024-01-15",
		Author:  "ana",
		Excerpt: "summary",
		Content: "[gallery]",
	})
	if p.ID == 0 {
		t.Fatal("SavePost should assign an ID")
	}
	if p.Type != content.TypePost || p.Status != content.StatusPublish {
		t.Errorf("defaults = %q/%q, want post/publish", p.Type, p.Status)
	}

	got, err := s.PostBySlug(ctx, content.TypePost, "test-post")
	if err != nil {
		t.Fatalf("PostBySlug failed: %v", err)
	}
	if got.ID != p.ID || got.Title != "Test Post" || got.Content != "[gallery]" || got.Date != "2024-01-15" {
		t.Errorf("PostBySlug = %+v", got)
	}

	got.Title = "Renamed"
	if err := s.SavePost(ctx, &got); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	again, _ := s.Post(ctx, p.ID)
	if again.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", again.Title)
	}
}

func TestSavePostMissingID(t *testing.T) {
	s := setupTestStore(t)
	p := content.Post{ID: 999, Title: "x"}
	if err := s.SavePost(context.Background(), &p); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.PostBySlug(context.Background(), content.TypePost, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPublishedOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	mustSavePost(t, s, content.Post{Title: "Zeta", Slug: "zeta", Date: "2024-01-01"})
	mustSavePost(t, s, content.Post{Title: "alpha", Slug: "alpha", Date: "2024-03-01"})
	mustSavePost(t, s, content.Post{Title: "Draft", Slug: "draft", Date: "2024-05-01", Status: content.StatusDraft})
	mustSavePost(t, s, content.Post{Title: "About", Slug: "about", Type: content.TypePage})

	byDate, err := s.Published(ctx, content.TypePost)
	if err != nil {
		t.Fatal(err)
	}
	if len(byDate) != 2 || byDate[0].Slug != "alpha" || byDate[1].Slug != "zeta" {
		t.Errorf("Published = %v, want alpha, zeta", slugs(byDate))
	}

	byTitle, err := s.PublishedByType(ctx, content.TypePost)
	if err != nil {
		t.Fatal(err)
	}
	if len(byTitle) != 2 || byTitle[0].Slug != "alpha" || byTitle[1].Slug != "zeta" {
		t.Errorf("PublishedByType = %v, want alpha, zeta", slugs(byTitle))
	}

	all, _ := s.ListAllPosts(ctx)
	if len(all) != 4 {
		t.Errorf("ListAllPosts returned %d posts, want 4", len(all))
	}
}

func TestSearchAndYear(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	mustSavePost(t, s, content.Post{Title: "Hiking 100% fun", Slug: "hiking", Date: "2023-06-01"})
	mustSavePost(t, s, content.Post{Title: "Other", Slug: "other", Content: "about hiking", Date: "2024-02-01"})
	mustSavePost(t, s, content.Post{Title: "Secret hiking", Slug: "secret", Status: content.StatusDraft})

	found, err := s.Search(ctx, "hiking")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Errorf("Search(hiking) = %v, want 2 published", slugs(found))
	}
	pct, _ := s.Search(ctx, "100%")
	if len(pct) != 1 {
		t.Errorf("Search(100%%) = %v, want the literal match only", slugs(pct))
	}
	if empty, _ := s.Search(ctx, "  "); empty != nil {
		t.Errorf("blank search should return nothing, got %v", slugs(empty))
	}

	y, err := s.ByYear(ctx, "2023")
	if err != nil {
		t.Fatal(err)
	}
	if len(y) != 1 || y[0].Slug != "hiking" {
		t.Errorf("ByYear(2023) = %v", slugs(y))
	}
}

func TestChildAttachments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	parent := mustSavePost(t, s, content.Post{Title: "Trip", Slug: "trip"})
	a := mustSavePost(t, s, content.Post{Type: content.TypeAttachment, Status: content.StatusInherit, ParentID: parent.ID,
		Title: "b", Slug: "b", MimeType: "image/jpeg", File: "b.jpg", MenuOrder: 2})
	b := mustSavePost(t, s, content.Post{Type: content.TypeAttachment, Status: content.StatusInherit, ParentID: parent.ID,
		Title: "a", Slug: "a", MimeType: "image/png", File: "a.png", MenuOrder: 1})
	mustSavePost(t, s, content.Post{Type: content.TypeAttachment, Status: content.StatusInherit, ParentID: parent.ID,
		Title: "doc", Slug: "doc", MimeType: "application/pdf", File: "doc.pdf"})

	got, err := s.ChildAttachments(ctx, parent.ID, nil, content.ParseOrder("menu_order ID", "ASC"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Errorf("ChildAttachments = %v, want images by menu order", slugs(got))
	}

	got, _ = s.ChildAttachments(ctx, parent.ID, []int64{b.ID}, content.ParseOrder("title", "DESC"))
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("exclude failed: %v", slugs(got))
	}

	byID, _ := s.AttachmentsByID(ctx, []int64{a.ID, 12345}, content.ParseOrder("", ""))
	if len(byID) != 1 {
		t.Errorf("AttachmentsByID should skip missing ids, got %v", slugs(byID))
	}

	exists, err := s.AttachmentFileExists(ctx, "a.png")
	if err != nil || !exists {
		t.Errorf("AttachmentFileExists(a.png) = %v, %v", exists, err)
	}
}

func TestTermsAndRelationships(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	parentCat := mustSaveTerm(t, s, content.Term{Taxonomy: content.TaxonomyCategory, Name: "Travel", Slug: "travel"})
	child := mustSaveTerm(t, s, content.Term{Taxonomy: content.TaxonomyCategory, Name: "Europe", Slug: "europe", ParentID: parentCat.ID})
	tag := mustSaveTerm(t, s, content.Term{Taxonomy: content.TaxonomyTag, Name: "go", Slug: "go"})

	again := mustSaveTerm(t, s, content.Term{Taxonomy: content.TaxonomyCategory, Name: "Europe!", Slug: "europe", ParentID: parentCat.ID})
	if again.ID != child.ID {
		t.Errorf("upsert assigned id %d, want %d", again.ID, child.ID)
	}

	p := mustSavePost(t, s, content.Post{Title: "Paris", Slug: "paris"})
	draft := mustSavePost(t, s, content.Post{Title: "Draft", Slug: "draft", Status: content.StatusDraft})
	if err := s.SetPostTerms(ctx, p.ID, content.TaxonomyCategory, []int64{child.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPostTerms(ctx, p.ID, content.TaxonomyTag, []int64{tag.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPostTerms(ctx, draft.ID, content.TaxonomyTag, []int64{tag.ID}); err != nil {
		t.Fatal(err)
	}

	cats, _ := s.PostTerms(ctx, p.ID, content.TaxonomyCategory)
	if len(cats) != 1 || cats[0].Name != "Europe!" || cats[0].ParentID != parentCat.ID {
		t.Errorf("PostTerms(category) = %+v", cats)
	}

	// Replacing categories leaves tags alone.
	if err := s.SetPostTerms(ctx, p.ID, content.TaxonomyCategory, nil); err != nil {
		t.Fatal(err)
	}
	if cats, _ := s.PostTerms(ctx, p.ID, content.TaxonomyCategory); len(cats) != 0 {
		t.Errorf("categories not cleared: %+v", cats)
	}
	if tags, _ := s.PostTerms(ctx, p.ID, content.TaxonomyTag); len(tags) != 1 {
		t.Errorf("tags = %+v, want go", tags)
	}

	posts, _ := s.PostsByTerm(ctx, tag.ID)
	if len(posts) != 1 || posts[0].ID != p.ID {
		t.Errorf("PostsByTerm = %v, want only the published post", slugs(posts))
	}
	counts, err := s.TermCounts(ctx, content.TaxonomyTag)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 1 || counts[0].Count != 1 {
		t.Errorf("TermCounts = %+v", counts)
	}

	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if counts, _ := s.TermCounts(ctx, content.TaxonomyTag); len(counts) != 0 {
		t.Errorf("relationships survived delete: %+v", counts)
	}
}

func TestAuthorCount(t *testing.T) {
	s := setupTestStore(t)
	mustSavePost(t, s, content.Post{Title: "a", Slug: "a", Author: "ana"})
	mustSavePost(t, s, content.Post{Title: "b", Slug: "b", Author: "ana"})
	mustSavePost(t, s, content.Post{Title: "c", Slug: "c", Author: "bo", Status: content.StatusDraft})
	n, err := s.AuthorCount(context.Background())
	if err != nil || n != 1 {
		t.Errorf("AuthorCount = %d, %v, want 1", n, err)
	}
}

func TestWidgets(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	w := widget.Instance{Area: "sidebar-1", Kind: widget.KindCPTMenu, Position: 1,
		Settings: widget.Settings{Title: "Work", CustomPostType: "portfolio"}}
	if err := s.SaveWidget(ctx, &w); err != nil {
		t.Fatal(err)
	}
	w.Settings.Title = "Projects"
	if err := s.SaveWidget(ctx, &w); err != nil {
		t.Fatal(err)
	}
	got, err := s.Widgets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Settings != w.Settings {
		t.Errorf("Widgets = %+v", got)
	}
	if err := s.DeleteWidget(ctx, w.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Widgets(ctx); len(got) != 0 {
		t.Errorf("widget not deleted: %+v", got)
	}
	missing := widget.Instance{ID: 77, Area: "x", Kind: "y"}
	if err := s.SaveWidget(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		order content.Order
		want  string
	}{
		{content.ParseOrder("", ""), " ORDER BY menu_order ASC, id ASC"},
		{content.ParseOrder("title DROP TABLE", "DESC"), " ORDER BY title DESC"},
		{content.ParseOrder("rand", "ASC"), " ORDER BY RANDOM()"},
		{content.ParseOrder("post_name date", "asc"), " ORDER BY slug ASC, date ASC"},
	}
	for _, tt := range tests {
		if got := orderClause(tt.order); got != tt.want {
			t.Errorf("orderClause(%+v) = %q, want %q", tt.order, got, tt.want)
		}
	}
}

func slugs(posts []content.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}
