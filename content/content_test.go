package content

import "testing"

func TestParseOrder(t *testing.T) {
	tests := []struct {
		expr, dir string
		fields    []string
		desc      bool
	}{
		{"", "ASC", []string{FieldMenuOrder, FieldID}, false},
		{"menu_order ID", "desc", []string{FieldMenuOrder, FieldID}, true},
		{"post__in", "", []string{FieldPostIn}, false},
		{"title DROP TABLE posts", "ASC", []string{FieldTitle}, false},
		{"bogus", "sideways", []string{FieldMenuOrder, FieldID}, false},
	}
	for _, tt := range tests {
		got := ParseOrder(tt.expr, tt.dir)
		if len(got.Fields) != len(tt.fields) {
			t.Fatalf("ParseOrder(%q) fields = %v, want %v", tt.expr, got.Fields, tt.fields)
		}
		for i := range got.Fields {
			if got.Fields[i] != tt.fields[i] {
				t.Errorf("ParseOrder(%q) fields = %v, want %v", tt.expr, got.Fields, tt.fields)
			}
		}
		if got.Desc != tt.desc {
			t.Errorf("ParseOrder(%q, %q).Desc = %v, want %v", tt.expr, tt.dir, got.Desc, tt.desc)
		}
	}
}

func TestPermalinks(t *testing.T) {
	l := NewPermalinks("https://example.com/")
	tests := []struct {
		got, want string
	}{
		{l.Home(), "https://example.com/"},
		{l.Post(Post{Type: TypePost, Slug: "hello"}), "https://example.com/blog/hello/"},
		{l.Post(Post{Type: TypePage, Slug: "about"}), "https://example.com/page/about/"},
		{l.Post(Post{Type: TypeAttachment, ID: 7}), "https://example.com/attachment/7/"},
		{l.Post(Post{Type: "portfolio", Slug: "bridge"}), "https://example.com/type/portfolio/bridge/"},
		{l.Term(Term{Taxonomy: TaxonomyCategory, Slug: "news"}), "https://example.com/category/news/"},
		{l.Term(Term{Taxonomy: TaxonomyTag, Slug: "go"}), "https://example.com/tag/go/"},
		{l.Term(Term{Taxonomy: "portfolio_entries", Slug: "web"}), "https://example.com/tax/portfolio_entries/web/"},
		{l.File(Post{File: "sunset.jpg"}), "https://example.com/public/uploads/sunset.jpg"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestPostVisible(t *testing.T) {
	if !(Post{Type: TypeAttachment, Status: StatusInherit}).Visible() {
		t.Error("inherited attachment should be visible")
	}
	if (Post{Type: TypePost, Status: StatusInherit}).Visible() {
		t.Error("inherit status is only meaningful for attachments")
	}
	if (Post{Type: TypePost, Status: StatusDraft}).Visible() {
		t.Error("draft should not be visible")
	}
}
