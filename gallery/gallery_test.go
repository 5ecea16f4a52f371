package gallery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/shortcode"
)

// fakeSource returns attachments sorted by ID, the way a database would
// without an explicit list order.
type fakeSource struct {
	posts []content.Post
	err   error
	calls []string
}

func (f *fakeSource) AttachmentsByID(_ context.Context, ids []int64, _ content.Order) ([]content.Post, error) {
	f.calls = append(f.calls, "byid")
	if f.err != nil {
		return nil, f.err
	}
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []content.Post
	for _, p := range f.posts {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSource) ChildAttachments(_ context.Context, parentID int64, exclude []int64, _ content.Order) ([]content.Post, error) {
	f.calls = append(f.calls, "children")
	if f.err != nil {
		return nil, f.err
	}
	skip := map[int64]bool{}
	for _, id := range exclude {
		skip[id] = true
	}
	var out []content.Post
	for _, p := range f.posts {
		if p.ParentID == parentID && !skip[p.ID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func image(id, parent int64, w, h int, caption string) content.Post {
	return content.Post{
		ID:       id,
		Type:     content.TypeAttachment,
		Status:   content.StatusInherit,
		ParentID: parent,
		Title:    fmt.Sprintf("Image %d", id),
		Excerpt:  caption,
		MimeType: "image/jpeg",
		File:     fmt.Sprintf("img%d.jpg", id),
		Width:    w,
		Height:   h,
	}
}

func images(n int, parent int64) []content.Post {
	out := make([]content.Post, n)
	for i := range out {
		out[i] = image(int64(i+1), parent, 800, 600, "")
	}
	return out
}

func newRenderer(d Dialect, src AttachmentSource, html5 bool) *Renderer {
	return &Renderer{
		Dialect:  d,
		Resolver: Resolver{Source: src},
		Links:    content.NewPermalinks("http://example.test"),
		HTML5:    html5,
	}
}

func render(t *testing.T, r *Renderer, env *shortcode.Env, attrs string) string {
	t.Helper()
	out, err := r.Render(context.Background(), env, shortcode.ParseAttrs(attrs), "")
	require.NoError(t, err)
	return out
}

func TestRenderEmptyCollection(t *testing.T) {
	for _, d := range []Dialect{GalleryDialect, CarouselDialect} {
		for _, html5 := range []bool{false, true} {
			r := newRenderer(d, &fakeSource{}, html5)
			assert.Equal(t, "", render(t, r, shortcode.NewEnv(1, false), ""), "%s html5=%v", d.Name, html5)
			assert.Equal(t, "", render(t, r, shortcode.NewEnv(1, true), ""), "%s feed", d.Name)
		}
	}
	var r Renderer
	assert.Equal(t, "", r.RenderCollection(DefaultAttrs(1, false), 1, Collection{}))
}

func TestColumnBreaks(t *testing.T) {
	for n := 1; n <= 10; n++ {
		for c := 1; c <= 5; c++ {
			src := &fakeSource{posts: images(n, 1)}
			want := n / c
			if n%c != 0 {
				want++
			}

			legacy := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), fmt.Sprintf("columns=%d", c))
			assert.Equal(t, want, strings.Count(legacy, "<br style="), "legacy n=%d c=%d", n, c)

			semantic := render(t, newRenderer(GalleryDialect, src, true), shortcode.NewEnv(1, false), fmt.Sprintf("columns=%d", c))
			assert.Zero(t, strings.Count(semantic, "<br style="), "html5 n=%d c=%d", n, c)
		}
	}
}

func TestColumnsZeroInsertsNoBreaks(t *testing.T) {
	src := &fakeSource{posts: images(4, 1)}
	out := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), "columns=0")
	assert.NotContains(t, out, "<br style=")
	assert.Contains(t, out, "width: 100%;")
}

func TestDisallowedTagsFallBack(t *testing.T) {
	src := &fakeSource{posts: []content.Post{image(1, 1, 100, 200, "A caption")}}
	r := newRenderer(GalleryDialect, src, true)

	out := render(t, r, shortcode.NewEnv(1, false), `itemtag="script" icontag="iframe onload=x" captiontag="style"`)
	assert.Contains(t, out, "<dl class='gallery-item'>")
	assert.Contains(t, out, "<dt class='gallery-icon portrait'>")
	assert.Contains(t, out, "<dd class='wp-caption-text gallery-caption' id='gallery-1-1'>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<iframe")
}

func TestAllowedTagsAreNormalized(t *testing.T) {
	assert.Equal(t, "figure", allowedTag("FIGURE", "dl"))
	assert.Equal(t, "li", allowedTag(" li ", "dl"))
	assert.Equal(t, "dl", allowedTag("", "dl"))
	assert.Equal(t, "dd", allowedTag("blink", "dd"))
	assert.Equal(t, "dt", allowedTag("form", "dt"))
}

func TestExplicitIDsKeepListOrder(t *testing.T) {
	src := &fakeSource{posts: []content.Post{image(2, 0, 10, 10, ""), image(5, 0, 10, 10, ""), image(9, 0, 10, 10, "")}}
	out := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), `ids="5,2,9"`)

	i5, i2, i9 := strings.Index(out, "img5.jpg"), strings.Index(out, "img2.jpg"), strings.Index(out, "img9.jpg")
	require.True(t, i5 >= 0 && i2 >= 0 && i9 >= 0, out)
	assert.True(t, i5 < i2 && i2 < i9, "want order 5, 2, 9")
	assert.Equal(t, []string{"byid"}, src.calls)
}

func TestExplicitIDsWithOrderByUseSourceOrder(t *testing.T) {
	src := &fakeSource{posts: []content.Post{image(2, 0, 10, 10, ""), image(5, 0, 10, 10, ""), image(9, 0, 10, 10, "")}}
	out := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), `ids="5,2,9" orderby="ID"`)
	assert.True(t, strings.Index(out, "img2.jpg") < strings.Index(out, "img5.jpg"))
}

func TestExcludeUsesChildren(t *testing.T) {
	src := &fakeSource{posts: images(3, 7)}
	out := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(7, false), `exclude="2"`)
	assert.Contains(t, out, "img1.jpg")
	assert.NotContains(t, out, "img2.jpg")
	assert.Contains(t, out, "img3.jpg")
	assert.Contains(t, out, "galleryid-7")
}

func TestNonImagesAreSkipped(t *testing.T) {
	doc := image(4, 1, 0, 0, "")
	doc.MimeType = "application/pdf"
	draft := image(5, 1, 10, 10, "")
	draft.Status = content.StatusDraft
	src := &fakeSource{posts: []content.Post{image(1, 1, 10, 10, ""), doc, draft}}

	items, err := Resolver{Source: src}.Resolve(context.Background(), DefaultAttrs(1, false))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, items.IDs())
}

func TestResolverErrorPropagates(t *testing.T) {
	src := &fakeSource{err: errors.New("db closed")}
	_, err := newRenderer(GalleryDialect, src, false).Render(context.Background(), shortcode.NewEnv(1, false), shortcode.Attrs{}, "")
	assert.ErrorContains(t, err, "db closed")
}

func TestFeedRendersLinkLines(t *testing.T) {
	src := &fakeSource{posts: images(2, 1)}
	out := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, true), "")

	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(out, "\n"))
	assert.True(t, strings.HasPrefix(lines[0], "<a href='http://example.test/attachment/1/'><img"))
	assert.NotContains(t, out, "<style")
	assert.NotContains(t, out, "blueimp")
}

func TestOverrideShortCircuits(t *testing.T) {
	src := &fakeSource{posts: images(2, 1)}
	r := newRenderer(GalleryDialect, src, false)
	var gotInstance int
	r.Override = func(_ context.Context, d Dialect, a Attrs, instance int) string {
		gotInstance = instance
		return "<custom " + d.Name + ">"
	}
	env := shortcode.NewEnv(1, false)
	render(t, newRenderer(GalleryDialect, src, false), env, "")

	assert.Equal(t, "<custom gallery>", render(t, r, env, ""))
	assert.Equal(t, 2, gotInstance)
	assert.Empty(t, src.calls[1:], "override skips resolving")
}

func TestSelectorsAreUniquePerRequest(t *testing.T) {
	src := &fakeSource{posts: images(1, 1)}
	env := shortcode.NewEnv(1, false)
	g := newRenderer(GalleryDialect, src, false)
	c := newRenderer(CarouselDialect, src, false)

	assert.Contains(t, render(t, g, env, ""), "id='gallery-1'")
	assert.Contains(t, render(t, g, env, ""), "id='gallery-2'")
	assert.Contains(t, render(t, c, env, ""), "id='carousel-1'")
	assert.Contains(t, render(t, g, shortcode.NewEnv(1, false), ""), "id='gallery-1'")
}

func TestInlineStylePolicy(t *testing.T) {
	src := &fakeSource{posts: images(1, 1)}

	legacy := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), "columns=4")
	assert.Contains(t, legacy, "<style type='text/css'>")
	assert.Contains(t, legacy, "width: 25%;")
	assert.Contains(t, legacy, "float: left;")

	semantic := render(t, newRenderer(GalleryDialect, src, true), shortcode.NewEnv(1, false), "")
	assert.NotContains(t, semantic, "<style")

	forced := newRenderer(GalleryDialect, src, true)
	forced.StylePolicy = func(bool) bool { return true }
	forced.RTL = true
	assert.Contains(t, render(t, forced, shortcode.NewEnv(1, false), ""), "float: right;")
}

func TestCarouselDialect(t *testing.T) {
	src := &fakeSource{posts: []content.Post{image(1, 1, 600, 800, "Hi")}}
	out := render(t, newRenderer(CarouselDialect, src, true), shortcode.NewEnv(1, false), "")

	assert.Contains(t, out, `id="blueimp-gallery-carousel"`)
	assert.NotContains(t, out, `class="close"`)
	assert.Contains(t, out, "display:none;")
	assert.Contains(t, out, "class='carousel carouselid-1 carousel-columns-3 carousel-size-thumbnail'")
	assert.Contains(t, out, "<figure class='carousel-item'>")
	assert.Contains(t, out, "<div class='carousel-icon portrait'>")
	assert.Contains(t, out, "<figcaption class='wp-caption-text carousel-caption' id='carousel-1-1'>")

	g := render(t, newRenderer(GalleryDialect, src, true), shortcode.NewEnv(1, false), "")
	assert.Contains(t, g, `class="close"`)
	assert.NotContains(t, g, "display:none;")
}

func TestCaptionOnlyWhenNonBlank(t *testing.T) {
	src := &fakeSource{posts: []content.Post{image(1, 1, 10, 10, "   "), image(2, 1, 10, 10, "It's -- fine...")}}
	out := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), "")

	assert.Equal(t, 1, strings.Count(out, "gallery-caption'"))
	assert.Contains(t, out, "It&#8217;s &#8212; fine&#8230;")
	assert.Contains(t, out, `aria-describedby="gallery-1-2"`)
	assert.Equal(t, 1, strings.Count(out, "aria-describedby"))
}

func TestLinkModes(t *testing.T) {
	src := &fakeSource{posts: images(1, 1)}

	file := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), `link="file"`)
	assert.Contains(t, file, "<a href='http://example.test/public/uploads/img1.jpg'><img")

	none := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), `link="none"`)
	assert.NotContains(t, none, "<a href=")

	unknown := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), `link="sideways"`)
	assert.Contains(t, unknown, "<a href='http://example.test/attachment/1/'><img")
}

func TestOrientation(t *testing.T) {
	assert.Equal(t, "portrait", Orientation(content.Post{Width: 3, Height: 4}))
	assert.Equal(t, "landscape", Orientation(content.Post{Width: 4, Height: 3}))
	assert.Equal(t, "landscape", Orientation(content.Post{Width: 4, Height: 4}))
	assert.Equal(t, "", Orientation(content.Post{Width: 4}))

	src := &fakeSource{posts: []content.Post{image(1, 1, 0, 0, "")}}
	out := render(t, newRenderer(GalleryDialect, src, false), shortcode.NewEnv(1, false), "")
	assert.Contains(t, out, "<dt class='gallery-icon'>")
	assert.NotContains(t, out, `width="`)
}

func TestTexturizeQuotes(t *testing.T) {
	assert.Equal(t, "R&amp;&#8221;D&#8221;", Texturize(`R&"D"`))
	assert.Equal(t, "&#8220;Hi&#8221; (&#8216;x&#8217;)", Texturize(`"Hi" ('x')`))
	assert.Equal(t, "a &lt;b&gt; &#8220;c&#8221;", Texturize(`a <b> "c"`))
}
