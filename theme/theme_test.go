package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
html5: false
rtl: true
gallery_style: false
background_image: /public/bg.jpg
custom_types:
  - name: recipe
    taxonomy: cuisine
    parent_page: recipes
`))
	require.NoError(t, err)
	assert.False(t, cfg.HTML5)
	assert.True(t, cfg.RTL)
	assert.False(t, cfg.GalleryStyleEnabled())
	assert.Equal(t, ContentWidth, cfg.ContentWidth)

	ct, ok := cfg.CustomType("recipe")
	require.True(t, ok)
	assert.Equal(t, "recipes", ct.ParentPage)
	_, ok = cfg.CustomType("portfolio")
	assert.False(t, ok)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("content_width: -5\n"))
	assert.ErrorContains(t, err, "invalid theme config")

	_, err = Parse([]byte("custom_types:\n  - label: nameless\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("background_color: zzz\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("html5: [\n"))
	assert.ErrorContains(t, err, "parse theme config")
}

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.GalleryStyleEnabled())

	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content_width: 1200\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.ContentWidth)
}

func TestBodyClasses(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"home", "no-sidebar", "hfeed"}, cfg.BodyClasses([]string{"home"}, BodyState{}))

	cfg.BackgroundImage = "bg.png"
	got := cfg.BodyClasses(nil, BodyState{MultiAuthor: true, SidebarActive: true, Singular: true})
	assert.Equal(t, []string{"custom-background-image", "group-blog"}, got)
}

func TestContentImageSizes(t *testing.T) {
	wide := "(max-width: 709px) 85vw, (max-width: 909px) 67vw, (max-width: 1362px) 62vw, 840px"
	assert.Equal(t, wide, ContentImageSizes(840, "post"))
	assert.Equal(t, wide, ContentImageSizes(1600, "page"))
	assert.Equal(t, "(max-width: 700px) 85vw, 700px", ContentImageSizes(700, "page"))
	assert.Equal(t, "(max-width: 709px) 85vw, (max-width: 909px) 67vw, (max-width: 984px) 61vw, (max-width: 1362px) 45vw, 600px", ContentImageSizes(700, "post"))
	assert.Equal(t, "(max-width: 320px) 85vw, 320px", ContentImageSizes(320, "post"))
}

func TestThumbnailSizes(t *testing.T) {
	assert.Contains(t, ThumbnailSizes(true), "840px")
	assert.Contains(t, ThumbnailSizes(false), "1200px")
}

func TestHex2RGB(t *testing.T) {
	c, ok := Hex2RGB("#1a2B3c")
	require.True(t, ok)
	assert.Equal(t, RGB{0x1a, 0x2b, 0x3c}, c)

	c, ok = Hex2RGB("fff")
	require.True(t, ok)
	assert.Equal(t, "255, 255, 255", c.CSS())

	for _, bad := range []string{"", "#", "ffff", "ggg", "12345g"} {
		_, ok := Hex2RGB(bad)
		assert.False(t, ok, bad)
	}
}
