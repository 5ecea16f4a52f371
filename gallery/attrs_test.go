package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/shortcode"
)

func TestParseAttrsDefaults(t *testing.T) {
	a := ParseAttrs(shortcode.Attrs{}, 12, false)
	assert.Equal(t, DefaultAttrs(12, false), a)
	assert.Equal(t, "dl", a.ItemTag)

	h := ParseAttrs(shortcode.Attrs{}, 12, true)
	assert.Equal(t, []string{"figure", "div", "figcaption"}, []string{h.ItemTag, h.IconTag, h.CaptionTag})
}

func TestParseAttrsSubstitutesInvalidValues(t *testing.T) {
	a := ParseAttrs(shortcode.ParseAttrs(`order="sideways" columns="-2" id="-4" link="FILE" size="huge"`), 3, false)
	assert.Equal(t, "ASC", a.Order)
	assert.Equal(t, 0, a.Columns)
	assert.Equal(t, int64(3), a.ID)
	assert.Equal(t, LinkFile, a.Link)
	assert.Equal(t, "thumbnail", a.Size.Name)
}

func TestParseAttrsIDsFoldIntoInclude(t *testing.T) {
	a := ParseAttrs(shortcode.ParseAttrs(`ids="5, 2,x,9" include="1"`), 3, false)
	assert.Equal(t, []int64{5, 2, 9}, a.Include)
	assert.True(t, a.SortOrder().Explicit())

	b := ParseAttrs(shortcode.ParseAttrs(`ids="5,2" orderby="title" order="desc"`), 3, false)
	assert.Equal(t, content.Order{Fields: []string{content.FieldTitle}, Desc: true}, b.SortOrder())
}

func TestParseAttrsSizes(t *testing.T) {
	assert.Equal(t, Size{Width: 300, Height: 200}, ParseAttrs(shortcode.Attrs{"size": "300x200"}, 1, false).Size)
	assert.Equal(t, Size{Width: 64, Height: 48}, ParseAttrs(shortcode.Attrs{"size": "[64,48]"}, 1, false).Size)
	assert.Equal(t, "medium", ParseAttrs(shortcode.Attrs{"size": "Medium"}, 1, false).Size.Name)
	assert.Equal(t, "300x200", Size{Width: 300, Height: 200}.Class())
}

func TestParseIntIsLenient(t *testing.T) {
	assert.Equal(t, int64(4), parseInt("4 columns"))
	assert.Equal(t, int64(0), parseInt("four"))
	assert.Equal(t, int64(-1), parseInt("-1"))
}

func TestDisplaySize(t *testing.T) {
	p := content.Post{Width: 800, Height: 600}
	w, h := DisplaySize(p, namedSizes["thumbnail"])
	assert.Equal(t, []int{150, 150}, []int{w, h})
	w, h = DisplaySize(p, namedSizes["medium"])
	assert.Equal(t, []int{300, 225}, []int{w, h})
	w, h = DisplaySize(p, namedSizes["full"])
	assert.Equal(t, []int{800, 600}, []int{w, h})
}
