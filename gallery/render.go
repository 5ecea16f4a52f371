// Package gallery resolves image attachments for the [gallery] and
// [carousel] shortcodes and renders them through one parameterized
// renderer.
package gallery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/shortcode"
)

// Dialect holds everything that differs between a gallery and a carousel.
type Dialect struct {
	// Name is the shortcode tag, selector prefix and class stem.
	Name          string
	LightboxID    string
	LightboxClass string
	CloseControl  bool
	// HideWhenUnstyled emits a display:none rule for the container when
	// default styles are off, leaving the lightbox script to show it.
	HideWhenUnstyled bool
}

// GalleryDialect renders a grid of thumbnails opening a lightbox.
var GalleryDialect = Dialect{
	Name:          "gallery",
	LightboxID:    "blueimp-gallery",
	LightboxClass: "blueimp-gallery blueimp-gallery-controls",
	CloseControl:  true,
}

// CarouselDialect renders an inline carousel.
var CarouselDialect = Dialect{
	Name:             "carousel",
	LightboxID:       "blueimp-gallery-carousel",
	LightboxClass:    "blueimp-gallery blueimp-gallery-carousel blueimp-gallery-controls",
	HideWhenUnstyled: true,
}

// OverrideFunc may replace the whole output. A non-empty result is used
// verbatim.
type OverrideFunc func(ctx context.Context, d Dialect, a Attrs, instance int) string

// Renderer renders one dialect. It implements shortcode.Handler.
type Renderer struct {
	Dialect  Dialect
	Resolver Resolver
	Links    content.Permalinks

	// HTML5 selects semantic markup: figure/div/figcaption defaults, no
	// column breaks and, unless StylePolicy says otherwise, no inline style.
	HTML5 bool
	RTL   bool

	Override OverrideFunc
	// StylePolicy receives the default (true unless HTML5) and decides
	// whether the inline style block is printed.
	StylePolicy func(def bool) bool
	// StyleFilter may rewrite the style block plus opening container.
	StyleFilter func(string) string
}

// Render implements shortcode.Handler.
func (r *Renderer) Render(ctx context.Context, env *shortcode.Env, raw shortcode.Attrs, _ string) (string, error) {
	instance := env.Instances.Next(r.Dialect.Name)
	a := ParseAttrs(raw, env.PostID, r.HTML5)

	if r.Override != nil {
		if out := r.Override(ctx, r.Dialect, a, instance); out != "" {
			return out, nil
		}
	}

	items, err := r.Resolver.Resolve(ctx, a)
	if err != nil {
		return "", err
	}
	if env.Feed {
		return r.RenderFeed(a, items), nil
	}
	return r.RenderCollection(a, instance, items), nil
}

// RenderFeed renders one link line per attachment for syndication feeds.
func (r *Renderer) RenderFeed(a Attrs, items Collection) string {
	if items.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, p := range items.Items() {
		b.WriteString(linkTo(r.Links.Post(p), imageTag(r.Links, p, a.Size, "")))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderCollection renders items as the dialect's markup. instance makes
// the container selector unique within the page.
func (r *Renderer) RenderCollection(a Attrs, instance int, items Collection) string {
	if items.IsEmpty() {
		return ""
	}
	d := r.Dialect
	itemTag := allowedTag(a.ItemTag, fallbackItemTag)
	iconTag := allowedTag(a.IconTag, fallbackIconTag)
	captionTag := allowedTag(a.CaptionTag, fallbackCaptionTag)

	columns := a.Columns
	if columns < 0 {
		columns = 0
	}
	selector := d.Name + "-" + strconv.Itoa(instance)

	var head strings.Builder
	head.WriteString(r.styleBlock(selector, columns))
	head.WriteString(r.lightbox())
	fmt.Fprintf(&head, "<div id='%s' class='%s %sid-%d %s-columns-%d %s-size-%s'>",
		selector, d.Name, d.Name, a.ID, d.Name, columns, d.Name, a.Size.Class())

	var b strings.Builder
	if r.StyleFilter != nil {
		b.WriteString(r.StyleFilter(head.String()))
	} else {
		b.WriteString(head.String())
	}

	legacy := !r.HTML5
	i := 0
	for _, p := range items.Items() {
		caption := strings.TrimSpace(p.Excerpt)
		describedBy := ""
		if caption != "" {
			describedBy = selector + "-" + strconv.FormatInt(p.ID, 10)
		}
		image := imageTag(r.Links, p, a.Size, describedBy)
		switch a.Link {
		case LinkFile:
			image = linkTo(r.Links.File(p), image)
		case LinkNone:
		default:
			image = linkTo(r.Links.Post(p), image)
		}

		iconClass := d.Name + "-icon"
		if o := Orientation(p); o != "" {
			iconClass += " " + o
		}
		fmt.Fprintf(&b, "<%s class='%s-item'>", itemTag, d.Name)
		fmt.Fprintf(&b, "\n\t<%s class='%s'>\n\t\t%s\n\t</%s>", iconTag, iconClass, image, iconTag)
		if captionTag != "" && caption != "" {
			fmt.Fprintf(&b, "\n\t<%s class='wp-caption-text %s-caption' id='%s'>\n\t\t%s\n\t</%s>",
				captionTag, d.Name, describedBy, Texturize(caption), captionTag)
		}
		fmt.Fprintf(&b, "</%s>", itemTag)
		i++
		if legacy && columns > 0 && i%columns == 0 {
			b.WriteString(`<br style="clear: both" />`)
		}
	}
	if legacy && columns > 0 && i%columns != 0 {
		b.WriteString("\n<br style='clear: both' />")
	}
	b.WriteString("\n</div>\n")
	return b.String()
}

func (r *Renderer) styled() bool {
	def := !r.HTML5
	if r.StylePolicy != nil {
		return r.StylePolicy(def)
	}
	return def
}

func (r *Renderer) styleBlock(selector string, columns int) string {
	name := r.Dialect.Name
	if !r.styled() {
		if r.Dialect.HideWhenUnstyled {
			return fmt.Sprintf("<style type='text/css'>\n\t#%s {\n\t\tdisplay:none;\n\t}\n</style>\n", selector)
		}
		return ""
	}
	width := 100
	if columns > 0 {
		width = 100 / columns
	}
	float := "left"
	if r.RTL {
		float = "right"
	}
	return fmt.Sprintf(`<style type='text/css'>
	#%[1]s {
		margin: auto;
	}
	#%[1]s .%[2]s-item {
		float: %[3]s;
		margin-top: 10px;
		text-align: center;
		width: %[4]d%%;
	}
	#%[1]s img {
		border: 2px solid #cfcfcf;
	}
	#%[1]s .%[2]s-caption {
		margin-left: 0;
	}
</style>
`, selector, name, float, width)
}

func (r *Renderer) lightbox() string {
	d := r.Dialect
	var b strings.Builder
	fmt.Fprintf(&b, "<div id=\"%s\" class=\"%s\">\n", d.LightboxID, d.LightboxClass)
	b.WriteString("\t<div class=\"slides\"></div>\n")
	b.WriteString("\t<h3 class=\"title\"></h3>\n")
	b.WriteString("\t<a class=\"prev\">&lsaquo;</a>\n")
	b.WriteString("\t<a class=\"next\">&rsaquo;</a>\n")
	if d.CloseControl {
		b.WriteString("\t<a class=\"close\">&times;</a>\n")
	}
	b.WriteString("\t<ol class=\"indicator\"></ol>\n")
	b.WriteString("</div>\n")
	return b.String()
}
