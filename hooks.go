package pubtheme

import (
	"context"
	"strconv"

	"github.com/eringen/pubtheme/breadcrumb"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/gallery"
	"github.com/eringen/pubtheme/shortcode"
	"github.com/eringen/pubtheme/theme"
	"github.com/eringen/pubtheme/widget"
)

// PageView is the request state the filters look at.
type PageView struct {
	View          breadcrumb.View
	SidebarActive bool
	MultiAuthor   bool
}

// Singular reports whether the view shows one post, page or attachment.
func (v PageView) Singular() bool {
	return v.View.Single || v.View.Page
}

// BodyClassFilter may add to or rewrite the body classes of a page.
type BodyClassFilter func(ctx context.Context, classes []string, v PageView) []string

// ImageAttrFilter may rewrite the attributes of an image tag. size is a
// named size such as "post-thumbnail" or "full".
type ImageAttrFilter func(attrs map[string]string, img content.Post, size string, v PageView) map[string]string

// Asset is a stylesheet or script included in every page.
type Asset struct {
	Handle string
	URL    string
	Script bool
	Footer bool // scripts only
}

// AssetProvider contributes assets for a page.
type AssetProvider interface {
	Assets(v PageView) []Asset
}

// AssetFunc adapts a function to AssetProvider.
type AssetFunc func(v PageView) []Asset

// Assets calls f.
func (f AssetFunc) Assets(v PageView) []Asset { return f(v) }

// Hooks is the registration table consulted while rendering. The theme
// defaults are installed by Setup; WithHooks callbacks run afterwards.
type Hooks struct {
	Shortcodes  *shortcode.Registry
	Widgets     *widget.Registry
	Areas       []widget.Area
	BodyClasses []BodyClassFilter
	ImageAttrs  []ImageAttrFilter
	Assets      []AssetProvider

	// GalleryOverride may replace gallery and carousel output entirely.
	GalleryOverride gallery.OverrideFunc
	// GalleryStyleFilter may rewrite the style block, lightbox and opening
	// container printed before gallery and carousel items.
	GalleryStyleFilter func(string) string
	// GalleryStyle decides whether the inline gallery style block is
	// printed. It receives the theme default.
	GalleryStyle func(def bool) bool
}

func newHooks() *Hooks {
	return &Hooks{
		Shortcodes: shortcode.NewRegistry(),
		Widgets:    widget.NewRegistry(),
	}
}

// installThemeHooks registers the theme's shortcodes, widgets, areas,
// filters and assets.
func (a *App) installThemeHooks() {
	h := a.Hooks
	links := a.Links
	resolver := gallery.Resolver{Source: a.Store}

	override := func(ctx context.Context, d gallery.Dialect, attrs gallery.Attrs, instance int) string {
		if h.GalleryOverride == nil {
			return ""
		}
		return h.GalleryOverride(ctx, d, attrs, instance)
	}
	stylePolicy := func(def bool) bool {
		def = def && a.Theme.GalleryStyleEnabled()
		if h.GalleryStyle != nil {
			return h.GalleryStyle(def)
		}
		return def
	}
	styleFilter := func(head string) string {
		if h.GalleryStyleFilter == nil {
			return head
		}
		return h.GalleryStyleFilter(head)
	}
	for _, d := range []gallery.Dialect{gallery.GalleryDialect, gallery.CarouselDialect} {
		h.Shortcodes.Register(d.Name, &gallery.Renderer{
			Dialect:     d,
			Resolver:    resolver,
			Links:       links,
			HTML5:       a.Theme.HTML5,
			RTL:         a.Theme.RTL,
			Override:    override,
			StylePolicy: stylePolicy,
			StyleFilter: styleFilter,
		})
	}

	h.Widgets.Register(widget.CPTMenu{Posts: a.Store, Links: links})
	h.Widgets.Register(widget.TagCloud{Terms: a.Store, Links: links})
	h.Areas = widget.DefaultAreas()

	h.BodyClasses = append(h.BodyClasses, func(_ context.Context, classes []string, v PageView) []string {
		return a.Theme.BodyClasses(classes, theme.BodyState{
			MultiAuthor:   v.MultiAuthor,
			SidebarActive: v.SidebarActive,
			Singular:      v.Singular(),
		})
	})
	h.ImageAttrs = append(h.ImageAttrs, responsiveSizes)
	h.Assets = append(h.Assets, AssetFunc(themeAssets))
}

// responsiveSizes sets the sizes attribute for post thumbnails and
// content images.
func responsiveSizes(attrs map[string]string, img content.Post, size string, v PageView) map[string]string {
	if size == "post-thumbnail" {
		attrs["sizes"] = theme.ThumbnailSizes(v.SidebarActive)
		return attrs
	}
	if w, err := strconv.Atoi(attrs["width"]); err == nil && w > 0 {
		attrs["sizes"] = theme.ContentImageSizes(w, v.View.Post.Type)
	}
	return attrs
}

func themeAssets(v PageView) []Asset {
	assets := []Asset{
		{Handle: "theme-style", URL: "/public/theme/style.css"},
		{Handle: "theme-gallery", URL: "/public/theme/gallery.css"},
		{Handle: "theme-script", URL: "/public/theme/functions.js", Script: true, Footer: true},
	}
	if v.View.Attachment {
		assets = append(assets, Asset{Handle: "keyboard-image-navigation", URL: "/public/theme/keyboard-image-navigation.js", Script: true})
	}
	return assets
}

// applyBodyClasses runs every body class filter in registration order.
func (h *Hooks) applyBodyClasses(ctx context.Context, classes []string, v PageView) []string {
	for _, f := range h.BodyClasses {
		classes = f(ctx, classes, v)
	}
	return classes
}

// applyImageAttrs runs every image attribute filter in registration order.
func (h *Hooks) applyImageAttrs(attrs map[string]string, img content.Post, size string, v PageView) map[string]string {
	for _, f := range h.ImageAttrs {
		attrs = f(attrs, img, size, v)
	}
	return attrs
}

// collectAssets splits provider output into styles and scripts.
func (h *Hooks) collectAssets(v PageView) (styles, scripts []Asset) {
	seen := make(map[string]bool)
	for _, p := range h.Assets {
		for _, as := range p.Assets(v) {
			if seen[as.Handle] {
				continue
			}
			seen[as.Handle] = true
			if as.Script {
				scripts = append(scripts, as)
			} else {
				styles = append(styles, as)
			}
		}
	}
	return styles, scripts
}
