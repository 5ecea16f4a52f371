package pubtheme

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"

	"github.com/eringen/pubtheme/breadcrumb"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/gallery"
	"github.com/eringen/pubtheme/shortcode"
)

// primarySidebar decides the no-sidebar body class and thumbnail sizes.
const primarySidebar = "sidebar-1"

// thumbnailSize is the featured image box: 1200 wide, unbounded height.
var thumbnailSize = gallery.Size{Name: "post-thumbnail", Width: 1200, Height: 9999}

// pageRequest is the render state of one response. env is shared by
// every entry so gallery selectors stay unique across the page.
type pageRequest struct {
	ctx  context.Context
	env  *shortcode.Env
	view PageView
}

func (a *App) newRequest(ctx context.Context, v breadcrumb.View, feed bool) *pageRequest {
	log := zerolog.Ctx(ctx)
	pv := PageView{View: v}
	if active, err := a.Cache.AreaActive(ctx, primarySidebar); err != nil {
		log.Warn().Err(err).Msg("widget lookup failed")
	} else {
		pv.SidebarActive = active
	}
	if multi, err := a.Cache.MultiAuthor(ctx); err != nil {
		log.Warn().Err(err).Msg("author count failed")
	} else {
		pv.MultiAuthor = multi
	}
	return &pageRequest{ctx: ctx, env: shortcode.NewEnv(0, feed), view: pv}
}

// page assembles the shared chrome for r.
func (a *App) page(r *pageRequest, meta PageMeta) Page {
	if meta.URL == "" {
		meta.URL = a.Links.Home()
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	styles, scripts := a.Hooks.collectAssets(r.view)
	p := Page{
		SiteName:    a.Config.Name,
		SiteURL:     a.Links.Home(),
		Tagline:     a.Config.Description,
		Meta:        meta,
		RTL:         a.Theme.RTL,
		BodyClasses: a.Hooks.applyBodyClasses(r.ctx, a.baseBodyClasses(r.view), r.view),
		Sidebars:    a.renderSidebars(r.ctx, r.view.View.Post.ID),
		Styles:      styles,
		Scripts:     scripts,
		JSONLD:      WebsiteJsonLD(a.Config),
	}
	if !r.view.View.Front {
		if trail := a.crumbs.Build(r.ctx, r.view.View); len(trail) > 0 {
			p.Breadcrumb = breadcrumb.Component(trail, "")
		}
	}
	return p
}

func (a *App) baseBodyClasses(v PageView) []string {
	var classes []string
	if a.Theme.RTL {
		classes = append(classes, "rtl")
	}
	bv := v.View
	switch bv.Kind() {
	case breadcrumb.KindSingle:
		classes = append(classes, "single", "single-"+bv.Post.Type, "postid-"+strconv.FormatInt(bv.Post.ID, 10))
		if bv.Attachment {
			classes = append(classes, "attachment")
		}
	case breadcrumb.KindPage:
		classes = append(classes, "page", "page-id-"+strconv.FormatInt(bv.Post.ID, 10))
	case breadcrumb.KindCategory:
		classes = append(classes, "archive", "category", "category-"+bv.Term.Slug)
	case breadcrumb.KindTag:
		classes = append(classes, "archive", "tag", "tag-"+bv.Term.Slug)
	case breadcrumb.KindTax:
		classes = append(classes, "archive", "tax-"+bv.Term.Taxonomy, "term-"+bv.Term.Slug)
	case breadcrumb.KindYear:
		classes = append(classes, "archive", "date")
	case breadcrumb.KindSearch:
		classes = append(classes, "search")
	case breadcrumb.KindNotFound:
		classes = append(classes, "error404")
	}
	if bv.Front {
		classes = append(classes, "home", "blog")
	}
	return classes
}

// renderSidebars renders every non-empty widget area. current marks the
// viewed post in menus.
func (a *App) renderSidebars(ctx context.Context, current int64) map[string]templ.Component {
	instances, err := a.Cache.Widgets(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("widget lookup failed")
		return nil
	}
	out := make(map[string]templ.Component)
	for _, area := range a.Hooks.Areas {
		if html := a.Hooks.Widgets.RenderArea(ctx, area, instances, current); html != "" {
			out[area.ID] = templ.Raw(html)
		}
	}
	return out
}

// entry prepares p for display: shortcodes expanded, terms and, when
// thumb is set, the featured image.
func (a *App) entry(r *pageRequest, p content.Post, thumb bool) Entry {
	e := Entry{
		Post: p,
		URL:  a.Links.Post(p),
		Body: templ.Raw(a.ExpandContent(r.ctx, r.env, p)),
	}
	log := zerolog.Ctx(r.ctx)
	for _, tax := range a.entryTaxonomies(p.Type) {
		terms, err := a.Store.PostTerms(r.ctx, p.ID, tax)
		if err != nil {
			log.Warn().Err(err).Int64("post", p.ID).Str("taxonomy", tax).Msg("term lookup failed")
			continue
		}
		for _, t := range terms {
			e.Terms = append(e.Terms, TermLink{Term: t, URL: a.Links.Term(t)})
		}
	}
	if thumb {
		if img, ok := a.featuredImage(r.ctx, p); ok {
			e.Thumbnail = a.imageAttrs(img, thumbnailSize, r.view)
		}
	}
	return e
}

func (a *App) entries(r *pageRequest, posts []content.Post) []Entry {
	out := make([]Entry, 0, len(posts))
	for _, p := range posts {
		out = append(out, a.entry(r, p, true))
	}
	return out
}

func (a *App) entryTaxonomies(postType string) []string {
	switch postType {
	case content.TypePost:
		return []string{content.TaxonomyCategory, content.TaxonomyTag}
	case content.TypePage, content.TypeAttachment:
		return nil
	}
	if ct, ok := a.Theme.CustomType(postType); ok && ct.Taxonomy != "" {
		return []string{ct.Taxonomy, content.TaxonomyTag}
	}
	return nil
}

// featuredImage returns the first image attached to p.
func (a *App) featuredImage(ctx context.Context, p content.Post) (content.Post, bool) {
	imgs, err := a.Store.ChildAttachments(ctx, p.ID, nil, content.ParseOrder(content.DefaultOrderBy, "ASC"))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("post", p.ID).Msg("featured image lookup failed")
		return content.Post{}, false
	}
	for _, img := range imgs {
		if img.IsImage() && img.Visible() {
			return img, true
		}
	}
	return content.Post{}, false
}

// imageAttrs builds the attributes of an img tag for img at size and
// runs the image attribute filters.
func (a *App) imageAttrs(img content.Post, size gallery.Size, v PageView) map[string]string {
	class := size.Class()
	attrs := map[string]string{
		"src":   a.Links.File(img),
		"alt":   img.Title,
		"class": "attachment-" + class + " size-" + class,
	}
	if w, h := gallery.DisplaySize(img, size); w > 0 && h > 0 {
		attrs["width"] = strconv.Itoa(w)
		attrs["height"] = strconv.Itoa(h)
	}
	return a.Hooks.applyImageAttrs(attrs, img, size.Class(), v)
}
