package pubtheme

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubtheme/breadcrumb"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/gallery"
)

var reYear = regexp.MustCompile(`^\d{4}$`)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.Posts(ctx)
	if err != nil {
		return err
	}
	r := a.newRequest(ctx, breadcrumb.View{Front: true}, false)
	entries := a.entries(r, posts)
	return Render(c, a.Views.Home(a.page(r, PageMeta{Title: a.Config.Name}), entries))
}

func (a *App) handlePost(c echo.Context) error {
	return a.renderSingle(c, content.TypePost, c.Param("slug"))
}

func (a *App) handleCustomType(c echo.Context) error {
	typ := c.Param("type")
	if _, ok := a.Theme.CustomType(typ); !ok {
		return echo.ErrNotFound
	}
	return a.renderSingle(c, typ, c.Param("slug"))
}

func (a *App) renderSingle(c echo.Context, postType, slug string) error {
	ctx := c.Request().Context()
	post, err := a.Store.PostBySlug(ctx, postType, slug)
	if err != nil {
		return notFoundOr(err)
	}
	if !post.Visible() {
		return echo.ErrNotFound
	}
	r := a.newRequest(ctx, breadcrumb.View{Single: true, Post: post}, false)
	e := a.entry(r, post, true)
	p := a.page(r, PageMeta{Title: post.Title, Description: post.Excerpt, URL: e.URL, OGType: "article"})
	p.JSONLD = BlogPostingJsonLD(post, a.Links, a.Config)
	return Render(c, a.Views.Single(p, e))
}

func (a *App) handlePage(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Store.PostBySlug(ctx, content.TypePage, c.Param("slug"))
	if err != nil {
		return notFoundOr(err)
	}
	if !post.Visible() {
		return echo.ErrNotFound
	}
	r := a.newRequest(ctx, breadcrumb.View{Page: true, Post: post}, false)
	e := a.entry(r, post, true)
	return Render(c, a.Views.Single(a.page(r, PageMeta{Title: post.Title, Description: post.Excerpt, URL: e.URL}), e))
}

func (a *App) handleAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.ErrNotFound
	}
	att, err := a.Store.Post(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	if att.Type != content.TypeAttachment || !att.Visible() {
		return echo.ErrNotFound
	}
	r := a.newRequest(ctx, breadcrumb.View{Single: true, Attachment: true, Post: att}, false)
	e := a.entry(r, att, false)
	if att.IsImage() {
		e.Image = a.imageAttrs(att, gallery.Size{Name: "full"}, r.view)
	}
	if att.ParentID != 0 {
		if parent, err := a.Store.Post(ctx, att.ParentID); err == nil && parent.Visible() {
			e.Parent = &Link{Title: parent.Title, URL: a.Links.Post(parent)}
		}
		a.siblingLinks(r, &e)
	}
	return Render(c, a.Views.Single(a.page(r, PageMeta{Title: att.Title, Description: att.Excerpt, URL: e.URL}), e))
}

// siblingLinks sets Prev and Next to the neighbouring images of the same
// parent in gallery order.
func (a *App) siblingLinks(r *pageRequest, e *Entry) {
	siblings, err := a.Store.ChildAttachments(r.ctx, e.Post.ParentID, nil, content.ParseOrder(content.DefaultOrderBy, "ASC"))
	if err != nil {
		return
	}
	for i, s := range siblings {
		if s.ID != e.Post.ID {
			continue
		}
		if i > 0 {
			e.Prev = &Link{Title: siblings[i-1].Title, URL: a.Links.Post(siblings[i-1])}
		}
		if i < len(siblings)-1 {
			e.Next = &Link{Title: siblings[i+1].Title, URL: a.Links.Post(siblings[i+1])}
		}
		return
	}
}

func (a *App) handleCategory(c echo.Context) error {
	return a.renderTermArchive(c, content.TaxonomyCategory, c.Param("slug"))
}

func (a *App) handleTag(c echo.Context) error {
	return a.renderTermArchive(c, content.TaxonomyTag, c.Param("slug"))
}

func (a *App) handleTaxonomy(c echo.Context) error {
	return a.renderTermArchive(c, c.Param("taxonomy"), c.Param("slug"))
}

func (a *App) renderTermArchive(c echo.Context, taxonomy, slug string) error {
	ctx := c.Request().Context()
	term, err := a.Store.TermBySlug(ctx, taxonomy, slug)
	if err != nil {
		return notFoundOr(err)
	}
	posts, err := a.Store.PostsByTerm(ctx, term.ID)
	if err != nil {
		return err
	}
	v := breadcrumb.View{Term: term}
	heading := term.Name
	switch taxonomy {
	case content.TaxonomyCategory:
		v.Category = true
		heading = "Category: " + term.Name
	case content.TaxonomyTag:
		v.Tag = true
		heading = "Tag: " + term.Name
	default:
		v.Tax = true
	}
	r := a.newRequest(ctx, v, false)
	entries := a.entries(r, posts)
	return Render(c, a.Views.Archive(a.page(r, PageMeta{Title: heading, URL: a.Links.Term(term)}), heading, entries))
}

func (a *App) handleSearch(c echo.Context) error {
	ctx := c.Request().Context()
	q := c.QueryParam("s")
	posts, err := a.Store.Search(ctx, q)
	if err != nil {
		return err
	}
	r := a.newRequest(ctx, breadcrumb.View{Search: true}, false)
	heading := "Search Results for: " + q
	if len(posts) == 0 {
		heading = "Nothing Found"
	}
	p := a.page(r, PageMeta{Title: heading})
	if len(posts) > 0 {
		p.BodyClasses = append(p.BodyClasses, "search-results")
	} else {
		p.BodyClasses = append(p.BodyClasses, "search-no-results")
	}
	return Render(c, a.Views.Archive(p, heading, a.entries(r, posts)))
}

func (a *App) handleYear(c echo.Context) error {
	ctx := c.Request().Context()
	year := c.Param("year")
	if !reYear.MatchString(year) {
		return echo.ErrNotFound
	}
	posts, err := a.Store.ByYear(ctx, year)
	if err != nil {
		return err
	}
	r := a.newRequest(ctx, breadcrumb.View{Year: true, YearName: year}, false)
	heading := "Year: " + year
	return Render(c, a.Views.Archive(a.page(r, PageMeta{Title: heading, URL: a.Links.Year(year)}), heading, a.entries(r, posts)))
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.Posts(ctx)
	if err != nil {
		return err
	}
	pages, err := a.Store.Published(ctx, content.TypePage)
	if err != nil {
		return err
	}
	// posts is shared with the cache; build a new slice.
	all := make([]content.Post, 0, len(posts)+len(pages))
	all = append(all, posts...)
	return a.renderSitemap(c, append(all, pages...))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.Posts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	return c.String(http.StatusOK, "User-agent: *\nDisallow: /admin/\nSitemap: "+BuildURL(a.Config.URL, "sitemap.xml")+"\n")
}

// notFoundOr maps a missing row to a 404 and passes other errors through.
func notFoundOr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	return err
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		r := a.newRequest(c.Request().Context(), breadcrumb.View{NotFound: true}, false)
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(r, PageMeta{Title: "Page not found"})))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
