package pubtheme

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/widget"
)

// postForm is the admin editor submission.
type postForm struct {
	ID         int64  `form:"id"`
	Type       string `form:"type" validate:"omitempty,max=20"`
	Title      string `form:"title" validate:"max=300"`
	Slug       string `form:"slug" validate:"max=200"`
	Date       string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Author     string `form:"author" validate:"max=100"`
	Excerpt    string `form:"excerpt"`
	Content    string `form:"content"`
	ParentID   int64  `form:"parent_id" validate:"gte=0"`
	MenuOrder  int    `form:"menu_order"`
	Categories string `form:"categories"`
	Tags       string `form:"tags"`
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	ctx := c.Request().Context()
	post := content.Post{Type: content.TypePost}
	var terms []content.Term
	if id != 0 {
		post, err = a.Store.Post(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return c.NoContent(http.StatusNotFound)
			}
			return err
		}
		for _, tax := range a.entryTaxonomies(post.Type) {
			ts, err := a.Store.PostTerms(ctx, post.ID, tax)
			if err != nil {
				return err
			}
			terms = append(terms, ts...)
		}
	}
	return Render(c, a.Views.AdminFormPartial(post, terms, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	zerolog.Ctx(c.Request().Context()).Warn().Str("ip", c.RealIP()).Msg("admin login failed")
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	var f postForm
	if err := c.Bind(&f); err != nil {
		return adminRedirect(c, "Invalid form.")
	}
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Date = strings.TrimSpace(f.Date)
	if err := validatorInstance().Struct(f); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && ve[0].Field() == "Date" {
			return adminRedirect(c, "Invalid date format. Use YYYY-MM-DD.")
		}
		return adminRedirect(c, "Invalid form.")
	}
	if f.Slug == "" {
		f.Slug = Slugify(f.Title)
	}
	if f.Slug == "" {
		return adminRedirect(c, "Slug is required. Add a title or slug.")
	}
	if f.Date == "" {
		f.Date = time.Now().Format("2006-01-02")
	}
	if f.Type == "" {
		f.Type = content.TypePost
	}
	if f.Type != content.TypePost && f.Type != content.TypePage {
		if _, ok := a.Theme.CustomType(f.Type); !ok {
			return adminRedirect(c, "Unknown post type.")
		}
	}
	status := content.StatusDraft
	if c.FormValue("published") != "" {
		status = content.StatusPublish
	}

	ctx := c.Request().Context()
	post := content.Post{
		ID:        f.ID,
		Type:      f.Type,
		Status:    status,
		ParentID:  f.ParentID,
		Author:    strings.TrimSpace(f.Author),
		Title:     f.Title,
		Slug:      f.Slug,
		Content:   f.Content,
		Excerpt:   f.Excerpt,
		MenuOrder: f.MenuOrder,
		Date:      f.Date,
	}
	if err := a.Store.SavePost(ctx, &post); err != nil {
		return err
	}
	if err := a.saveTerms(c, post, f); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

// saveTerms replaces the post's terms with the comma separated names in f.
// Custom types file their categories under their own taxonomy.
func (a *App) saveTerms(c echo.Context, post content.Post, f postForm) error {
	if post.Type == content.TypePage {
		return nil
	}
	catTax := content.TaxonomyCategory
	if ct, ok := a.Theme.CustomType(post.Type); ok && ct.Taxonomy != "" {
		catTax = ct.Taxonomy
	}
	for taxonomy, names := range map[string][]string{
		catTax:              SplitList(f.Categories),
		content.TaxonomyTag: SplitList(f.Tags),
	} {
		ids := make([]int64, 0, len(names))
		for _, name := range names {
			t := content.Term{Taxonomy: taxonomy, Name: name, Slug: Slugify(name)}
			if t.Slug == "" {
				continue
			}
			if err := a.Store.SaveTerm(c.Request().Context(), &t); err != nil {
				return err
			}
			ids = append(ids, t.ID)
		}
		if err := a.Store.SetPostTerms(c.Request().Context(), post.ID, taxonomy, ids); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	if err := a.Store.DeletePost(c.Request().Context(), id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}

// widgetForm is one widget instance submission.
type widgetForm struct {
	ID             int64  `form:"id"`
	Area           string `form:"area" validate:"required"`
	Kind           string `form:"kind" validate:"required"`
	Position       int    `form:"position" validate:"gte=0"`
	Title          string `form:"title"`
	CustomPostType string `form:"custom_post_type"`
	Taxonomy       string `form:"taxonomy"`
}

func (a *App) handleWidgetList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderWidgetList(c)
}

func (a *App) handleWidgetSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	var f widgetForm
	if err := c.Bind(&f); err != nil {
		return c.String(http.StatusBadRequest, "Invalid form")
	}
	if err := validatorInstance().Struct(f); err != nil {
		return c.String(http.StatusBadRequest, "Area and kind are required")
	}
	if !a.knownArea(f.Area) {
		return c.String(http.StatusBadRequest, "Unknown widget area")
	}
	w, ok := a.Hooks.Widgets.Lookup(f.Kind)
	if !ok {
		return c.String(http.StatusBadRequest, "Unknown widget kind")
	}

	ctx := c.Request().Context()
	old := w.Defaults()
	if f.ID != 0 {
		instances, err := a.Store.Widgets(ctx)
		if err != nil {
			return err
		}
		for _, inst := range instances {
			if inst.ID == f.ID {
				old = inst.Settings
			}
		}
	}
	inst := widget.Instance{
		ID:       f.ID,
		Area:     f.Area,
		Kind:     f.Kind,
		Position: f.Position,
		Settings: w.Update(widget.Settings{
			Title:          f.Title,
			CustomPostType: f.CustomPostType,
			Taxonomy:       f.Taxonomy,
		}, old),
	}
	if err := validatorInstance().Struct(inst.Settings); err != nil {
		return c.String(http.StatusBadRequest, "Invalid widget settings")
	}
	if err := a.Store.SaveWidget(ctx, &inst); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	a.Cache.Invalidate()
	return a.renderWidgetList(c)
}

func (a *App) handleWidgetDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	if err := a.Store.DeleteWidget(c.Request().Context(), id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderWidgetList(c)
}

func (a *App) knownArea(id string) bool {
	for _, area := range a.Hooks.Areas {
		if area.ID == id {
			return true
		}
	}
	return false
}

func (a *App) renderWidgetList(c echo.Context) error {
	instances, err := a.Store.Widgets(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminWidgets(a.Hooks.Areas, instances, a.Hooks.Widgets.Kinds(), CsrfToken(c)))
}
