// Package pubtheme is a site theme engine built with Go, Echo, and templ.
// It renders posts, pages, attachments and taxonomy archives with
// breadcrumbs, widget areas and the gallery and carousel shortcodes, and
// ships an admin dashboard, RSS and a sitemap.
//
// Users provide their own templ templates via the ViewFuncs struct,
// and pubtheme handles all the handler logic, middleware, and database operations.
package pubtheme

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/pubtheme/breadcrumb"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/logging"
	"github.com/eringen/pubtheme/theme"
	"github.com/eringen/pubtheme/widget"
)

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Page is the chrome shared by every public page.
type Page struct {
	SiteName    string
	SiteURL     string
	Tagline     string
	Meta        PageMeta
	RTL         bool
	BodyClasses []string
	Breadcrumb  templ.Component // nil on the front page
	Sidebars    map[string]templ.Component
	Styles      []Asset
	Scripts     []Asset
	JSONLD      string
}

// Sidebar returns the rendered widget area id, or nil when it is empty.
func (p Page) Sidebar(id string) templ.Component {
	return p.Sidebars[id]
}

// Entry is one post prepared for display.
type Entry struct {
	Post      content.Post
	URL       string
	Body      templ.Component // content with shortcodes expanded
	Terms     []TermLink
	Thumbnail map[string]string // img attributes; nil without a featured image
	Image     map[string]string // attachment pages: the full size image
	Parent    *Link             // attachment pages: the post it belongs to
	Prev      *Link             // attachment pages: sibling navigation
	Next      *Link
}

// Link is a titled URL.
type Link struct {
	Title string
	URL   string
}

// TermLink is a term with its archive URL.
type TermLink struct {
	content.Term
	URL string
}

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home             func(p Page, entries []Entry) templ.Component
	Single           func(p Page, e Entry) templ.Component
	Archive          func(p Page, heading string, entries []Entry) templ.Component
	AdminLogin       func(showError bool, csrfToken string) templ.Component
	AdminDashboard   func(posts []content.Post, message string, csrfToken string) templ.Component
	AdminFormPartial func(post content.Post, terms []content.Term, csrfToken string) templ.Component
	AdminImages      func(images []content.Post, csrfToken string) templ.Component
	AdminWidgets     func(areas []widget.Area, instances []widget.Instance, kinds []string, csrfToken string) templ.Component
	NotFound         func(p Page) templ.Component
	ServerError      func() templ.Component
}

// App is the central pubtheme application. It wires together the store,
// cache, hooks, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Theme  theme.Config
	Echo   *echo.Echo
	Store  *Store
	Cache  *ContentCache
	Hooks  *Hooks
	Links  content.Permalinks
	Views  ViewFuncs
	Log    zerolog.Logger

	crumbs       breadcrumb.Builder
	themeSet     bool
	hookFuncs    []func(*Hooks)
	customRoutes []func(*App)
	staticDir    string
	ready        bool
}

// New creates a new pubtheme App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	log, _ := logging.New(logging.Options{})
	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Log:       log,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup validates the configuration, opens the store and installs hooks,
// middleware and routes. Start calls it; tests call it directly.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}
	if !a.themeSet {
		t, err := theme.Load(a.Config.ThemePath)
		if err != nil {
			return fmt.Errorf("pubtheme: %w", err)
		}
		a.Theme = t
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("pubtheme: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewContentCache(a.Store, a.Config.CacheTTL)
	a.Links = content.NewPermalinks(a.Config.URL)

	a.Hooks = newHooks()
	a.installThemeHooks()
	for _, fn := range a.hookFuncs {
		fn(a.Hooks)
	}
	a.crumbs = a.newBreadcrumbs(context.Background())

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start runs Setup and starts the server.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Log.Info().Str("addr", a.Config.Addr).Msg("listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// newBreadcrumbs resolves custom type landing pages once at startup.
func (a *App) newBreadcrumbs(ctx context.Context) breadcrumb.Builder {
	b := breadcrumb.Builder{
		Source:      a.Store,
		Links:       a.Links,
		SiteName:    a.Config.Name,
		CustomTypes: make(map[string]breadcrumb.CustomType),
	}
	for _, ct := range a.Theme.CustomTypes {
		bc := breadcrumb.CustomType{Taxonomy: ct.Taxonomy}
		if ct.ParentPage != "" {
			parent, err := a.Store.PostBySlug(ctx, content.TypePage, ct.ParentPage)
			if err != nil {
				a.Log.Warn().Err(err).Str("type", ct.Name).Str("page", ct.ParentPage).Msg("custom type parent page not found")
			} else {
				bc.ParentPageID = parent.ID
			}
		}
		b.CustomTypes[ct.Name] = bc
	}
	return b
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Theme assets ship inside the binary; everything else under /public
	// comes from the static dir, uploads included.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/theme/*", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/page/:slug/", a.handlePage)
	e.GET("/attachment/:id/", a.handleAttachment)
	e.GET("/type/:type/:slug/", a.handleCustomType)
	e.GET("/category/:slug/", a.handleCategory)
	e.GET("/tag/:slug/", a.handleTag)
	e.GET("/tax/:taxonomy/:slug/", a.handleTaxonomy)
	e.GET("/search/", a.handleSearch)
	e.GET("/archive/:year/", a.handleYear)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin, a.loginRateLimiter())
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/:id/", a.handleAdminPost)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:id/", a.handleAdminDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:id/", a.handleImageDelete)
	e.GET("/admin/widgets/", a.handleWidgetList)
	e.POST("/admin/widgets/save/", a.handleWidgetSave)
	e.DELETE("/admin/widgets/:id/", a.handleWidgetDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or an error
// naming it when it is unset.
func MustEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("pubtheme: required environment variable %s is not set", key)
	}
	return v, nil
}
