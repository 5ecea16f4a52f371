// Package views provides the default page components for pubtheme.
//
// The markup follows the classic theme structure: a masthead, the
// breadcrumb, a primary content column, three sidebars and five footer
// widget areas. Sites that want their own templates build a ViewFuncs of
// their own and may reuse the pieces exported here.
package views

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/pubtheme"
	"github.com/eringen/pubtheme/content"
)

var sidebarAreas = []string{"sidebar-1", "sidebar-2", "sidebar-3"}

var footerAreas = []string{"footer-sidebar-1", "footer-sidebar-2", "footer-sidebar-3", "footer-sidebar-4", "footer-sidebar-5"}

// Default returns the built-in components for every view.
func Default() pubtheme.ViewFuncs {
	return pubtheme.ViewFuncs{
		Home:             Home,
		Single:           Single,
		Archive:          Archive,
		AdminLogin:       AdminLogin,
		AdminDashboard:   AdminDashboard,
		AdminFormPartial: AdminFormPartial,
		AdminImages:      AdminImages,
		AdminWidgets:     AdminWidgets,
		NotFound:         NotFound,
		ServerError:      ServerError,
	}
}

// Layout wraps main in the document chrome of p.
func Layout(p pubtheme.Page, main templ.Component) templ.Component {
	return component(func(w *writer) {
		w.raw("<!DOCTYPE html>\n<html lang=\"en\" class=\"no-js\"")
		if p.RTL {
			w.attr("dir", "rtl")
		}
		w.raw("><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		w.raw("<title>")
		w.text(documentTitle(p))
		w.raw("</title>")
		if p.Meta.Description != "" {
			w.raw("<meta name=\"description\"")
			w.attr("content", p.Meta.Description)
			w.raw(">")
		}
		w.raw("<link rel=\"canonical\"")
		w.attr("href", p.Meta.URL)
		w.raw("><meta property=\"og:type\"")
		w.attr("content", p.Meta.OGType)
		w.raw("><meta property=\"og:title\"")
		w.attr("content", p.Meta.Title)
		w.raw("><meta property=\"og:url\"")
		w.attr("content", p.Meta.URL)
		w.raw("><meta property=\"og:site_name\"")
		w.attr("content", p.SiteName)
		w.raw(">")
		w.raw("<link rel=\"alternate\" type=\"application/rss+xml\" href=\"/feed.xml\"")
		w.attr("title", p.SiteName)
		w.raw(">")
		for _, s := range p.Styles {
			w.raw("<link rel=\"stylesheet\"")
			w.attr("id", s.Handle+"-css")
			w.attr("href", s.URL)
			w.raw(">")
		}
		scripts(w, p.Scripts, false)
		if p.JSONLD != "" {
			// json.Marshal escapes <, > and &, so the payload cannot close the tag.
			w.raw("<script type=\"application/ld+json\">" + p.JSONLD + "</script>")
		}
		w.raw("</head><body")
		w.attr("class", strings.Join(p.BodyClasses, " "))
		w.raw("><div id=\"page\" class=\"site\">")

		w.raw("<header id=\"masthead\" class=\"site-header\" role=\"banner\"><div class=\"site-branding\"><p class=\"site-title\"><a")
		w.attr("href", p.SiteURL)
		w.raw(" rel=\"home\">")
		w.text(p.SiteName)
		w.raw("</a></p>")
		if p.Tagline != "" {
			w.raw("<p class=\"site-description\">")
			w.text(p.Tagline)
			w.raw("</p>")
		}
		w.raw("</div>")
		w.component(SearchForm())
		w.raw("</header>")

		w.component(p.Breadcrumb)

		w.raw("<div id=\"content\" class=\"site-content\"><div id=\"primary\" class=\"content-area\"><main id=\"main\" class=\"site-main\" role=\"main\">")
		w.component(main)
		w.raw("</main></div>")
		widgetAreas(w, p, sidebarAreas, "secondary", "sidebar widget-area")
		w.raw("</div>")

		w.raw("<footer id=\"colophon\" class=\"site-footer\" role=\"contentinfo\">")
		widgetAreas(w, p, footerAreas, "footer-widgets", "footer-widgets widget-area")
		w.raw("<div class=\"site-info\">&copy; ")
		w.text(p.SiteName)
		w.raw("</div></footer></div>")

		scripts(w, p.Scripts, true)
		w.raw("</body></html>")
	})
}

func documentTitle(p pubtheme.Page) string {
	if p.Meta.Title == "" || p.Meta.Title == p.SiteName {
		return p.SiteName
	}
	return p.Meta.Title + " | " + p.SiteName
}

func scripts(w *writer, assets []pubtheme.Asset, footer bool) {
	for _, s := range assets {
		if s.Footer != footer {
			continue
		}
		w.raw("<script")
		w.attr("id", s.Handle+"-js")
		w.attr("src", s.URL)
		w.raw("></script>")
	}
}

// widgetAreas writes the non-empty areas of ids inside one wrapper, or
// nothing when all are empty.
func widgetAreas(w *writer, p pubtheme.Page, ids []string, id, class string) {
	var active []string
	for _, a := range ids {
		if p.Sidebar(a) != nil {
			active = append(active, a)
		}
	}
	if len(active) == 0 {
		return
	}
	w.raw("<div")
	w.attr("id", id)
	w.attr("class", class)
	w.raw(" role=\"complementary\">")
	for _, a := range active {
		w.raw("<div")
		w.attr("class", "widget-column "+a)
		w.raw(">")
		w.component(p.Sidebar(a))
		w.raw("</div>")
	}
	w.raw("</div>")
}

// SearchForm is the masthead search box.
func SearchForm() templ.Component {
	return component(func(w *writer) {
		w.raw("<form role=\"search\" method=\"get\" class=\"search-form\" action=\"/search/\"><label><span class=\"screen-reader-text\">Search for:</span>")
		w.raw("<input type=\"search\" class=\"search-field\" name=\"s\" placeholder=\"Search &hellip;\"></label>")
		w.raw("<button type=\"submit\" class=\"search-submit\">Search</button></form>")
	})
}

// Home lists the latest posts.
func Home(p pubtheme.Page, entries []pubtheme.Entry) templ.Component {
	return Layout(p, component(func(w *writer) {
		if len(entries) == 0 {
			w.raw("<section class=\"no-results not-found\"><h1 class=\"page-title\">Nothing Found</h1></section>")
			return
		}
		for _, e := range entries {
			w.component(Article(e, false))
		}
	}))
}

// Archive lists entries under a heading.
func Archive(p pubtheme.Page, heading string, entries []pubtheme.Entry) templ.Component {
	return Layout(p, component(func(w *writer) {
		w.raw("<header class=\"page-header\"><h1 class=\"page-title\">")
		w.text(heading)
		w.raw("</h1></header>")
		if len(entries) == 0 {
			w.raw("<p class=\"no-results\">Sorry, but nothing matched. Please try again with different keywords.</p>")
			return
		}
		for _, e := range entries {
			w.component(Article(e, false))
		}
	}))
}

// Single shows one post, page, custom type entry or attachment.
func Single(p pubtheme.Page, e pubtheme.Entry) templ.Component {
	return Layout(p, component(func(w *writer) {
		if e.Post.Type == content.TypeAttachment {
			w.component(AttachmentArticle(e))
			return
		}
		w.component(Article(e, true))
	}))
}

// Article renders e as a full entry when single is set, otherwise as a
// listing item with a linked title.
func Article(e pubtheme.Entry, single bool) templ.Component {
	return component(func(w *writer) {
		openArticle(w, e.Post)
		w.raw("<header class=\"entry-header\">")
		if single {
			w.raw("<h1 class=\"entry-title\">")
			w.text(e.Post.Title)
			w.raw("</h1>")
		} else {
			w.raw("<h2 class=\"entry-title\"><a")
			w.attr("href", e.URL)
			w.raw(" rel=\"bookmark\">")
			w.text(e.Post.Title)
			w.raw("</a></h2>")
		}
		if e.Post.Type != content.TypePage {
			entryMeta(w, e.Post)
		}
		w.raw("</header>")
		if e.Thumbnail != nil {
			w.raw("<div class=\"post-thumbnail\">")
			if !single {
				w.raw("<a")
				w.attr("href", e.URL)
				w.raw(">")
			}
			w.img(e.Thumbnail)
			if !single {
				w.raw("</a>")
			}
			w.raw("</div>")
		}
		w.raw("<div class=\"entry-content\">")
		w.component(e.Body)
		w.raw("</div>")
		entryFooter(w, e.Terms)
		w.raw("</article>")
	})
}

// AttachmentArticle renders an image attachment page with the parent
// link and previous and next image navigation.
func AttachmentArticle(e pubtheme.Entry) templ.Component {
	return component(func(w *writer) {
		openArticle(w, e.Post)
		w.raw("<header class=\"entry-header\"><h1 class=\"entry-title\">")
		w.text(e.Post.Title)
		w.raw("</h1><div class=\"entry-meta\">")
		if e.Post.Width > 0 && e.Post.Height > 0 {
			w.raw("<span class=\"full-size-link\">")
			w.raw(strconv.Itoa(e.Post.Width) + " &times; " + strconv.Itoa(e.Post.Height))
			w.raw("</span>")
		}
		if e.Parent != nil {
			w.raw(" <span class=\"parent-post-link\">Published in <a")
			w.attr("href", e.Parent.URL)
			w.raw(" rel=\"gallery\">")
			w.text(e.Parent.Title)
			w.raw("</a></span>")
		}
		w.raw("</div></header>")
		if e.Prev != nil || e.Next != nil {
			w.raw("<nav id=\"image-navigation\" class=\"navigation image-navigation\">")
			navLink(w, e.Prev, "nav-previous", "prev", "Previous Image")
			navLink(w, e.Next, "nav-next", "next", "Next Image")
			w.raw("</nav>")
		}
		w.raw("<div class=\"entry-content\"><div class=\"entry-attachment\">")
		if e.Image != nil {
			w.raw("<div class=\"attachment\">")
			w.img(e.Image)
			w.raw("</div>")
		}
		if e.Post.Excerpt != "" {
			w.raw("<div class=\"entry-caption\">")
			w.text(e.Post.Excerpt)
			w.raw("</div>")
		}
		w.raw("</div>")
		w.component(e.Body)
		w.raw("</div></article>")
	})
}

func openArticle(w *writer, p content.Post) {
	id := strconv.FormatInt(p.ID, 10)
	w.raw("<article")
	w.attr("id", "post-"+id)
	w.attr("class", "post-"+id+" "+p.Type+" type-"+p.Type+" status-"+p.Status+" hentry")
	w.raw(">")
}

func entryMeta(w *writer, p content.Post) {
	if p.Date == "" && p.Author == "" {
		return
	}
	w.raw("<div class=\"entry-meta\">")
	if p.Date != "" {
		w.raw("<span class=\"posted-on\"><time class=\"entry-date published\"")
		w.attr("datetime", p.Date)
		w.raw(">")
		w.text(p.Date)
		w.raw("</time></span>")
	}
	if p.Author != "" {
		w.raw(" <span class=\"byline\"><span class=\"author vcard\">")
		w.text(p.Author)
		w.raw("</span></span>")
	}
	w.raw("</div>")
}

func entryFooter(w *writer, terms []pubtheme.TermLink) {
	if len(terms) == 0 {
		return
	}
	var cats, tags []pubtheme.TermLink
	for _, t := range terms {
		if t.Taxonomy == content.TaxonomyTag {
			tags = append(tags, t)
		} else {
			cats = append(cats, t)
		}
	}
	w.raw("<footer class=\"entry-footer\">")
	termList(w, cats, "cat-links", "category tag")
	termList(w, tags, "tags-links", "tag")
	w.raw("</footer>")
}

func termList(w *writer, terms []pubtheme.TermLink, class, rel string) {
	if len(terms) == 0 {
		return
	}
	w.raw("<span")
	w.attr("class", class)
	w.raw(">")
	for i, t := range terms {
		if i > 0 {
			w.raw(", ")
		}
		w.raw("<a")
		w.attr("href", t.URL)
		w.attr("rel", rel)
		w.raw(">")
		w.text(t.Name)
		w.raw("</a>")
	}
	w.raw("</span>")
}

// navLink writes an image navigation link. The rel values are what the
// keyboard navigation script follows.
func navLink(w *writer, l *pubtheme.Link, class, rel, label string) {
	if l == nil {
		return
	}
	w.raw("<div")
	w.attr("class", class)
	w.raw("><a")
	w.attr("href", l.URL)
	w.attr("rel", rel)
	w.attr("title", l.Title)
	w.raw(">")
	w.text(label)
	w.raw("</a></div>")
}

// NotFound is the 404 page.
func NotFound(p pubtheme.Page) templ.Component {
	return Layout(p, component(func(w *writer) {
		w.raw("<section class=\"error-404 not-found\"><header class=\"page-header\"><h1 class=\"page-title\">Oops! That page can&rsquo;t be found.</h1></header>")
		w.raw("<div class=\"page-content\"><p>It looks like nothing was found at this location. Maybe try a search?</p>")
		w.component(SearchForm())
		w.raw("</div></section>")
	}))
}

// ServerError is a standalone 500 page; it renders without site data.
func ServerError() templ.Component {
	return component(func(w *writer) {
		w.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>Server error</title></head>")
		w.raw("<body class=\"error500\"><h1>Something went wrong</h1><p>Please try again in a moment.</p><p><a href=\"/\">Home</a></p></body></html>")
	})
}
