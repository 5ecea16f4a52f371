package pubtheme

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubtheme/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func lastMod(p content.Post) string {
	if len(p.Modified) >= 10 {
		return p.Modified[:10]
	}
	return p.Date
}

func (a *App) renderSitemap(c echo.Context, posts []content.Post) error {
	urls := []sitemapURL{
		{Loc: a.Links.Home()},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     a.Links.Post(p),
			LastMod: lastMod(p),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
