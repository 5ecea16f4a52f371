package content

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Permalinks builds public URLs for posts and terms under a site base URL.
type Permalinks struct {
	Base string
	// UploadsPath is the URL path attachment files are served from.
	UploadsPath string
}

// NewPermalinks returns a Permalinks rooted at base.
func NewPermalinks(base string) Permalinks {
	return Permalinks{Base: strings.TrimRight(base, "/"), UploadsPath: "/public/uploads"}
}

// Home returns the site home URL with a trailing slash.
func (l Permalinks) Home() string {
	return l.Base + "/"
}

// Post returns the canonical URL of p.
func (l Permalinks) Post(p Post) string {
	switch p.Type {
	case TypePost:
		return l.join("blog", p.Slug)
	case TypePage:
		return l.join("page", p.Slug)
	case TypeAttachment:
		return l.join("attachment", strconv.FormatInt(p.ID, 10))
	default:
		return l.join("type", p.Type, p.Slug)
	}
}

// File returns the URL of an attachment's stored file.
func (l Permalinks) File(p Post) string {
	return l.Base + path.Join(l.UploadsPath, url.PathEscape(p.File))
}

// Term returns the archive URL of t.
func (l Permalinks) Term(t Term) string {
	switch t.Taxonomy {
	case TaxonomyCategory:
		return l.join("category", t.Slug)
	case TaxonomyTag:
		return l.join("tag", t.Slug)
	default:
		return l.join("tax", t.Taxonomy, t.Slug)
	}
}

// Year returns the archive URL for a year.
func (l Permalinks) Year(year string) string {
	return l.join("archive", year)
}

func (l Permalinks) join(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return l.Base + "/" + strings.Join(escaped, "/") + "/"
}
