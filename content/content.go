// Package content holds the entities the theme renders: posts of every
// type (including attachments and pages), taxonomy terms, and the
// permalink scheme used to link them.
package content

import "strings"

// Built-in post types. Any other non-empty string is a custom post type.
const (
	TypePost       = "post"
	TypePage       = "page"
	TypeAttachment = "attachment"
)

// Post statuses.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	StatusInherit = "inherit" // attachments inherit their parent's visibility
)

// Built-in taxonomies.
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "post_tag"
)

// Post is any stored content item. Attachments carry file and pixel
// dimensions; pages and hierarchical types use ParentID.
type Post struct {
	ID        int64
	Type      string
	Status    string
	ParentID  int64
	Author    string
	Title     string
	Slug      string
	Content   string
	Excerpt   string // caption for attachments
	MenuOrder int
	Date      string // YYYY-MM-DD
	Modified  string
	MimeType  string
	File      string
	Width     int
	Height    int
}

// IsImage reports whether the post is an image attachment.
func (p Post) IsImage() bool {
	return p.Type == TypeAttachment && strings.HasPrefix(p.MimeType, "image/")
}

// Visible reports whether the post may be shown to anonymous readers.
func (p Post) Visible() bool {
	return p.Status == StatusPublish || (p.Type == TypeAttachment && p.Status == StatusInherit)
}

// Year returns the four-digit year of the post date, or "" when unset.
func (p Post) Year() string {
	if len(p.Date) < 4 {
		return ""
	}
	return p.Date[:4]
}

// Term is a taxonomy term. ParentID is 0 for root terms.
type Term struct {
	ID       int64
	Taxonomy string
	Name     string
	Slug     string
	ParentID int64
}
