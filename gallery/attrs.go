package gallery

import (
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/shortcode"
)

// LinkMode selects what each image links to.
type LinkMode string

const (
	LinkAttachment LinkMode = ""     // attachment detail page
	LinkFile       LinkMode = "file" // the image file itself
	LinkNone       LinkMode = "none" // bare image
)

// Size is a named image size or explicit pixel box.
type Size struct {
	Name   string // thumbnail, medium, large, full; empty when explicit
	Width  int
	Height int
}

// Class returns the size token used in CSS class names.
func (s Size) Class() string {
	if s.Name != "" {
		return sanitizeClass(s.Name)
	}
	return strconv.Itoa(s.Width) + "x" + strconv.Itoa(s.Height)
}

var namedSizes = map[string]Size{
	"thumbnail": {Name: "thumbnail", Width: 150, Height: 150},
	"medium":    {Name: "medium", Width: 300, Height: 300},
	"large":     {Name: "large", Width: 1024, Height: 1024},
	"full":      {Name: "full"},
}

// Attrs is the typed attribute set of a gallery or carousel shortcode,
// already merged against defaults.
type Attrs struct {
	Order      string
	OrderBy    string
	ID         int64
	ItemTag    string
	IconTag    string
	CaptionTag string
	Columns    int
	Size       Size
	Include    []int64
	Exclude    []int64
	Link       LinkMode
}

// SortOrder returns the parsed sort expression.
func (a Attrs) SortOrder() content.Order {
	return content.ParseOrder(a.OrderBy, a.Order)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// DefaultAttrs returns the defaults for a shortcode placed in postID.
// html5 selects figure/div/figcaption instead of dl/dt/dd.
func DefaultAttrs(postID int64, html5 bool) Attrs {
	a := Attrs{
		Order:      "ASC",
		OrderBy:    content.DefaultOrderBy,
		ID:         postID,
		ItemTag:    "dl",
		IconTag:    "dt",
		CaptionTag: "dd",
		Columns:    3,
		Size:       namedSizes["thumbnail"],
	}
	if html5 {
		a.ItemTag, a.IconTag, a.CaptionTag = "figure", "div", "figcaption"
	}
	return a
}

// ParseAttrs merges raw shortcode attributes over the defaults. Values
// that fail validation are replaced by their default; nothing is rejected.
func ParseAttrs(raw shortcode.Attrs, postID int64, html5 bool) Attrs {
	def := DefaultAttrs(postID, html5)
	a := def

	if v, ok := raw.Get("order"); ok {
		a.Order = strings.ToUpper(v)
	}
	if v, ok := raw.Get("orderby"); ok && v != "" {
		a.OrderBy = v
	}
	if v, ok := raw.Get("id"); ok {
		a.ID = parseInt(v)
	}
	if v, ok := raw.Get("itemtag"); ok {
		a.ItemTag = v
	}
	if v, ok := raw.Get("icontag"); ok {
		a.IconTag = v
	}
	if v, ok := raw.Get("captiontag"); ok {
		a.CaptionTag = v
	}
	if v, ok := raw.Get("columns"); ok {
		a.Columns = int(parseInt(v))
	}
	if v, ok := raw.Get("size"); ok {
		a.Size = parseSize(v, def.Size)
	}
	if v, ok := raw.Get("include"); ok {
		a.Include = ParseIDs(v)
	}
	if v, ok := raw.Get("exclude"); ok {
		a.Exclude = ParseIDs(v)
	}
	if v, ok := raw.Get("link"); ok {
		a.Link = LinkMode(strings.ToLower(v))
	}

	// Explicit ids win over include and keep their order unless an
	// orderby was given.
	if v, ok := raw.Get("ids"); ok {
		if ids := ParseIDs(v); len(ids) > 0 {
			a.Include = ids
			if ob, ok := raw.Get("orderby"); !ok || ob == "" {
				a.OrderBy = content.FieldPostIn
			}
		}
	}

	v := validatorInstance()
	if v.Var(a.Order, "oneof=ASC DESC") != nil {
		a.Order = def.Order
	}
	if v.Var(a.ID, "gte=0") != nil {
		a.ID = def.ID
	}
	if v.Var(a.Columns, "gte=0") != nil {
		a.Columns = 0
	}
	if v.Var(string(a.Link), "oneof=file none") != nil {
		a.Link = LinkAttachment
	}
	return a
}

// ParseIDs parses a comma or space separated list of positive IDs,
// dropping anything that is not one.
func ParseIDs(s string) []int64 {
	var ids []int64
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if id, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseInt behaves like a lenient integer cast: leading digits count,
// anything else is 0.
func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseSize(s string, fallback Size) Size {
	s = strings.ToLower(strings.TrimSpace(s))
	if named, ok := namedSizes[s]; ok {
		return named
	}
	s = strings.Trim(s, "[]")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == 'x' || r == ',' || r == ' ' })
	if len(parts) == 2 {
		w, h := int(parseInt(parts[0])), int(parseInt(parts[1]))
		if w > 0 && h > 0 {
			return Size{Width: w, Height: h}
		}
	}
	return fallback
}
