package gallery

import (
	"html"
	"strconv"
	"strings"

	"github.com/eringen/pubtheme/content"
)

// Orientation returns "portrait" or "landscape" from the stored pixel
// dimensions, or "" when they are unknown.
func Orientation(p content.Post) string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}
	if p.Height > p.Width {
		return "portrait"
	}
	return "landscape"
}

// DisplaySize returns the rendered width and height of p at size.
// Thumbnails are cropped to their box; other sizes fit inside it.
func DisplaySize(p content.Post, size Size) (int, int) {
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 || size.Width <= 0 || size.Height <= 0 {
		return w, h
	}
	if size.Name == "thumbnail" {
		return min(size.Width, w), min(size.Height, h)
	}
	if w <= size.Width && h <= size.Height {
		return w, h
	}
	if w*size.Height > h*size.Width {
		return size.Width, h * size.Width / w
	}
	return w * size.Height / h, size.Height
}

func imageTag(links content.Permalinks, p content.Post, size Size, describedBy string) string {
	var b strings.Builder
	b.WriteString("<img")
	if w, h := DisplaySize(p, size); w > 0 && h > 0 {
		b.WriteString(` width="` + strconv.Itoa(w) + `" height="` + strconv.Itoa(h) + `"`)
	}
	class := size.Class()
	b.WriteString(` src="` + html.EscapeString(links.File(p)) + `"`)
	b.WriteString(` class="attachment-` + class + ` size-` + class + `"`)
	b.WriteString(` alt="` + html.EscapeString(p.Title) + `"`)
	if describedBy != "" {
		b.WriteString(` aria-describedby="` + describedBy + `"`)
	}
	b.WriteString(" />")
	return b.String()
}

func linkTo(href, inner string) string {
	return "<a href='" + html.EscapeString(href) + "'>" + inner + "</a>"
}

var entityEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Texturize escapes s and replaces plain punctuation with typographic
// entities: ellipses, dashes and curly quotes. Quote direction is decided
// on the unescaped text.
func Texturize(s string) string {
	var q strings.Builder
	prev := ' '
	for _, r := range s {
		switch r {
		case '"':
			if isOpeningContext(prev) {
				q.WriteRune('\u201c')
			} else {
				q.WriteRune('\u201d')
			}
		case '\'':
			if isOpeningContext(prev) {
				q.WriteRune('\u2018')
			} else {
				q.WriteRune('\u2019')
			}
		default:
			q.WriteRune(r)
		}
		prev = r
	}

	s = entityEscaper.Replace(q.String())
	return strings.NewReplacer(
		"...", "&#8230;",
		"---", "&#8212;",
		" -- ", " &#8212; ",
		"--", "&#8211;",
		" - ", " &#8211; ",
		"\u201c", "&#8220;",
		"\u201d", "&#8221;",
		"\u2018", "&#8216;",
		"\u2019", "&#8217;",
	).Replace(s)
}

func isOpeningContext(prev rune) bool {
	switch prev {
	case ' ', '\t', '\n', '(', '[', '{', '-':
		return true
	}
	return false
}
