package gallery

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// Fallback wrapper tags used when a requested tag is not allowed.
const (
	fallbackItemTag    = "dl"
	fallbackIconTag    = "dt"
	fallbackCaptionTag = "dd"
)

// allowedTags is the set of elements permitted in post content.
var allowedTags = map[atom.Atom]bool{
	atom.Address: true, atom.A: true, atom.Abbr: true,
	atom.Area: true, atom.Article: true, atom.Aside: true, atom.Audio: true,
	atom.B: true, atom.Bdo: true, atom.Big: true, atom.Blockquote: true,
	atom.Br: true, atom.Button: true, atom.Caption: true, atom.Cite: true,
	atom.Code: true, atom.Col: true, atom.Colgroup: true, atom.Del: true,
	atom.Dd: true, atom.Dfn: true, atom.Details: true, atom.Div: true,
	atom.Dl: true, atom.Dt: true, atom.Em: true, atom.Fieldset: true,
	atom.Figure: true, atom.Figcaption: true, atom.Font: true, atom.Footer: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hgroup: true, atom.Hr: true, atom.I: true,
	atom.Img: true, atom.Ins: true, atom.Kbd: true, atom.Label: true,
	atom.Legend: true, atom.Li: true, atom.Main: true, atom.Map: true,
	atom.Mark: true, atom.Menu: true, atom.Nav: true, atom.Object: true,
	atom.P: true, atom.Pre: true, atom.Q: true, atom.Rb: true, atom.Rp: true,
	atom.Rt: true, atom.Rtc: true, atom.Ruby: true, atom.S: true, atom.Samp: true,
	atom.Span: true, atom.Section: true, atom.Small: true, atom.Strike: true,
	atom.Strong: true, atom.Sub: true, atom.Summary: true, atom.Sup: true,
	atom.Table: true, atom.Tbody: true, atom.Td: true, atom.Textarea: true,
	atom.Tfoot: true, atom.Th: true, atom.Thead: true, atom.Title: true,
	atom.Tr: true, atom.Track: true, atom.Tt: true, atom.U: true, atom.Ul: true,
	atom.Ol: true, atom.Var: true, atom.Video: true,
}

// escapeTag lower-cases name and strips everything outside [a-z0-9_:].
func escapeTag(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == ':' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// allowedTag returns the escaped tag if it is a permitted element,
// otherwise fallback.
func allowedTag(name, fallback string) string {
	tag := escapeTag(name)
	if a := atom.Lookup([]byte(tag)); a != 0 && allowedTags[a] {
		return a.String()
	}
	return fallback
}

// sanitizeClass keeps only characters valid in an HTML class token.
func sanitizeClass(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
