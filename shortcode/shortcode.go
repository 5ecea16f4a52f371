// Package shortcode expands bracketed tags such as [gallery ids="1,2"]
// inside post content by dispatching to registered handlers.
package shortcode

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Attrs is the raw attribute set of one shortcode occurrence. Keys are
// lower-cased; positional values are stored under "0", "1", ...
type Attrs map[string]string

// Get returns the trimmed value of key and whether it was present.
func (a Attrs) Get(key string) (string, bool) {
	v, ok := a[key]
	return strings.TrimSpace(v), ok
}

// Env is the per-request render environment shared by every shortcode
// expanded while building one page.
type Env struct {
	PostID    int64 // post whose content is being expanded
	Feed      bool  // rendering a syndication feed
	Instances *Counter
}

// NewEnv returns an Env with a fresh instance counter.
func NewEnv(postID int64, feed bool) *Env {
	return &Env{PostID: postID, Feed: feed, Instances: NewCounter()}
}

// For returns an Env for another post of the same request. The instance
// counter is shared.
func (e *Env) For(postID int64) *Env {
	return &Env{PostID: postID, Feed: e.Feed, Instances: e.Instances}
}

// Counter hands out monotonically increasing instance numbers per tag.
// It belongs to a single request and is not safe for concurrent use.
type Counter struct {
	n map[string]int
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{n: make(map[string]int)}
}

// Next returns the next instance number for tag, starting at 1.
func (c *Counter) Next(tag string) int {
	c.n[tag]++
	return c.n[tag]
}

// Handler renders one shortcode occurrence to HTML.
type Handler interface {
	Render(ctx context.Context, env *Env, attrs Attrs, body string) (string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, env *Env, attrs Attrs, body string) (string, error)

// Render calls f.
func (f HandlerFunc) Render(ctx context.Context, env *Env, attrs Attrs, body string) (string, error) {
	return f(ctx, env, attrs, body)
}

var (
	reAttrDouble = regexp.MustCompile(`^([\w-]+)\s*=\s*"([^"]*)"`)
	reAttrSingle = regexp.MustCompile(`^([\w-]+)\s*=\s*'([^']*)'`)
	reAttrBare   = regexp.MustCompile(`^([\w-]+)\s*=\s*([^\s'"]+)`)
	reValDouble  = regexp.MustCompile(`^"([^"]*)"`)
	reValSingle  = regexp.MustCompile(`^'([^']*)'`)
	reValBare    = regexp.MustCompile(`^(\S+)`)
)

// ParseAttrs parses the attribute text between the tag name and the
// closing bracket.
func ParseAttrs(text string) Attrs {
	attrs := Attrs{}
	pos := 0
	text = strings.TrimSpace(text)
	for text != "" {
		var m []string
		switch {
		case reAttrDouble.MatchString(text):
			m = reAttrDouble.FindStringSubmatch(text)
			attrs[strings.ToLower(m[1])] = m[2]
		case reAttrSingle.MatchString(text):
			m = reAttrSingle.FindStringSubmatch(text)
			attrs[strings.ToLower(m[1])] = m[2]
		case reAttrBare.MatchString(text):
			m = reAttrBare.FindStringSubmatch(text)
			attrs[strings.ToLower(m[1])] = m[2]
		case reValDouble.MatchString(text):
			m = reValDouble.FindStringSubmatch(text)
			attrs[strconv.Itoa(pos)] = m[1]
			pos++
		case reValSingle.MatchString(text):
			m = reValSingle.FindStringSubmatch(text)
			attrs[strconv.Itoa(pos)] = m[1]
			pos++
		default:
			m = reValBare.FindStringSubmatch(text)
			attrs[strconv.Itoa(pos)] = m[1]
			pos++
		}
		text = strings.TrimSpace(text[len(m[0]):])
	}
	return attrs
}

// Registry maps shortcode tags to handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds tag to h, replacing any previous handler.
func (r *Registry) Register(tag string, h Handler) {
	r.handlers[strings.ToLower(tag)] = h
}

// Remove unbinds tag.
func (r *Registry) Remove(tag string) {
	delete(r.handlers, strings.ToLower(tag))
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	_, ok := r.handlers[strings.ToLower(tag)]
	return ok
}

// Tags returns the registered tag names.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		tags = append(tags, t)
	}
	return tags
}

// Expand replaces every registered shortcode in text with its handler's
// output. Unregistered tags are left untouched, [[tag]] escapes to the
// literal [tag], and a failing handler renders nothing.
func (r *Registry) Expand(ctx context.Context, env *Env, text string) string {
	if !strings.Contains(text, "[") || len(r.handlers) == 0 {
		return text
	}
	var b strings.Builder
	for {
		occ, ok := r.next(text)
		if !ok {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:occ.start])
		if occ.escaped {
			b.WriteString(text[occ.start+1 : occ.end-1])
		} else {
			b.WriteString(r.render(ctx, env, occ))
		}
		text = text[occ.end:]
	}
}

func (r *Registry) render(ctx context.Context, env *Env, occ occurrence) string {
	out, err := r.handlers[occ.tag].Render(ctx, env, occ.attrs, occ.body)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("shortcode", occ.tag).Int64("post_id", env.PostID).Msg("shortcode render failed")
		return ""
	}
	return out
}

type occurrence struct {
	start, end int
	tag        string
	attrs      Attrs
	body       string
	escaped    bool
}

// next finds the first registered shortcode in text.
func (r *Registry) next(text string) (occurrence, bool) {
	offset := 0
	for {
		i := strings.IndexByte(text[offset:], '[')
		if i < 0 {
			return occurrence{}, false
		}
		start := offset + i
		if occ, ok := r.parseAt(text, start); ok {
			return occ, true
		}
		offset = start + 1
	}
}

func (r *Registry) parseAt(text string, start int) (occurrence, bool) {
	j := start + 1
	for j < len(text) && isTagByte(text[j]) {
		j++
	}
	tag := strings.ToLower(text[start+1 : j])
	if tag == "" || !r.Has(tag) {
		return occurrence{}, false
	}
	if j < len(text) && text[j] != ']' && text[j] != '/' && text[j] != ' ' && text[j] != '\t' && text[j] != '\n' {
		return occurrence{}, false
	}
	closeAt := findClose(text, j)
	if closeAt < 0 {
		return occurrence{}, false
	}
	inner := text[j:closeAt]
	selfClosing := strings.HasSuffix(strings.TrimSpace(inner), "/")
	inner = strings.TrimSuffix(strings.TrimSpace(inner), "/")
	occ := occurrence{start: start, end: closeAt + 1, tag: tag, attrs: ParseAttrs(inner)}

	if !selfClosing {
		closing := "[/" + tag + "]"
		if k := strings.Index(strings.ToLower(text[occ.end:]), closing); k >= 0 {
			occ.body = text[occ.end : occ.end+k]
			occ.end += k + len(closing)
		}
	}
	if start > 0 && text[start-1] == '[' && occ.end < len(text) && text[occ.end] == ']' {
		occ.start--
		occ.end++
		occ.escaped = true
	}
	return occ, true
}

// findClose returns the index of the ']' ending the opening tag, skipping
// brackets inside quoted attribute values.
func findClose(text string, from int) int {
	var quote byte
	for i := from; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			return -1
		case c == ']':
			return i
		}
	}
	return -1
}

func isTagByte(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
