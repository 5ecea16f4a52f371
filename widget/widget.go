// Package widget renders widget areas and the widgets placed in them.
package widget

import (
	"context"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// Area is a named widget area. BeforeWidget may contain the {id} and
// {class} placeholders.
type Area struct {
	ID           string
	Name         string
	Description  string
	BeforeWidget string
	AfterWidget  string
	BeforeTitle  string
	AfterTitle   string
}

// DefaultAreas returns the theme's sidebars followed by its footer areas.
func DefaultAreas() []Area {
	areas := make([]Area, 0, 8)
	for i := 1; i <= 3; i++ {
		n := strconv.Itoa(i)
		areas = append(areas, Area{
			ID:           "sidebar-" + n,
			Name:         "Sidebar " + n,
			Description:  "Add widgets here to appear in your sidebar.",
			BeforeWidget: `<section id="{id}" class="widget {class}">`,
			AfterWidget:  "</section>",
			BeforeTitle:  `<h2 class="widget-title">`,
			AfterTitle:   "</h2>",
		})
	}
	for i := 1; i <= 5; i++ {
		n := strconv.Itoa(i)
		areas = append(areas, Area{
			ID:           "footer-sidebar-" + n,
			Name:         "Footer Sidebar " + n,
			Description:  "Appears in the footer section of the site.",
			BeforeWidget: `<aside id="{id}" class="widget {class}">`,
			AfterWidget:  "</aside>",
			BeforeTitle:  `<h3 class="widget-title">`,
			AfterTitle:   "</h3>",
		})
	}
	return areas
}

// Open returns the opening wrapper for a widget.
func (a Area) Open(id, class string) string {
	return strings.NewReplacer("{id}", id, "{class}", class).Replace(a.BeforeWidget)
}

// Title wraps an escaped widget title, or returns "" for a blank one.
func (a Area) Title(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}
	return a.BeforeTitle + html.EscapeString(title) + a.AfterTitle
}

// Settings are the persisted options of a widget instance.
type Settings struct {
	Title          string `json:"title" yaml:"title" validate:"max=200"`
	CustomPostType string `json:"custom_post_type,omitempty" yaml:"custom_post_type" validate:"max=40"`
	Taxonomy       string `json:"taxonomy,omitempty" yaml:"taxonomy" validate:"max=32"`
}

// Instance is a widget placed in an area.
type Instance struct {
	ID       int64
	Area     string
	Kind     string
	Position int
	Settings Settings
}

// HTMLID returns the element id of the instance.
func (i Instance) HTMLID() string {
	return i.Kind + "-" + strconv.FormatInt(i.ID, 10)
}

// Widget is a kind of display unit.
type Widget interface {
	Kind() string
	Name() string
	// Render returns the widget body. current is the ID of the viewed
	// post, or 0.
	Render(ctx context.Context, area Area, inst Instance, current int64) (string, error)
	Defaults() Settings
	// Update sanitizes submitted settings before they are stored.
	Update(submitted, old Settings) Settings
}

// Registry maps widget kinds to implementations.
type Registry struct {
	widgets map[string]Widget
}

// NewRegistry returns a registry holding ws.
func NewRegistry(ws ...Widget) *Registry {
	r := &Registry{widgets: make(map[string]Widget)}
	for _, w := range ws {
		r.Register(w)
	}
	return r
}

// Register adds or replaces w under its kind.
func (r *Registry) Register(w Widget) { r.widgets[w.Kind()] = w }

// Lookup returns the widget for kind.
func (r *Registry) Lookup(kind string) (Widget, bool) {
	w, ok := r.widgets[kind]
	return w, ok
}

// Kinds returns the registered kinds sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.widgets))
	for k := range r.widgets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RenderArea renders the instances placed in area in position order.
// Unknown kinds and failing widgets are logged and skipped. An area
// without instances renders "".
func (r *Registry) RenderArea(ctx context.Context, area Area, instances []Instance, current int64) string {
	placed := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.Area == area.ID {
			placed = append(placed, inst)
		}
	}
	sort.SliceStable(placed, func(i, j int) bool { return placed[i].Position < placed[j].Position })

	log := zerolog.Ctx(ctx)
	var b strings.Builder
	for _, inst := range placed {
		w, ok := r.Lookup(inst.Kind)
		if !ok {
			log.Warn().Str("kind", inst.Kind).Int64("widget", inst.ID).Msg("unknown widget kind")
			continue
		}
		body, err := w.Render(ctx, area, inst, current)
		if err != nil {
			log.Warn().Err(err).Str("kind", inst.Kind).Int64("widget", inst.ID).Msg("widget render failed")
			continue
		}
		b.WriteString(area.Open(inst.HTMLID(), "widget_"+inst.Kind))
		b.WriteString(body)
		b.WriteString(area.AfterWidget)
	}
	return b.String()
}

var strict = bluemonday.StrictPolicy()

// StripTags removes all markup from s and trims it. Entities are decoded
// and the text sanitized again until nothing changes, so encoded tags
// cannot survive as markup.
func StripTags(s string) string {
	text := html.UnescapeString(s)
	for i := 0; i < 8; i++ {
		next := html.UnescapeString(strict.Sanitize(text))
		if next == text {
			break
		}
		text = next
	}
	return strings.TrimSpace(text)
}
