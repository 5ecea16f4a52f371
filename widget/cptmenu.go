package widget

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/eringen/pubtheme/content"
)

// KindCPTMenu is the kind of the custom post type menu widget.
const KindCPTMenu = "cpt_menu"

// PostLister lists every published post of a type ordered by title
// ascending. There is no paging; post type sizes are expected to be
// small.
type PostLister interface {
	PublishedByType(ctx context.Context, postType string) ([]content.Post, error)
}

// CPTMenu lists all published posts of a configured type and marks the
// one being viewed.
type CPTMenu struct {
	Posts PostLister
	Links content.Permalinks
}

func (CPTMenu) Kind() string { return KindCPTMenu }
func (CPTMenu) Name() string { return "Custom Post Type Menu" }

func (CPTMenu) Defaults() Settings {
	return Settings{Title: "Custom menu", CustomPostType: content.TypePost}
}

func (m CPTMenu) Update(submitted, _ Settings) Settings {
	out := Settings{
		Title:          StripTags(submitted.Title),
		CustomPostType: StripTags(submitted.CustomPostType),
	}
	if out.CustomPostType == "" {
		out.CustomPostType = m.Defaults().CustomPostType
	}
	return out
}

func (m CPTMenu) Render(ctx context.Context, area Area, inst Instance, current int64) (string, error) {
	postType := inst.Settings.CustomPostType
	if postType == "" {
		postType = m.Defaults().CustomPostType
	}
	posts, err := m.Posts.PublishedByType(ctx, postType)
	if err != nil {
		return "", fmt.Errorf("list %s posts: %w", postType, err)
	}

	typ := html.EscapeString(postType)
	var b strings.Builder
	b.WriteString(area.Title(inst.Settings.Title))
	b.WriteString(`<div class="menu-submenu-` + typ + `-container">`)
	if len(posts) == 0 {
		b.WriteString("</div>")
		return b.String(), nil
	}
	b.WriteString(`<ul id="menu-submenu-` + typ + `" class="menu">`)
	for _, p := range posts {
		id := strconv.FormatInt(p.ID, 10)
		class := "menu-item menu-item-type-post_type menu-item-object-" + typ
		if current != 0 && p.ID == current {
			class += " current-menu-item"
		}
		class += " menu-item-" + id
		fmt.Fprintf(&b, `<li id="menu-item-%s" class="%s"><a href="%s">%s</a></li>`,
			id, class, html.EscapeString(m.Links.Post(p)), html.EscapeString(p.Title))
	}
	b.WriteString("</ul></div>")
	return b.String(), nil
}
