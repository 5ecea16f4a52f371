package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/pubtheme"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/widget"
)

func adminPage(title string, body func(w *writer)) templ.Component {
	return component(func(w *writer) {
		w.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><meta name=\"robots\" content=\"noindex\"><title>")
		w.text(title)
		w.raw("</title><link rel=\"stylesheet\" href=\"/public/theme/style.css\"></head><body class=\"admin\">")
		w.raw("<nav class=\"admin-nav\"><a href=\"/admin/\">Posts</a> <a href=\"/admin/images/\">Images</a> <a href=\"/admin/widgets/\">Widgets</a> <a href=\"/\">View site</a></nav>")
		body(w)
		w.raw("<script src=\"/public/theme/admin.js\"></script></body></html>")
	})
}

func csrfField(w *writer, token string) {
	w.raw("<input type=\"hidden\" name=\"_csrf\"")
	w.attr("value", token)
	w.raw(">")
}

func deleteButton(w *writer, url, csrf, confirm string) {
	w.raw("<button type=\"button\" class=\"delete\"")
	w.attr("data-delete", url)
	w.attr("data-csrf", csrf)
	w.attr("data-confirm", confirm)
	w.raw(">Delete</button>")
}

func input(w *writer, label, typ, name, value string) {
	w.raw("<p><label>")
	w.text(label)
	w.raw(" <input")
	w.attr("type", typ)
	w.attr("name", name)
	w.attr("value", value)
	w.raw("></label></p>")
}

// AdminLogin is the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return component(func(w *writer) {
		w.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><meta name=\"robots\" content=\"noindex\"><title>Log in</title></head><body class=\"admin login\">")
		w.raw("<form method=\"post\" action=\"/admin/login/\">")
		csrfField(w, csrfToken)
		if showError {
			w.raw("<p class=\"error\">Incorrect password.</p>")
		}
		w.raw("<p><label>Password <input type=\"password\" name=\"password\" autofocus required></label></p><button type=\"submit\">Log in</button></form></body></html>")
	})
}

// AdminDashboard lists every post with an editor slot.
func AdminDashboard(posts []content.Post, message string, csrfToken string) templ.Component {
	return adminPage("Dashboard", func(w *writer) {
		w.raw("<h1>Posts</h1>")
		if message != "" {
			w.raw("<p class=\"message\">")
			w.text(message)
			w.raw("</p>")
		}
		w.raw("<p><a href=\"/admin/post/0/\" data-load=\"#editor\">New post</a></p><div id=\"editor\"></div>")
		w.raw("<form method=\"post\" action=\"/admin/logout/\">")
		csrfField(w, csrfToken)
		w.raw("<button type=\"submit\">Log out</button></form>")
		w.raw("<table class=\"posts\"><thead><tr><th>Title</th><th>Type</th><th>Status</th><th>Date</th><th></th></tr></thead><tbody>")
		for _, p := range posts {
			id := strconv.FormatInt(p.ID, 10)
			w.raw("<tr><td><a")
			w.attr("href", "/admin/post/"+id+"/")
			w.raw(" data-load=\"#editor\">")
			w.text(p.Title)
			w.raw("</a></td><td>")
			w.text(p.Type)
			w.raw("</td><td>")
			w.text(p.Status)
			w.raw("</td><td>")
			w.text(p.Date)
			w.raw("</td><td>")
			deleteButton(w, "/admin/post/"+id+"/", csrfToken, "Delete this post?")
			w.raw("</td></tr>")
		}
		w.raw("</tbody></table>")
	})
}

// AdminFormPartial is the post editor fragment loaded into the dashboard.
func AdminFormPartial(post content.Post, terms []content.Term, csrfToken string) templ.Component {
	return component(func(w *writer) {
		w.raw("<form method=\"post\" action=\"/admin/save/\" class=\"post-editor\">")
		csrfField(w, csrfToken)
		w.raw("<input type=\"hidden\" name=\"id\"")
		w.attr("value", strconv.FormatInt(post.ID, 10))
		w.raw(">")
		input(w, "Type", "text", "type", post.Type)
		input(w, "Title", "text", "title", post.Title)
		input(w, "Slug", "text", "slug", post.Slug)
		input(w, "Date", "date", "date", post.Date)
		input(w, "Author", "text", "author", post.Author)
		input(w, "Parent ID", "number", "parent_id", strconv.FormatInt(post.ParentID, 10))
		input(w, "Menu order", "number", "menu_order", strconv.Itoa(post.MenuOrder))
		input(w, "Categories", "text", "categories", pubtheme.TermNames(terms, false))
		input(w, "Tags", "text", "tags", pubtheme.TermNames(terms, true))
		w.raw("<p><label>Excerpt <textarea name=\"excerpt\" rows=\"3\">")
		w.text(post.Excerpt)
		w.raw("</textarea></label></p><p><label>Content <textarea name=\"content\" rows=\"20\">")
		w.text(post.Content)
		w.raw("</textarea></label></p><p><label><input type=\"checkbox\" name=\"published\" value=\"1\"")
		if post.ID == 0 || post.Status == content.StatusPublish {
			w.raw(" checked")
		}
		w.raw("> Published</label></p><button type=\"submit\">Save</button></form>")
	})
}

// AdminImages lists attachments with an upload form.
func AdminImages(images []content.Post, csrfToken string) templ.Component {
	return adminPage("Images", func(w *writer) {
		w.raw("<h1>Images</h1><form method=\"post\" action=\"/admin/images/upload/\" enctype=\"multipart/form-data\">")
		csrfField(w, csrfToken)
		w.raw("<p><input type=\"file\" name=\"image\" accept=\"image/*\" required></p>")
		input(w, "Title", "text", "title", "")
		input(w, "Caption", "text", "caption", "")
		input(w, "Attach to post ID", "number", "parent_id", "")
		input(w, "Menu order", "number", "menu_order", "")
		w.raw("<button type=\"submit\">Upload</button></form><ul class=\"images\">")
		for _, img := range images {
			id := strconv.FormatInt(img.ID, 10)
			w.raw("<li><a")
			w.attr("href", "/attachment/"+id+"/")
			w.raw("><img")
			w.attr("src", "/public/uploads/"+img.File)
			w.attr("alt", img.Title)
			w.raw(" width=\"150\"></a> <code>[gallery ids=&quot;")
			w.raw(id)
			w.raw("&quot;]</code> ")
			w.text(img.Title)
			w.raw(" (" + strconv.Itoa(img.Width) + "&times;" + strconv.Itoa(img.Height) + ", parent " + strconv.FormatInt(img.ParentID, 10) + ") ")
			deleteButton(w, "/admin/images/"+id+"/", csrfToken, "Delete this image?")
			w.raw("</li>")
		}
		w.raw("</ul>")
	})
}

// AdminWidgets shows each widget area with its instances and an add form.
func AdminWidgets(areas []widget.Area, instances []widget.Instance, kinds []string, csrfToken string) templ.Component {
	return adminPage("Widgets", func(w *writer) {
		w.raw("<h1>Widgets</h1>")
		for _, area := range areas {
			w.raw("<section class=\"widget-area-admin\"><h2>")
			w.text(area.Name)
			w.raw("</h2>")
			if area.Description != "" {
				w.raw("<p class=\"description\">")
				w.text(area.Description)
				w.raw("</p>")
			}
			for _, inst := range instances {
				if inst.Area != area.ID {
					continue
				}
				widgetForm(w, area.ID, inst, nil, csrfToken)
			}
			widgetForm(w, area.ID, widget.Instance{}, kinds, csrfToken)
			w.raw("</section>")
		}
	})
}

// widgetForm edits inst, or adds a new instance when kinds is set.
func widgetForm(w *writer, area string, inst widget.Instance, kinds []string, csrf string) {
	w.raw("<form method=\"post\" action=\"/admin/widgets/save/\" class=\"widget-form\">")
	csrfField(w, csrf)
	w.raw("<input type=\"hidden\" name=\"area\"")
	w.attr("value", area)
	w.raw(">")
	if inst.ID != 0 {
		w.raw("<input type=\"hidden\" name=\"id\"")
		w.attr("value", strconv.FormatInt(inst.ID, 10))
		w.raw("><input type=\"hidden\" name=\"kind\"")
		w.attr("value", inst.Kind)
		w.raw("><h3>")
		w.text(inst.Kind)
		w.raw("</h3>")
	} else {
		w.raw("<p><label>Add <select name=\"kind\">")
		for _, k := range kinds {
			w.raw("<option")
			w.attr("value", k)
			w.raw(">")
			w.text(k)
			w.raw("</option>")
		}
		w.raw("</select></label></p>")
	}
	input(w, "Title", "text", "title", inst.Settings.Title)
	input(w, "Post type", "text", "custom_post_type", inst.Settings.CustomPostType)
	input(w, "Taxonomy", "text", "taxonomy", inst.Settings.Taxonomy)
	input(w, "Position", "number", "position", strconv.Itoa(inst.Position))
	w.raw("<button type=\"submit\">Save</button>")
	if inst.ID != 0 {
		w.raw(" ")
		deleteButton(w, "/admin/widgets/"+strconv.FormatInt(inst.ID, 10)+"/", csrf, "Remove this widget?")
	}
	w.raw("</form>")
}
