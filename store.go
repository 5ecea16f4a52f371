package pubtheme

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/pubtheme/breadcrumb"
	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/gallery"
	"github.com/eringen/pubtheme/widget"
)

// Store wraps a SQLite database holding posts, attachments, taxonomy
// terms and widget instances.
type Store struct {
	db *sql.DB
}

var (
	_ gallery.AttachmentSource = (*Store)(nil)
	_ breadcrumb.Source        = (*Store)(nil)
	_ widget.PostLister        = (*Store)(nil)
	_ widget.TermCounter       = (*Store)(nil)
)

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during admin writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type TEXT NOT NULL DEFAULT 'post',
    status TEXT NOT NULL DEFAULT 'publish',
    parent_id INTEGER NOT NULL DEFAULT 0,
    author TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    slug TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    menu_order INTEGER NOT NULL DEFAULT 0,
    date TEXT NOT NULL DEFAULT '',
    modified TEXT NOT NULL DEFAULT '',
    mime_type TEXT NOT NULL DEFAULT '',
    file TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS posts_type_slug ON posts (type, slug);
CREATE INDEX IF NOT EXISTS posts_parent ON posts (parent_id, type);
CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taxonomy TEXT NOT NULL,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    parent_id INTEGER NOT NULL DEFAULT 0,
    UNIQUE (taxonomy, slug)
);
CREATE TABLE IF NOT EXISTS term_relationships (
    post_id INTEGER NOT NULL,
    term_id INTEGER NOT NULL,
    PRIMARY KEY (post_id, term_id)
);
CREATE TABLE IF NOT EXISTS widgets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    area TEXT NOT NULL,
    kind TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    settings TEXT NOT NULL DEFAULT '{}'
);
`)
	return err
}

const postColumns = `id, type, status, parent_id, author, title, slug, content, excerpt, menu_order, date, modified, mime_type, file, width, height`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (content.Post, error) {
	var p content.Post
	err := r.Scan(&p.ID, &p.Type, &p.Status, &p.ParentID, &p.Author, &p.Title, &p.Slug, &p.Content,
		&p.Excerpt, &p.MenuOrder, &p.Date, &p.Modified, &p.MimeType, &p.File, &p.Width, &p.Height)
	return p, err
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]content.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

var orderColumns = map[string]string{
	content.FieldMenuOrder: "menu_order",
	content.FieldID:        "id",
	content.FieldTitle:     "title",
	content.FieldDate:      "date",
	content.FieldName:      "slug",
	content.FieldModified:  "modified",
	content.FieldPostIn:    "id",
}

// orderClause renders o as ORDER BY. Columns come from a fixed table so
// the result is safe to splice into SQL.
func orderClause(o content.Order) string {
	dir := " ASC"
	if o.Desc {
		dir = " DESC"
	}
	var parts []string
	for _, f := range o.Fields {
		if f == content.FieldRand {
			parts = append(parts, "RANDOM()")
			continue
		}
		if col, ok := orderColumns[f]; ok {
			parts = append(parts, col+dir)
		}
	}
	if len(parts) == 0 {
		parts = []string{"menu_order" + dir, "id" + dir}
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// Post returns the post with id regardless of status.
func (s *Store) Post(ctx context.Context, id int64) (content.Post, error) {
	return scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

// PostBySlug returns the post of postType with slug regardless of status.
func (s *Store) PostBySlug(ctx context.Context, postType, slug string) (content.Post, error) {
	return scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE type = ? AND slug = ? ORDER BY id LIMIT 1`, postType, slug))
}

// Published returns published posts of postType, newest first.
func (s *Store) Published(ctx context.Context, postType string) ([]content.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE type = ? AND status = ? ORDER BY date DESC, id DESC`,
		postType, content.StatusPublish)
}

// PublishedByType returns every published post of postType ordered by
// title ascending.
func (s *Store) PublishedByType(ctx context.Context, postType string) ([]content.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE type = ? AND status = ? ORDER BY title COLLATE NOCASE ASC, id ASC`,
		postType, content.StatusPublish)
}

// ListAllPosts returns every non-attachment post for the admin dashboard.
func (s *Store) ListAllPosts(ctx context.Context) ([]content.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE type != ? ORDER BY date DESC, id DESC`, content.TypeAttachment)
}

// Search returns published posts and pages whose title or content
// contains q.
func (s *Store) Search(ctx context.Context, q string) ([]content.Post, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	like := "%" + strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(q) + "%"
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
		WHERE status = ? AND type != ? AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')
		ORDER BY date DESC, id DESC`, content.StatusPublish, content.TypeAttachment, like, like)
}

// ByYear returns published posts dated in year.
func (s *Store) ByYear(ctx context.Context, year string) ([]content.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE type = ? AND status = ? AND substr(date, 1, 4) = ? ORDER BY date DESC, id DESC`,
		content.TypePost, content.StatusPublish, year)
}

// AuthorCount returns the number of distinct authors with published posts.
func (s *Store) AuthorCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT author) FROM posts WHERE status = ? AND type = ? AND author != ''`,
		content.StatusPublish, content.TypePost).Scan(&n)
	return n, err
}

// SavePost inserts p when its ID is 0, assigning the new ID, or updates
// the existing row.
func (s *Store) SavePost(ctx context.Context, p *content.Post) error {
	now := time.Now().UTC().Format("2006-01-02")
	if p.Date == "" {
		p.Date = now
	}
	p.Modified = now
	if p.Type == "" {
		p.Type = content.TypePost
	}
	if p.Status == "" {
		p.Status = content.StatusPublish
	}
	args := []any{p.Type, p.Status, p.ParentID, p.Author, p.Title, p.Slug, p.Content, p.Excerpt,
		p.MenuOrder, p.Date, p.Modified, p.MimeType, p.File, p.Width, p.Height}

	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx, `INSERT INTO posts (type, status, parent_id, author, title, slug, content, excerpt,
			menu_order, date, modified, mime_type, file, width, height) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		p.ID, err = res.LastInsertId()
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET type = ?, status = ?, parent_id = ?, author = ?, title = ?, slug = ?,
		content = ?, excerpt = ?, menu_order = ?, date = ?, modified = ?, mime_type = ?, file = ?, width = ?, height = ?
		WHERE id = ?`, append(args, p.ID)...)
	if err != nil {
		return fmt.Errorf("update post %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post and its term relationships.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM term_relationships WHERE post_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ChildAttachments returns image attachments whose parent is parentID,
// minus exclude, sorted by o.
func (s *Store) ChildAttachments(ctx context.Context, parentID int64, exclude []int64, o content.Order) ([]content.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE type = ? AND parent_id = ? AND mime_type LIKE 'image/%'`
	args := []any{content.TypeAttachment, parentID}
	if len(exclude) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(exclude)) + `)`
		args = append(args, int64Args(exclude)...)
	}
	return s.queryPosts(ctx, query+orderClause(o), args...)
}

// AttachmentsByID returns the attachments among ids sorted by o. Missing
// IDs are skipped.
func (s *Store) AttachmentsByID(ctx context.Context, ids []int64, o content.Order) ([]content.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE type = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := append([]any{content.TypeAttachment}, int64Args(ids)...)
	return s.queryPosts(ctx, query+orderClause(o), args...)
}

// Attachments returns every attachment, newest first.
func (s *Store) Attachments(ctx context.Context) ([]content.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE type = ? ORDER BY id DESC`, content.TypeAttachment)
}

// AttachmentFileExists reports whether an attachment already uses file.
func (s *Store) AttachmentFileExists(ctx context.Context, file string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE type = ? AND file = ?`, content.TypeAttachment, file).Scan(&n)
	return n > 0, err
}

const termColumns = `id, taxonomy, name, slug, parent_id`

func scanTerm(r rowScanner) (content.Term, error) {
	var t content.Term
	err := r.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.ParentID)
	return t, err
}

func (s *Store) queryTerms(ctx context.Context, query string, args ...any) ([]content.Term, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []content.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// Term returns the term with id.
func (s *Store) Term(ctx context.Context, id int64) (content.Term, error) {
	return scanTerm(s.db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM terms WHERE id = ?`, id))
}

// TermBySlug returns the term of taxonomy with slug.
func (s *Store) TermBySlug(ctx context.Context, taxonomy, slug string) (content.Term, error) {
	return scanTerm(s.db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM terms WHERE taxonomy = ? AND slug = ?`, taxonomy, slug))
}

// Terms returns every term of taxonomy ordered by name.
func (s *Store) Terms(ctx context.Context, taxonomy string) ([]content.Term, error) {
	return s.queryTerms(ctx, `SELECT `+termColumns+` FROM terms WHERE taxonomy = ? ORDER BY name COLLATE NOCASE`, taxonomy)
}

// SaveTerm inserts t or, when a term with the same taxonomy and slug
// exists, updates it. t.ID is set either way.
func (s *Store) SaveTerm(ctx context.Context, t *content.Term) error {
	err := s.db.QueryRowContext(ctx, `INSERT INTO terms (taxonomy, name, slug, parent_id) VALUES (?, ?, ?, ?)
		ON CONFLICT (taxonomy, slug) DO UPDATE SET name = excluded.name, parent_id = excluded.parent_id
		RETURNING id`, t.Taxonomy, t.Name, t.Slug, t.ParentID).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("save term %s/%s: %w", t.Taxonomy, t.Slug, err)
	}
	return nil
}

// PostTerms returns the terms of taxonomy attached to postID, by name.
func (s *Store) PostTerms(ctx context.Context, postID int64, taxonomy string) ([]content.Term, error) {
	return s.queryTerms(ctx, `SELECT t.id, t.taxonomy, t.name, t.slug, t.parent_id FROM terms t
		JOIN term_relationships r ON r.term_id = t.id
		WHERE r.post_id = ? AND t.taxonomy = ? ORDER BY t.name COLLATE NOCASE`, postID, taxonomy)
}

// SetPostTerms replaces the terms of taxonomy attached to postID.
func (s *Store) SetPostTerms(ctx context.Context, postID int64, taxonomy string, termIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM term_relationships WHERE post_id = ?
		AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)`, postID, taxonomy); err != nil {
		return err
	}
	for _, id := range termIDs {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO term_relationships (post_id, term_id) VALUES (?, ?)`, postID, id); err != nil {
			return fmt.Errorf("attach term %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// PostsByTerm returns published posts attached to termID, newest first.
func (s *Store) PostsByTerm(ctx context.Context, termID int64) ([]content.Post, error) {
	return s.queryPosts(ctx, `SELECT `+prefixed("p.", postColumns)+` FROM posts p
		JOIN term_relationships r ON r.post_id = p.id
		WHERE r.term_id = ? AND p.status = ? ORDER BY p.date DESC, p.id DESC`, termID, content.StatusPublish)
}

// TermCounts returns the used terms of taxonomy with their published
// post counts, by name.
func (s *Store) TermCounts(ctx context.Context, taxonomy string) ([]widget.TermCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.taxonomy, t.name, t.slug, t.parent_id, COUNT(p.id) FROM terms t
		JOIN term_relationships r ON r.term_id = t.id
		JOIN posts p ON p.id = r.post_id AND p.status = ?
		WHERE t.taxonomy = ? GROUP BY t.id ORDER BY t.name COLLATE NOCASE`, content.StatusPublish, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []widget.TermCount
	for rows.Next() {
		var tc widget.TermCount
		if err := rows.Scan(&tc.Term.ID, &tc.Term.Taxonomy, &tc.Term.Name, &tc.Term.Slug, &tc.Term.ParentID, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func prefixed(prefix, columns string) string {
	cols := strings.Split(columns, ", ")
	for i := range cols {
		cols[i] = prefix + cols[i]
	}
	return strings.Join(cols, ", ")
}

// Widgets returns every widget instance ordered by area and position.
func (s *Store) Widgets(ctx context.Context) ([]widget.Instance, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, area, kind, position, settings FROM widgets ORDER BY area, position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []widget.Instance
	for rows.Next() {
		var w widget.Instance
		var settings string
		if err := rows.Scan(&w.ID, &w.Area, &w.Kind, &w.Position, &settings); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(settings), &w.Settings); err != nil {
			return nil, fmt.Errorf("decode widget %d settings: %w", w.ID, err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SaveWidget inserts or updates a widget instance.
func (s *Store) SaveWidget(ctx context.Context, w *widget.Instance) error {
	settings, err := json.Marshal(w.Settings)
	if err != nil {
		return err
	}
	if w.ID == 0 {
		res, err := s.db.ExecContext(ctx, `INSERT INTO widgets (area, kind, position, settings) VALUES (?, ?, ?, ?)`,
			w.Area, w.Kind, w.Position, string(settings))
		if err != nil {
			return fmt.Errorf("insert widget: %w", err)
		}
		w.ID, err = res.LastInsertId()
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE widgets SET area = ?, kind = ?, position = ?, settings = ? WHERE id = ?`,
		w.Area, w.Kind, w.Position, string(settings), w.ID)
	if err != nil {
		return fmt.Errorf("update widget %d: %w", w.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWidget removes a widget instance.
func (s *Store) DeleteWidget(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM widgets WHERE id = ?`, id)
	return err
}
