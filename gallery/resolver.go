package gallery

import (
	"context"
	"fmt"

	"github.com/eringen/pubtheme/content"
)

// AttachmentSource is the read-only storage the resolver queries. Both
// methods return only image attachments visible to readers.
type AttachmentSource interface {
	// AttachmentsByID returns the attachments among ids, sorted by order.
	AttachmentsByID(ctx context.Context, ids []int64, order content.Order) ([]content.Post, error)
	// ChildAttachments returns the attachments of parentID minus exclude.
	ChildAttachments(ctx context.Context, parentID int64, exclude []int64, order content.Order) ([]content.Post, error)
}

// Collection is an ordered set of attachments, unique by ID.
type Collection struct {
	items []content.Post
}

// NewCollection builds a Collection, keeping the first occurrence of
// each ID.
func NewCollection(posts []content.Post) Collection {
	seen := make(map[int64]bool, len(posts))
	items := make([]content.Post, 0, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		items = append(items, p)
	}
	return Collection{items: items}
}

// IsEmpty reports whether nothing matched.
func (c Collection) IsEmpty() bool { return len(c.items) == 0 }

// Len returns the number of attachments.
func (c Collection) Len() int { return len(c.items) }

// Items returns the attachments in render order.
func (c Collection) Items() []content.Post { return c.items }

// IDs returns the attachment IDs in render order.
func (c Collection) IDs() []int64 {
	ids := make([]int64, len(c.items))
	for i, p := range c.items {
		ids[i] = p.ID
	}
	return ids
}

// Resolver turns shortcode attributes into an attachment collection.
type Resolver struct {
	Source AttachmentSource
}

// Resolve fetches the attachments selected by a. An empty Collection is
// the no-match result; errors come only from the source.
func (r Resolver) Resolve(ctx context.Context, a Attrs) (Collection, error) {
	order := a.SortOrder()
	var (
		posts []content.Post
		err   error
	)
	switch {
	case len(a.Include) > 0:
		posts, err = r.Source.AttachmentsByID(ctx, a.Include, order)
		if err == nil && order.Explicit() {
			posts = inListOrder(posts, a.Include)
		}
	default:
		posts, err = r.Source.ChildAttachments(ctx, a.ID, a.Exclude, order)
	}
	if err != nil {
		return Collection{}, fmt.Errorf("resolve attachments: %w", err)
	}

	images := posts[:0:0]
	for _, p := range posts {
		if p.IsImage() && p.Visible() {
			images = append(images, p)
		}
	}
	return NewCollection(images), nil
}

// inListOrder sorts posts to follow ids.
func inListOrder(posts []content.Post, ids []int64) []content.Post {
	byID := make(map[int64]content.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	out := make([]content.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out
}
