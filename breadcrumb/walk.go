package breadcrumb

import "context"

// visited is the set of node IDs already on the current walk.
type visited map[int64]bool

func newVisited() visited { return make(visited) }

func (v visited) add(id int64) { v[id] = true }

type node struct {
	id     int64
	parent int64
	seg    Segment
}

// walk follows parent pointers from start and returns the segments root
// first. It stops at parent 0, at a node that is its own parent, at a
// node already in seen, or at a failed lookup (logged, chain kept).
func walk(ctx context.Context, start int64, seen visited, lookup func(context.Context, int64) (node, error)) []Segment {
	var chain []Segment
	for id := start; id != 0; {
		if seen[id] {
			break
		}
		seen.add(id)
		n, err := lookup(ctx, id)
		if err != nil {
			logMissing(ctx, err, "parent", id)
			break
		}
		chain = append(chain, n.seg)
		if n.parent == n.id {
			break
		}
		id = n.parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
