package catalog

import "sort"

// --------------------------------------------------
// INDEX
// --------------------------------------------------

// Index is a flat arena over a restaurant's menu tree. Built once per
// restaurant fetch and immutable afterwards.
type Index struct {
	nodes map[string]*Node
	roots []string
}

// Build indexes a raw menu. Nodes referenced as children are
// non-roots; everything else is a root. Path tags are assigned
// breadth-first so every node knows all of its ancestor categories.
func Build(menu map[string]MenuRecord) *Index {
	ix := &Index{nodes: make(map[string]*Node, len(menu))}

	referenced := make(map[string]struct{})
	for id, rec := range menu {
		ix.nodes[id] = &Node{
			ID:          id,
			Name:        rec.Info.Name,
			Description: rec.Info.Description,
			Children:    rec.Children,
			Price:       rec.Info.Price,
			BasePoints:  rec.Info.BasePoints,
			PointCost:   rec.Info.PointCost,
			ForDate:     rec.Info.ForDate,
			PathTags:    make(map[string]struct{}),
		}
		for _, child := range rec.Children {
			referenced[child] = struct{}{}
		}
	}

	for id := range ix.nodes {
		if _, ok := referenced[id]; !ok {
			ix.roots = append(ix.roots, id)
		}
	}
	sort.Strings(ix.roots)

	// BFS from the roots, pushing ancestor tags down.
	queue := append([]string(nil), ix.roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node := ix.nodes[id]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			child := ix.nodes[childID]
			if child == nil {
				continue
			}
			for tag := range node.PathTags {
				child.PathTags[tag] = struct{}{}
			}
			child.PathTags[id] = struct{}{}
			queue = append(queue, childID)
		}
	}

	return ix
}

// Node looks up a node by id. Returns nil for unknown ids; callers
// must treat nil as "item unavailable", never as a fault.
func (ix *Index) Node(id string) *Node {
	if ix == nil {
		return nil
	}
	return ix.nodes[id]
}

// ItemsUnder walks the tree from the given category or item id and
// returns every priceable leaf underneath it, in traversal order.
// A priced node is a result and is not expanded further.
func (ix *Index) ItemsUnder(id string) []string {
	start := ix.Node(id)
	if start == nil {
		return nil
	}

	var out []string
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		node := ix.nodes[cur]
		if node == nil {
			continue
		}
		if node.Priceable() {
			out = append(out, cur)
			continue
		}
		queue = append(queue, node.Children...)
	}
	return out
}

// ResolveItemSpecs unions ItemsUnder over each spec. Date-scoped items
// (passes carrying a for_date) are stably sorted ascending by that date
// and placed after the undated items, which keep traversal order. The
// "earliest expiring first" ordering is load-bearing for pass display
// and free-item tie-breaks.
func (ix *Index) ResolveItemSpecs(specs []string) []string {
	seen := make(map[string]struct{})
	var undated, dated []string

	for _, spec := range specs {
		for _, id := range ix.ItemsUnder(spec) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if node := ix.nodes[id]; node != nil && node.ForDate != nil {
				dated = append(dated, id)
			} else {
				undated = append(undated, id)
			}
		}
	}

	sort.SliceStable(dated, func(a, b int) bool {
		return ix.nodes[dated[a]].ForDate.Before(*ix.nodes[dated[b]].ForDate)
	})

	return append(undated, dated...)
}

// Matches reports whether the item id satisfies any of the given item
// specs (a spec is either the id itself or an ancestor category).
func (ix *Index) Matches(itemID string, specs []string) bool {
	node := ix.Node(itemID)
	if node == nil {
		return false
	}
	for _, spec := range specs {
		if node.Under(spec) {
			return true
		}
	}
	return false
}
