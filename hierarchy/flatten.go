package hierarchy

// Flatten converts a sequence of topology nodes into an ordered flat list of
// account ids by pre-order traversal along the given axis: each node's own id
// first, then its children, then the next sibling. Duplicate appearances of
// an account at distinct tree positions are preserved in traversal order.
//
// The remote data is expected to be acyclic but is not trusted to be: an id
// reappearing on its own ancestor path cuts that branch, and traversal stops
// descending past DefaultMaxTraversalDepth. Both degrade the result rather
// than raising an error.
func Flatten(nodes []Node, axis Axis) []string {
	return flattenWithDepth(nodes, axis, DefaultMaxTraversalDepth)
}

func flattenWithDepth(nodes []Node, axis Axis, maxDepth int) []string {
	ids := make([]string, 0, len(nodes))
	onPath := make(map[string]bool)
	return appendFlattened(ids, nodes, axis, onPath, maxDepth)
}

func appendFlattened(ids []string, nodes []Node, axis Axis, onPath map[string]bool, depth int) []string {
	if depth <= 0 {
		return ids
	}
	for _, node := range nodes {
		if onPath[node.ID] {
			// The node already appears on its own ancestor path: cut the
			// cycle here instead of recursing forever.
			continue
		}
		ids = append(ids, node.ID)
		onPath[node.ID] = true
		ids = appendFlattened(ids, node.Children(axis), axis, onPath, depth-1)
		delete(onPath, node.ID)
	}
	return ids
}
