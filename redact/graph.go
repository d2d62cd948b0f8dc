package redact

import "reflect"

// nodeID identifies a map or slice by the address of its storage. Slices are
// also keyed by length since two slices may share a backing array.
type nodeID struct {
	ptr uintptr
	len int
}

func identity(v any) (nodeID, bool) {
	switch node := v.(type) {
	case map[string]any:
		if node == nil {
			return nodeID{}, false
		}
		return nodeID{ptr: reflect.ValueOf(node).Pointer(), len: -1}, true
	case []any:
		if len(node) == 0 {
			return nodeID{}, false
		}
		return nodeID{ptr: reflect.ValueOf(node).Pointer(), len: len(node)}, true
	}
	return nodeID{}, false
}

// cloneGraph deep copies a JSON-shaped graph without recursion. A node reachable
// through several paths, cycles included, is copied once and the copy is shared
// the same way the original was.
func cloneGraph(v any) any {
	clones := make(map[nodeID]any)

	type fill struct {
		src any
		dst any
	}
	var pending []fill

	copyNode := func(src any) any {
		id, tracked := identity(src)
		if tracked {
			if dst, ok := clones[id]; ok {
				return dst
			}
		}

		var dst any
		switch node := src.(type) {
		case map[string]any:
			if node == nil {
				return node
			}
			dst = make(map[string]any, len(node))
		case []any:
			if node == nil {
				return node
			}
			dst = make([]any, len(node))
		default:
			return src
		}

		if tracked {
			clones[id] = dst
		}
		pending = append(pending, fill{src: src, dst: dst})
		return dst
	}

	root := copyNode(v)
	for len(pending) > 0 {
		next := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		switch src := next.src.(type) {
		case map[string]any:
			dst := next.dst.(map[string]any)
			for k, child := range src {
				dst[k] = copyNode(child)
			}
		case []any:
			dst := next.dst.([]any)
			for i, child := range src {
				dst[i] = copyNode(child)
			}
		}
	}
	return root
}
