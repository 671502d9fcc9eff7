package extract

import "golang.org/x/net/html"

// Registry maps opaque claim handles to their source elements. One registry
// lives for exactly one scan pass; handles must never be resolved against a
// registry from a different pass.
type Registry struct {
	nodes []*html.Node
}

// NewRegistry creates an empty registry for one scan pass
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a node and returns its handle
func (r *Registry) Add(n *html.Node) int {
	r.nodes = append(r.nodes, n)
	return len(r.nodes) - 1
}

// Node resolves a handle, returning nil for out-of-range handles
func (r *Registry) Node(handle int) *html.Node {
	if handle < 0 || handle >= len(r.nodes) {
		return nil
	}
	return r.nodes[handle]
}

// Len returns the number of registered nodes
func (r *Registry) Len() int {
	return len(r.nodes)
}
