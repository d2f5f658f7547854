package aeon

// Listener receives the raw payload of every event dispatched to one path.
type Listener func(payload *string)

// registryNode is one node of the listener tree. A node is either internal
// (children set, listener nil) or a leaf (listener set, children nil); the
// two cases are kept disjoint so that overwrites are an explicit branch
// rather than an accidental shadow.
type registryNode struct {
	children map[string]*registryNode
	listener Listener
}

func (n *registryNode) isLeaf() bool {
	return n.listener != nil
}

// listenerRegistry maps full paths to at most one listener each. Paths may
// share prefixes freely; only the exact full path is a key.
type listenerRegistry struct {
	root registryNode
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{
		root: registryNode{children: make(map[string]*registryNode)},
	}
}

// set stores listener at path, creating intermediate nodes as needed.
// A listener already present at the exact path is overwritten. A leaf found
// at an intermediate segment is converted to an internal node, discarding
// the old listener, since the deeper registration supersedes it.
func (r *listenerRegistry) set(path []string, listener Listener) {
	if len(path) == 0 {
		panic("aeon: cannot register a listener at an empty path")
	}
	node := &r.root
	for _, segment := range path[:len(path)-1] {
		if node.children == nil {
			node.listener = nil
			node.children = make(map[string]*registryNode)
		}
		child, ok := node.children[segment]
		if !ok {
			child = &registryNode{}
			node.children[segment] = child
		}
		node = child
	}
	last := path[len(path)-1]
	if node.children == nil {
		node.listener = nil
		node.children = make(map[string]*registryNode)
	}
	child, ok := node.children[last]
	if !ok {
		child = &registryNode{}
		node.children[last] = child
	}
	child.children = nil
	child.listener = listener
}

// resolve walks path through the tree and returns the listener stored at its
// end, or nil if any segment has no matching child or the final node is not
// a leaf.
func (r *listenerRegistry) resolve(path []string) Listener {
	if len(path) == 0 {
		return nil
	}
	node := &r.root
	for _, segment := range path {
		if node.children == nil {
			return nil
		}
		child, ok := node.children[segment]
		if !ok {
			return nil
		}
		node = child
	}
	if !node.isLeaf() {
		return nil
	}
	return node.listener
}
