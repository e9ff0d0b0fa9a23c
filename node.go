package animix

// --- ID counter ---

// nodeIDCounter is a plain counter (no atomic). Nodes are created from the
// host's update goroutine; AdvanceAll never creates nodes.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is a minimal named property tree that animations can target. It stands
// in for a host scene graph: a node has a local transform, alpha, color and
// any number of named numeric channels, and children addressed by name.
//
// Node implements Target; see ResolveProperty for the path grammar.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	// Appearance
	Alpha   float64
	Color   Color
	Visible bool

	// Metadata
	UserData any

	// Named numeric tuples (blend shapes, quaternions, material params...).
	channels map[string][]float64

	// Internal
	dirty    bool
	disposed bool
}

// NewNode creates a node with identity transform, full alpha and white color.
func NewNode(name string) *Node {
	return &Node{
		ID:      nextNodeID(),
		Name:    name,
		ScaleX:  1,
		ScaleY:  1,
		Alpha:   1,
		Color:   ColorWhite,
		Visible: true,
		dirty:   true,
	}
}

// TargetID implements Target.
func (n *Node) TargetID() uint32 { return n.ID }

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil, disposed, or an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("animix: cannot add nil child")
	}
	if n.disposed || child.disposed {
		panic("animix: AddChild on disposed node")
	}
	if isAncestor(child, n) {
		panic("animix: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	child.dirty = true
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("animix: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	child.dirty = true
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// FindChild returns the first direct child with the given name, or nil.
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Channels ---

// SetChannel stores a copy of values under name. Channels are addressed by
// property paths like any built-in property; changing a channel's length
// invalidates bindings resolved against the old length.
func (n *Node) SetChannel(name string, values []float64) {
	if n.channels == nil {
		n.channels = make(map[string][]float64)
	}
	if cur, ok := n.channels[name]; ok && len(cur) == len(values) {
		copy(cur, values)
	} else {
		n.channels[name] = append([]float64(nil), values...)
	}
	n.dirty = true
}

// Channel returns the channel values, or nil. The returned slice MUST NOT be
// retained across SetChannel calls.
func (n *Node) Channel(name string) []float64 {
	return n.channels[name]
}

// RemoveChannel deletes a channel.
func (n *Node) RemoveChannel(name string) {
	delete(n.channels, name)
}

// --- Dirty tracking ---

// MarkDirty flags the node as changed. Property writes from a mixer call it.
func (n *Node) MarkDirty() { n.dirty = true }

// IsDirty reports whether the node changed since the last ClearDirty.
func (n *Node) IsDirty() bool { return n.dirty }

// ClearDirty resets the dirty flag.
func (n *Node) ClearDirty() { n.dirty = false }

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Bindings that resolved against a
// disposed node fail with ErrTargetDisposed. The ID is kept so cache keys
// built from it stay valid until they are uncached.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.channels = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
