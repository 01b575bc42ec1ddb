package schema

import (
	"bytes"
	"fmt"
	"strings"
)

type NodeID int32

// None is the parent of the root.
const None NodeID = -1

const (
	SizeName = "size"
	DataName = "data"

	// CountWidth is the width of array size and string length prefixes.
	CountWidth = 4
)

type Node struct {
	Name   string
	Kind   Kind
	Scalar ScalarType
	// Width is the encoded width of Scalar and Ref nodes.
	Width int
	// Align rounds the cursor up to a multiple of 4 after this node.
	Align bool
	// Index is the node's position in the global pre-order.
	Index    int
	Parent   NodeID
	Children []NodeID
}

// Tree is an immutable schema. It may be shared by concurrent readers.
type Tree struct {
	nodes    []Node
	minWidth []int
}

func (t *Tree) Root() NodeID { return 0 }

func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node for id. The result must not be modified.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// MinWidth is the smallest number of bytes an instance of id can occupy,
// not counting alignment padding.
func (t *Tree) MinWidth(id NodeID) int {
	return t.minWidth[id]
}

func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// ByIndex returns the node with the given schema index.
func (t *Tree) ByIndex(i int) (NodeID, bool) {
	if i < 0 || i >= len(t.nodes) {
		return None, false
	}
	return NodeID(i), true
}

// Child returns the composite child named name.
func (t *Tree) Child(id NodeID, name string) (NodeID, bool) {
	n := &t.nodes[id]
	if n.Kind != Composite {
		return None, false
	}
	for _, c := range n.Children {
		if t.nodes[c].Name == name {
			return c, true
		}
	}
	return None, false
}

// SizeOf returns the size scalar of an array node.
func (t *Tree) SizeOf(arr NodeID) NodeID {
	return t.nodes[arr].Children[0]
}

// ElemOf returns the element type of an array node.
func (t *Tree) ElemOf(arr NodeID) NodeID {
	return t.nodes[arr].Children[1]
}

// OwningArray reports the array whose size scalar is id.
func (t *Tree) OwningArray(id NodeID) (NodeID, bool) {
	p := t.nodes[id].Parent
	if p == None || t.nodes[p].Kind != Array {
		return None, false
	}
	if t.nodes[p].Children[0] != id {
		return None, false
	}
	return p, true
}

// IsLeaf reports whether id is diffed and patched as a single value.
func (t *Tree) IsLeaf(id NodeID) bool {
	switch t.nodes[id].Kind {
	case Scalar, String, Ref:
		return true
	}
	return false
}

// Path returns the dotted schema path of id, with array elements shown as
// "data". It is meant for messages, not for addressing buffers.
func (t *Tree) Path(id NodeID) string {
	var parts []string
	for id != None && t.nodes[id].Parent != None {
		n := &t.nodes[id]
		parts = append(parts, n.Name)
		if p := &t.nodes[n.Parent]; p.Kind == Array && p.Children[1] == id {
			parts[len(parts)-1] = DataName
		}
		id = n.Parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Each calls fn on every node in pre-order until fn returns false.
func (t *Tree) Each(fn func(NodeID) bool) {
	for i := range t.nodes {
		if !fn(NodeID(i)) {
			return
		}
	}
}

func (n *Node) TypeString() string {
	switch n.Kind {
	case Scalar:
		return fmt.Sprintf("%s%d", n.Scalar, n.Width*8)
	case Ref:
		return fmt.Sprintf("ref%d", n.Width*8)
	default:
		return n.Kind.String()
	}
}

func (t *Tree) String() string {
	buf := bytes.NewBuffer(nil)
	if len(t.nodes) != 0 {
		t.dump(buf, t.Root(), 0)
	}
	return buf.String()
}

func (t *Tree) dump(buf *bytes.Buffer, id NodeID, depth int) {
	n := &t.nodes[id]
	name := n.Name
	if name == "" {
		name = "<root>"
	}
	fmt.Fprintf(buf, "%s%s %s #%d", strings.Repeat("  ", depth), name, n.TypeString(), n.Index)
	if n.Align {
		buf.WriteString(" align")
	}
	buf.WriteByte('\n')
	for _, c := range n.Children {
		t.dump(buf, c, depth+1)
	}
}
