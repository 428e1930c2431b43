package model

import "fmt"

// StructuralKind selects which view interpretation family applies to a graph.
type StructuralKind string

const (
	KindHierarchy StructuralKind = "hierarchy"
	KindBoard     StructuralKind = "board"
	KindCanvas    StructuralKind = "canvas"
)

// Style is a specific visual interpretation within a structural kind.
type Style string

const (
	StyleOutline  Style = "outline"
	StyleMindmap  Style = "mindmap"
	StyleKanban   Style = "kanban"
	StyleFlow     Style = "flow"
	StyleGrid     Style = "grid"
	StyleTable    Style = "table"
	StyleTimeline Style = "timeline"
	StyleFreeform Style = "freeform"
)

// KindForStyle maps a style to the structural kind that owns it.
// Unknown styles fall back to a hierarchy, the least demanding interpretation.
func KindForStyle(style Style) StructuralKind {
	switch style {
	case StyleKanban, StyleFlow, StyleGrid, StyleTable, StyleTimeline:
		return KindBoard
	case StyleFreeform:
		return KindCanvas
	default:
		return KindHierarchy
	}
}

// Metadata keys read by specific view interpretations. A node missing a key
// for its graph's style renders with defaults, never an error.
const (
	MetaPosX           = "x"
	MetaPosY           = "y"
	MetaStart          = "start"
	MetaEnd            = "end"
	MetaProgress       = "progress"
	MetaSourceRecordID = "source_record_id"
)

// Node is an addressable content unit within one graph. An empty ParentID
// marks a root; a graph may have several roots.
type Node struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	ParentID string         `json:"parent_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Edge is a non-hierarchical link between two nodes of the same graph.
// At most one edge exists per unordered node pair.
type Edge struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// Scope identifies the container new entities belong to. WorkspaceID is the
// target container; ProjectID optionally narrows it to a project inside the
// workspace (0 means workspace-wide).
type Scope struct {
	WorkspaceID int64 `json:"workspace_id"`
	ProjectID   int64 `json:"project_id,omitempty"`
}

// Graph is a node forest plus its edges, owned by one kind/style pair.
// Reassigning the style does not alter node or edge identities.
type Graph struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Kind  StructuralKind `json:"kind"`
	Style Style          `json:"style"`
	Scope Scope          `json:"scope"`
	Nodes []Node         `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Roots returns the nodes without a parent, in insertion order.
func (g *Graph) Roots() []Node {
	roots := make([]Node, 0)
	for _, n := range g.Nodes {
		if n.ParentID == "" {
			roots = append(roots, n)
		}
	}
	return roots
}

// Children returns the direct children of parentID, in insertion order.
func (g *Graph) Children(parentID string) []Node {
	children := make([]Node, 0)
	for _, n := range g.Nodes {
		if n.ParentID != "" && n.ParentID == parentID {
			children = append(children, n)
		}
	}
	return children
}

// ValidateForest checks that every parent reference points at a node in the
// set and that no parent chain forms a cycle.
func ValidateForest(nodes []Node) error {
	byID := make(map[string]string, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n.ParentID
	}
	for _, n := range nodes {
		if n.ParentID == "" {
			continue
		}
		if _, ok := byID[n.ParentID]; !ok {
			return fmt.Errorf("node %s references missing parent %s", n.ID, n.ParentID)
		}
	}
	// A parent chain longer than the node count has to revisit a node.
	for _, n := range nodes {
		steps := 0
		for cur := n.ParentID; cur != ""; cur = byID[cur] {
			steps++
			if steps > len(nodes) {
				return fmt.Errorf("node %s is part of a parent cycle", n.ID)
			}
		}
	}
	return nil
}

// HasEdgeBetween reports whether an edge connects a and b in either direction.
func HasEdgeBetween(edges []Edge, a, b string) bool {
	for _, e := range edges {
		if (e.SourceID == a && e.TargetID == b) || (e.SourceID == b && e.TargetID == a) {
			return true
		}
	}
	return false
}

// Descendants returns the ids of every node below nodeID in the forest,
// not including nodeID itself.
func Descendants(nodes []Node, nodeID string) []string {
	children := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		if n.ParentID != "" {
			children[n.ParentID] = append(children[n.ParentID], n.ID)
		}
	}
	var out []string
	queue := append([]string(nil), children[nodeID]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		queue = append(queue, children[cur]...)
	}
	return out
}
