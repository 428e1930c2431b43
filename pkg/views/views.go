// Package views holds the pure mapping functions that reinterpret a graph per
// (structural kind, style) pair. The graph model itself is visualization
// agnostic; this is the only place view meaning is attached to it.
//
// Every function here is total: nodes missing metadata for their style render
// with defaults instead of failing.
package views

import (
	"time"

	"github.com/trellis-labs/trellis/backend/pkg/model"
)

// OutlineItem is one entry of a recursive outline or mindmap tree.
type OutlineItem struct {
	Node     model.Node    `json:"node"`
	Children []OutlineItem `json:"children,omitempty"`
}

// Column groups the depth-1 children of a root node, as a kanban column,
// grid group, or table section.
type Column struct {
	Node  model.Node   `json:"node"`
	Cards []model.Node `json:"cards"`
}

// BoardView is the grouped-board reading of a graph. Links carries the
// optional card-to-card edges.
type BoardView struct {
	Columns []Column     `json:"columns"`
	Links   []model.Edge `json:"links,omitempty"`
}

// PlacedNode is a node with a free canvas position.
type PlacedNode struct {
	Node model.Node `json:"node"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
}

// CanvasView is the free positioning reading shared by flow diagrams and
// freeform canvases. Connections are directed for flow, plain links otherwise.
type CanvasView struct {
	Nodes       []PlacedNode `json:"nodes"`
	Connections []model.Edge `json:"connections,omitempty"`
}

// Task is the timeline reading of a node.
type Task struct {
	Node     model.Node `json:"node"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	Progress float64    `json:"progress"`
}

// Projection is the view-specific reading of one graph. Exactly one field is
// populated, chosen by the graph's kind and style.
type Projection struct {
	Outline  []OutlineItem `json:"outline,omitempty"`
	Board    *BoardView    `json:"board,omitempty"`
	Flow     *CanvasView   `json:"flow,omitempty"`
	Timeline []Task        `json:"timeline,omitempty"`
	Canvas   *CanvasView   `json:"canvas,omitempty"`
}

const defaultTaskSpan = 7 * 24 * time.Hour

// Project interprets g for its current kind/style pair. The now parameter
// anchors timeline defaults and keeps the function deterministic.
func Project(g *model.Graph, now time.Time) Projection {
	switch g.Kind {
	case model.KindBoard:
		switch g.Style {
		case model.StyleFlow:
			v := Flow(g)
			return Projection{Flow: &v}
		case model.StyleTimeline:
			return Projection{Timeline: Timeline(g, now)}
		default:
			// kanban, grid and table all read roots as groups.
			v := Board(g)
			return Projection{Board: &v}
		}
	case model.KindCanvas:
		v := Freeform(g)
		return Projection{Canvas: &v}
	default:
		return Projection{Outline: Outline(g)}
	}
}

// Outline reads roots as top-level bullets and nests children recursively.
// Edges are unused under this interpretation.
func Outline(g *model.Graph) []OutlineItem {
	var build func(parent model.Node) OutlineItem
	build = func(parent model.Node) OutlineItem {
		item := OutlineItem{Node: parent}
		for _, child := range g.Children(parent.ID) {
			item.Children = append(item.Children, build(child))
		}
		return item
	}
	items := make([]OutlineItem, 0)
	for _, root := range g.Roots() {
		items = append(items, build(root))
	}
	return items
}

// Board reads roots as columns or groups and their direct children as cards.
// Deeper descendants are flattened into the nearest column.
func Board(g *model.Graph) BoardView {
	view := BoardView{Columns: make([]Column, 0), Links: g.Edges}
	for _, root := range g.Roots() {
		col := Column{Node: root, Cards: make([]model.Node, 0)}
		for _, id := range model.Descendants(g.Nodes, root.ID) {
			if n := g.Node(id); n != nil {
				col.Cards = append(col.Cards, *n)
			}
		}
		view.Columns = append(view.Columns, col)
	}
	return view
}

// Flow reads every node as free-floating with a metadata position and edges
// as directed connections.
func Flow(g *model.Graph) CanvasView {
	return placeAll(g)
}

// Freeform reads every node as independently positioned; edges are optional
// links between them.
func Freeform(g *model.Graph) CanvasView {
	return placeAll(g)
}

// Timeline reads every node as a task with a schedule from metadata.
// Missing schedules default to now, now plus seven days, and zero progress.
func Timeline(g *model.Graph, now time.Time) []Task {
	tasks := make([]Task, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		start, startOK := metaTime(n.Metadata, model.MetaStart)
		end, endOK := metaTime(n.Metadata, model.MetaEnd)
		if !startOK {
			start = now
		}
		if !endOK || end.Before(start) {
			end = start.Add(defaultTaskSpan)
		}
		tasks = append(tasks, Task{
			Node:     n,
			Start:    start,
			End:      end,
			Progress: metaFloat(n.Metadata, model.MetaProgress),
		})
	}
	return tasks
}

func placeAll(g *model.Graph) CanvasView {
	view := CanvasView{Nodes: make([]PlacedNode, 0, len(g.Nodes)), Connections: g.Edges}
	for _, n := range g.Nodes {
		view.Nodes = append(view.Nodes, PlacedNode{
			Node: n,
			X:    metaFloat(n.Metadata, model.MetaPosX),
			Y:    metaFloat(n.Metadata, model.MetaPosY),
		})
	}
	return view
}

func metaFloat(meta map[string]any, key string) float64 {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

var timeLayouts = []string{time.RFC3339, "2006-01-02"}

func metaTime(meta map[string]any, key string) (time.Time, bool) {
	if meta == nil {
		return time.Time{}, false
	}
	switch v := meta[key].(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
