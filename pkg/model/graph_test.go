package model

import (
	"reflect"
	"testing"
)

func TestKindForStyle(t *testing.T) {
	tests := []struct {
		style Style
		want  StructuralKind
	}{
		{StyleOutline, KindHierarchy},
		{StyleMindmap, KindHierarchy},
		{StyleKanban, KindBoard},
		{StyleFlow, KindBoard},
		{StyleGrid, KindBoard},
		{StyleTable, KindBoard},
		{StyleTimeline, KindBoard},
		{StyleFreeform, KindCanvas},
		{Style("unknown"), KindHierarchy},
	}
	for _, tt := range tests {
		if got := KindForStyle(tt.style); got != tt.want {
			t.Errorf("KindForStyle(%q) = %q, want %q", tt.style, got, tt.want)
		}
	}
}

func TestValidateForest(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		wantErr bool
	}{
		{
			name: "valid forest",
			nodes: []Node{
				{ID: "a"},
				{ID: "b", ParentID: "a"},
				{ID: "c", ParentID: "b"},
				{ID: "d"},
			},
		},
		{
			name:  "empty",
			nodes: nil,
		},
		{
			name: "missing parent",
			nodes: []Node{
				{ID: "a", ParentID: "ghost"},
			},
			wantErr: true,
		},
		{
			name: "two node cycle",
			nodes: []Node{
				{ID: "a", ParentID: "b"},
				{ID: "b", ParentID: "a"},
			},
			wantErr: true,
		},
		{
			name: "self parent",
			nodes: []Node{
				{ID: "a", ParentID: "a"},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForest(tt.nodes)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDescendants(t *testing.T) {
	nodes := []Node{
		{ID: "a"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "a"},
		{ID: "d", ParentID: "b"},
		{ID: "e"},
	}
	got := Descendants(nodes, "a")
	want := []string{"b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Descendants(a) = %v, want %v", got, want)
	}
	if got := Descendants(nodes, "e"); len(got) != 0 {
		t.Errorf("Descendants(e) = %v, want empty", got)
	}
	if got := Descendants(nodes, "ghost"); len(got) != 0 {
		t.Errorf("Descendants(ghost) = %v, want empty", got)
	}
}

func TestHasEdgeBetween(t *testing.T) {
	edges := []Edge{{ID: "e1", SourceID: "a", TargetID: "b"}}
	if !HasEdgeBetween(edges, "a", "b") {
		t.Error("forward direction not found")
	}
	if !HasEdgeBetween(edges, "b", "a") {
		t.Error("edges are unordered pairs, reverse must match")
	}
	if HasEdgeBetween(edges, "a", "c") {
		t.Error("unconnected pair reported as connected")
	}
}

func TestGraphAccessors(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a"},
			{ID: "b", ParentID: "a"},
			{ID: "c", ParentID: "a"},
		},
	}
	if n := g.Node("b"); n == nil || n.ID != "b" {
		t.Errorf("Node(b) = %+v", n)
	}
	if n := g.Node("ghost"); n != nil {
		t.Errorf("Node(ghost) = %+v, want nil", n)
	}
	roots := g.Roots()
	if len(roots) != 1 || roots[0].ID != "a" {
		t.Errorf("Roots() = %+v", roots)
	}
	children := g.Children("a")
	if len(children) != 2 {
		t.Errorf("Children(a) = %+v", children)
	}
}
