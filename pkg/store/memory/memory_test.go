package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/trellis-labs/trellis/backend/pkg/model"
	"github.com/trellis-labs/trellis/backend/pkg/store"
)

func seedGraph(t *testing.T, s *Store) *model.Graph {
	t.Helper()
	g := &model.Graph{
		ID:    "g1",
		Name:  "Seed",
		Kind:  model.KindHierarchy,
		Style: model.StyleOutline,
		Scope: model.Scope{WorkspaceID: 1},
		Nodes: []model.Node{
			{ID: "a", Content: "A"},
			{ID: "b", Content: "B", ParentID: "a"},
			{ID: "c", Content: "C", ParentID: "b"},
			{ID: "d", Content: "D"},
		},
		Edges: []model.Edge{{ID: "e1", SourceID: "c", TargetID: "d"}},
	}
	if err := s.CreateGraph(context.Background(), g); err != nil {
		t.Fatalf("seed graph: %v", err)
	}
	return g
}

func TestCreateGraphRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		graph *model.Graph
	}{
		{
			name: "missing parent",
			graph: &model.Graph{ID: "bad1", Nodes: []model.Node{
				{ID: "a", ParentID: "ghost"},
			}},
		},
		{
			name: "parent cycle",
			graph: &model.Graph{ID: "bad2", Nodes: []model.Node{
				{ID: "a", ParentID: "b"},
				{ID: "b", ParentID: "a"},
			}},
		},
		{
			name: "edge to missing node",
			graph: &model.Graph{ID: "bad3",
				Nodes: []model.Node{{ID: "a"}},
				Edges: []model.Edge{{ID: "e", SourceID: "a", TargetID: "ghost"}},
			},
		},
		{
			name: "self edge",
			graph: &model.Graph{ID: "bad4",
				Nodes: []model.Node{{ID: "a"}},
				Edges: []model.Edge{{ID: "e", SourceID: "a", TargetID: "a"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.CreateGraph(ctx, tt.graph)
			if !errors.Is(err, store.ErrInvalidReference) {
				t.Errorf("expected ErrInvalidReference, got %v", err)
			}
		})
	}
}

func TestGetGraphIsolation(t *testing.T) {
	s := New()
	seedGraph(t, s)
	ctx := context.Background()

	first, err := s.GetGraph(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	first.Nodes[0].Content = "mutated"
	first.Name = "mutated"

	second, err := s.GetGraph(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if second.Nodes[0].Content != "A" || second.Name != "Seed" {
		t.Error("store handed out shared state")
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	s := New()
	seedGraph(t, s)
	ctx := context.Background()

	if err := s.DeleteNode(ctx, "g1", "b"); err != nil {
		t.Fatal(err)
	}
	g, err := s.GetGraph(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	// b and its descendant c are gone, as is the edge touching c
	if len(g.Nodes) != 2 {
		t.Errorf("expected nodes a and d, got %+v", g.Nodes)
	}
	for _, n := range g.Nodes {
		if n.ID == "b" || n.ID == "c" {
			t.Errorf("node %s survived the cascade", n.ID)
		}
	}
	if len(g.Edges) != 0 {
		t.Errorf("edge incident to a deleted node survived: %+v", g.Edges)
	}
}

func TestAddEdgeIdempotent(t *testing.T) {
	s := New()
	seedGraph(t, s)
	ctx := context.Background()

	id1, err := s.AddEdge(ctx, "g1", "a", "d")
	if err != nil {
		t.Fatal(err)
	}
	// same pair again, both orientations, must return the existing edge
	id2, err := s.AddEdge(ctx, "g1", "a", "d")
	if err != nil {
		t.Fatal(err)
	}
	id3, err := s.AddEdge(ctx, "g1", "d", "a")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 || id1 != id3 {
		t.Errorf("duplicate edge got a new id: %s %s %s", id1, id2, id3)
	}
	g, _ := s.GetGraph(ctx, "g1")
	if len(g.Edges) != 2 {
		t.Errorf("expected seed edge plus one, got %+v", g.Edges)
	}
}

func TestAddEdgeInvalid(t *testing.T) {
	s := New()
	seedGraph(t, s)
	ctx := context.Background()

	if _, err := s.AddEdge(ctx, "g1", "a", "ghost"); !errors.Is(err, store.ErrInvalidReference) {
		t.Errorf("missing target: expected ErrInvalidReference, got %v", err)
	}
	if _, err := s.AddEdge(ctx, "g1", "a", "a"); !errors.Is(err, store.ErrInvalidReference) {
		t.Errorf("self edge: expected ErrInvalidReference, got %v", err)
	}
	if _, err := s.AddEdge(ctx, "nope", "a", "b"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing graph: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateNodeReparenting(t *testing.T) {
	s := New()
	seedGraph(t, s)
	ctx := context.Background()

	parent := "a"
	if err := s.UpdateNode(ctx, "g1", "d", store.NodePatch{ParentID: &parent}); err != nil {
		t.Fatal(err)
	}
	g, _ := s.GetGraph(ctx, "g1")
	if n := g.Node("d"); n.ParentID != "a" {
		t.Errorf("reparenting did not apply: %+v", n)
	}

	// moving a under its descendant c would close a cycle
	under := "c"
	if err := s.UpdateNode(ctx, "g1", "a", store.NodePatch{ParentID: &under}); !errors.Is(err, store.ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}

	self := "b"
	if err := s.UpdateNode(ctx, "g1", "b", store.NodePatch{ParentID: &self}); !errors.Is(err, store.ErrInvalidReference) {
		t.Errorf("self parent: expected ErrInvalidReference, got %v", err)
	}

	// clearing the parent makes the node a root
	root := ""
	if err := s.UpdateNode(ctx, "g1", "b", store.NodePatch{ParentID: &root}); err != nil {
		t.Fatal(err)
	}
	g, _ = s.GetGraph(ctx, "g1")
	if n := g.Node("b"); n.ParentID != "" {
		t.Errorf("parent was not cleared: %+v", n)
	}
}

func TestSetGraphStyleRealignsKind(t *testing.T) {
	s := New()
	seedGraph(t, s)
	ctx := context.Background()

	if err := s.SetGraphStyle(ctx, "g1", model.StyleKanban); err != nil {
		t.Fatal(err)
	}
	g, _ := s.GetGraph(ctx, "g1")
	if g.Style != model.StyleKanban || g.Kind != model.KindBoard {
		t.Errorf("expected kanban/board, got %s/%s", g.Style, g.Kind)
	}
}

func TestScopeReachability(t *testing.T) {
	s := New()
	ctx := context.Background()
	workspaceWide := model.Scope{WorkspaceID: 1}
	projectScoped := model.Scope{WorkspaceID: 1, ProjectID: 10}
	otherProject := model.Scope{WorkspaceID: 1, ProjectID: 11}
	otherWorkspace := model.Scope{WorkspaceID: 2}

	for _, c := range []*model.Collection{
		{ID: "ws", Name: "Workspace Wide", Scope: workspaceWide,
			Fields: []model.FieldDef{{ID: "field_0", Name: "Note", Type: model.FieldTypeText}}},
		{ID: "proj", Name: "Project Only", Scope: projectScoped,
			Fields: []model.FieldDef{{ID: "field_0", Name: "Note", Type: model.FieldTypeText}}},
	} {
		if err := s.CreateCollection(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		scope model.Scope
		want  int
	}{
		{"project sees its own plus workspace level", projectScoped, 2},
		{"sibling project sees only workspace level", otherProject, 1},
		{"workspace scope sees everything in it", workspaceWide, 2},
		{"other workspace sees nothing", otherWorkspace, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListCollections(ctx, tt.scope)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d collections, got %+v", tt.want, got)
			}
		})
	}
}

func TestRecordsRequireCollection(t *testing.T) {
	s := New()
	ctx := context.Background()
	err := s.CreateRecord(ctx, &model.Record{ID: "r1", CollectionID: "nope", Name: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCollectionLookup(t *testing.T) {
	s := New()
	ctx := context.Background()
	scope := model.Scope{WorkspaceID: 1}
	c := &model.Collection{ID: "col_1", Name: "Tasks", Scope: scope,
		Fields: []model.FieldDef{{ID: "field_0", Name: "Owner", Type: model.FieldTypeText}}}
	if err := s.CreateCollection(ctx, c); err != nil {
		t.Fatal(err)
	}

	byID, err := s.GetCollection(ctx, "col_1")
	if err != nil || byID.Name != "Tasks" {
		t.Errorf("GetCollection = %+v, %v", byID, err)
	}
	byName, err := s.GetCollectionByName(ctx, scope, "Tasks")
	if err != nil || byName.ID != "col_1" {
		t.Errorf("GetCollectionByName = %+v, %v", byName, err)
	}
	if _, err := s.GetCollectionByName(ctx, scope, "tasks"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("name lookup must be exact, got %v", err)
	}
}
