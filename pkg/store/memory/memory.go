// Package memory provides an in-memory Store used by tests and as a
// development backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/trellis-labs/trellis/backend/pkg/model"
	"github.com/trellis-labs/trellis/backend/pkg/store"
)

// Store keeps every entity in process memory behind one mutex.
type Store struct {
	mu          sync.RWMutex
	graphs      map[string]*model.Graph
	collections map[string]*model.Collection
	records     map[string][]model.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		graphs:      make(map[string]*model.Graph),
		collections: make(map[string]*model.Collection),
		records:     make(map[string][]model.Record),
	}
}

func inScope(s model.Scope, target model.Scope) bool {
	if s.WorkspaceID != target.WorkspaceID {
		return false
	}
	if target.ProjectID == 0 {
		return true
	}
	// workspace-level entities stay reachable from any project in it
	return s.ProjectID == 0 || s.ProjectID == target.ProjectID
}

func cloneGraph(g *model.Graph) *model.Graph {
	out := *g
	out.Nodes = make([]model.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		out.Nodes[i] = n
		if n.Metadata != nil {
			meta := make(map[string]any, len(n.Metadata))
			for k, v := range n.Metadata {
				meta[k] = v
			}
			out.Nodes[i].Metadata = meta
		}
	}
	out.Edges = append([]model.Edge(nil), g.Edges...)
	return &out
}

// CreateGraph stores a graph after checking its forest and edge invariants.
func (s *Store) CreateGraph(ctx context.Context, g *model.Graph) error {
	if err := model.ValidateForest(g.Nodes); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	}
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	for _, e := range g.Edges {
		if _, ok := ids[e.SourceID]; !ok {
			return fmt.Errorf("%w: edge %s source %s", store.ErrInvalidReference, e.ID, e.SourceID)
		}
		if _, ok := ids[e.TargetID]; !ok {
			return fmt.Errorf("%w: edge %s target %s", store.ErrInvalidReference, e.ID, e.TargetID)
		}
		if e.SourceID == e.TargetID {
			return fmt.Errorf("%w: edge %s connects a node to itself", store.ErrInvalidReference, e.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.ID] = cloneGraph(g)
	return nil
}

func (s *Store) GetGraph(ctx context.Context, graphID string) (*model.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneGraph(g), nil
}

func (s *Store) ListGraphs(ctx context.Context, scope model.Scope) ([]model.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Graph, 0)
	for _, g := range s.graphs {
		if inScope(g.Scope, scope) {
			out = append(out, *cloneGraph(g))
		}
	}
	return out, nil
}

func (s *Store) SetGraphStyle(ctx context.Context, graphID string, style model.Style) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return store.ErrNotFound
	}
	g.Style = style
	g.Kind = model.KindForStyle(style)
	return nil
}

func (s *Store) DeleteGraph(ctx context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[graphID]; !ok {
		return store.ErrNotFound
	}
	delete(s.graphs, graphID)
	return nil
}

func (s *Store) AddNode(ctx context.Context, graphID, content, parentID string, metadata map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return "", store.ErrNotFound
	}
	if parentID != "" && g.Node(parentID) == nil {
		return "", fmt.Errorf("%w: parent %s", store.ErrInvalidReference, parentID)
	}
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	g.Nodes = append(g.Nodes, model.Node{
		ID:       id,
		Content:  content,
		ParentID: parentID,
		Metadata: metadata,
	})
	return id, nil
}

func (s *Store) UpdateNode(ctx context.Context, graphID, nodeID string, patch store.NodePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return store.ErrNotFound
	}
	node := g.Node(nodeID)
	if node == nil {
		return store.ErrNotFound
	}
	if patch.ParentID != nil && *patch.ParentID != "" {
		if g.Node(*patch.ParentID) == nil {
			return fmt.Errorf("%w: parent %s", store.ErrInvalidReference, *patch.ParentID)
		}
		if *patch.ParentID == nodeID {
			return fmt.Errorf("%w: node cannot parent itself", store.ErrInvalidReference)
		}
		for _, desc := range model.Descendants(g.Nodes, nodeID) {
			if desc == *patch.ParentID {
				return fmt.Errorf("%w: reparenting under a descendant", store.ErrInvalidReference)
			}
		}
	}
	if patch.Content != nil {
		node.Content = *patch.Content
	}
	if patch.ParentID != nil {
		node.ParentID = *patch.ParentID
	}
	if patch.Metadata != nil {
		node.Metadata = patch.Metadata
	}
	return nil
}

func (s *Store) DeleteNode(ctx context.Context, graphID, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return store.ErrNotFound
	}
	if g.Node(nodeID) == nil {
		return store.ErrNotFound
	}

	doomed := map[string]struct{}{nodeID: {}}
	for _, id := range model.Descendants(g.Nodes, nodeID) {
		doomed[id] = struct{}{}
	}

	nodes := g.Nodes[:0]
	for _, n := range g.Nodes {
		if _, gone := doomed[n.ID]; !gone {
			nodes = append(nodes, n)
		}
	}
	g.Nodes = nodes

	edges := g.Edges[:0]
	for _, e := range g.Edges {
		_, srcGone := doomed[e.SourceID]
		_, dstGone := doomed[e.TargetID]
		if !srcGone && !dstGone {
			edges = append(edges, e)
		}
	}
	g.Edges = edges
	return nil
}

func (s *Store) AddEdge(ctx context.Context, graphID, sourceID, targetID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return "", store.ErrNotFound
	}
	if g.Node(sourceID) == nil {
		return "", fmt.Errorf("%w: source %s", store.ErrInvalidReference, sourceID)
	}
	if g.Node(targetID) == nil {
		return "", fmt.Errorf("%w: target %s", store.ErrInvalidReference, targetID)
	}
	if sourceID == targetID {
		return "", fmt.Errorf("%w: edge endpoints must be distinct", store.ErrInvalidReference)
	}
	for _, e := range g.Edges {
		if (e.SourceID == sourceID && e.TargetID == targetID) ||
			(e.SourceID == targetID && e.TargetID == sourceID) {
			return e.ID, nil
		}
	}
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	g.Edges = append(g.Edges, model.Edge{ID: id, SourceID: sourceID, TargetID: targetID})
	return id, nil
}

func (s *Store) DeleteEdge(ctx context.Context, graphID, edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return store.ErrNotFound
	}
	for i, e := range g.Edges {
		if e.ID == edgeID {
			g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreateCollection(ctx context.Context, c *model.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	clone.Fields = append([]model.FieldDef(nil), c.Fields...)
	s.collections[c.ID] = &clone
	return nil
}

func (s *Store) GetCollection(ctx context.Context, collectionID string) (*model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collectionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *c
	clone.Fields = append([]model.FieldDef(nil), c.Fields...)
	return &clone, nil
}

func (s *Store) GetCollectionByName(ctx context.Context, scope model.Scope, name string) (*model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.collections {
		if c.Name == name && inScope(c.Scope, scope) {
			clone := *c
			clone.Fields = append([]model.FieldDef(nil), c.Fields...)
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListCollections(ctx context.Context, scope model.Scope) ([]model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Collection, 0)
	for _, c := range s.collections {
		if inScope(c.Scope, scope) {
			clone := *c
			clone.Fields = append([]model.FieldDef(nil), c.Fields...)
			out = append(out, clone)
		}
	}
	return out, nil
}

func (s *Store) CreateRecord(ctx context.Context, r *model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[r.CollectionID]; !ok {
		return fmt.Errorf("%w: collection %s", store.ErrNotFound, r.CollectionID)
	}
	clone := *r
	if r.Values != nil {
		clone.Values = make(map[string]string, len(r.Values))
		for k, v := range r.Values {
			clone.Values[k] = v
		}
	}
	s.records[r.CollectionID] = append(s.records[r.CollectionID], clone)
	return nil
}

func (s *Store) ListRecords(ctx context.Context, collectionID string) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Record(nil), s.records[collectionID]...), nil
}
