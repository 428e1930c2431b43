// Package store defines the persistence contract for graphs, collections and
// records. Implementations live in the memory and pgx subpackages.
package store

import (
	"context"
	"errors"

	"github.com/trellis-labs/trellis/backend/pkg/model"
)

var (
	// ErrNotFound is returned when an addressed entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidReference is returned when an operation references a node
	// that does not exist in the target graph, or a degenerate self edge.
	ErrInvalidReference = errors.New("invalid reference")
)

// NodePatch carries the mutable node attributes for UpdateNode. Nil fields
// are left unchanged; Metadata replaces the whole bag when non-nil.
type NodePatch struct {
	Content  *string
	ParentID *string
	Metadata map[string]any
}

// Store is the persistent store for every entity kind the extraction
// pipeline materializes. Each call is an atomic write in isolation; no
// transaction spans multiple calls.
type Store interface {
	// CreateGraph persists a graph with its full, already-resolved node and
	// edge set in one write. Node and edge ids must be preallocated.
	CreateGraph(ctx context.Context, g *model.Graph) error
	GetGraph(ctx context.Context, graphID string) (*model.Graph, error)
	ListGraphs(ctx context.Context, scope model.Scope) ([]model.Graph, error)
	// SetGraphStyle reassigns a graph's style (and the kind derived from it)
	// without touching node or edge identities.
	SetGraphStyle(ctx context.Context, graphID string, style model.Style) error
	DeleteGraph(ctx context.Context, graphID string) error

	// AddNode appends a node and returns its new id. With a non-empty
	// parentID the parent must exist in the same graph.
	AddNode(ctx context.Context, graphID, content, parentID string, metadata map[string]any) (string, error)
	UpdateNode(ctx context.Context, graphID, nodeID string, patch NodePatch) error
	// DeleteNode removes the node, its descendants, and every edge incident
	// to any removed node.
	DeleteNode(ctx context.Context, graphID, nodeID string) error
	// AddEdge links two distinct existing nodes. Re-adding an already
	// connected pair, in either direction, is a no-op returning the
	// existing edge's id.
	AddEdge(ctx context.Context, graphID, sourceID, targetID string) (string, error)
	DeleteEdge(ctx context.Context, graphID, edgeID string) error

	CreateCollection(ctx context.Context, c *model.Collection) error
	GetCollection(ctx context.Context, collectionID string) (*model.Collection, error)
	// GetCollectionByName resolves a collection by exact name within a scope.
	GetCollectionByName(ctx context.Context, scope model.Scope, name string) (*model.Collection, error)
	ListCollections(ctx context.Context, scope model.Scope) ([]model.Collection, error)

	CreateRecord(ctx context.Context, r *model.Record) error
	ListRecords(ctx context.Context, collectionID string) ([]model.Record, error)
}
