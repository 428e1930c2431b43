package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/trellis-labs/trellis/backend/internal/util"
	"github.com/trellis-labs/trellis/backend/pkg/model"
	"github.com/trellis-labs/trellis/backend/pkg/store"
)

func nullableProject(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func encodeMetadata(meta map[string]any) ([]byte, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	return json.Marshal(meta)
}

// CreateGraph writes the graph and its full node/edge set in one transaction.
func (s *Store) CreateGraph(ctx context.Context, g *model.Graph) error {
	if err := model.ValidateForest(g.Nodes); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO graphs (id, name, kind, style, workspace_id, project_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, util.SanitizePostgresText(g.Name), string(g.Kind), string(g.Style),
		g.Scope.WorkspaceID, nullableProject(g.Scope.ProjectID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert graph: %w", err)
	}

	for _, n := range g.Nodes {
		meta, err := encodeMetadata(n.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode node metadata: %w", err)
		}
		var parent any
		if n.ParentID != "" {
			parent = n.ParentID
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO graph_nodes (id, graph_id, content, parent_id, metadata)
			VALUES ($1, $2, $3, $4, $5)`,
			n.ID, g.ID, util.SanitizePostgresText(n.Content), parent, meta,
		)
		if err != nil {
			return fmt.Errorf("failed to insert node: %w", err)
		}
	}

	for _, e := range g.Edges {
		_, err = tx.Exec(ctx, `
			INSERT INTO graph_edges (id, graph_id, source_id, target_id)
			VALUES ($1, $2, $3, $4)`,
			e.ID, g.ID, e.SourceID, e.TargetID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert edge: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) GetGraph(ctx context.Context, graphID string) (*model.Graph, error) {
	g := model.Graph{ID: graphID}
	var kind, style string
	var projectID *int64
	err := s.conn.QueryRow(ctx, `
		SELECT name, kind, style, workspace_id, project_id
		FROM graphs WHERE id = $1`, graphID).
		Scan(&g.Name, &kind, &style, &g.Scope.WorkspaceID, &projectID)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	g.Kind = model.StructuralKind(kind)
	g.Style = model.Style(style)
	if projectID != nil {
		g.Scope.ProjectID = *projectID
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, content, parent_id, metadata
		FROM graph_nodes WHERE graph_id = $1 ORDER BY created_at, id`, graphID)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n model.Node
		var parent *string
		var meta []byte
		if err := rows.Scan(&n.ID, &n.Content, &parent, &meta); err != nil {
			return nil, err
		}
		if parent != nil {
			n.ParentID = *parent
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &n.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode node metadata: %w", err)
			}
		}
		g.Nodes = append(g.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := s.conn.Query(ctx, `
		SELECT id, source_id, target_id
		FROM graph_edges WHERE graph_id = $1 ORDER BY created_at, id`, graphID)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e model.Edge
		if err := edgeRows.Scan(&e.ID, &e.SourceID, &e.TargetID); err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	return &g, nil
}

func (s *Store) ListGraphs(ctx context.Context, scope model.Scope) ([]model.Graph, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id FROM graphs
		WHERE workspace_id = $1
		  AND ($2::bigint = 0 OR project_id IS NULL OR project_id = $2)
		ORDER BY created_at`, scope.WorkspaceID, scope.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	graphs := make([]model.Graph, 0, len(ids))
	for _, id := range ids {
		g, err := s.GetGraph(ctx, id)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, *g)
	}
	return graphs, nil
}

func (s *Store) SetGraphStyle(ctx context.Context, graphID string, style model.Style) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE graphs SET kind = $2, style = $3 WHERE id = $1`,
		graphID, string(model.KindForStyle(style)), string(style),
	)
	if err != nil {
		return fmt.Errorf("failed to update graph style: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteGraph(ctx context.Context, graphID string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM graphs WHERE id = $1`, graphID)
	if err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AddNode(ctx context.Context, graphID, content, parentID string, metadata map[string]any) (string, error) {
	if parentID != "" {
		var exists bool
		err := s.conn.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM graph_nodes WHERE graph_id = $1 AND id = $2)`,
			graphID, parentID).Scan(&exists)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("%w: parent %s", store.ErrInvalidReference, parentID)
		}
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return "", err
	}
	var parent any
	if parentID != "" {
		parent = parentID
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO graph_nodes (id, graph_id, content, parent_id, metadata)
		VALUES ($1, $2, $3, $4, $5)`,
		id, graphID, util.SanitizePostgresText(content), parent, meta,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert node: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateNode(ctx context.Context, graphID, nodeID string, patch store.NodePatch) error {
	g, err := s.GetGraph(ctx, graphID)
	if err != nil {
		return err
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

	content := node.Content
	if patch.Content != nil {
		content = *patch.Content
	}
	parentID := node.ParentID
	if patch.ParentID != nil {
		parentID = *patch.ParentID
	}
	metadata := node.Metadata
	if patch.Metadata != nil {
		metadata = patch.Metadata
	}
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return err
	}
	var parent any
	if parentID != "" {
		parent = parentID
	}

	_, err = s.conn.Exec(ctx, `
		UPDATE graph_nodes SET content = $3, parent_id = $4, metadata = $5
		WHERE graph_id = $1 AND id = $2`,
		graphID, nodeID, util.SanitizePostgresText(content), parent, meta,
	)
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}
	return nil
}

func (s *Store) DeleteNode(ctx context.Context, graphID, nodeID string) error {
	g, err := s.GetGraph(ctx, graphID)
	if err != nil {
		return err
	}
	if g.Node(nodeID) == nil {
		return store.ErrNotFound
	}
	doomed := append(model.Descendants(g.Nodes, nodeID), nodeID)

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM graph_edges
		WHERE graph_id = $1 AND (source_id = ANY($2) OR target_id = ANY($2))`,
		graphID, doomed,
	)
	if err != nil {
		return fmt.Errorf("failed to delete incident edges: %w", err)
	}
	_, err = tx.Exec(ctx, `
		DELETE FROM graph_nodes WHERE graph_id = $1 AND id = ANY($2)`,
		graphID, doomed,
	)
	if err != nil {
		return fmt.Errorf("failed to delete nodes: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) AddEdge(ctx context.Context, graphID, sourceID, targetID string) (string, error) {
	if sourceID == targetID {
		return "", fmt.Errorf("%w: edge endpoints must be distinct", store.ErrInvalidReference)
	}
	var count int
	err := s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM graph_nodes WHERE graph_id = $1 AND id = ANY($2)`,
		graphID, []string{sourceID, targetID}).Scan(&count)
	if err != nil {
		return "", err
	}
	if count != 2 {
		return "", fmt.Errorf("%w: edge endpoints must exist in graph %s", store.ErrInvalidReference, graphID)
	}

	var existing string
	err = s.conn.QueryRow(ctx, `
		SELECT id FROM graph_edges
		WHERE graph_id = $1
		  AND ((source_id = $2 AND target_id = $3) OR (source_id = $3 AND target_id = $2))`,
		graphID, sourceID, targetID).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO graph_edges (id, graph_id, source_id, target_id)
		VALUES ($1, $2, $3, $4)`,
		id, graphID, sourceID, targetID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert edge: %w", err)
	}
	return id, nil
}

func (s *Store) DeleteEdge(ctx context.Context, graphID, edgeID string) error {
	tag, err := s.conn.Exec(ctx, `
		DELETE FROM graph_edges WHERE graph_id = $1 AND id = $2`, graphID, edgeID)
	if err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
