package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/trellis-labs/trellis/backend/internal/util"
	"github.com/trellis-labs/trellis/backend/pkg/model"
	"github.com/trellis-labs/trellis/backend/pkg/store"
)

func (s *Store) CreateCollection(ctx context.Context, c *model.Collection) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO collections (id, name, icon, workspace_id, project_id)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, util.SanitizePostgresText(c.Name), c.Icon,
		c.Scope.WorkspaceID, nullableProject(c.Scope.ProjectID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	for i, f := range c.Fields {
		var relation any
		if f.RelationTarget != "" {
			relation = f.RelationTarget
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO collection_fields (id, collection_id, name, type, options, required, relation_target, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			f.ID, c.ID, util.SanitizePostgresText(f.Name), string(f.Type),
			f.Options, f.Required, relation, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert field definition: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) loadFields(ctx context.Context, collectionID string) ([]model.FieldDef, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, type, options, required, relation_target
		FROM collection_fields WHERE collection_id = $1 ORDER BY position`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load field definitions: %w", err)
	}
	defer rows.Close()

	fields := make([]model.FieldDef, 0)
	for rows.Next() {
		var f model.FieldDef
		var fieldType string
		var relation *string
		if err := rows.Scan(&f.ID, &f.Name, &fieldType, &f.Options, &f.Required, &relation); err != nil {
			return nil, err
		}
		f.Type = model.FieldType(fieldType)
		if relation != nil {
			f.RelationTarget = *relation
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (s *Store) scanCollection(ctx context.Context, row pgxv5.Row) (*model.Collection, error) {
	var c model.Collection
	var projectID *int64
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Scope.WorkspaceID, &projectID); err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if projectID != nil {
		c.Scope.ProjectID = *projectID
	}
	fields, err := s.loadFields(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Fields = fields
	return &c, nil
}

func (s *Store) GetCollection(ctx context.Context, collectionID string) (*model.Collection, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, name, icon, workspace_id, project_id
		FROM collections WHERE id = $1`, collectionID)
	return s.scanCollection(ctx, row)
}

func (s *Store) GetCollectionByName(ctx context.Context, scope model.Scope, name string) (*model.Collection, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, name, icon, workspace_id, project_id
		FROM collections
		WHERE name = $1 AND workspace_id = $2
		  AND ($3::bigint = 0 OR project_id IS NULL OR project_id = $3)
		ORDER BY created_at LIMIT 1`,
		name, scope.WorkspaceID, scope.ProjectID)
	return s.scanCollection(ctx, row)
}

func (s *Store) ListCollections(ctx context.Context, scope model.Scope) ([]model.Collection, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id FROM collections
		WHERE workspace_id = $1
		  AND ($2::bigint = 0 OR project_id IS NULL OR project_id = $2)
		ORDER BY created_at`, scope.WorkspaceID, scope.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
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

	collections := make([]model.Collection, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetCollection(ctx, id)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *c)
	}
	return collections, nil
}

func (s *Store) CreateRecord(ctx context.Context, r *model.Record) error {
	values, err := json.Marshal(r.Values)
	if err != nil {
		return fmt.Errorf("failed to encode record values: %w", err)
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO records (id, collection_id, name, field_values)
		VALUES ($1, $2, $3, $4)`,
		r.ID, r.CollectionID, util.SanitizePostgresText(r.Name), values,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, collectionID string) ([]model.Record, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, field_values
		FROM records WHERE collection_id = $1 ORDER BY created_at`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		r := model.Record{CollectionID: collectionID}
		var values []byte
		if err := rows.Scan(&r.ID, &r.Name, &values); err != nil {
			return nil, err
		}
		if len(values) > 0 {
			if err := json.Unmarshal(values, &r.Values); err != nil {
				return nil, fmt.Errorf("failed to decode record values: %w", err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
