package extract

import (
	"context"
	"encoding/json"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/model"
)

const (
	toolCreateCollection = "create_collection"
	toolCreateGraph      = "create_graph"
	toolCreateRecord     = "create_record"
)

type createdCounts struct {
	collections int
	records     int
	graphs      int
}

func (c *createdCounts) add(o createdCounts) {
	c.collections += o.collections
	c.records += o.records
	c.graphs += o.graphs
}

// materialize turns one confirmed suggestion into persisted entities. An
// error aborts the rest of this suggestion only; entities already written
// for it stay and are reflected in the returned counts.
func (p *Pipeline) materialize(ctx context.Context, em *emitter, scope model.Scope, s *Suggestion) (createdCounts, error) {
	switch {
	case s.Collection != nil:
		return p.materializeCollection(ctx, em, scope, s)
	case s.Graph != nil:
		return p.materializeGraph(ctx, em, scope, s)
	case s.Records != nil:
		return p.materializeRecords(ctx, em, scope, s)
	}
	return createdCounts{}, fmt.Errorf("suggestion %q carries no payload", s.Title)
}

func (p *Pipeline) materializeCollection(ctx context.Context, em *emitter, scope model.Scope, s *Suggestion) (createdCounts, error) {
	var counts createdCounts
	id, err := gonanoid.New()
	if err != nil {
		return counts, err
	}

	fields := make([]model.FieldDef, len(s.Collection.Fields))
	for i, f := range s.Collection.Fields {
		fields[i] = model.FieldDef{
			ID:   fmt.Sprintf("field_%d", i),
			Name: f.Name,
			Type: model.ParseFieldType(f.Type),
		}
	}
	col := &model.Collection{
		ID:     id,
		Name:   s.Title,
		Icon:   s.Icon,
		Scope:  scope,
		Fields: fields,
	}
	if err := p.store.CreateCollection(ctx, col); err != nil {
		return counts, fmt.Errorf("failed to create collection %q: %w", col.Name, err)
	}
	counts.collections++
	em.toolResult(toolCreateCollection, toolOutput(col.ID, col.Name), s.Title, s.Icon)

	for _, item := range s.Collection.Items {
		if ctx.Err() != nil {
			return counts, ctx.Err()
		}
		// field values reference declared fields by name, case-sensitively;
		// values naming no declared field are dropped
		values := make(map[string]string, len(item.Fields))
		for _, fv := range item.Fields {
			def := col.FieldByName(fv.Field)
			if def == nil {
				logger.Warn("[Extract] Dropping value for unknown field",
					"collection", col.Name, "field", fv.Field)
				continue
			}
			values[def.ID] = fv.Value
		}

		recordID, err := gonanoid.New()
		if err != nil {
			return counts, err
		}
		rec := &model.Record{
			ID:           recordID,
			CollectionID: col.ID,
			Name:         item.Name,
			Values:       values,
		}
		if err := p.store.CreateRecord(ctx, rec); err != nil {
			logger.Error("[Extract] Failed to create record",
				"collection", col.Name, "record", item.Name, "err", err)
			continue
		}
		counts.records++
		em.toolResult(toolCreateRecord, toolOutput(rec.ID, rec.Name), s.Title, s.Icon)
	}
	return counts, nil
}

func (p *Pipeline) materializeGraph(ctx context.Context, em *emitter, scope model.Scope, s *Suggestion) (createdCounts, error) {
	var counts createdCounts
	raw := s.Graph

	// allocate all node ids up front so index references resolve in one pass
	ids := make([]string, len(raw.Nodes))
	for i := range ids {
		id, err := gonanoid.New()
		if err != nil {
			return counts, err
		}
		ids[i] = id
	}

	nodes := make([]model.Node, len(raw.Nodes))
	for i, rn := range raw.Nodes {
		node := model.Node{ID: ids[i], Content: rn.Content}
		if rn.ParentIndex != nil {
			pi := *rn.ParentIndex
			if pi >= 0 && pi < len(ids) && pi != i {
				node.ParentID = ids[pi]
			} else {
				logger.Warn("[Extract] Dropping out-of-range parent reference",
					"graph", s.Title, "node", i, "parentIndex", pi)
			}
		}
		if raw.Style == model.StyleTimeline {
			node.Metadata = timelineMetadata(rn)
		}
		nodes[i] = node
	}
	breakParentCycles(s.Title, nodes)

	edges := make([]model.Edge, 0, len(raw.Edges))
	for _, re := range raw.Edges {
		if re.SourceIndex < 0 || re.SourceIndex >= len(ids) ||
			re.TargetIndex < 0 || re.TargetIndex >= len(ids) {
			logger.Warn("[Extract] Dropping out-of-range edge",
				"graph", s.Title, "source", re.SourceIndex, "target", re.TargetIndex)
			continue
		}
		if re.SourceIndex == re.TargetIndex {
			continue
		}
		src, dst := ids[re.SourceIndex], ids[re.TargetIndex]
		if model.HasEdgeBetween(edges, src, dst) {
			continue
		}
		edgeID, err := gonanoid.New()
		if err != nil {
			return counts, err
		}
		edges = append(edges, model.Edge{ID: edgeID, SourceID: src, TargetID: dst})
	}

	graphID, err := gonanoid.New()
	if err != nil {
		return counts, err
	}
	g := &model.Graph{
		ID:    graphID,
		Name:  s.Title,
		Kind:  model.KindForStyle(raw.Style),
		Style: raw.Style,
		Scope: scope,
		Nodes: nodes,
		Edges: edges,
	}
	if err := p.store.CreateGraph(ctx, g); err != nil {
		return counts, fmt.Errorf("failed to create graph %q: %w", g.Name, err)
	}
	counts.graphs++
	em.toolResult(toolCreateGraph, toolOutput(g.ID, g.Name), s.Title, s.Icon)
	return counts, nil
}

func (p *Pipeline) materializeRecords(ctx context.Context, em *emitter, scope model.Scope, s *Suggestion) (createdCounts, error) {
	var counts createdCounts

	var col *model.Collection
	var err error
	if s.Records.TargetID != "" {
		col, err = p.store.GetCollection(ctx, s.Records.TargetID)
	} else {
		col, err = p.store.GetCollectionByName(ctx, scope, s.Records.TargetName)
	}
	if err != nil {
		return counts, fmt.Errorf("failed to resolve target collection: %w", err)
	}

	for _, name := range s.Records.Items {
		if ctx.Err() != nil {
			return counts, ctx.Err()
		}
		recordID, err := gonanoid.New()
		if err != nil {
			return counts, err
		}
		rec := &model.Record{
			ID:           recordID,
			CollectionID: col.ID,
			Name:         name,
		}
		if err := p.store.CreateRecord(ctx, rec); err != nil {
			logger.Error("[Extract] Failed to create record",
				"collection", col.Name, "record", name, "err", err)
			continue
		}
		counts.records++
		em.toolResult(toolCreateRecord, toolOutput(rec.ID, rec.Name), s.Title, s.Icon)
	}
	return counts, nil
}

// timelineMetadata carries a node's schedule hints into node metadata.
// Missing values are left out; view projection fills in defaults.
func timelineMetadata(n RawNode) map[string]any {
	meta := make(map[string]any)
	if n.Start != nil && *n.Start != "" {
		meta[model.MetaStart] = *n.Start
	}
	if n.End != nil && *n.End != "" {
		meta[model.MetaEnd] = *n.End
	}
	if n.Progress != nil {
		meta[model.MetaProgress] = *n.Progress
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// breakParentCycles clears the parent link of any node whose parent chain
// loops back on itself, so the node set always forms a forest. Generation
// backends occasionally emit mutually-referencing parent indices.
func breakParentCycles(graphName string, nodes []model.Node) {
	parents := make(map[string]string, len(nodes))
	for _, n := range nodes {
		parents[n.ID] = n.ParentID
	}
	for i := range nodes {
		seen := map[string]struct{}{nodes[i].ID: {}}
		cur := nodes[i].ParentID
		for cur != "" {
			if _, ok := seen[cur]; ok {
				logger.Warn("[Extract] Breaking parent cycle", "graph", graphName, "node", nodes[i].Content)
				nodes[i].ParentID = ""
				parents[nodes[i].ID] = ""
				break
			}
			seen[cur] = struct{}{}
			cur = parents[cur]
		}
	}
}

func toolOutput(id, name string) string {
	out, _ := json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{ID: id, Name: name})
	return string(out)
}
