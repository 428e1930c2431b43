package views

import (
	"testing"
	"time"

	"github.com/trellis-labs/trellis/backend/pkg/model"
)

func testGraph(kind model.StructuralKind, style model.Style) *model.Graph {
	return &model.Graph{
		ID:    "g1",
		Name:  "Test",
		Kind:  kind,
		Style: style,
		Nodes: []model.Node{
			{ID: "a", Content: "A"},
			{ID: "b", Content: "B", ParentID: "a"},
			{ID: "c", Content: "C", ParentID: "b"},
			{ID: "d", Content: "D"},
		},
		Edges: []model.Edge{{ID: "e1", SourceID: "b", TargetID: "d"}},
	}
}

func TestProjectPopulatesExactlyOneField(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		style model.Style
		check func(p Projection) bool
	}{
		{model.StyleOutline, func(p Projection) bool { return p.Outline != nil }},
		{model.StyleMindmap, func(p Projection) bool { return p.Outline != nil }},
		{model.StyleKanban, func(p Projection) bool { return p.Board != nil }},
		{model.StyleGrid, func(p Projection) bool { return p.Board != nil }},
		{model.StyleTable, func(p Projection) bool { return p.Board != nil }},
		{model.StyleFlow, func(p Projection) bool { return p.Flow != nil }},
		{model.StyleTimeline, func(p Projection) bool { return p.Timeline != nil }},
		{model.StyleFreeform, func(p Projection) bool { return p.Canvas != nil }},
	}
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			g := testGraph(model.KindForStyle(tt.style), tt.style)
			p := Project(g, now)
			if !tt.check(p) {
				t.Errorf("style %s did not populate its projection: %+v", tt.style, p)
			}
			populated := 0
			if p.Outline != nil {
				populated++
			}
			if p.Board != nil {
				populated++
			}
			if p.Flow != nil {
				populated++
			}
			if p.Timeline != nil {
				populated++
			}
			if p.Canvas != nil {
				populated++
			}
			if populated != 1 {
				t.Errorf("style %s populated %d projection fields", tt.style, populated)
			}
		})
	}
}

func TestOutlineNesting(t *testing.T) {
	g := testGraph(model.KindHierarchy, model.StyleOutline)
	items := Outline(g)
	if len(items) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(items))
	}
	if items[0].Node.ID != "a" || len(items[0].Children) != 1 {
		t.Fatalf("unexpected first root: %+v", items[0])
	}
	if items[0].Children[0].Node.ID != "b" || len(items[0].Children[0].Children) != 1 {
		t.Errorf("nesting lost below b: %+v", items[0].Children[0])
	}
	if items[1].Node.ID != "d" || len(items[1].Children) != 0 {
		t.Errorf("unexpected second root: %+v", items[1])
	}
}

func TestBoardFlattensDescendants(t *testing.T) {
	g := testGraph(model.KindBoard, model.StyleKanban)
	view := Board(g)
	if len(view.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(view.Columns))
	}
	// c sits two levels below a but lands in a's column
	first := view.Columns[0]
	if first.Node.ID != "a" || len(first.Cards) != 2 {
		t.Fatalf("expected descendants flattened into column a, got %+v", first)
	}
	if len(view.Links) != 1 {
		t.Errorf("expected the edge carried as a link, got %+v", view.Links)
	}
}

func TestFreeformPositions(t *testing.T) {
	g := &model.Graph{
		Kind:  model.KindCanvas,
		Style: model.StyleFreeform,
		Nodes: []model.Node{
			{ID: "a", Content: "A", Metadata: map[string]any{model.MetaPosX: 120.5, model.MetaPosY: 40.0}},
			{ID: "b", Content: "B"},
		},
	}
	view := Freeform(g)
	if view.Nodes[0].X != 120.5 || view.Nodes[0].Y != 40.0 {
		t.Errorf("positions not read from metadata: %+v", view.Nodes[0])
	}
	if view.Nodes[1].X != 0 || view.Nodes[1].Y != 0 {
		t.Errorf("missing positions must default to origin: %+v", view.Nodes[1])
	}
}

func TestTimelineDefaults(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	g := &model.Graph{
		Kind:  model.KindBoard,
		Style: model.StyleTimeline,
		Nodes: []model.Node{
			{ID: "a", Content: "scheduled", Metadata: map[string]any{
				model.MetaStart:    "2026-09-01",
				model.MetaEnd:      "2026-09-12",
				model.MetaProgress: 40.0,
			}},
			{ID: "b", Content: "unscheduled"},
			{ID: "c", Content: "start only", Metadata: map[string]any{
				model.MetaStart: "2026-10-01",
			}},
			{ID: "d", Content: "end before start", Metadata: map[string]any{
				model.MetaStart: "2026-10-10",
				model.MetaEnd:   "2026-10-01",
			}},
		},
	}
	tasks := Timeline(g, now)
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(tasks))
	}

	scheduled := tasks[0]
	if scheduled.Start != time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) ||
		scheduled.End != time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC) ||
		scheduled.Progress != 40 {
		t.Errorf("scheduled task misread: %+v", scheduled)
	}

	unscheduled := tasks[1]
	if !unscheduled.Start.Equal(now) {
		t.Errorf("missing start must default to now, got %v", unscheduled.Start)
	}
	if !unscheduled.End.Equal(now.Add(defaultTaskSpan)) {
		t.Errorf("missing end must default to start plus a week, got %v", unscheduled.End)
	}
	if unscheduled.Progress != 0 {
		t.Errorf("missing progress must default to 0, got %v", unscheduled.Progress)
	}

	startOnly := tasks[2]
	if !startOnly.End.Equal(startOnly.Start.Add(defaultTaskSpan)) {
		t.Errorf("missing end must default to start plus a week, got %+v", startOnly)
	}

	inverted := tasks[3]
	if !inverted.End.Equal(inverted.Start.Add(defaultTaskSpan)) {
		t.Errorf("end before start must be repaired to start plus a week, got %+v", inverted)
	}
}

func TestMetaTimeLayouts(t *testing.T) {
	meta := map[string]any{
		"rfc":  "2026-09-01T08:30:00Z",
		"date": "2026-09-01",
		"junk": "not a time",
	}
	if ts, ok := metaTime(meta, "rfc"); !ok || ts.Hour() != 8 {
		t.Errorf("RFC3339 not parsed: %v %v", ts, ok)
	}
	if ts, ok := metaTime(meta, "date"); !ok || ts.Day() != 1 {
		t.Errorf("date layout not parsed: %v %v", ts, ok)
	}
	if _, ok := metaTime(meta, "junk"); ok {
		t.Error("junk string must not parse")
	}
	if _, ok := metaTime(nil, "rfc"); ok {
		t.Error("nil metadata must not parse")
	}
}
