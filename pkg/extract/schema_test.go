package extract

import (
	"strings"
	"testing"
)

func validGraphSuggestion() RawSuggestion {
	return RawSuggestion{
		Type:      KindGraphNodes,
		Title:     "Plan",
		Icon:      "🗺️",
		Nodes:     []RawNode{{Content: "a"}},
		ViewStyle: strPtr("outline"),
	}
}

func TestRawSuggestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RawSuggestion)
		wantErr string
	}{
		{
			name:   "valid graph",
			mutate: func(r *RawSuggestion) {},
		},
		{
			name: "valid collection",
			mutate: func(r *RawSuggestion) {
				*r = RawSuggestion{
					Type:   KindCollectionWithRecords,
					Title:  "Tasks",
					Fields: []RawFieldDef{{Name: "Owner", Type: "text"}},
					Items:  []RawItem{{Name: "one"}},
				}
			},
		},
		{
			name: "valid standalone records",
			mutate: func(r *RawSuggestion) {
				*r = RawSuggestion{
					Type:                 KindStandaloneRecords,
					Title:                "More tasks",
					TargetCollectionName: strPtr("Tasks"),
					StandaloneItems:      []RawStandaloneItem{{Name: "two"}},
				}
			},
		},
		{
			name:    "unknown type",
			mutate:  func(r *RawSuggestion) { r.Type = "mystery" },
			wantErr: "unknown type",
		},
		{
			name:    "missing title",
			mutate:  func(r *RawSuggestion) { r.Title = "" },
			wantErr: "title is required",
		},
		{
			name:    "collection payload on a graph suggestion",
			mutate:  func(r *RawSuggestion) { r.Fields = []RawFieldDef{{Name: "x", Type: "text"}} },
			wantErr: "collection fields set",
		},
		{
			name: "graph payload on a collection suggestion",
			mutate: func(r *RawSuggestion) {
				*r = RawSuggestion{
					Type:   KindCollectionWithRecords,
					Title:  "Tasks",
					Fields: []RawFieldDef{{Name: "Owner", Type: "text"}},
					Nodes:  []RawNode{{Content: "stray"}},
				}
			},
			wantErr: "graph fields set",
		},
		{
			name: "standalone payload on a graph suggestion",
			mutate: func(r *RawSuggestion) {
				r.TargetCollectionID = strPtr("col_1")
			},
			wantErr: "standalone record fields set",
		},
		{
			name:    "graph without nodes",
			mutate:  func(r *RawSuggestion) { r.Nodes = nil },
			wantErr: "at least one node",
		},
		{
			name:    "graph without style",
			mutate:  func(r *RawSuggestion) { r.ViewStyle = nil },
			wantErr: "requires a viewStyle",
		},
		{
			name:    "node without content",
			mutate:  func(r *RawSuggestion) { r.Nodes = []RawNode{{Content: ""}} },
			wantErr: "no content",
		},
		{
			name: "collection without fields",
			mutate: func(r *RawSuggestion) {
				*r = RawSuggestion{Type: KindCollectionWithRecords, Title: "Tasks"}
			},
			wantErr: "at least one field",
		},
		{
			name: "standalone without target",
			mutate: func(r *RawSuggestion) {
				*r = RawSuggestion{
					Type:            KindStandaloneRecords,
					Title:           "More",
					StandaloneItems: []RawStandaloneItem{{Name: "x"}},
				}
			},
			wantErr: "target collection",
		},
		{
			name: "standalone without items",
			mutate: func(r *RawSuggestion) {
				*r = RawSuggestion{
					Type:               KindStandaloneRecords,
					Title:              "More",
					TargetCollectionID: strPtr("col_1"),
				}
			},
			wantErr: "at least one item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validGraphSuggestion()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestFromRawKinds(t *testing.T) {
	graph := fromRaw(validGraphSuggestion())
	if graph.Kind() != KindGraphNodes || graph.Graph == nil || graph.Collection != nil || graph.Records != nil {
		t.Errorf("graph conversion produced %+v", graph)
	}

	col := fromRaw(RawSuggestion{
		Type:   KindCollectionWithRecords,
		Title:  "Tasks",
		Fields: []RawFieldDef{{Name: "Owner", Type: "text"}},
	})
	if col.Kind() != KindCollectionWithRecords || col.Collection == nil {
		t.Errorf("collection conversion produced %+v", col)
	}

	recs := fromRaw(RawSuggestion{
		Type:                 KindStandaloneRecords,
		Title:                "More",
		TargetCollectionName: strPtr("Tasks"),
		StandaloneItems:      []RawStandaloneItem{{Name: "x"}},
	})
	if recs.Kind() != KindStandaloneRecords || recs.Records == nil || recs.Records.TargetName != "Tasks" {
		t.Errorf("records conversion produced %+v", recs)
	}
}
