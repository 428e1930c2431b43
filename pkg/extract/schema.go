package extract

import "fmt"

// Suggestion kinds the generation backend may emit.
const (
	KindCollectionWithRecords = "collection_with_records"
	KindGraphNodes            = "graph_nodes"
	KindStandaloneRecords     = "standalone_records"
)

// RawSuggestion is the flat suggestion shape at the generation boundary.
// Schema-constrained backends require a fixed field set, so every
// kind-specific field is declared on one struct and must be null for
// non-matching kinds. Validate enforces that asymmetry; afterwards the
// value is converted to the internal tagged Suggestion and never used again.
type RawSuggestion struct {
	Type          string  `json:"type" jsonschema:"enum=collection_with_records,enum=graph_nodes,enum=standalone_records" jsonschema_description:"Kind of this suggestion"`
	Title         string  `json:"title" jsonschema_description:"Short human-readable title, under 60 characters"`
	Icon          string  `json:"icon" jsonschema_description:"A single emoji representing this suggestion"`
	Description   string  `json:"description" jsonschema_description:"One sentence describing what was found"`
	SourceHeading *string `json:"sourceHeading" jsonschema_description:"The heading of the input section this came from, or null"`

	// collection_with_records only
	Fields []RawFieldDef `json:"fields" jsonschema_description:"Field definitions, only for collection_with_records, null otherwise"`
	Items  []RawItem     `json:"items" jsonschema_description:"Records with field values, only for collection_with_records, null otherwise"`

	// graph_nodes only
	Nodes     []RawNode `json:"nodes" jsonschema_description:"Graph nodes, only for graph_nodes, null otherwise"`
	Edges     []RawEdge `json:"edges" jsonschema_description:"Non-hierarchical links between nodes, only for graph_nodes, null otherwise"`
	ViewStyle *string   `json:"viewStyle" jsonschema:"enum=outline,enum=mindmap,enum=kanban,enum=flow,enum=grid,enum=table,enum=timeline,enum=freeform" jsonschema_description:"Recommended style, required for graph_nodes, null otherwise"`

	// standalone_records only
	TargetCollectionID   *string             `json:"targetCollectionId" jsonschema_description:"Id of the existing collection to add records to, only for standalone_records"`
	TargetCollectionName *string             `json:"targetCollectionName" jsonschema_description:"Name of the existing collection, used when the id is unknown, only for standalone_records"`
	StandaloneItems      []RawStandaloneItem `json:"standaloneItems" jsonschema_description:"Records to append, only for standalone_records, null otherwise"`
}

// RawFieldDef declares one field of a suggested collection.
type RawFieldDef struct {
	Name string `json:"name" jsonschema_description:"Field name"`
	Type string `json:"type" jsonschema:"enum=text,enum=number,enum=date,enum=checkbox,enum=select" jsonschema_description:"Primitive field type"`
}

// RawItem is one suggested record with its field values.
type RawItem struct {
	Name   string         `json:"name" jsonschema_description:"Record name"`
	Fields []RawItemField `json:"fields" jsonschema_description:"Field values, each referencing a declared field by name"`
}

// RawItemField assigns a value to a field, addressed by the field's
// declared name.
type RawItemField struct {
	Field string `json:"field" jsonschema_description:"Name of one of the declared fields"`
	Value string `json:"value" jsonschema_description:"Value for that field"`
}

// RawNode is a suggested graph node. ParentIndex is a 0-based index into the
// same suggestion's nodes array, or null for a root.
type RawNode struct {
	Content     string   `json:"content" jsonschema_description:"Node text content"`
	ParentIndex *int     `json:"parentIndex" jsonschema_description:"0-based index of the parent node in this nodes array, or null for a root"`
	Start       *string  `json:"start" jsonschema_description:"Schedule start date (YYYY-MM-DD), only for timeline style, null otherwise"`
	End         *string  `json:"end" jsonschema_description:"Schedule end date (YYYY-MM-DD), only for timeline style, null otherwise"`
	Progress    *float64 `json:"progress" jsonschema_description:"Completion percentage 0-100, only for timeline style, null otherwise"`
}

// RawEdge links two suggested nodes by their 0-based indices.
type RawEdge struct {
	SourceIndex int `json:"sourceIndex" jsonschema_description:"0-based index of the source node"`
	TargetIndex int `json:"targetIndex" jsonschema_description:"0-based index of the target node"`
}

// RawStandaloneItem names one record to append to an existing collection.
type RawStandaloneItem struct {
	Name string `json:"name" jsonschema_description:"Record name"`
}

// analysisResponse is the full structured output requested from the
// generation backend in the analyze stage.
type analysisResponse struct {
	Suggestions []RawSuggestion `json:"suggestions" jsonschema_description:"Structured entities worth extracting from the text, empty when nothing qualifies"`
	Summary     string          `json:"summary" jsonschema_description:"Short natural-language summary of what was found"`
}

// Validate checks one raw suggestion field by field before it is trusted.
func (r *RawSuggestion) Validate() error {
	switch r.Type {
	case KindCollectionWithRecords, KindGraphNodes, KindStandaloneRecords:
	default:
		return fmt.Errorf("unknown type %q", r.Type)
	}
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}

	if r.Type != KindCollectionWithRecords && (len(r.Fields) > 0 || len(r.Items) > 0) {
		return fmt.Errorf("collection fields set on a %s suggestion", r.Type)
	}
	if r.Type != KindGraphNodes && (len(r.Nodes) > 0 || len(r.Edges) > 0 || r.ViewStyle != nil) {
		return fmt.Errorf("graph fields set on a %s suggestion", r.Type)
	}
	if r.Type != KindStandaloneRecords &&
		(r.TargetCollectionID != nil || r.TargetCollectionName != nil || len(r.StandaloneItems) > 0) {
		return fmt.Errorf("standalone record fields set on a %s suggestion", r.Type)
	}

	switch r.Type {
	case KindCollectionWithRecords:
		if len(r.Fields) == 0 {
			return fmt.Errorf("collection_with_records requires at least one field")
		}
		for i, f := range r.Fields {
			if f.Name == "" {
				return fmt.Errorf("field %d has no name", i)
			}
		}
		for i, item := range r.Items {
			if item.Name == "" {
				return fmt.Errorf("item %d has no name", i)
			}
		}
	case KindGraphNodes:
		if len(r.Nodes) == 0 {
			return fmt.Errorf("graph_nodes requires at least one node")
		}
		if r.ViewStyle == nil || *r.ViewStyle == "" {
			return fmt.Errorf("graph_nodes requires a viewStyle")
		}
		for i, n := range r.Nodes {
			if n.Content == "" {
				return fmt.Errorf("node %d has no content", i)
			}
		}
	case KindStandaloneRecords:
		if r.TargetCollectionID == nil && r.TargetCollectionName == nil {
			return fmt.Errorf("standalone_records requires a target collection reference")
		}
		if len(r.StandaloneItems) == 0 {
			return fmt.Errorf("standalone_records requires at least one item")
		}
	}
	return nil
}
