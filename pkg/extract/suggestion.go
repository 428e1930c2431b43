package extract

import "github.com/trellis-labs/trellis/backend/pkg/model"

// Suggestion is the internal, tagged representation of one extraction
// proposal. Exactly one of Collection, Graph or Records is set. Suggestions
// live only for the duration of one pipeline run and are never persisted;
// confirming one creates durable entities instead.
type Suggestion struct {
	Title         string `json:"title"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	SourceHeading string `json:"sourceHeading,omitempty"`

	Collection *CollectionSuggestion `json:"collection,omitempty"`
	Graph      *GraphSuggestion      `json:"graph,omitempty"`
	Records    *RecordsSuggestion    `json:"records,omitempty"`
}

// Kind returns the suggestion's wire kind name.
func (s *Suggestion) Kind() string {
	switch {
	case s.Collection != nil:
		return KindCollectionWithRecords
	case s.Graph != nil:
		return KindGraphNodes
	default:
		return KindStandaloneRecords
	}
}

// CollectionSuggestion proposes a new typed collection plus its records.
type CollectionSuggestion struct {
	Fields []RawFieldDef `json:"fields"`
	Items  []RawItem     `json:"items"`
}

// GraphSuggestion proposes a new graph. Node parents and edge endpoints are
// 0-based indices into Nodes, resolved to durable ids at materialization.
type GraphSuggestion struct {
	Nodes []RawNode   `json:"nodes"`
	Edges []RawEdge   `json:"edges"`
	Style model.Style `json:"style"`
}

// RecordsSuggestion proposes records to append to an existing collection,
// referenced by durable id or by name.
type RecordsSuggestion struct {
	TargetID   string   `json:"targetId,omitempty"`
	TargetName string   `json:"targetName,omitempty"`
	Items      []string `json:"items"`
}

// fromRaw converts a validated boundary suggestion into the tagged form.
func fromRaw(r RawSuggestion) Suggestion {
	s := Suggestion{
		Title:       r.Title,
		Icon:        r.Icon,
		Description: r.Description,
	}
	if r.SourceHeading != nil {
		s.SourceHeading = *r.SourceHeading
	}

	switch r.Type {
	case KindCollectionWithRecords:
		s.Collection = &CollectionSuggestion{Fields: r.Fields, Items: r.Items}
	case KindGraphNodes:
		s.Graph = &GraphSuggestion{
			Nodes: r.Nodes,
			Edges: r.Edges,
			Style: model.Style(*r.ViewStyle),
		}
	case KindStandaloneRecords:
		rs := &RecordsSuggestion{}
		if r.TargetCollectionID != nil {
			rs.TargetID = *r.TargetCollectionID
		}
		if r.TargetCollectionName != nil {
			rs.TargetName = *r.TargetCollectionName
		}
		for _, item := range r.StandaloneItems {
			rs.Items = append(rs.Items, item.Name)
		}
		s.Records = rs
	}
	return s
}
