package model

// FieldType is the primitive type of a collection field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRelation FieldType = "relation"
)

// ParseFieldType maps a declared type name to a FieldType, defaulting to text.
func ParseFieldType(s string) FieldType {
	switch FieldType(s) {
	case FieldTypeNumber, FieldTypeDate, FieldTypeCheckbox, FieldTypeSelect, FieldTypeRelation:
		return FieldType(s)
	default:
		return FieldTypeText
	}
}

// FieldDef is one entry of a collection's ordered field schema.
type FieldDef struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           FieldType `json:"type"`
	Options        []string  `json:"options,omitempty"`
	Required       bool      `json:"required,omitempty"`
	RelationTarget string    `json:"relation_target,omitempty"`
}

// Collection is a named, user-defined typed table.
type Collection struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Icon   string     `json:"icon,omitempty"`
	Scope  Scope      `json:"scope"`
	Fields []FieldDef `json:"fields"`
}

// FieldByName resolves a declared field name to its definition,
// case-sensitively. Returns nil when no field matches.
func (c *Collection) FieldByName(name string) *FieldDef {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// Record is one row of a collection. Values maps field-definition ids to
// their value. Stale entries pointing at removed field definitions are
// tolerated on read; they are a display concern.
type Record struct {
	ID           string            `json:"id"`
	CollectionID string            `json:"collection_id"`
	Name         string            `json:"name"`
	Values       map[string]string `json:"values,omitempty"`
}
