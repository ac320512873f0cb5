package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ColumnSchema describes how the positional values of one decoded dump
// tuple map onto named columns. The legacy dump carries no column list in
// its INSERT statements, so positions are the only source of truth.
type ColumnSchema struct {
	Table            string   `json:"table"`
	Columns          []Column `json:"columns"`
	IDColumn         string   `json:"idColumn"`
	DeletedColumn    string   `json:"deletedColumn"`
	PhotoCountColumn string   `json:"photoCountColumn"`
}

// Column names a single position of the tuple. Positions not listed here
// are ignored, mirroring the legacy importer which only lifted the fields
// it knew about.
type Column struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// LoadSchema reads and parses a column schema file from the given path.
func LoadSchema(filePath string) (*ColumnSchema, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file '%s': %w", filePath, err)
	}

	var schema ColumnSchema
	if err := json.Unmarshal(bytes, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema file '%s': %w", filePath, err)
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema file '%s': %w", filePath, err)
	}

	return &schema, nil
}

// Validate checks that the special columns are present in the column list.
func (s *ColumnSchema) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("schema is missing a table name")
	}
	for _, name := range []string{s.IDColumn, s.DeletedColumn, s.PhotoCountColumn} {
		if name == "" {
			continue
		}
		if _, ok := s.index(name); !ok {
			return fmt.Errorf("column %q is not declared in the column list", name)
		}
	}
	if s.IDColumn == "" {
		return fmt.Errorf("schema is missing idColumn")
	}
	return nil
}

// MinFields is the number of positional values a tuple must carry to
// satisfy every declared column. Shorter tuples are malformed.
func (s *ColumnSchema) MinFields() int {
	max := -1
	for _, c := range s.Columns {
		if c.Index > max {
			max = c.Index
		}
	}
	return max + 1
}

// Index returns the tuple position of a named column.
func (s *ColumnSchema) Index(name string) (int, bool) {
	return s.index(name)
}

func (s *ColumnSchema) index(name string) (int, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Index, true
		}
	}
	return 0, false
}

// DefaultWPLSchema returns the built-in schema for the wp_wpl_properties
// table of the legacy export. Index positions were taken from the dump
// shipped by the legacy system.
func DefaultWPLSchema() *ColumnSchema {
	return &ColumnSchema{
		Table:            "wp_wpl_properties",
		IDColumn:         "id",
		DeletedColumn:    "deleted",
		PhotoCountColumn: "pic_numb",
		Columns: []Column{
			{Name: "id", Index: 0},
			{Name: "kind", Index: 1},
			{Name: "deleted", Index: 2},
			{Name: "mls_id", Index: 3},
			{Name: "pic_numb", Index: 6},
			{Name: "listing", Index: 8},
			{Name: "property_type", Index: 9},
			{Name: "location1_name", Index: 17},
			{Name: "location2_name", Index: 18},
			{Name: "location3_name", Index: 19},
			{Name: "location4_name", Index: 20},
			{Name: "price", Index: 25},
			{Name: "price_unit", Index: 26},
			{Name: "bedrooms", Index: 29},
			{Name: "bathrooms", Index: 31},
			{Name: "living_area", Index: 32},
			{Name: "living_area_unit", Index: 33},
			{Name: "lot_area", Index: 35},
			{Name: "lot_area_unit", Index: 36},
			{Name: "add_date", Index: 42},
			{Name: "field_42", Index: 63},
			{Name: "field_312", Index: 64},
			{Name: "field_313", Index: 65},
			{Name: "field_308", Index: 66},
			{Name: "rendered_data", Index: 125},
		},
	}
}
