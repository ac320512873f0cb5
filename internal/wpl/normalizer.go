package wpl

import (
	"fmt"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/internal/config"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/utils"
)

// SourceRow is one decoded tuple keyed by column name, pre-normalization.
type SourceRow map[string]Field

// MapRow applies the positional schema to a decoded tuple. Tuples with
// fewer fields than the schema expects are malformed; they are never
// padded.
func MapRow(schema *config.ColumnSchema, row Row) (SourceRow, error) {
	if len(row) < schema.MinFields() {
		return nil, &DecodeError{
			Reason: fmt.Sprintf("tuple has %d fields, schema expects at least %d", len(row), schema.MinFields()),
		}
	}
	src := make(SourceRow, len(schema.Columns))
	for _, c := range schema.Columns {
		src[c.Name] = row[c.Index]
	}
	return src, nil
}

// PeekID extracts the source id of a raw tuple without normalizing it.
// Used by the orchestrator to order rows and derive batch identifiers.
func PeekID(schema *config.ColumnSchema, row Row) (int64, bool) {
	idx, ok := schema.Index(schema.IDColumn)
	if !ok || idx >= len(row) {
		return 0, false
	}
	f := row[idx]
	if f.Null {
		return 0, false
	}
	id, err := utils.ParseInt64(f.Value)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Normalizer maps decoded rows into canonical property records.
type Normalizer struct {
	schema *config.ColumnSchema
	photos *PhotoResolver
}

// NewNormalizer returns a normalizer for the given column schema and
// photo convention.
func NewNormalizer(schema *config.ColumnSchema, photos *PhotoResolver) *Normalizer {
	return &Normalizer{schema: schema, photos: photos}
}

// Normalize turns one decoded tuple into a canonical property. Rows
// flagged deleted return ErrDeleted and are excluded from the canonical
// set entirely. Missing optional fields fall back to defaults; only an
// unusable source id fails the row.
func (n *Normalizer) Normalize(row Row) (*catalog.Property, error) {
	src, err := MapRow(n.schema, row)
	if err != nil {
		return nil, err
	}

	idField := src[n.schema.IDColumn]
	if idField.Null {
		return nil, &NormalizationError{Reason: "source id is NULL"}
	}
	id, err := utils.ParseInt64(idField.Value)
	if err != nil || id <= 0 {
		return nil, &NormalizationError{Reason: fmt.Sprintf("source id %q is not a positive integer", idField.Value)}
	}

	if n.schema.DeletedColumn != "" && utils.Truthy(src[n.schema.DeletedColumn].Value) {
		return nil, ErrDeleted
	}

	photoCount := 0
	if n.schema.PhotoCountColumn != "" {
		photoCount = utils.IntOrZero(src[n.schema.PhotoCountColumn].Value)
		if photoCount < 0 {
			photoCount = 0
		}
	}

	// Schema-agnostic passthrough: every named column travels verbatim
	// so source-specific fields survive without the normalizer knowing
	// them. NULL columns are absent rather than empty.
	payload := make(map[string]string, len(src))
	for name, f := range src {
		if f.Null {
			continue
		}
		payload[name] = f.Value
	}

	urls := n.photos.URLs(id, photoCount)

	return &catalog.Property{
		SourceID:     id,
		Payload:      payload,
		Status:       catalog.StatusPending,
		PhotoCount:   photoCount,
		PhotoURLs:    urls,
		ThumbnailURL: n.photos.Thumbnail(urls),
	}, nil
}
