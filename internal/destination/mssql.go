package destination

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/utils"
)

const catalogTable = "catalog_properties"

// SQLCatalog writes entries into the SQL Server production catalog.
type SQLCatalog struct {
	db *sql.DB
}

// NewSQLCatalog returns a catalog writer over an open connection.
func NewSQLCatalog(db *sql.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

// UpsertEntry checks for an existing entry by source id and inserts or
// updates accordingly, returning the destination identifier. The full
// payload travels along as JSON so no legacy field is lost on the way in.
func (c *SQLCatalog) UpsertEntry(ctx context.Context, p *catalog.Property) (string, error) {
	payloadJSON, err := json.Marshal(p.Payload)
	if err != nil {
		return "", fmt.Errorf("encode payload for %d: %w", p.SourceID, err)
	}

	get := func(key string) string { return p.Payload[key] }
	title := get("field_313")
	if title == "" {
		title = get("field_312")
	}
	if title == "" {
		title = fmt.Sprintf("Imóvel %d", p.SourceID)
	}

	now := time.Now().UTC()
	args := []interface{}{
		p.SourceID,                             // @p1 wp_id
		title,                                  // @p2
		get("field_308"),                       // @p3 description
		get("mls_id"),                          // @p4
		utils.Float64OrZero(get("price")),      // @p5
		utils.IntOrZero(get("bedrooms")),       // @p6
		utils.IntOrZero(get("bathrooms")),      // @p7
		utils.Float64OrZero(get("living_area")), // @p8
		get("location3_name"),                  // @p9 city
		get("location4_name"),                  // @p10 neighborhood
		get("field_42"),                        // @p11 street
		p.PhotoCount,                           // @p12
		p.ThumbnailURL,                         // @p13
		string(payloadJSON),                    // @p14
		now,                                    // @p15
	}

	var existingID string
	checkQuery := fmt.Sprintf("SELECT id FROM %s WHERE wp_id = @p1", catalogTable)
	err = c.db.QueryRowContext(ctx, checkQuery, p.SourceID).Scan(&existingID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		id := uuid.NewString()
		insertQuery := fmt.Sprintf(`INSERT INTO %s
			(wp_id, title, description, mls_id, price, bedrooms, bathrooms, living_area,
			 city, neighborhood, street, photo_count, thumbnail_url, payload, updated_at, id, created_at)
			VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11, @p12, @p13, @p14, @p15, @p16, @p17)`,
			catalogTable)
		if _, err := c.db.ExecContext(ctx, insertQuery, append(args, id, now)...); err != nil {
			return "", fmt.Errorf("insert catalog entry for %d: %w", p.SourceID, err)
		}
		return id, nil

	case err != nil:
		return "", fmt.Errorf("check catalog entry for %d: %w", p.SourceID, err)

	default:
		updateQuery := fmt.Sprintf(`UPDATE %s SET
			title = @p2, description = @p3, mls_id = @p4, price = @p5, bedrooms = @p6,
			bathrooms = @p7, living_area = @p8, city = @p9, neighborhood = @p10,
			street = @p11, photo_count = @p12, thumbnail_url = @p13, payload = @p14,
			updated_at = @p15 WHERE wp_id = @p1`,
			catalogTable)
		if _, err := c.db.ExecContext(ctx, updateQuery, args...); err != nil {
			return "", fmt.Errorf("update catalog entry for %d: %w", p.SourceID, err)
		}
		return existingID, nil
	}
}
