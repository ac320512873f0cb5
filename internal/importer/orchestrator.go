// Package importer drives the batch import of the legacy dump into the
// review store, committing checkpoint state after every batch so an
// interrupted run resumes without duplicating committed work.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/internal/checkpoint"
	"github.com/jpcardozx/nova-ipe-sub022/internal/config"
	"github.com/jpcardozx/nova-ipe-sub022/internal/wpl"
)

// Params wires an orchestrator.
type Params struct {
	Schema      *config.ColumnSchema
	Photos      *wpl.PhotoResolver
	Store       catalog.ReviewStore
	Checkpoints checkpoint.Store
	BatchSize   int
	Log         *logrus.Logger
}

// Orchestrator is the single sequential batch loop of one import run. It
// is the only writer of its checkpoint; concurrent orchestrator
// instances need external mutual exclusion on checkpoint persistence.
type Orchestrator struct {
	decoder     *wpl.Decoder
	schema      *config.ColumnSchema
	normalizer  *wpl.Normalizer
	store       catalog.ReviewStore
	checkpoints checkpoint.Store
	batchSize   int
	log         *logrus.Logger
}

// New returns an orchestrator for the given schema and stores.
func New(p Params) *Orchestrator {
	batchSize := p.BatchSize
	if batchSize < 1 {
		batchSize = 30
	}
	return &Orchestrator{
		decoder:     wpl.NewDecoder(p.Schema.Table),
		schema:      p.Schema,
		normalizer:  wpl.NewNormalizer(p.Schema, p.Photos),
		store:       p.Store,
		checkpoints: p.Checkpoints,
		batchSize:   batchSize,
		log:         p.Log,
	}
}

type sortedRow struct {
	row wpl.Row
	id  int64
}

// Run imports one dump block. Row-level failures are recorded in the
// checkpoint and never abort the run; only a checkpoint persistence
// failure does, because reprocessing is cheaper than losing track of
// progress.
func (o *Orchestrator) Run(ctx context.Context, dump string) (*checkpoint.Checkpoint, error) {
	rows := o.sortedRows(dump)

	cp, err := o.checkpoints.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	o.log.WithFields(logrus.Fields{
		"rows":              len(rows),
		"batch_size":        o.batchSize,
		"last_processed_id": cp.LastProcessedID,
	}).Info("Starting import")

	for start := 0; start < len(rows); start += o.batchSize {
		if err := ctx.Err(); err != nil {
			return cp, err
		}

		end := start + o.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		minID, maxID := idRange(batch)
		batchID := checkpoint.BatchID(minID, maxID)

		if cp.BatchDone(batchID) {
			o.log.WithField("batch", batchID).Debug("Batch already committed, skipping")
			continue
		}

		processed := o.processBatch(ctx, batch, cp)

		cp.CompleteBatch(batchID, maxID, processed)
		if err := o.checkpoints.CommitBatch(ctx, cp); err != nil {
			return cp, fmt.Errorf("persist checkpoint after batch %s: %w", batchID, err)
		}

		o.log.WithFields(logrus.Fields{
			"batch":     batchID,
			"processed": processed,
			"total":     cp.TotalProcessed,
			"failed":    cp.TotalFailed,
		}).Info("Batch committed")
	}

	return cp, nil
}

// processBatch attempts every row of the batch. A bad row is logged to
// the checkpoint and the loop keeps going.
func (o *Orchestrator) processBatch(ctx context.Context, batch []sortedRow, cp *checkpoint.Checkpoint) int {
	processed := 0
	for _, r := range batch {
		rec, err := o.normalizer.Normalize(r.row)
		if errors.Is(err, wpl.ErrDeleted) {
			continue
		}
		if err != nil {
			cp.RecordError(r.id, err.Error())
			continue
		}

		if err := o.store.Upsert(ctx, rec); err != nil {
			cp.RecordError(rec.SourceID, err.Error())
			continue
		}
		processed++
	}
	return processed
}

// sortedRows decodes the dump and orders rows by source id so batch
// boundaries, and therefore batch identifiers, are deterministic for a
// given dump. Rows without a readable id sort first with id 0 and fail
// later during normalization inside their batch.
func (o *Orchestrator) sortedRows(dump string) []sortedRow {
	iter := o.decoder.Decode(dump)

	rows := make([]sortedRow, 0, iter.Len())
	for {
		row, ok := iter.Next()
		if !ok {
			break
		}
		id, _ := wpl.PeekID(o.schema, row)
		rows = append(rows, sortedRow{row: row, id: id})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].id < rows[j].id })
	return rows
}

func idRange(batch []sortedRow) (minID, maxID int64) {
	if len(batch) == 0 {
		return 0, 0
	}
	minID, maxID = batch[0].id, batch[0].id
	for _, r := range batch[1:] {
		if r.id < minID {
			minID = r.id
		}
		if r.id > maxID {
			maxID = r.id
		}
	}
	return minID, maxID
}
