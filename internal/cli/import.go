package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/internal/checkpoint"
	"github.com/jpcardozx/nova-ipe-sub022/internal/importer"
	"github.com/jpcardozx/nova-ipe-sub022/internal/wpl"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/database"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/logger"
)

func newImportCmd() *cobra.Command {
	var (
		dumpPath        string
		schemaPath      string
		batchSize       int
		dryRun          bool
		checkpointPath  string
		mongoCheckpoint bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a legacy SQL dump into the review store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			log := logger.L()

			schema, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}

			dump, err := os.ReadFile(dumpPath)
			if err != nil {
				return fmt.Errorf("read dump file '%s': %w", dumpPath, err)
			}

			ctx := context.Background()

			var store catalog.ReviewStore
			var checkpoints checkpoint.Store

			if dryRun {
				log.Info("Dry run: nothing will be persisted")
				store = catalog.NewMemoryStore()
				checkpoints = checkpoint.NewMemoryStore()
			} else {
				if err := cfg.RequireMongo(); err != nil {
					return err
				}
				client, err := database.ConnectMongo(cfg.MongoConnString)
				if err != nil {
					return err
				}
				defer client.Disconnect(ctx)

				db := client.Database(cfg.MongoDatabase)
				store = catalog.NewMongoStore(db)

				if mongoCheckpoint {
					checkpoints = checkpoint.NewMongoStore(db, "")
				} else {
					checkpoints = checkpoint.NewFileStore(checkpointPath)
				}
			}

			orch := importer.New(importer.Params{
				Schema:      schema,
				Photos:      wpl.NewPhotoResolver(cfg.PhotoBaseURL, cfg.PhotoExt),
				Store:       store,
				Checkpoints: checkpoints,
				BatchSize:   batchSize,
				Log:         log,
			})

			cp, err := orch.Run(ctx, string(dump))
			if err != nil {
				return err
			}

			log.Infof("Import finished: %d imported, %d failed", cp.TotalProcessed, cp.TotalFailed)
			for i, ie := range cp.Errors {
				if i >= 10 {
					log.Warnf("... and %d more errors, see the checkpoint for the full list", len(cp.Errors)-10)
					break
				}
				log.Warnf("Row %d: %s", ie.SourceID, ie.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dumpPath, "dump", "", "path to the legacy SQL dump file (required)")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a column schema JSON file (default: built-in WPL schema)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 30, "rows per committed batch")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and normalize without writing anywhere")
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "import-checkpoint.json", "checkpoint file path")
	cmd.Flags().BoolVar(&mongoCheckpoint, "mongo-checkpoint", false, "store the checkpoint in MongoDB instead of a file")
	cmd.MarkFlagRequired("dump")

	return cmd
}
