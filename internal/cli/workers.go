package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/internal/destination"
	"github.com/jpcardozx/nova-ipe-sub022/internal/migration"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/database"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/logger"
)

func newWorkersCmd() *cobra.Command {
	var (
		workers      int
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Run migration workers that push approved listings into the production catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			log := logger.L()

			if err := cfg.RequireMongo(); err != nil {
				return err
			}
			if err := cfg.RequireCatalog(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := database.ConnectMongo(cfg.MongoConnString)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			sqlDB, err := database.ConnectSQL(cfg.CatalogConnString)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			db := client.Database(cfg.MongoDatabase)
			queue := migration.NewMongoQueue(db)
			if err := queue.EnsureIndexes(ctx); err != nil {
				return err
			}
			reviews := catalog.NewService(catalog.NewMongoStore(db), queue, log)
			dest := destination.NewSQLCatalog(sqlDB)

			log.Infof("Starting %d migration worker(s)", workers)
			migration.NewWorker(queue, reviews, dest, log, pollInterval).Run(ctx, workers)
			log.Info("Workers stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 2, "number of concurrent workers")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 5*time.Second, "idle wait between queue polls")
	return cmd
}
