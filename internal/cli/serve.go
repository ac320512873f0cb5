package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jpcardozx/nova-ipe-sub022/internal/api"
	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/internal/migration"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/database"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/logger"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			log := logger.L()

			if err := cfg.RequireMongo(); err != nil {
				return err
			}

			ctx := context.Background()
			client, err := database.ConnectMongo(cfg.MongoConnString)
			if err != nil {
				return err
			}
			defer client.Disconnect(ctx)

			db := client.Database(cfg.MongoDatabase)
			queue := migration.NewMongoQueue(db)
			if err := queue.EnsureIndexes(ctx); err != nil {
				return err
			}
			reviews := catalog.NewService(catalog.NewMongoStore(db), queue, log)

			if addr == "" {
				addr = cfg.APIAddr
			}
			return api.NewServer(reviews, queue, log).Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: API_ADDR or :8080)")
	return cmd
}
