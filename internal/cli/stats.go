package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/database"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/logger"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print migration progress statistics",
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

			store := catalog.NewMongoStore(client.Database(cfg.MongoDatabase))
			stats, err := catalog.NewService(store, nil, log).Stats(ctx)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
