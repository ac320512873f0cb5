package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jpcardozx/nova-ipe-sub022/internal/checkpoint"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/database"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/logger"
)

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect and manage import checkpoints",
	}
	cmd.AddCommand(newCheckpointResetCmd())
	return cmd
}

func newCheckpointResetCmd() *cobra.Command {
	var (
		checkpointPath  string
		mongoCheckpoint bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard import progress so the next run starts from scratch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			log := logger.L()

			ctx := context.Background()

			var store checkpoint.Store
			if mongoCheckpoint {
				if err := cfg.RequireMongo(); err != nil {
					return err
				}
				client, err := database.ConnectMongo(cfg.MongoConnString)
				if err != nil {
					return err
				}
				defer client.Disconnect(ctx)
				store = checkpoint.NewMongoStore(client.Database(cfg.MongoDatabase), "")
			} else {
				store = checkpoint.NewFileStore(checkpointPath)
			}

			if err := store.Reset(ctx); err != nil {
				return err
			}
			log.Info("Checkpoint reset")
			return nil
		},
	}

	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "import-checkpoint.json", "checkpoint file path")
	cmd.Flags().BoolVar(&mongoCheckpoint, "mongo-checkpoint", false, "reset the MongoDB checkpoint instead of a file")
	return cmd
}
