package cmd

import (
	"fmt"
	"stock-app/config"
	"stock-app/database"
	"stock-app/migration"
	"stock-app/realtime"
	"stock-app/routes"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate, seed reference data and start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			if err := migration.Migrate(rt.db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			if err := database.RunSeeders(rt.db, config.TenantID, false); err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			ctx := cmd.Context()
			hub := realtime.NewHub(rt.log)
			go hub.Run(ctx)

			app, _ := routes.NewApp(routes.Deps{
				DB:     rt.db,
				Log:    rt.log,
				Hub:    hub,
				Mailer: rt.mailer(),
				Opts:   routes.OptionsFromConfig(),
			})

			errc := make(chan error, 1)
			go func() {
				rt.log.Info("server listening", zap.String("port", config.APP_PORT))
				errc <- app.Listen(":" + config.APP_PORT)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				rt.log.Info("shutting down")
				return app.ShutdownWithTimeout(10 * time.Second)
			}
		},
	}
}
