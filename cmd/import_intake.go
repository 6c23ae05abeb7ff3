package cmd

import (
	"fmt"
	"stock-app/apperror"
	"stock-app/config"
	"stock-app/processor"
	"stock-app/repositories"
	"stock-app/services"
	"stock-app/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportIntakeCmd() *cobra.Command {
	var (
		username     string
		processedDir string
		notify       []string
	)
	cmd := &cobra.Command{
		Use:   "import-intake <file-or-folder>",
		Short: "Receive stock from .csv or .xlsx files",
		Long: `Each row goes through the same intake operation as POST /intake.
A file is imported in one transaction; a file name that was imported before is skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			user, err := repositories.NewUserRepository(rt.db).GetByLogin(username)
			if err != nil {
				return apperror.Wrap(err, "user "+username)
			}
			if !user.Roles.HasAny(types.RoleAdmin, types.RoleStockManager) {
				return fmt.Errorf("user %s may not receive stock", username)
			}

			trail := services.NewAuditTrail(nil, rt.log)
			p := &processor.Processor{
				Importer:     services.NewIntakeService(rt.db, trail, rt.log, config.TenantID),
				Mailer:       rt.mailer(),
				NotifyTo:     notify,
				ProcessedDir: processedDir,
				Log:          rt.log,
			}

			results, err := p.ProcessPath(cmd.Context(), services.ActorFromUser(user), args[0])
			for _, res := range results {
				rt.log.Info("intake file",
					zap.String("file", res.Filename),
					zap.Bool("skipped", res.Skipped),
					zap.Int("rows", res.Rows),
				)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&username, "user", "admin", "username recorded as the receiver")
	cmd.Flags().StringVar(&processedDir, "processed-dir", "", "move imported files into this folder")
	cmd.Flags().StringSliceVar(&notify, "notify", nil, "mail a summary to these addresses")
	return cmd
}
