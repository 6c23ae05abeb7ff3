package cmd

import (
	"context"
	"fmt"
	"os"
	"stock-app/config"
	"stock-app/controllers/idgen"
	"stock-app/database"
	"stock-app/logger"
	"stock-app/notifier"
	"stock-app/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps is what every subcommand needs once configuration is loaded.
type deps struct {
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap() (*deps, error) {
	config.LoadConfig()

	log, err := logger.New(config.APP_ENV, config.LOG_LEVEL)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if err := idgen.Init(config.SnowflakeNode); err != nil {
		return nil, err
	}

	settings := database.SettingsFromConfig()
	settings.Log = log
	if err := database.EnsureDatabaseExists(settings); err != nil {
		return nil, fmt.Errorf("ensure database: %w", err)
	}
	db, err := database.Open(settings)
	if err != nil {
		return nil, err
	}
	log.Info("database connected", zap.String("driver", settings.Driver), zap.String("name", settings.Name))

	return &deps{log: log, db: db}, nil
}

func (r *deps) close() {
	if sqlDB, err := r.db.DB(); err == nil {
		sqlDB.Close()
	}
	r.log.Sync()
}

// mailer sends through SMTP when a host is configured and only logs otherwise.
func (r *deps) mailer() services.Mailer {
	if config.SMTPHost == "" {
		return notifier.NewLogMailer(r.log)
	}
	return notifier.NewSMTPMailer(notifier.SMTPConfig{
		Host:     config.SMTPHost,
		Port:     config.SMTPPort,
		User:     config.SMTPUser,
		Password: config.SMTPPassword,
		From:     config.MailFrom,
	}, r.log)
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "stock-app",
		Short:         "Stock management service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(), newSeedCmd(), newImportIntakeCmd())
	return root
}

// Execute runs the command line. Without a subcommand the HTTP server starts.
func Execute(ctx context.Context) {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
