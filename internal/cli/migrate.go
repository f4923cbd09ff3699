package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/config"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/output"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/transfer"
)

// MigrateFlags holds migrate command flags
type MigrateFlags struct {
	DryRun   bool
	RecordID string
	Limit    int
	Output   string
}

var migrateFlags MigrateFlags

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Mirror WorkDrive folder trees for pending CRM records",
		Long: `Search the source CRM module for records whose completion checkbox is
unset, resolve the matching WorkDrive folder by name in the source
tenant, mirror its full file tree into the destination WorkDrive
folder, and tick the checkbox on success.`,
		RunE: runMigrate,
	}

	cmd.Flags().BoolVar(&migrateFlags.DryRun, "dry-run", false, "resolve and walk only, don't transfer or write back")
	cmd.Flags().StringVar(&migrateFlags.RecordID, "record-id", "", "process a single record by ID instead of searching")
	cmd.Flags().IntVar(&migrateFlags.Limit, "limit", 0, "maximum number of records to process (0 = no limit)")
	cmd.Flags().StringVarP(&migrateFlags.Output, "output", "o", "", "output format: human, json (default from config)")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	apis, err := newClients(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create clients: %w", err)
	}

	service := transfer.NewService(
		apis.sourceCRM,
		apis.sourceDrive,
		apis.destDrive,
		newPolicy(cfg, logger),
		logger,
		transfer.ServiceConfig{
			DestRootID:      cfg.WorkDrive.DestFolderID,
			CompletionField: cfg.CRM.CheckboxFieldAPIName,
			DryRun:          migrateFlags.DryRun,
		},
	)

	format := outputFormat(cfg, migrateFlags.Output)
	quiet := globalFlags.Quiet || cfg.Output.Quiet

	// A terminal bar only makes sense for human output
	if format == "human" && cfg.Output.Progress && !quiet {
		service.SetProgress(output.NewBarProgress())
	}

	records, err := fetchRecords(ctx, apis.sourceCRM, migrateFlags.RecordID, migrateFlags.Limit)
	if err != nil {
		return fmt.Errorf("failed to fetch records: %w", err)
	}

	if len(records) == 0 && !quiet {
		fmt.Println("No pending records found.")
	}

	report := service.ProcessBatch(ctx, records)

	if !quiet {
		formatter, err := output.NewFormatter(format)
		if err != nil {
			return err
		}
		if err := formatter.Write(os.Stdout, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	// Exit with appropriate code
	os.Exit(report.Status.ExitCode())
	return nil
}

// outputFormat resolves the effective output format: flag wins, then
// config
func outputFormat(cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Output.Format
}
