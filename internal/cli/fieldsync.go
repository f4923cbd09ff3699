package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/output"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/transfer"
)

// FieldSyncFlags holds fieldsync command flags
type FieldSyncFlags struct {
	DryRun   bool
	RecordID string
	Limit    int
	Output   string
}

var fieldSyncFlags FieldSyncFlags

// NewFieldSyncCommand creates the fieldsync command
func NewFieldSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fieldsync",
		Short: "Copy WorkDrive reference fields between CRM tenants",
		Long: `Search the source CRM module for records whose completion checkbox is
unset, resolve the same-named record in the destination CRM, copy the
WorkDrive URL and folder ID fields across, and tick the checkbox on
success. No files are moved.`,
		RunE: runFieldSync,
	}

	cmd.Flags().BoolVar(&fieldSyncFlags.DryRun, "dry-run", false, "resolve only, don't update or write back")
	cmd.Flags().StringVar(&fieldSyncFlags.RecordID, "record-id", "", "process a single record by ID instead of searching")
	cmd.Flags().IntVar(&fieldSyncFlags.Limit, "limit", 0, "maximum number of records to process (0 = no limit)")
	cmd.Flags().StringVarP(&fieldSyncFlags.Output, "output", "o", "", "output format: human, json (default from config)")

	return cmd
}

func runFieldSync(cmd *cobra.Command, args []string) error {
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

	sync := transfer.NewFieldSync(
		apis.sourceCRM,
		apis.destCRM,
		cfg.CRM.FieldKeys(),
		newPolicy(cfg, logger),
		logger,
		fieldSyncFlags.DryRun,
	)

	records, err := fetchRecords(ctx, apis.sourceCRM, fieldSyncFlags.RecordID, fieldSyncFlags.Limit)
	if err != nil {
		return fmt.Errorf("failed to fetch records: %w", err)
	}

	quiet := globalFlags.Quiet || cfg.Output.Quiet
	if len(records) == 0 && !quiet {
		fmt.Println("No pending records found.")
	}

	report := sync.ProcessBatch(ctx, records)

	if !quiet {
		formatter, err := output.NewFormatter(outputFormat(cfg, fieldSyncFlags.Output))
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
