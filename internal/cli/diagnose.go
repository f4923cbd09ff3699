package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/config"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/crm"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/zoho"
)

// DiagnoseFlags holds diagnose command flags
type DiagnoseFlags struct {
	Pending bool
}

var diagnoseFlags DiagnoseFlags

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Probe API access for both tenants",
		Long: `Run read-only probes against both tenants: token refresh, CRM module
access, the pending-record search, and the destination WorkDrive
folder. Nothing is modified. Useful before a first run or when scopes
or credentials change.`,
		RunE: runDiagnose,
	}

	cmd.Flags().BoolVar(&diagnoseFlags.Pending, "pending", false, "also run the pending-record search and show the count")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Region:        %s\n", cfg.Region)
	fmt.Printf("API endpoint:  %s\n", apis.sourceCRM.BaseURL())
	fmt.Printf("CRM module:    %s\n", cfg.CRM.ModuleAPIName)
	fmt.Printf("Criteria:      %s\n", apis.sourceCRM.PendingCriteria())
	fmt.Println()

	failures := 0
	failures += probeCRM(ctx, "org A (source CRM)", apis.sourceCRM)
	failures += probeCRM(ctx, "org B (dest CRM)", apis.destCRM)
	failures += probeWorkDrive(ctx, cfg, apis)

	if diagnoseFlags.Pending {
		failures += probePending(ctx, apis.sourceCRM)
	}

	fmt.Println()
	if failures > 0 {
		fmt.Printf("Diagnose finished with %d failed probe(s).\n", failures)
		os.Exit(1)
	}
	fmt.Println("All probes passed.")
	return nil
}

// probeCRM checks module access for one tenant. Org and user lookups
// are best-effort since they need extra scopes.
func probeCRM(ctx context.Context, label string, client *crm.Client) int {
	failures := 0

	if _, err := client.ModuleSample(ctx, 1); err != nil {
		reportProbe(label+": module access", err)
		failures++
	} else {
		reportProbe(label+": module access", nil)
	}

	if org, err := client.OrgInfo(ctx); err != nil {
		reportOptionalProbe(label+": org info", err)
	} else {
		reportProbe(label+": org info", nil)
		if name := orgName(org); name != "" {
			fmt.Printf("       organization: %s\n", name)
		}
	}

	if _, err := client.CurrentUser(ctx); err != nil {
		reportOptionalProbe(label+": current user", err)
	} else {
		reportProbe(label+": current user", nil)
	}

	return failures
}

func probeWorkDrive(ctx context.Context, cfg *config.Config, apis *clients) int {
	failures := 0

	ok, err := apis.destDrive.ValidateFolder(ctx, cfg.WorkDrive.DestFolderID)
	switch {
	case err != nil:
		reportProbe("org A (dest WorkDrive): destination folder", err)
		failures++
	case !ok:
		reportProbe("org A (dest WorkDrive): destination folder",
			fmt.Errorf("folder %s not found", cfg.WorkDrive.DestFolderID))
		failures++
	default:
		reportProbe("org A (dest WorkDrive): destination folder", nil)
	}

	// Searching for an unlikely name still exercises auth, the team
	// folder scope and the search endpoint
	if _, err := apis.sourceDrive.SearchFolderByName(ctx, "diagnose-probe"); err != nil {
		reportProbe("org B (source WorkDrive): folder search", err)
		failures++
	} else {
		reportProbe("org B (source WorkDrive): folder search", nil)
	}

	return failures
}

func probePending(ctx context.Context, client *crm.Client) int {
	records, err := client.SearchPending(ctx, 0)
	if err != nil {
		reportProbe("pending-record search", err)
		return 1
	}
	reportProbe("pending-record search", nil)
	fmt.Printf("       pending records: %d\n", len(records))
	return 0
}

func reportProbe(name string, err error) {
	if err != nil {
		fmt.Printf("  FAIL %s: %v\n", name, err)
		return
	}
	fmt.Printf("  OK   %s\n", name)
}

// reportOptionalProbe marks a probe that can fail on missing scopes
// without blocking a run
func reportOptionalProbe(name string, err error) {
	if status, ok := zoho.StatusOf(err); ok {
		fmt.Printf("  SKIP %s: HTTP %d (likely missing scope)\n", name, status)
		return
	}
	fmt.Printf("  SKIP %s: %v\n", name, err)
}

// orgName digs the company name out of the org envelope
func orgName(org map[string]any) string {
	list, ok := org["org"].([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := first["company_name"].(string)
	return name
}
