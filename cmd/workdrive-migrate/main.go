package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicholasjvr/workdrive-migration-job/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "workdrive-migrate",
		Short: "Zoho CRM to WorkDrive migration job",
		Long: `workdrive-migrate mirrors WorkDrive folder trees between two Zoho
tenants, driven by CRM records. For each pending record it resolves the
matching source folder by name, copies its file tree into the
destination folder, and marks the record done.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewMigrateCommand())
	rootCmd.AddCommand(cli.NewFieldSyncCommand())
	rootCmd.AddCommand(cli.NewDiagnoseCommand())

	return rootCmd.Execute()
}
