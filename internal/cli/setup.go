package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/config"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/crm"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/logging"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/transfer"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/workdrive"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/zoho"
)

// loadConfig loads the configuration from --config or the default path
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// newLogger builds the run logger from config and global flags
func newLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if globalFlags.Verbose {
		level = logging.DebugLevel
	}

	format := logging.FormatText
	if cfg.Logging.Format == "json" {
		format = logging.FormatJSON
	}

	wcfg := logging.WriterConfig{Format: format, Level: level}
	if cfg.Logging.Dir != "" {
		return logging.NewFileLogger(cfg.Logging.Dir, wcfg)
	}
	return logging.NewWriterLogger(os.Stderr, wcfg), nil
}

// clients bundles the per-tenant API wrappers one run needs
type clients struct {
	// sourceCRM is Org A's CRM: the records driving the run
	sourceCRM *crm.Client
	// destCRM is Org B's CRM: field-sync destination
	destCRM *crm.Client
	// sourceDrive is Org B's WorkDrive: the folder trees read
	sourceDrive *workdrive.Source
	// destDrive is Org A's WorkDrive: where trees are mirrored
	destDrive *workdrive.Dest
}

// newClients wires tokens, rate limiting and the tenant clients
func newClients(cfg *config.Config, logger logging.Logger) (*clients, error) {
	endpoint, err := zoho.APIEndpoint(cfg.Region)
	if err != nil {
		return nil, err
	}

	orgATokens, err := zoho.NewTokenSource(cfg.Region,
		cfg.OrgA.ClientID, cfg.OrgA.ClientSecret, cfg.OrgA.RefreshToken)
	if err != nil {
		return nil, err
	}
	orgBTokens, err := zoho.NewTokenSource(cfg.Region,
		cfg.OrgB.ClientID, cfg.OrgB.ClientSecret, cfg.OrgB.RefreshToken)
	if err != nil {
		return nil, err
	}

	clientCfg := zoho.ClientConfig{
		BaseURL:           endpoint,
		RequestsPerSecond: cfg.Transfer.RequestsPerSecond,
		Burst:             cfg.Transfer.Burst,
	}
	orgAAPI := zoho.NewClient(clientCfg, orgATokens, logger)
	orgBAPI := zoho.NewClient(clientCfg, orgBTokens, logger)

	keys := cfg.CRM.FieldKeys()
	return &clients{
		sourceCRM:   crm.NewClient(orgAAPI, cfg.CRM.ModuleAPIName, keys, logger),
		destCRM:     crm.NewClient(orgBAPI, cfg.CRM.ModuleAPIName, keys, logger),
		sourceDrive: workdrive.NewSource(orgBAPI, cfg.OrgB.TeamFolderID),
		destDrive:   workdrive.NewDest(orgAAPI),
	}, nil
}

// newPolicy builds the retry policy from config
func newPolicy(cfg *config.Config, logger logging.Logger) transfer.Policy {
	return transfer.Policy{
		MaxAttempts:       cfg.Transfer.MaxAttempts,
		InitialDelay:      cfg.Transfer.InitialDelay.Std(),
		MaxDelay:          cfg.Transfer.MaxDelay.Std(),
		Multiplier:        cfg.Transfer.BackoffMultiplier,
		RetryableStatuses: transfer.DefaultRetryableStatuses(),
		Logger:            logger,
	}
}

// fetchRecords selects the batch: one explicit record or the pending
// search
func fetchRecords(ctx context.Context, source *crm.Client, recordID string, limit int) ([]models.Record, error) {
	if recordID == "" {
		return source.SearchPending(ctx, limit)
	}

	rec, found, err := source.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("record %s not found", recordID)
	}
	if rec.MatchKey() == "" {
		return nil, fmt.Errorf("record %s has an empty match key field", recordID)
	}
	return []models.Record{rec}, nil
}
