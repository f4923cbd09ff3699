package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// Supported Zoho data-center regions
var validRegions = map[string]bool{
	"com": true,
	"eu":  true,
	"in":  true,
	"au":  true,
	"jp":  true,
}

// Duration wraps time.Duration for YAML ("1s", "500ms", ...)
type Duration time.Duration

// UnmarshalYAML parses a duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Region    string          `yaml:"region"`
	OrgA      OrgConfig       `yaml:"org_a"`
	OrgB      OrgConfig       `yaml:"org_b"`
	CRM       CRMConfig       `yaml:"crm"`
	WorkDrive WorkDriveConfig `yaml:"workdrive"`
	Transfer  TransferConfig  `yaml:"transfer"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// OrgConfig holds OAuth credentials for one tenant
type OrgConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`

	// TeamFolderID scopes WorkDrive folder searches (source org only)
	TeamFolderID string `yaml:"team_folder_id"`
}

// CRMConfig names the CRM module and field API names the job reads
type CRMConfig struct {
	ModuleAPIName          string `yaml:"module_api_name"`
	CheckboxFieldAPIName   string `yaml:"checkbox_field_api_name"`
	MatchKeyFieldAPIName   string `yaml:"match_key_field_api_name"`
	WorkDriveURLField      string `yaml:"workdrive_url_field_api_name"`
	WorkDriveFolderIDField string `yaml:"workdrive_folder_id_field_api_name"`
	TraceFieldAPIName      string `yaml:"trace_field_api_name"`
}

// FieldKeys converts the configured field names to models.FieldKeys
func (c CRMConfig) FieldKeys() models.FieldKeys {
	return models.FieldKeys{
		MatchKey:          c.MatchKeyFieldAPIName,
		Completion:        c.CheckboxFieldAPIName,
		WorkDriveURL:      c.WorkDriveURLField,
		WorkDriveFolderID: c.WorkDriveFolderIDField,
		Trace:             c.TraceFieldAPIName,
	}
}

// WorkDriveConfig holds the destination folder settings
type WorkDriveConfig struct {
	DestFolderID string `yaml:"dest_folder_id"`
}

// TransferConfig holds retry and rate-limit settings
type TransferConfig struct {
	MaxAttempts       int      `yaml:"max_attempts"`
	InitialDelay      Duration `yaml:"initial_delay"`
	MaxDelay          Duration `yaml:"max_delay"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar during transfers
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	Dir     string `yaml:"dir"`    // Log directory (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Region: "com",
		Transfer: TransferConfig{
			MaxAttempts:       3,
			InitialDelay:      Duration(1 * time.Second),
			MaxDelay:          Duration(60 * time.Second),
			BackoffMultiplier: 2.0,
			RequestsPerSecond: 5.0,
			Burst:             10,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "text",
			Level:   "info",
			Dir:     "",
		},
	}
}

// Validate checks if the configuration is valid. All violations here
// are configuration errors: fatal at startup, never retried.
func (c *Config) Validate() error {
	if !validRegions[c.Region] {
		return &models.ValidationError{
			Field:   "region",
			Message: "must be one of com, eu, in, au, jp",
		}
	}

	if c.OrgA.ClientID == "" || c.OrgA.ClientSecret == "" || c.OrgA.RefreshToken == "" {
		return &models.ValidationError{
			Field:   "org_a",
			Message: "client_id, client_secret and refresh_token are required",
		}
	}

	if c.OrgB.ClientID == "" || c.OrgB.ClientSecret == "" || c.OrgB.RefreshToken == "" {
		return &models.ValidationError{
			Field:   "org_b",
			Message: "client_id, client_secret and refresh_token are required",
		}
	}

	if c.OrgB.TeamFolderID == "" {
		return &models.ValidationError{
			Field:   "org_b.team_folder_id",
			Message: "required to scope source folder searches",
		}
	}

	if c.CRM.ModuleAPIName == "" || c.CRM.CheckboxFieldAPIName == "" || c.CRM.MatchKeyFieldAPIName == "" {
		return &models.ValidationError{
			Field:   "crm",
			Message: "module_api_name, checkbox_field_api_name and match_key_field_api_name are required",
		}
	}

	if c.WorkDrive.DestFolderID == "" {
		return &models.ValidationError{
			Field:   "workdrive.dest_folder_id",
			Message: "required",
		}
	}

	if c.Transfer.MaxAttempts < 1 {
		return &models.ValidationError{
			Field:   "transfer.max_attempts",
			Message: "must be at least 1",
		}
	}

	if c.Transfer.BackoffMultiplier < 1.0 {
		return &models.ValidationError{
			Field:   "transfer.backoff_multiplier",
			Message: "must be at least 1.0",
		}
	}

	if c.Transfer.RequestsPerSecond <= 0 {
		return &models.ValidationError{
			Field:   "transfer.requests_per_second",
			Message: "must be positive",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
