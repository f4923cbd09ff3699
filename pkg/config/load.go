package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML file. Environment
// overrides are applied after the file is parsed, before validation.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. Credentials
// are usually supplied this way so they stay out of the config file.
func (c *Config) ApplyEnv() {
	setString(&c.Region, "ZOHO_REGION")
	c.Region = strings.ToLower(c.Region)

	setString(&c.OrgA.ClientID, "ORG_A_CLIENT_ID")
	setString(&c.OrgA.ClientSecret, "ORG_A_CLIENT_SECRET")
	setString(&c.OrgA.RefreshToken, "ORG_A_REFRESH_TOKEN")

	setString(&c.OrgB.ClientID, "ORG_B_CLIENT_ID")
	setString(&c.OrgB.ClientSecret, "ORG_B_CLIENT_SECRET")
	setString(&c.OrgB.RefreshToken, "ORG_B_REFRESH_TOKEN")
	setString(&c.OrgB.TeamFolderID, "ORG_B_TEAM_FOLDER_ID")

	setString(&c.CRM.ModuleAPIName, "CRM_MODULE_API_NAME")
	setString(&c.CRM.CheckboxFieldAPIName, "CRM_CHECKBOX_FIELD_API_NAME")
	setString(&c.CRM.MatchKeyFieldAPIName, "CRM_MATCH_KEY_FIELD_API_NAME")
	setString(&c.CRM.WorkDriveURLField, "CRM_WORKDRIVE_URL_FIELD_API_NAME")
	setString(&c.CRM.WorkDriveFolderIDField, "CRM_WORKDRIVE_FOLDER_ID_FIELD_API_NAME")
	setString(&c.CRM.TraceFieldAPIName, "CRM_TRACE_FIELD_API_NAME")

	setString(&c.WorkDrive.DestFolderID, "WORKDRIVE_DEST_FOLDER_ID")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".config", "workdrive-migrate", "config.yaml"), nil
}

// LoadDefault loads configuration from the default location. If the
// file doesn't exist, defaults plus environment overrides are used.
func LoadDefault() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.ApplyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	return LoadFromFile(path)
}
