package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/sparkify-etl/internal/config"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// GranularConnFlags holds the libpq-style CLI flags (-h, -p, -U, -d, --sslmode).
//
// Passwords have no flag. Use $PGPASSWORD, a .env file, or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-selecting flag was given.
// Database is excluded because it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags select a token-based authentication method.
// The Azure client secret is only read from AZURE_CLIENT_SECRET.
type CloudFlags struct {
	AuthMethod     string
	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

// EnvVars represents the environment variables the resolver honours.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string // Heroku/Rails convention

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment snapshots the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams builds the run's ConnectionConfig.
//
// A connection string (--connection, else $DATABASE_URL when no granular
// flag is set) is used as a whole; -d still overrides its database.
// Otherwise every parameter resolves as flag > environment > sparkify.yaml >
// default. --connection together with -h/-p/-U/--sslmode is rejected.
func ResolveConnectionParams(
	connStringFlag string,
	granular *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	project *config.ProjectConfig,
) (*sparkify.ConnectionConfig, error) {
	if granular == nil {
		granular = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if project != nil {
		pc = project.Connection
	}

	if connStringFlag != "" && !granular.IsEmpty() {
		return nil, fmt.Errorf("%w: cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)", sparkify.ErrInvalidConfig)
	}

	connStr := connStringFlag
	if connStr == "" && granular.IsEmpty() {
		connStr = env.DATABASE_URL
	}

	var cfg *sparkify.ConnectionConfig
	var err error
	if connStr != "" {
		if cfg, err = ParseConnectionString(connStr); err != nil {
			return nil, fmt.Errorf("%w: invalid connection string: %w", sparkify.ErrInvalidConfig, err)
		}
		if granular.Database != "" {
			cfg.Database = granular.Database
		}
	} else if cfg, err = resolveGranular(granular, env, pc); err != nil {
		return nil, err
	}

	if cfg.Password == "" {
		cfg.Password = env.PGPASSWORD
	}
	if cfg.AppName == "" {
		cfg.AppName = sparkify.DefaultAppName
	}

	if err := applyCloudAuth(cfg, cloud, env, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveGranular(flags *GranularConnFlags, env *EnvVars, pc config.ConnectionConfig) (*sparkify.ConnectionConfig, error) {
	cfg := defaultConfig()

	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, pc.Host, sparkify.DefaultHost)
	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, pc.Database, sparkify.DefaultDatabase)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode, sparkify.DefaultSSLMode)

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid $PGPORT value '%s': must be an integer", sparkify.ErrInvalidConfig, env.PGPORT)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	}

	return cfg, nil
}

// applyCloudAuth selects the auth method (flag > sparkify.yaml > Azure env
// presence) and attaches the provider parameters it needs.
func applyCloudAuth(cfg *sparkify.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	tenantID := firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	clientID := firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)

	method, err := sparkify.ParseAuthMethod(firstNonEmpty(flags.AuthMethod, pc.AuthMethod))
	if err != nil {
		return fmt.Errorf("%w: %w", sparkify.ErrInvalidConfig, err)
	}
	if method == sparkify.AuthMethodStandard && flags.AuthMethod == "" && pc.AuthMethod == "" && (tenantID != "" || clientID != "") {
		method = sparkify.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method

	switch method {
	case sparkify.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
		if cfg.AWSRegion == "" {
			return fmt.Errorf("%w: aws auth requires a region (--aws-region or $AWS_REGION)", sparkify.ErrInvalidConfig)
		}
	case sparkify.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
		if cfg.GoogleInstance == "" {
			return fmt.Errorf("%w: google auth requires --google-instance (project:region:instance)", sparkify.ErrInvalidConfig)
		}
	case sparkify.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
