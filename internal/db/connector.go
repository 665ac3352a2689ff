package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/sparkify-etl/internal/logging"
	"github.com/vvka-141/sparkify-etl/internal/retry"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// Option configures a connector built by NewConnector.
type Option func(*options)

type options struct {
	retries int
	logger  sparkify.Logger
}

// WithConnectRetries allows n additional connect attempts after a transient failure.
// The default is sparkify.DefaultConnectRetries.
func WithConnectRetries(n int) Option {
	return func(o *options) { o.retries = n }
}

// WithLogger routes connect retries and server notices to l.
func WithLogger(l sparkify.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewConnector returns the Connector matching cfg.AuthMethod.
func NewConnector(cfg *sparkify.ConnectionConfig, opts ...Option) (sparkify.Connector, error) {
	o := options{retries: sparkify.DefaultConnectRetries}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNullLogger()
	}
	base := newDialer(cfg, o)

	switch cfg.AuthMethod {
	case sparkify.AuthMethodStandard:
		return &StandardConnector{dialer: base}, nil
	case sparkify.AuthMethodAWSIAM:
		provider, err := NewAWSIAMTokenProvider(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), cfg.AWSRegion, cfg.Username)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sparkify.ErrInvalidConfig, err)
		}
		return &TokenConnector{dialer: base, provider: provider}, nil
	case sparkify.AuthMethodAzureEntraID:
		provider, err := NewAzureTokenProvider(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sparkify.ErrInvalidConfig, err)
		}
		return &TokenConnector{dialer: base, provider: provider}, nil
	case sparkify.AuthMethodGoogleIAM:
		if cfg.GoogleInstance == "" || cfg.Username == "" {
			return nil, fmt.Errorf("%w: Google Cloud SQL IAM auth requires --google-instance and a username", sparkify.ErrInvalidConfig)
		}
		return &GoogleCloudSQLConnector{dialer: base}, nil
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", cfg.AuthMethod, sparkify.ErrUnsupportedAuthMethod)
	}
}

// dialer holds what every connector shares: the target, the retry policy and the logger.
type dialer struct {
	cfg      *sparkify.ConnectionConfig
	executor *retry.Executor
	logger   sparkify.Logger
}

func newDialer(cfg *sparkify.ConnectionConfig, o options) dialer {
	strategy := retry.NewExponentialBackoff(o.retries,
		retry.WithInitialDelay(sparkify.DefaultRetryInitialDelay),
		retry.WithMaxDelay(sparkify.DefaultRetryMaxDelay),
	)
	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			o.logger.Info("connect attempt %d failed (%v); retrying in %v", attempt+1, err, delay.Round(time.Millisecond))
		})
	return dialer{cfg: cfg, executor: executor, logger: o.logger}
}

// open runs attempt under the retry policy. attempt builds a fresh
// pgx.ConnConfig each time so that short-lived tokens are re-acquired.
func (d dialer) open(ctx context.Context, attempt func(ctx context.Context) (*pgx.ConnConfig, error)) (*pgx.Conn, error) {
	var conn *pgx.Conn

	err := d.executor.Execute(ctx, func(ctx context.Context) error {
		connConfig, err := attempt(ctx)
		if err != nil {
			return err
		}
		connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
			d.logger.Verbose("%s: %s", notice.Severity, notice.Message)
		}

		c, err := pgx.ConnectConfig(ctx, connConfig)
		if err != nil {
			return wrapConnectionError(err, d.cfg)
		}
		if err := c.Ping(ctx); err != nil {
			_ = c.Close(context.Background())
			return wrapConnectionError(err, d.cfg)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sparkify.ErrConnectionFailed, err)
	}

	d.logger.Verbose("connected to %s:%d/%s as %s", d.cfg.Host, d.cfg.Port, d.cfg.Database, d.cfg.Username)
	return conn, nil
}

// StandardConnector authenticates with username and password.
type StandardConnector struct {
	dialer
}

// Connect opens the run's connection.
func (c *StandardConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	return c.open(ctx, func(context.Context) (*pgx.ConnConfig, error) {
		return parseConnConfig(c.cfg)
	})
}

func parseConnConfig(cfg *sparkify.ConnectionConfig) (*pgx.ConnConfig, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	return connConfig, nil
}

type connectionHint struct {
	patterns []string
	hint     func(cfg *sparkify.ConnectionConfig) string
}

var connectionHints = []connectionHint{
	{
		patterns: []string{"connection refused", "actively refused"},
		hint: func(cfg *sparkify.ConnectionConfig) string {
			return fmt.Sprintf("connection refused to %s:%d\n\nIs PostgreSQL running? Check: pg_isready -h %s -p %d", cfg.Host, cfg.Port, cfg.Host, cfg.Port)
		},
	},
	{
		patterns: []string{"no such host"},
		hint: func(cfg *sparkify.ConnectionConfig) string {
			return fmt.Sprintf("cannot resolve host %q\n\nCheck the hostname (-h, $PGHOST) and DNS", cfg.Host)
		},
	},
	{
		patterns: []string{"password authentication failed"},
		hint: func(cfg *sparkify.ConnectionConfig) string {
			return fmt.Sprintf("password authentication failed for user %q\n\nCheck $PGPASSWORD, .env or the connection string", cfg.Username)
		},
	},
	{
		patterns: []string{"does not exist"},
		hint: func(cfg *sparkify.ConnectionConfig) string {
			return fmt.Sprintf("database %q does not exist\n\nCreate it with: createdb %s\nthen run: sparkify schema", cfg.Database, cfg.Database)
		},
	},
	{
		patterns: []string{"timeout", "timed out"},
		hint: func(cfg *sparkify.ConnectionConfig) string {
			return fmt.Sprintf("connection timed out to %s:%d\n\nThe server may be overloaded or a firewall may drop packets", cfg.Host, cfg.Port)
		},
	},
	{
		patterns: []string{"ssl", "tls"},
		hint: func(*sparkify.ConnectionConfig) string {
			return "SSL/TLS connection error\n\nCheck --sslmode against the server configuration"
		},
	},
}

// wrapConnectionError adds actionable guidance to common connect failures.
// The original error stays reachable through errors.As.
func wrapConnectionError(err error, cfg *sparkify.ConnectionConfig) error {
	msg := strings.ToLower(err.Error())
	for _, h := range connectionHints {
		for _, p := range h.patterns {
			if strings.Contains(msg, p) {
				return fmt.Errorf("%s\n\nOriginal error: %w", h.hint(cfg), err)
			}
		}
	}
	return fmt.Errorf("failed to connect to database: %w", err)
}
