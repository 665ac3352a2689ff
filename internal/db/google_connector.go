package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
)

// GoogleCloudSQLConnector connects to Cloud SQL with IAM database authentication.
// The Cloud SQL dialer handles TLS and credentials.
//
// Implements io.Closer. Call Close after the connection is closed to release the dialer.
type GoogleCloudSQLConnector struct {
	dialer
	sqlDialer *cloudsqlconn.Dialer
}

// Connect opens the run's connection through the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	if c.sqlDialer == nil {
		d, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
		}
		c.sqlDialer = d
	}

	instance := c.cfg.GoogleInstance
	return c.open(ctx, func(context.Context) (*pgx.ConnConfig, error) {
		dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable application_name=%s",
			instance, c.cfg.Username, c.cfg.Database, c.cfg.AppName)
		connConfig, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection config: %w", err)
		}
		connConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return c.sqlDialer.Dial(ctx, instance)
		}
		return connConfig, nil
	})
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.sqlDialer == nil {
		return nil
	}
	err := c.sqlDialer.Close()
	c.sqlDialer = nil
	return err
}
