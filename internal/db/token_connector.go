package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// TokenConnector authenticates with a token from a TokenProvider (AWS IAM, Azure Entra ID).
// A new token is requested for every connect attempt.
type TokenConnector struct {
	dialer
	provider TokenProvider
}

// Connect opens the run's connection.
func (c *TokenConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	return c.open(ctx, func(ctx context.Context) (*pgx.ConnConfig, error) {
		token, expiresOn, err := c.provider.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire token from %s: %w", c.provider, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.provider, remaining.Round(time.Second))
		}

		withToken := *c.cfg
		withToken.Password = token
		return parseConnConfig(&withToken)
	})
}
