package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/sparkify-etl/internal/schema"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// SchemaService creates the star schema and, after approval, resets it.
type SchemaService struct {
	approver sparkify.Approver
	logger   sparkify.Logger
	manager  *schema.Manager
}

// NewSchemaService panics if approver or logger is nil.
func NewSchemaService(approver sparkify.Approver, logger sparkify.Logger) *SchemaService {
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SchemaService{approver: approver, logger: logger, manager: schema.New()}
}

// Apply creates missing tables. With reset it first asks for approval, then
// drops and recreates every table in one transaction.
func (s *SchemaService) Apply(ctx context.Context, conn Beginner, dbName string, reset bool) (err error) {
	if reset {
		approved, err := s.approver.RequestApproval(ctx, dbName)
		if err != nil {
			return fmt.Errorf("approval failed: %w", err)
		}
		if !approved {
			return fmt.Errorf("schema reset of %q: %w", dbName, sparkify.ErrApprovalDenied)
		}
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w: %w", sparkify.ErrLoadFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if reset {
		s.logger.Verbose("dropping tables %v", schema.Tables)
		err = s.manager.Reset(ctx, tx)
	} else {
		err = s.manager.Create(ctx, tx)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", sparkify.ErrLoadFailed, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema: %w: %w", sparkify.ErrLoadFailed, err)
	}

	if reset {
		s.logger.Info("✓ Schema reset in %s", dbName)
	} else {
		s.logger.Info("✓ Schema ready in %s", dbName)
	}
	return nil
}
