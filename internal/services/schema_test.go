package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

type execTx struct {
	pgx.Tx
	statements []string
	committed  bool
	rolledBack bool
	failOn     string
}

func (t *execTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.statements = append(t.statements, sql)
	if t.failOn != "" && strings.Contains(sql, t.failOn) {
		return pgconn.CommandTag{}, errors.New("permission denied")
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (t *execTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *execTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type execBeginner struct{ tx *execTx }

func (b *execBeginner) Begin(context.Context) (pgx.Tx, error) { return b.tx, nil }

type stubApprover struct {
	approved bool
	err      error
	asked    int
}

func (a *stubApprover) RequestApproval(context.Context, string) (bool, error) {
	a.asked++
	return a.approved, a.err
}

func TestSchemaService_CreateNeedsNoApproval(t *testing.T) {
	approver := &stubApprover{}
	conn := &execBeginner{tx: &execTx{}}

	err := NewSchemaService(approver, &capturingLogger{}).Apply(context.Background(), conn, "sparkifydb", false)

	require.NoError(t, err)
	assert.Zero(t, approver.asked)
	assert.True(t, conn.tx.committed)
	assert.Len(t, conn.tx.statements, 5)
	for _, stmt := range conn.tx.statements {
		assert.True(t, strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS"))
	}
}

func TestSchemaService_ResetApproved(t *testing.T) {
	conn := &execBeginner{tx: &execTx{}}

	err := NewSchemaService(&stubApprover{approved: true}, &capturingLogger{}).Apply(context.Background(), conn, "sparkifydb", true)

	require.NoError(t, err)
	assert.Len(t, conn.tx.statements, 10)
	assert.True(t, strings.HasPrefix(conn.tx.statements[0], "DROP TABLE"))
}

func TestSchemaService_ResetDenied(t *testing.T) {
	conn := &execBeginner{tx: &execTx{}}

	err := NewSchemaService(&stubApprover{approved: false}, &capturingLogger{}).Apply(context.Background(), conn, "sparkifydb", true)

	assert.ErrorIs(t, err, sparkify.ErrApprovalDenied)
	assert.Equal(t, sparkify.ExitApprovalDenied, sparkify.ExitCodeForError(err))
	assert.Empty(t, conn.tx.statements, "nothing runs without approval")
}

func TestSchemaService_ApproverError(t *testing.T) {
	err := NewSchemaService(&stubApprover{err: context.Canceled}, &capturingLogger{}).
		Apply(context.Background(), &execBeginner{tx: &execTx{}}, "db", true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchemaService_FailureRollsBack(t *testing.T) {
	conn := &execBeginner{tx: &execTx{failOn: "artists"}}

	err := NewSchemaService(&stubApprover{}, &capturingLogger{}).Apply(context.Background(), conn, "db", false)

	require.ErrorIs(t, err, sparkify.ErrLoadFailed)
	assert.True(t, conn.tx.rolledBack)
	assert.False(t, conn.tx.committed)
}
