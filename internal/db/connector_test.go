package db

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

func unreachableConfig() *sparkify.ConnectionConfig {
	return &sparkify.ConnectionConfig{
		Host: "127.0.0.1", Port: 1, Database: "sparkifydb", Username: "student",
		SSLMode: "disable", ConnectTimeout: 2 * time.Second,
		AuthMethod: sparkify.AuthMethodStandard, AdditionalParams: map[string]string{},
	}
}

func TestNewConnector_SelectsByAuthMethod(t *testing.T) {
	cfg := unreachableConfig()
	c, err := NewConnector(cfg)
	require.NoError(t, err)
	assert.IsType(t, &StandardConnector{}, c)

	aws := *cfg
	aws.AuthMethod = sparkify.AuthMethodAWSIAM
	aws.AWSRegion = "us-west-2"
	c, err = NewConnector(&aws)
	require.NoError(t, err)
	assert.IsType(t, &TokenConnector{}, c)

	google := *cfg
	google.AuthMethod = sparkify.AuthMethodGoogleIAM
	google.GoogleInstance = "project:region:instance"
	c, err = NewConnector(&google)
	require.NoError(t, err)
	assert.IsType(t, &GoogleCloudSQLConnector{}, c)
	assert.NoError(t, c.(*GoogleCloudSQLConnector).Close())
}

func TestNewConnector_Errors(t *testing.T) {
	aws := unreachableConfig()
	aws.AuthMethod = sparkify.AuthMethodAWSIAM
	_, err := NewConnector(aws)
	assert.ErrorIs(t, err, sparkify.ErrInvalidConfig)

	google := unreachableConfig()
	google.AuthMethod = sparkify.AuthMethodGoogleIAM
	_, err = NewConnector(google)
	assert.ErrorIs(t, err, sparkify.ErrInvalidConfig)

	unknown := unreachableConfig()
	unknown.AuthMethod = sparkify.AuthMethod(99)
	_, err = NewConnector(unknown)
	assert.ErrorIs(t, err, sparkify.ErrUnsupportedAuthMethod)
}

func TestStandardConnector_RefusedIsConnectionFailed(t *testing.T) {
	c, err := NewConnector(unreachableConfig())
	require.NoError(t, err)

	conn, err := c.Connect(context.Background())
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, sparkify.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "connection refused to 127.0.0.1:1")
	assert.Equal(t, sparkify.ExitConnectionError, sparkify.ExitCodeForError(err))
}

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (p *countingProvider) GetToken(context.Context) (string, time.Time, error) {
	p.calls.Add(1)
	if p.err != nil {
		return "", time.Time{}, p.err
	}
	return "token", time.Now().Add(time.Hour), nil
}

func (p *countingProvider) String() string { return "counting" }

func tokenConnector(provider TokenProvider, retries int) *TokenConnector {
	o := options{retries: retries, logger: &recordingLogger{}}
	return &TokenConnector{dialer: newDialer(unreachableConfig(), o), provider: provider}
}

type recordingLogger struct{ infos atomic.Int32 }

func (l *recordingLogger) Verbose(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})    { l.infos.Add(1) }
func (l *recordingLogger) Error(string, ...interface{})   {}

func TestTokenConnector_NoRetriesByDefault(t *testing.T) {
	provider := &countingProvider{}
	_, err := tokenConnector(provider, 0).Connect(context.Background())

	assert.ErrorIs(t, err, sparkify.ErrConnectionFailed)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestTokenConnector_RetriesRefreshToken(t *testing.T) {
	provider := &countingProvider{}
	c := tokenConnector(provider, 2)

	_, err := c.Connect(context.Background())

	assert.ErrorIs(t, err, sparkify.ErrConnectionFailed)
	assert.Equal(t, int32(3), provider.calls.Load(), "one token per attempt")
	assert.Equal(t, int32(2), c.logger.(*recordingLogger).infos.Load(), "one log line per retry")
}

func TestTokenConnector_ProviderErrorIsFatal(t *testing.T) {
	provider := &countingProvider{err: errors.New("credentials expired")}
	_, err := tokenConnector(provider, 3).Connect(context.Background())

	assert.ErrorContains(t, err, "credentials expired")
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestWrapConnectionError_KeepsCause(t *testing.T) {
	cause := errors.New(`FATAL: database "nope" does not exist (SQLSTATE 3D000)`)
	cfg := unreachableConfig()
	cfg.Database = "nope"

	err := wrapConnectionError(cause, cfg)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "createdb nope")

	generic := wrapConnectionError(errors.New("weird"), cfg)
	assert.EqualError(t, generic, "failed to connect to database: weird")
}

func TestAWSIAMTokenProvider_Validation(t *testing.T) {
	_, err := NewAWSIAMTokenProvider("", "r", "u")
	assert.Error(t, err)
	_, err = NewAWSIAMTokenProvider("h:5432", "", "u")
	assert.Error(t, err)
	_, err = NewAWSIAMTokenProvider("h:5432", "r", "")
	assert.Error(t, err)

	p, err := NewAWSIAMTokenProvider("h:5432", "us-east-1", "etl")
	require.NoError(t, err)
	assert.Equal(t, "AWSIAM(endpoint=h:5432, region=us-east-1, user=etl)", p.String())
}
