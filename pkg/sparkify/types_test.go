package sparkify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

func TestRunConfig_Validate(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		cfg := sparkify.RunConfig{SongDataDir: "data/song_data", LogDataDir: "data/log_data"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, ".json", cfg.Suffix)
		assert.Equal(t, sparkify.CommitPerFile, cfg.CommitMode)
	})

	t.Run("missing dirs reported together", func(t *testing.T) {
		cfg := sparkify.RunConfig{}
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, sparkify.ErrInvalidConfig))
		assert.Contains(t, err.Error(), "SongDataDir")
		assert.Contains(t, err.Error(), "LogDataDir")
	})

	t.Run("unknown commit mode", func(t *testing.T) {
		cfg := sparkify.RunConfig{SongDataDir: "a", LogDataDir: "b", CommitMode: "nightly"}
		assert.ErrorIs(t, cfg.Validate(), sparkify.ErrInvalidConfig)
	})
}

func TestParseCommitMode(t *testing.T) {
	mode, err := sparkify.ParseCommitMode("")
	require.NoError(t, err)
	assert.Equal(t, sparkify.CommitPerFile, mode)

	mode, err = sparkify.ParseCommitMode(" Batch ")
	require.NoError(t, err)
	assert.Equal(t, sparkify.CommitBatch, mode)

	_, err = sparkify.ParseCommitMode("per-row")
	assert.ErrorIs(t, err, sparkify.ErrInvalidConfig)
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		in   string
		want sparkify.AuthMethod
	}{
		{"", sparkify.AuthMethodStandard},
		{"standard", sparkify.AuthMethodStandard},
		{"AWS", sparkify.AuthMethodAWSIAM},
		{"google", sparkify.AuthMethodGoogleIAM},
		{"azure", sparkify.AuthMethodAzureEntraID},
	}
	for _, tt := range tests {
		got, err := sparkify.ParseAuthMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := sparkify.ParseAuthMethod("kerberos")
	assert.ErrorIs(t, err, sparkify.ErrUnsupportedAuthMethod)
}

func TestAuthMethod_String(t *testing.T) {
	assert.Equal(t, "AWS IAM", sparkify.AuthMethodAWSIAM.String())
	assert.Equal(t, "Unknown(42)", sparkify.AuthMethod(42).String())
	assert.False(t, sparkify.AuthMethod(42).IsValid())
	assert.True(t, sparkify.AuthMethodAzureEntraID.IsValid())
}

func TestRowValuesOrder(t *testing.T) {
	year := 0
	song := sparkify.Song{SongID: "S1", ArtistID: "AR1", Title: "T", Year: &year, Duration: 200.0}
	vals := song.Values()
	require.Len(t, vals, 5)
	assert.Equal(t, "S1", vals[0])
	assert.Equal(t, "AR1", vals[1])
	assert.Equal(t, &year, vals[3])

	play := sparkify.Songplay{UserID: "39", Level: "free", SessionID: 38}
	pv := play.Values()
	require.Len(t, pv, 8)
	assert.Equal(t, "39", pv[1])
	assert.Equal(t, int64(38), pv[5])
}

func TestRunSummary_FilesProcessed(t *testing.T) {
	s := sparkify.RunSummary{Families: []sparkify.FamilySummary{
		{Family: "song", FilesProcessed: 3},
		{Family: "log", FilesProcessed: 2},
	}}
	assert.Equal(t, 5, s.FilesProcessed())
}
