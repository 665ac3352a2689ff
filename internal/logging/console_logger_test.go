package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true, false)

	logger.Verbose("connecting to %s", "127.0.0.1")
	logger.Info("%d files found in %s", 71, "data/song_data")
	logger.Error("load failed")

	assert.Equal(t,
		"[VERBOSE] connecting to 127.0.0.1\n"+
			"71 files found in data/song_data\n"+
			"[ERROR] load failed\n",
		buf.String())
}

func TestConsoleLogger_VerboseDisabled(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false, false).Verbose("hidden %d", 1)
	assert.Empty(t, buf.String())
}

func TestConsoleLogger_NoArgsKeepsPercent(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false, false).Info("100% done")
	assert.Equal(t, "100% done\n", buf.String())
}

func TestConsoleLogger_ColorKeepsMessage(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false, true).Error("boom")
	assert.Contains(t, buf.String(), "[ERROR]")
	assert.True(t, strings.HasSuffix(buf.String(), " boom\n"))
}

func TestConsoleLogger_ConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info("line %02d", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Regexp(t, `^line \d\d$`, line)
	}
}

func TestNullLogger_Discards(t *testing.T) {
	logger := NewNullLogger()
	assert.NotPanics(t, func() {
		logger.Verbose("a %d", 1)
		logger.Info("b")
		logger.Error("c")
	})
}
