package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIHandlerFormatsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCLI(&buf, slog.LevelDebug).With("component", "firmware")

	logger.Info("changed boot next", "number", 2, "label", "Windows Boot Manager", "error", errors.New("boom"))

	assert.Equal(t, "INFO  | changed boot next component=firmware number=2 label=\"Windows Boot Manager\" error=boom\n", buf.String())
}

func TestCLIHandlerGroupsAndLevel(t *testing.T) {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelWarn)

	var buf bytes.Buffer
	logger := NewCLI(&buf, &levelVar).WithGroup("probe")

	logger.Info("hidden")
	require.Empty(t, buf.String())

	logger.Warn("tool missing", "path", "/usr/bin/efibootmgr")
	assert.Equal(t, "WARN  | tool missing probe.path=/usr/bin/efibootmgr\n", buf.String())

	levelVar.Set(slog.LevelDebug)
	buf.Reset()
	logger.Debug("visible")
	assert.Equal(t, "DEBUG | visible\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{" WARNING ", slog.LevelWarn, false},
		{"err", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("json")
	require.NoError(t, err)
	assert.Equal(t, ModeJSON, mode)

	mode, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeCLI, mode)

	_, err = ParseMode("xml")
	require.EqualError(t, err, `unknown log format "xml"`)
}

func TestEnsure(t *testing.T) {
	assert.Same(t, slog.Default(), Ensure(nil))

	logger := NewCLI(&bytes.Buffer{}, nil)
	assert.Same(t, logger, Ensure(logger))
}
