package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "repair requested",
		Data:    logrus.Fields{"report_id": "pdf_1", "attempt": 1},
	}
	out, err := (&CustomFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2024-05-01 10:30:00] [WARN] [] repair requested attempt=1 report_id=pdf_1\n", string(out))
}

func TestInitLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "analyzer.log")
	require.NoError(t, InitLogger("debug", path))
	defer Close()

	Log.Debug("hello file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "hello file"))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
}

func TestInitLogger_BadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, InitLogger("loud", ""))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
