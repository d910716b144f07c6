package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusAdapterWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	logger := NewLogrusAdapterFromLogger(base)
	logger.WithField("currency", "USD").Info("rates fetched", Field{Key: "count", Value: 3})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rates fetched", entry["msg"])
	assert.Equal(t, "USD", entry["currency"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestLogrusAdapterWithError(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	logger := NewLogrusAdapterFromLogger(base)
	logger.WithError(errors.New("boom")).Warn("something failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "warning", entry["level"])
}

func TestNewLogrusAdapterInvalidLevelDefaultsToInfo(t *testing.T) {
	// Must not panic and must still produce a usable logger.
	logger := NewLogrusAdapter("loud", "text")
	logger.Debug("ignored at info level")
}

func TestMockLoggerCapturesEntries(t *testing.T) {
	mock := &MockLogger{}

	mock.WithError(errors.New("boom")).WithField("k", "v").Error("it broke")
	mock.Info("all good")

	require.Len(t, mock.Entries, 2)
	assert.True(t, mock.HasEntry("ERROR", "it broke"))
	assert.True(t, mock.HasEntry("INFO", "all good"))
	assert.False(t, mock.HasEntry("WARN", "it broke"))

	assert.EqualError(t, mock.Entries[0].Error, "boom")
	require.Len(t, mock.Entries[0].Fields, 1)
	assert.Equal(t, "k", mock.Entries[0].Fields[0].Key)

	// Pending state resets after each entry.
	assert.Nil(t, mock.Entries[1].Error)
	assert.Empty(t, mock.Entries[1].Fields)
}
