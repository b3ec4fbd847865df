package logutils

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLoggerLevel(t *testing.T) {
	defer log.SetLevel(logrus.InfoLevel)

	SetLoggerLevel("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	SetLoggerLevel("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("EET", 2*60*60)
	l := New(&buf, loc)

	l.WithField("component", "test").Warn("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "test", entry["component"])

	ts, err := time.Parse(time.RFC3339Nano, entry["ts"].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 2*60*60, offset)
}
