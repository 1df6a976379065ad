package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, LevelFromString("debug"))
	assert.Equal(t, logrus.WarnLevel, LevelFromString("warning"))
	assert.Equal(t, logrus.InfoLevel, LevelFromString(""))
	assert.Equal(t, logrus.InfoLevel, LevelFromString("loud"))
}

func TestProductionFormatterAddsService(t *testing.T) {
	Init(Config{Level: logrus.InfoLevel, Env: "production", Service: "tuner"})
	t.Cleanup(func() { Init(Config{Level: logrus.InfoLevel, Env: "development"}) })

	var buf bytes.Buffer
	logger := GetLogger()
	logger.SetOutput(&buf)
	logger.WithField("epoch", 1).Info("epoch finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "epoch finished", entry["message"])
	assert.Equal(t, "tuner", entry["service"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "@timestamp")
}
