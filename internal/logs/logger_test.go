package logs

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(func(o *LoggerOptions) {
		o.Level = LevelTypeWarning
		o.Format = FormatTypeJSON
		o.Output = &buf
		o.InitialFields = logrus.Fields{"service": "lnkz"}
	})
	require.NoError(t, err)

	logger.Info("skipped")
	logger.WithField("slug", "abc123").Warn("written")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "written", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "abc123", entry["slug"])
	assert.Equal(t, "lnkz", entry["service"])
}

func TestNew_InitialFieldsDoNotOverride(t *testing.T) {
	var buf bytes.Buffer
	logger := MustNew(func(o *LoggerOptions) {
		o.Format = FormatTypeJSON
		o.Output = &buf
		o.InitialFields = logrus.Fields{"module": "app"}
	})

	logger.WithField("module", "services/link").Info("msg")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "services/link", entry["module"])
}

func TestNew_Errors(t *testing.T) {
	_, err := New(func(o *LoggerOptions) { o.Level = "loud" })
	require.Error(t, err)

	_, err = New(func(o *LoggerOptions) { o.Format = "xml" })
	require.Error(t, err)

	assert.Panics(t, func() {
		MustNew(func(o *LoggerOptions) { o.Level = "loud" })
	})
}

func TestNew_ReleaseDefaults(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	logger, err := New()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, new(logrus.JSONFormatter), logger.Formatter)
}
