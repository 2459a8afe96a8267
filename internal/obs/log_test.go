package obs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsFormatterByFlag(t *testing.T) {
	jsonLog := New(true)
	_, isJSON := jsonLog.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)

	textLog := New(false)
	_, isText := textLog.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestWarnSkippedFileLogsPathAndError(t *testing.T) {
	log := New(true)
	var buf bytes.Buffer
	log.SetOutput(&buf)

	WarnSkippedFile(log, "broken.go", errors.New("permission denied"))

	out := buf.String()
	require.Contains(t, out, "broken.go")
	require.Contains(t, out, "permission denied")
	require.Contains(t, out, "skipping file")
}
