package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", &buf)
	require.Equal(t, logrus.DebugLevel, log.Level)

	log.WithField("product_id", 1).Info("added")
	out := buf.String()
	require.Contains(t, out, `"severity":"info"`)
	require.Contains(t, out, `"message":"added"`)
	require.Contains(t, out, `"timestamp"`)
	require.Contains(t, out, `"product_id":1`)
}

func TestNew_UnknownLevel(t *testing.T) {
	require.Equal(t, logrus.InfoLevel, New("loud").Level)
}
