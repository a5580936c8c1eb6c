package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Importing the package must leave every logger usable; consumers log from
// request paths without calling InitLoggers themselves.
func TestLoggersReadyOnImport(t *testing.T) {
	require.NotNil(t, InfoLogger)
	require.NotNil(t, WarnLogger)
	require.NotNil(t, ErrorLogger)

	assert.NotPanics(t, func() {
		InfoLogger.Info("info logger write")
		WarnLogger.Warnf("warn logger write %d", 1)
		ErrorLogger.Error("error logger write")
	})
}
