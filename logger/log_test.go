package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelLogger(t *testing.T) {
	b := &bytes.Buffer{}
	printer := NewTextPrinter(b)
	printer.Colors = false

	l := NewConsoleLogger(printer, func(int) {})
	l.SetLevel(INFO)

	l.Debug("Debug %q", "llamas")
	l.Info("Info %q", "llamas")
	l.Warn("Warn %q", "llamas")
	l.Error("Error %q", "llamas")

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")

	require.Len(t, lines, 3)
	require.True(t, strings.HasSuffix(lines[0], `Info "llamas"`), "line 0: %q", lines[0])
	require.True(t, strings.HasSuffix(lines[1], `Warn "llamas"`), "line 1: %q", lines[1])
	require.True(t, strings.HasSuffix(lines[2], `Error "llamas"`), "line 2: %q", lines[2])
}
