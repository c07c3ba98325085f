package main

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewCLILoggerOnlyWarnings(t *testing.T) {
	logger, err := newCLILogger()
	if err != nil {
		t.Fatalf("expected logger, got error %v", err)
	}
	if logger == nil {
		t.Fatalf("expected non-nil logger")
	}
	if logger.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("expected info level disabled")
	}
	if !logger.Core().Enabled(zap.WarnLevel) {
		t.Fatalf("expected warn level enabled")
	}
}
