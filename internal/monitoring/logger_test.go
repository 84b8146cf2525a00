package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerRedirects(t *testing.T) {
	defer SetLogger(nil)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})

	Logf("processed %d rows", 42)
	if captured != "processed 42 rows" {
		t.Errorf("expected captured log message, got %q", captured)
	}
}

func TestSetLoggerNilMutes(t *testing.T) {
	defer SetLogger(nil)

	SetLogger(nil)
	// Must not panic.
	Logf("this goes nowhere %v", struct{}{})
}
