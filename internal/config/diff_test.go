package config

import (
	"strings"
	"testing"
)

func TestDiffSerialized(t *testing.T) {
	oldData := []byte("macros:\n  - key: \"1\"\n    interval_ms: 1000\n")
	newData := []byte("macros:\n  - key: \"1\"\n    interval_ms: 1200\n")

	diff := DiffSerialized(oldData, newData)
	if diff == "" {
		t.Fatalf("expected diff, got empty string")
	}
	if !strings.Contains(diff, "interval_ms: 1000") || !strings.Contains(diff, "interval_ms: 1200") {
		t.Fatalf("expected diff to mention both versions, got %s", diff)
	}
}

func TestDiffSerializedIgnoresLineEndings(t *testing.T) {
	if diff := DiffSerialized([]byte("a: 1\r\nb: 2\r\n"), []byte("a: 1\nb: 2")); diff != "" {
		t.Fatalf("expected no diff, got %s", diff)
	}
}
