package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mpkconv/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtraction, "extract", "zip", "read entry", base)
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "zip", "read entry", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrDatasetDirMissing, "locate", "", "", nil)
	if !errors.Is(err, services.ErrDatasetDirMissing) {
		t.Fatalf("expected marker, got %v", err)
	}
	if err.Error() != "dataset directory missing: locate" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{services.Wrap(services.ErrUnrecognizedFormat, "detect", "", "", nil), "unrecognized_format"},
		{services.Wrap(services.ErrExtraction, "extract", "", "", errors.New("io")), "extraction_failed"},
		{fmt.Errorf("outer: %w", services.ErrDatasetDirMissing), "dataset_dir_missing"},
		{services.Wrap(services.ErrDatasetConversion, "convert", "", "", nil), "dataset_failed"},
		{errors.New("anything"), "failed"},
	}
	for _, tt := range tests {
		if got := services.Classify(tt.err); got != tt.want {
			t.Fatalf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
