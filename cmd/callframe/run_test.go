package main

import (
	"testing"
	"time"

	"github.com/1broseidon/callframe/internal/platform"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    platform.Size
		wantErr bool
	}{
		{"1000x900", platform.Size{Width: 1000, Height: 900}, false},
		{" 640X480 ", platform.Size{Width: 640, Height: 480}, false},
		{"1000", platform.Size{}, true},
		{"0x10", platform.Size{}, true},
		{"10x-1", platform.Size{}, true},
		{"axb", platform.Size{}, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseSize(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseSize(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseRunArgs(t *testing.T) {
	opts, err := parseRunArgs([]string{
		"--title", "Alice",
		"--request", "1280x720",
		"--min-button-width", "500",
		"--hangup-delay", "750ms",
	})
	if err != nil {
		t.Fatalf("parseRunArgs: %v", err)
	}
	if opts.peer != "Alice" || opts.minButtonWidth != 500 || opts.hangupDelay != 750*time.Millisecond {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.request != (platform.Size{Width: 1280, Height: 720}) {
		t.Fatalf("unexpected request %+v", opts.request)
	}

	if _, err := parseRunArgs([]string{"extra"}); err == nil {
		t.Fatal("expected error for positional argument")
	}
	if _, err := parseRunArgs([]string{"--request", "big"}); err == nil {
		t.Fatal("expected error for bad size")
	}
}
