package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"version"}); err != nil {
		t.Fatalf("run(version): %v", err)
	}
	if !strings.Contains(out.String(), "Microwave") {
		t.Errorf("version output = %q, want banner", out.String())
	}
}

func TestRunVersionJSON(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"-o", "json", "version"}); err != nil {
		t.Fatalf("run(-o json version): %v", err)
	}
	if !strings.Contains(out.String(), `"go_version"`) {
		t.Errorf("json output = %q, want build fields", out.String())
	}
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, &out, nil); err != nil {
		t.Fatalf("run(): %v", err)
	}
	if !strings.Contains(out.String(), "Usage: microwave") {
		t.Errorf("output = %q, want usage text", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"defrost"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("run(defrost) error = %v, want unknown command", err)
	}
}

func TestRunUnknownOutputFormat(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"-o", "yaml", "version"})
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v, want format rejection", err)
	}
}

func TestRunExplicitConfigMustExist(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"-config", "/nonexistent/config.yaml", "sessions"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want missing-config failure", err)
	}
}
