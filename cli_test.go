package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := runCLI(t, "validate", "--strict")
	if err != nil {
		t.Fatalf("validate --strict: %v\n%s", err, out)
	}
	if !strings.Contains(out, "content OK") {
		t.Errorf("output = %q", out)
	}
}

func TestChartCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "composition.png")
	out, err := runCLI(t, "chart", "phase1-data", "-o", file, "--size", "64")
	if err != nil {
		t.Fatalf("chart: %v\n%s", err, out)
	}

	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 {
		t.Errorf("width = %d, want 64", b.Dx())
	}

	for _, id := range []string{"conclusion", "missing"} {
		_, err := runCLI(t, "chart", id)
		if err == nil {
			t.Errorf("chart %s should fail", id)
			continue
		}
		if !strings.Contains(err.Error(), "phase1-data") {
			t.Errorf("error %q should list the sections that have charts", err)
		}
	}
}

func TestExportCommand(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(t.TempDir(), "site", "index.html")
	out, err := runCLI(t, "export", "-o", file, "--templates", filepath.Join(wd, "templates"), "--log-level", "error")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "80.5%") {
		t.Error("exported page is missing the pie legend")
	}
}
