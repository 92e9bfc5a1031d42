package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSampleCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "stt:\n  provider: none\nextraction:\n  recognizer: none\noutput:\n  dir: " + filepath.Join(dir, "out") + "\nlog:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sample", "invoice", "--config", cfgPath})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v\n%s", err, buf.String())
	}

	out := buf.String()
	for _, want := range []string{"Template:   invoice", "Email:", "john.smith@example.com", "Document_Type: Invoice"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	var pdfPath string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "PDF:"); ok {
			pdfPath = strings.TrimSpace(rest)
		}
	}
	if filepath.Base(pdfPath) != "invoice_form.pdf" {
		t.Fatalf("pdf path: got %q", pdfPath)
	}
	if _, err := os.Stat(pdfPath); err != nil {
		t.Errorf("pdf not written: %v", err)
	}
}

func TestSampleCommand_Unknown(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sample", "receipt", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error")
	}
}
