package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rptcore/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	var names []string
	for _, tg := range cfg.Layout.Targets {
		names = append(names, tg.Name)
	}
	if diff := cmp.Diff([]string{"a4", "letter", "screen"}, names); diff != "" {
		t.Errorf("default targets mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.Layout.Targets[0].PageHeightMicro(); got != 842000 {
		t.Errorf("a4 page height = %d, want 842000", got)
	}
	if cfg.Crosstab.DetailMode != common.DetailModeFirst {
		t.Errorf("DetailMode = %s, want first", cfg.Crosstab.DetailMode)
	}
	if !cfg.Snap.EnableGrid || cfg.Snap.Grid != 5 {
		t.Errorf("unexpected snap defaults %+v", cfg.Snap)
	}
	if cfg.Layout.OutputNameTemplate != "" {
		t.Errorf("OutputNameTemplate = %q, want empty", cfg.Layout.OutputNameTemplate)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
layout:
  targets:
    - name: a5
      page_height: 595.5
  workers: 2
  output_name_template: "{{ .Report }}/{{ .Target }}"
crosstab:
  detail_mode: last
snap:
  grid: 10
  guides: [100, 200.5]
logging:
  console:
    level: debug
  file:
    level: none
reporting:
  destination: report.zip
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if len(cfg.Layout.Targets) != 1 || cfg.Layout.Targets[0].Name != "a5" {
		t.Errorf("targets were merged with defaults: %+v", cfg.Layout.Targets)
	}
	if got := cfg.Layout.Targets[0].PageHeightMicro(); got != 595500 {
		t.Errorf("page height = %d, want 595500", got)
	}
	if cfg.Layout.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Layout.Workers)
	}
	if cfg.Layout.OutputNameTemplate != "{{ .Report }}/{{ .Target }}" {
		t.Errorf("template was expanded: %q", cfg.Layout.OutputNameTemplate)
	}
	if cfg.Crosstab.DetailMode != common.DetailModeLast {
		t.Errorf("DetailMode = %s, want last", cfg.Crosstab.DetailMode)
	}
	if diff := cmp.Diff([]int64{100000, 200500}, cfg.Snap.GuidesMicro()); diff != "" {
		t.Errorf("guides mismatch (-want +got):\n%s", diff)
	}
	// values absent from file keep defaults
	if cfg.Layout.HeaderRowHeight != 14 || !cfg.Snap.PageGuides {
		t.Errorf("defaults lost: %+v %+v", cfg.Layout, cfg.Snap)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\nlayout:\n  workers: 1\n  invalid indent\n"},
		{"unknown field", "version: 1\nlayout:\n  page_width: 100\n"},
		{"wrong version", "version: 2\n"},
		{"bad detail mode", "version: 1\ncrosstab:\n  detail_mode: middle\n"},
		{"negative page", "version: 1\nlayout:\n  targets:\n    - name: x\n      page_height: -1\n"},
		{"no targets", "version: 1\nlayout:\n  targets: []\n"},
		{"duplicate targets", "version: 1\nlayout:\n  targets:\n    - name: x\n    - name: x\n"},
		{"unnamed target", "version: 1\nlayout:\n  targets:\n    - page_height: 10\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "detail_mode: first") {
		t.Errorf("default configuration misses crosstab section:\n%s", data)
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Crosstab.DetailMode = common.DetailModeAll
	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(out), "detail_mode: all") {
		t.Errorf("Dump() does not render enum by name:\n%s", out)
	}

	// dumped configuration is loadable
	back, err := LoadConfiguration(writeConfig(t, string(out)))
	if err != nil {
		t.Fatalf("LoadConfiguration(dump) error = %v", err)
	}
	if back.Crosstab.DetailMode != common.DetailModeAll || len(back.Layout.Targets) != 3 {
		t.Errorf("dump round trip lost values: %+v", back)
	}
}

func TestPrepare_DocumentsTemplateValues(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	for _, field := range []string{".Report", ".Target", ".PageHeight", ".Height", ".Pages", ".SourceFile"} {
		if !strings.Contains(string(data), " "+field+",") && !strings.Contains(string(data), " "+field+".") {
			t.Errorf("output_name_template comment does not mention %s", field)
		}
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report", "report"},
		{" spaced ", "spaced"},
		{"", "_bad_file_name_"},
		{string(os.PathSeparator), "_bad_file_name_"},
	}
	for _, tt := range tests {
		if got := CleanFileName(tt.in); got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
