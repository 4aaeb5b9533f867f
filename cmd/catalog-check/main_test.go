package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

const validConfig = `{
  "statuses": [
    {"status": "pending", "phase": 1},
    {"status": "scheduled", "phase": 2},
    {"status": "completed", "phase": 3, "terminal": true}
  ],
  "thresholds": {"1": "48h", "2": "96h"},
  "critical_multiplier": 2
}`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := cli(args, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidConfigPasses(t *testing.T) {
	t.Chdir(t.TempDir())
	writeConfig(t, "workflow.json", validConfig)
	code, stdout, stderr := runCLI(t, "-config", "workflow.json")
	if code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "validation passed") {
		t.Fatalf("stdout: %s", stdout)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Chdir(t.TempDir())
	writeConfig(t, "workflow.json", validConfig)
	if code, _, stderr := runCLI(t); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
}

func TestMissingFileFails(t *testing.T) {
	t.Chdir(t.TempDir())
	code, _, stderr := runCLI(t, "-config", "nope.json")
	if code != 1 || !strings.Contains(stderr, "read config") {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
}

func TestMalformedJSONFails(t *testing.T) {
	t.Chdir(t.TempDir())
	writeConfig(t, "workflow.json", "{not json")
	code, _, stderr := runCLI(t, "-config", "workflow.json")
	if code != 1 || !strings.Contains(stderr, "parse config") {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	code, _, stderr := runCLI(t, "-config", "../workflow.json")
	if code != 1 || !strings.Contains(stderr, "traversal") {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	code, _, stderr = runCLI(t, "-config", "/etc/workflow.json")
	if code != 1 || !strings.Contains(stderr, "absolute") {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
}

func TestValidateConfigRules(t *testing.T) {
	cases := []struct {
		name    string
		cfg     workflowConfig
		wantErr string
	}{
		{
			name:    "empty statuses",
			cfg:     workflowConfig{},
			wantErr: "statuses entry is empty",
		},
		{
			name: "terminal outside final phase",
			cfg: workflowConfig{Statuses: []statusConfig{
				{Status: "done", Phase: 1, Terminal: true},
				{Status: "later", Phase: 2},
			}},
			wantErr: "final phase",
		},
		{
			name: "duplicate status",
			cfg: workflowConfig{Statuses: []statusConfig{
				{Status: "pending", Phase: 1},
				{Status: "pending", Phase: 1},
			}},
			wantErr: "declared twice",
		},
		{
			name: "threshold for unknown phase",
			cfg: workflowConfig{
				Statuses:   []statusConfig{{Status: "pending", Phase: 1}},
				Thresholds: map[int]string{9: "48h"},
			},
			wantErr: "phase 9 not present",
		},
		{
			name: "unparseable threshold",
			cfg: workflowConfig{
				Statuses:   []statusConfig{{Status: "pending", Phase: 1}},
				Thresholds: map[int]string{1: "soon"},
			},
			wantErr: "phase 1",
		},
		{
			name: "negative threshold",
			cfg: workflowConfig{
				Statuses:   []statusConfig{{Status: "pending", Phase: 1}},
				Thresholds: map[int]string{1: "-2h"},
			},
			wantErr: "must be positive",
		},
		{
			name: "multiplier at or below one",
			cfg: workflowConfig{
				Statuses:           []statusConfig{{Status: "pending", Phase: 1}},
				CriticalMultiplier: 1,
			},
			wantErr: "greater than 1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConfig(tc.cfg)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}
