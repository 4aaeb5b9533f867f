// Command catalog-check validates a workflow configuration file: the status
// catalog (statuses, phases, terminal markers) plus staleness thresholds and
// alert banding.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"caseflow/pkg/domain"
)

var exitFunc = os.Exit

// workflowConfig is the on-disk JSON shape accepted by the tool.
type workflowConfig struct {
	Statuses []statusConfig `json:"statuses"`
	// Thresholds maps phase number to a Go duration string, e.g. "48h".
	Thresholds map[int]string `json:"thresholds,omitempty"`
	// CriticalMultiplier scales thresholds into the critical band (default 2).
	CriticalMultiplier float64 `json:"critical_multiplier,omitempty"`
}

type statusConfig struct {
	Status   string `json:"status"`
	Phase    int    `json:"phase"`
	Terminal bool   `json:"terminal,omitempty"`
}

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("catalog-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var configPath string
	fs.StringVar(&configPath, "config", "workflow.json", "path to workflow config json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(configPath); err != nil {
		fmt.Fprintf(stderr, "Workflow config validation failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Workflow config validation passed.")
	return 0
}

// validatePath rejects absolute and path-traversing references so the tool
// only reads inside the working tree.
func validatePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("absolute paths not allowed: %s", p)
	}
	clean := filepath.Clean(p)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", p)
	}
	return clean, nil
}

func run(configPath string) error {
	safePath, err := validatePath(configPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(safePath) // #nosec G304: path validated by validatePath
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var cfg workflowConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return validateConfig(cfg)
}

func validateConfig(cfg workflowConfig) error {
	if len(cfg.Statuses) == 0 {
		return fmt.Errorf("statuses entry is empty")
	}
	entries := make([]domain.CatalogEntry, 0, len(cfg.Statuses))
	for i, sc := range cfg.Statuses {
		entries = append(entries, domain.CatalogEntry{
			Status:   domain.Status(sc.Status),
			Phase:    domain.Phase(sc.Phase),
			Terminal: sc.Terminal,
		})
		if sc.Terminal && sc.Phase != maxPhase(cfg.Statuses) {
			return fmt.Errorf("statuses[%d]: terminal status %q must sit in the final phase", i, sc.Status)
		}
	}
	catalog, err := domain.NewCatalog(entries)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := validateThresholds(catalog, cfg.Thresholds); err != nil {
		return err
	}
	if cfg.CriticalMultiplier != 0 && cfg.CriticalMultiplier <= 1 {
		return fmt.Errorf("critical_multiplier must be greater than 1, got %v", cfg.CriticalMultiplier)
	}
	return nil
}

func validateThresholds(catalog domain.Catalog, thresholds map[int]string) error {
	known := make(map[domain.Phase]struct{})
	for _, phase := range catalog.Phases() {
		known[phase] = struct{}{}
	}
	for phase, raw := range thresholds {
		if _, ok := known[domain.Phase(phase)]; !ok {
			return fmt.Errorf("thresholds: phase %d not present in catalog", phase)
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("thresholds: phase %d: %w", phase, err)
		}
		if d <= 0 {
			return fmt.Errorf("thresholds: phase %d: duration must be positive, got %s", phase, raw)
		}
	}
	return nil
}

func maxPhase(statuses []statusConfig) int {
	max := 0
	for _, sc := range statuses {
		if sc.Phase > max {
			max = sc.Phase
		}
	}
	return max
}
