package core

import "time"

// Thresholds configures the maximum time a company may sit in one status per
// phase. Phases absent from the map are never alerted on.
type Thresholds map[Phase]time.Duration

// EvaluateStaleness flags non-terminal companies whose time in their current
// status exceeds the threshold configured for their phase. Pure function; no
// state is held between calls.
func EvaluateStaleness(catalog Catalog, companies []Company, thresholds Thresholds, banding AlertBanding, now time.Time) []Alert {
	var out []Alert
	for _, c := range companies {
		if catalog.IsTerminal(c.CurrentStatus) {
			continue
		}
		threshold, ok := thresholds[c.Phase]
		if !ok || threshold <= 0 {
			continue
		}
		duration := now.Sub(c.StatusChangedAt)
		if duration <= threshold {
			continue
		}
		out = append(out, Alert{
			CompanyID: c.ID,
			Status:    c.CurrentStatus,
			Phase:     c.Phase,
			Duration:  duration,
			Threshold: threshold,
			Severity:  banding.Classify(duration, threshold),
		})
	}
	return out
}
