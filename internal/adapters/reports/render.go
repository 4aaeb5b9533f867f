// Package reports renders workflow views (companies, board, alerts,
// history) into downloadable artifacts and stores them through the blob
// layer.
package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"caseflow/internal/core"
)

// ReportKind selects which workflow view a report covers.
type ReportKind string

const (
	KindCompanies ReportKind = "companies"
	KindBoard     ReportKind = "board"
	KindAlerts    ReportKind = "alerts"
	KindHistory   ReportKind = "history"
)

// Format identifies an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var contentTypes = map[Format]string{
	FormatJSON: "application/json",
	FormatCSV:  "text/csv",
}

// table is the intermediate representation all renderers produce; JSON and
// CSV encoders consume it uniformly.
type table struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

func renderCompanies(svc *core.Service, filter core.FilterSpec) table {
	t := table{Columns: []string{"id", "name", "code", "contact_person", "status", "phase", "status_changed_at"}}
	for _, company := range svc.Query(filter) {
		t.Rows = append(t.Rows, map[string]any{
			"id":                company.ID,
			"name":              company.Name,
			"code":              stringOrEmpty(company.Code),
			"contact_person":    stringOrEmpty(company.ContactPerson),
			"status":            string(company.CurrentStatus),
			"phase":             int(company.Phase),
			"status_changed_at": company.StatusChangedAt.Format(time.RFC3339),
		})
	}
	return t
}

func renderBoard(svc *core.Service) table {
	t := table{Columns: []string{"phase", "status", "company_id", "name"}}
	for _, column := range svc.Board() {
		for _, company := range column.Companies {
			t.Rows = append(t.Rows, map[string]any{
				"phase":      int(column.Phase),
				"status":     string(company.CurrentStatus),
				"company_id": company.ID,
				"name":       company.Name,
			})
		}
	}
	return t
}

func renderAlerts(svc *core.Service, thresholds core.Thresholds) table {
	t := table{Columns: []string{"company_id", "status", "phase", "stalled_for", "threshold", "severity"}}
	for _, alert := range svc.Alerts(thresholds) {
		t.Rows = append(t.Rows, map[string]any{
			"company_id":  alert.CompanyID,
			"status":      string(alert.Status),
			"phase":       int(alert.Phase),
			"stalled_for": alert.Duration.String(),
			"threshold":   alert.Threshold.String(),
			"severity":    string(alert.Severity),
		})
	}
	return t
}

func renderHistory(svc *core.Service, companyID string) table {
	t := table{Columns: []string{"seq", "company_id", "from_status", "to_status", "changed_at", "actor"}}
	for _, entry := range svc.HistoryOf(companyID) {
		t.Rows = append(t.Rows, map[string]any{
			"seq":         entry.Seq,
			"company_id":  entry.CompanyID,
			"from_status": string(entry.FromStatus),
			"to_status":   string(entry.ToStatus),
			"changed_at":  entry.ChangedAt.Format(time.RFC3339),
			"actor":       entry.Actor,
		})
	}
	return t
}

func encode(format Format, t table) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(t)
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write(t.Columns); err != nil {
			return nil, err
		}
		for _, row := range t.Rows {
			record := make([]string, len(t.Columns))
			for i, column := range t.Columns {
				record[i] = formatCell(row[column])
			}
			if err := writer.Write(record); err != nil {
				return nil, err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported report format %s", format)
	}
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case uint64:
		return strconv.FormatUint(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func stringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
