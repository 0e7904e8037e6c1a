package datamgmt

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/features/prospect"
)

var exportHeaders = []string{"Name", "Phone", "Email", "Status", "Interest", "Location", "Created"}

// ExportCSV renders prospects as CSV text. Every field is
// double-quote-escaped with embedded quotes doubled.
func ExportCSV(prospects []prospect.Prospect) string {
	var b strings.Builder
	writeRow(&b, exportHeaders)
	for _, p := range prospects {
		created := ""
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.Format(time.RFC3339)
		}
		writeRow(&b, []string{p.Name, p.Phone, p.Email, p.Status, p.InterestLevel, p.Location, created})
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// ParseCSV reads an import file into prospect field rows. The header
// row must contain Name and Phone columns (case-insensitive); the
// whole import aborts before any write if either is missing. Rows with
// fewer than two populated values are skipped.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errs.ImportFormat("could not parse CSV: " + err.Error())
	}
	if len(records) < 2 {
		return nil, errs.ImportFormat("CSV is empty or missing headers")
	}

	headers := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		headers[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := headers["name"]; !ok {
		return nil, errs.ImportFormat(`CSV must contain "Name" and "Phone" columns`)
	}
	if _, ok := headers["phone"]; !ok {
		return nil, errs.ImportFormat(`CSV must contain "Name" and "Phone" columns`)
	}

	rows := make([]ImportRow, 0, len(records)-1)
	for _, record := range records[1:] {
		populated := 0
		for _, v := range record {
			if strings.TrimSpace(v) != "" {
				populated++
			}
		}
		if populated < 2 {
			continue
		}

		get := func(col string) string {
			if i, ok := headers[col]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		rows = append(rows, ImportRow{
			Name:     get("name"),
			Phone:    get("phone"),
			Email:    get("email"),
			Interest: get("interest"),
			Location: get("location"),
		})
	}
	return rows, nil
}

// ImportRow is one parsed prospect line of an import file.
type ImportRow struct {
	Name     string
	Phone    string
	Email    string
	Interest string
	Location string
}
