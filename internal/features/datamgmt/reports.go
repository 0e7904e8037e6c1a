package datamgmt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/lead"
	"nextgen-crm/internal/features/prospect"
)

// Report types accepted by GenerateReport.
const (
	ReportProspects   = "prospects"
	ReportStatuses    = "prospects_status"
	ReportSources     = "prospects_source"
	ReportLeads       = "leads"
	ReportActivities  = "activities"
	ReportPerformance = "employee_performance"
)

var leadExportHeaders = []string{"Name", "Phone", "Email", "Location", "Date"}

// ExportLeadsCSV renders raw leads as CSV text, same quoting rules as
// the prospect export.
func ExportLeadsCSV(leads []lead.Lead) string {
	var b strings.Builder
	writeRow(&b, leadExportHeaders)
	for _, l := range leads {
		date := ""
		if !l.Timestamp.IsZero() {
			date = l.Timestamp.Format(time.RFC3339)
		}
		writeRow(&b, []string{l.Name, l.Phone, l.Email, l.Location, date})
	}
	return b.String()
}

// ReportInput carries the session's canonical collections into a
// report build. The prospect slice is already access-scoped by the
// caller's subscriptions.
type ReportInput struct {
	Prospects []prospect.Prospect
	Leads     []lead.Lead
	Employees []access.Employee
}

func (in ReportInput) nameOf(employeeID string) string {
	for _, e := range in.Employees {
		if e.ID == employeeID {
			return e.Name
		}
	}
	return employeeID
}

// ReportFile is one generated download: a date-stamped file name plus
// the CSV body.
type ReportFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func reportFile(base, content string) *ReportFile {
	return &ReportFile{
		Name:    fmt.Sprintf("%s_%s.csv", base, time.Now().Format("2006-01-02")),
		Content: content,
	}
}

func prospectsReport(in ReportInput) *ReportFile {
	var b strings.Builder
	writeRow(&b, []string{"Name", "Phone", "Email", "Status", "Lead Source", "Assigned To", "Created At"})
	for _, p := range in.Prospects {
		created := ""
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.Format(time.RFC3339)
		}
		writeRow(&b, []string{p.Name, p.Phone, p.Email, p.Status, p.LeadSource, in.nameOf(p.AssignedTo), created})
	}
	return reportFile("all_prospects_report", b.String())
}

func statusReport(in ReportInput) *ReportFile {
	counts := map[string]int{}
	for _, p := range in.Prospects {
		counts[p.Status]++
	}
	return reportFile("status_analysis_report", countRows([]string{"Status", "Count"}, counts))
}

func sourceReport(in ReportInput) *ReportFile {
	counts := map[string]int{}
	for _, p := range in.Prospects {
		counts[p.LeadSource]++
	}
	return reportFile("lead_source_report", countRows([]string{"Lead Source", "Count"}, counts))
}

func leadsReport(in ReportInput) *ReportFile {
	return reportFile("raw_leads_report", ExportLeadsCSV(in.Leads))
}

func performanceReport(in ReportInput) *ReportFile {
	var b strings.Builder
	writeRow(&b, []string{"Employee", "Total Leads Assigned", "Conversions", "Conversion Rate"})
	for _, e := range in.Employees {
		assigned := 0
		conversions := 0
		for _, p := range in.Prospects {
			if p.AssignedTo != e.ID {
				continue
			}
			assigned++
			if p.Status == prospect.StatusJoined {
				conversions++
			}
		}
		rate := "0%"
		if assigned > 0 {
			rate = fmt.Sprintf("%.1f%%", float64(conversions)/float64(assigned)*100)
		}
		writeRow(&b, []string{e.Name, strconv.Itoa(assigned), strconv.Itoa(conversions), rate})
	}
	return reportFile("employee_performance_report", b.String())
}

// countRows renders a label-to-count map sorted by label, so repeated
// runs over the same data produce identical files.
func countRows(headers []string, counts map[string]int) string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	writeRow(&b, headers)
	for _, label := range labels {
		writeRow(&b, []string{label, strconv.Itoa(counts[label])})
	}
	return b.String()
}
