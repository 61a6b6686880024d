package tui

import (
	"fmt"
	"strings"

	"github.com/scanhub/scanhub/internal/models"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 6

// renderDetail produces the detail view for a selected record.
func renderDetail(record *models.VulnerabilityRecord, width int) string {
	if record == nil {
		return styleDetailPanel.Width(width).Render("No finding selected")
	}

	var b strings.Builder

	sevStyled := severityStyle(record.Severity).Render(record.Severity)
	b.WriteString(fmt.Sprintf("%s  %s / %s\n", sevStyled, record.Tool, record.Category))

	title := record.Title
	if record.ID != "" && record.ID != record.Title {
		title = fmt.Sprintf("%s (%s)", record.Title, record.ID)
	}
	b.WriteString(title + "\n")

	location := record.Location()
	if record.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, record.Line)
	}
	b.WriteString(fmt.Sprintf("Location: %s\n", location))

	if record.Remediation != "" {
		maxW := width - 8
		if maxW < 20 {
			maxW = 20
		}
		b.WriteString(fmt.Sprintf("Fix: %s\n", truncate(record.Remediation, maxW)))
	}

	parts := make([]string, 0, 3)
	if record.SeverityScore > 0 {
		parts = append(parts, fmt.Sprintf("Score: %.1f", record.SeverityScore))
	}
	if len(record.CWE) > 0 {
		parts = append(parts, strings.Join(record.CWE, ", "))
	}
	if record.Package != "" {
		pkg := record.Package
		if record.InstalledVersion != "" {
			pkg += "@" + record.InstalledVersion
		}
		parts = append(parts, pkg)
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, "  "))
	}

	return styleDetailPanel.Width(width).Render(b.String())
}
