package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/pkg/timefmt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Document is a rendered incident report.
type Document struct {
	Content     string `json:"content"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

var statusTitle = cases.Title(language.English)

var entryTypeEmoji = map[domain.TimelineEntryType]string{
	domain.EntryTypeNote:        "📝",
	domain.EntryTypeAction:      "⚡",
	domain.EntryTypeDecision:    "🎯",
	domain.EntryTypeObservation: "👁️",
}

// renderInput bundles everything the markdown renderer consumes. The
// postmortem is optional; the service name comes from the catalog.
type renderInput struct {
	incident    *domain.Incident
	serviceName string
	entries     []domain.TimelineEntry
	postmortem  *domain.Postmortem
	exportedAt  time.Time
}

// renderMarkdown assembles the document in fixed order: title, overview
// table, optional summary, timeline, optional postmortem, footer. Every
// piece of free text passes through Redact before it is embedded.
func renderMarkdown(in renderInput) string {
	var b strings.Builder
	inc := in.incident

	fmt.Fprintf(&b, "# Incident Report: %s\n\n---\n\n", Redact(inc.Title))

	b.WriteString("## Overview\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(&b, "| **Service** | %s |\n", Redact(in.serviceName))
	fmt.Fprintf(&b, "| **Severity** | %s |\n", strings.ToUpper(string(inc.Severity)))
	fmt.Fprintf(&b, "| **Status** | %s |\n", statusTitle.String(string(inc.Status)))
	fmt.Fprintf(&b, "| **Started** | %s |\n", timefmt.Timestamp(inc.StartedAt))
	if inc.EndedAt != nil {
		fmt.Fprintf(&b, "| **Ended** | %s |\n", timefmt.Timestamp(*inc.EndedAt))
		fmt.Fprintf(&b, "| **Duration** | %s |\n", timefmt.Duration(inc.EndedAt.Sub(inc.StartedAt)))
	}
	if inc.RunbookTitle != nil {
		fmt.Fprintf(&b, "| **Runbook** | %s |\n", Redact(*inc.RunbookTitle))
	}
	b.WriteString("\n")

	if strings.TrimSpace(inc.Summary) != "" {
		fmt.Fprintf(&b, "## Summary\n\n%s\n\n", Redact(inc.Summary))
	}

	b.WriteString("## Timeline\n\n")
	if len(in.entries) == 0 {
		b.WriteString("*No timeline entries recorded.*\n\n")
	}
	for _, e := range in.entries {
		fmt.Fprintf(&b, "### %s - %s %s\n\n%s\n\n",
			timefmt.Timestamp(e.OccurredAt),
			emojiFor(e.EntryType),
			statusTitle.String(string(e.EntryType)),
			Redact(e.Body),
		)
	}

	if in.postmortem != nil {
		b.WriteString("---\n\n# Postmortem\n\n")
		for _, section := range []string{
			in.postmortem.Impact,
			in.postmortem.RootCause,
			in.postmortem.Detection,
			in.postmortem.Resolution,
			in.postmortem.ActionItems,
		} {
			if strings.TrimSpace(section) != "" {
				b.WriteString(Redact(section))
				b.WriteString("\n\n")
			}
		}
	}

	fmt.Fprintf(&b, "---\n\n*Exported from OpsLedger on %s*\n", timefmt.Timestamp(in.exportedAt))
	return b.String()
}

func emojiFor(entryType domain.TimelineEntryType) string {
	if emoji, ok := entryTypeEmoji[entryType]; ok {
		return emoji
	}
	return "•"
}

var (
	// \w in Go is ASCII-only, so letters and digits are matched explicitly
	// to keep non-ASCII titles sluggable.
	filenameStrip    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	filenameCollapse = regexp.MustCompile(`\s+`)
)

// filename builds the filesystem-safe export name:
// incident-{YYYY-MM-DD}-{slug}.md. The slug keeps letters, digits,
// underscores and hyphens only, collapses whitespace runs to one hyphen,
// lowercases and truncates to 50 characters, falling back to "unnamed".
func filename(incident *domain.Incident) string {
	slug := filenameStrip.ReplaceAllString(incident.Title, "")
	slug = filenameCollapse.ReplaceAllString(slug, "-")
	slug = strings.ToLower(slug)
	if r := []rune(slug); len(r) > 50 {
		slug = string(r[:50])
	}
	if slug == "" {
		slug = "unnamed"
	}
	return fmt.Sprintf("incident-%s-%s.md", timefmt.Date(incident.StartedAt), slug)
}
