package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gradtrack/gradtrack/internal/types"
)

// ApplicationDetail renders one application for `gt show`.
func ApplicationDetail(app types.Application, now time.Time) string {
	var sb strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&sb, "  %-18s %s\n", label+":", value)
	}

	title := app.Label()
	if app.IsPinned {
		title += " " + RenderAccent("(pinned)")
	}
	sb.WriteString(RenderBold(title) + "\n")
	line("ID", app.ID)
	line("Status", RenderStatus(app.Status))
	line("Type", string(app.ProgramType))
	line("Department", app.Department)
	line("Location", app.Location)
	line("Website", app.Website)
	line("Deadline", DeadlineLabel(app.Deadline, now))
	if app.PreferredDeadline != nil {
		line("Preferred deadline", DeadlineLabel(app.PreferredDeadline, now))
	}
	if app.DecisionDeadline != nil {
		line("Decision deadline", DeadlineLabel(app.DecisionDeadline, now))
	}
	if app.ApplicationFee > 0 {
		line("Fee", fmt.Sprintf("%.2f", app.ApplicationFee))
	}
	if len(app.Tags) > 0 {
		line("Tags", strings.Join(app.Tags, ", "))
	}

	sb.WriteString("\n" + RenderAccent("Documents") + "\n")
	for _, key := range types.DocumentKeys {
		doc := app.Documents.Slot(key)
		if doc == nil {
			continue
		}
		req := RenderMuted("optional")
		if doc.Required {
			req = "required"
		}
		status := string(doc.Status)
		if doc.Status == types.DocSubmitted {
			status = RenderPass(status)
		}
		fmt.Fprintf(&sb, "  %-20s %-10s %s\n", key, req, status)
	}

	if len(app.StatusHistory) > 0 {
		sb.WriteString("\n" + RenderAccent("History") + "\n")
		for _, change := range app.StatusHistory {
			fmt.Fprintf(&sb, "  %s  %s\n", change.Date, RenderStatus(change.Status))
		}
	}

	if len(app.FacultyContacts) > 0 {
		sb.WriteString("\n" + RenderAccent("Faculty contacts") + "\n")
		for _, c := range app.FacultyContacts {
			fmt.Fprintf(&sb, "  %s <%s> %s\n", c.Name, c.Email, RenderMuted(string(c.Status)))
		}
	}

	if len(app.Recommenders) > 0 {
		sb.WriteString("\n" + RenderAccent("Recommenders") + "\n")
		for _, r := range app.Recommenders {
			fmt.Fprintf(&sb, "  %s %s\n", r.Name, RenderMuted(string(r.Status)))
		}
	}

	if offer := app.FinancialOffer; offer != nil {
		sb.WriteString("\n" + RenderAccent("Financial offer") + "\n")
		line("Stipend", strings.TrimSpace(fmt.Sprintf("%.0f %s", offer.Stipend, offer.StipendPeriod)))
		line("Tuition waiver", fmt.Sprintf("%.0f%%", offer.TuitionWaiverPct))
		line("Assistantship", string(offer.Assistantship))
	}

	if app.Notes != "" {
		sb.WriteString("\n" + RenderAccent("Notes") + "\n  " + app.Notes + "\n")
	}
	return sb.String()
}
