package email

import (
	"context"
	"fmt"
	"strings"

	"hospitalhr/internal/domain/probation"
)

// ProbationNotifier mails HR a digest after each sweep that found due or
// overdue probations.
type ProbationNotifier struct {
	Mailer Mailer
	From   string
	To     string
}

func NewProbationNotifier(mailer Mailer, from, to string) *ProbationNotifier {
	return &ProbationNotifier{Mailer: mailer, From: from, To: to}
}

func (n *ProbationNotifier) NotifyProbationDue(ctx context.Context, report probation.SweepReport) error {
	if n == nil || n.Mailer == nil || strings.TrimSpace(n.To) == "" {
		return nil
	}
	if len(report.Due) == 0 && len(report.Overdue) == 0 {
		return nil
	}
	subject, body := probationDigest(report)
	return n.Mailer.Send(ctx, n.From, n.To, subject, body)
}

func probationDigest(report probation.SweepReport) (string, string) {
	subject := fmt.Sprintf("Probation review: %d overdue, %d due soon", len(report.Overdue), len(report.Due))

	var b strings.Builder
	writeSection := func(title string, views []probation.View) {
		if len(views) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s\n", title)
		for _, v := range views {
			fmt.Fprintf(&b, "  %s  %s  ends %s  (%s)\n",
				v.EmployeeRef,
				v.Status,
				v.EffectiveEndDate().Format("2006-01-02"),
				v.Label,
			)
		}
		b.WriteString("\n")
	}
	writeSection("Overdue", report.Overdue)
	writeSection("Due soon", report.Due)
	fmt.Fprintf(&b, "%d active probations checked.\n", report.Checked)
	return subject, b.String()
}
