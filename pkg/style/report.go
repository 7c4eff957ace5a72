package style

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/homestead/pkg/backup"
)

// RenderReport summarizes a run: the steps that ran and what happened to
// every guarded path. Kept backups are listed so the operator can inspect
// them.
func RenderReport(host string, steps []string, outcomes []backup.Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", SuccessIndicator(), TitleStyle.Render(fmt.Sprintf("%d steps completed on %s", len(steps), HostStyle.Render(host))))
	for _, step := range steps {
		fmt.Fprintf(&b, "  %s\n", MutedStyle.Render(step))
	}

	var kept, unchanged int
	for _, o := range outcomes {
		switch {
		case o.Kept:
			kept++
			fmt.Fprintf(&b, "  %s %s %s %s\n", KeptIndicator(), PathStyle.Render(o.Target),
				MutedStyle.Render("previous content kept at"), PathStyle.Render(o.Backup))
		case o.Rotated:
			unchanged++
		}
	}

	if len(outcomes) > 0 {
		fmt.Fprintf(&b, "%s\n", MutedStyle.Render(fmt.Sprintf(
			"%d paths installed, %d unchanged, %d backups kept", len(outcomes), unchanged, kept)))
	}
	return b.String()
}
