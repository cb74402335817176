// Package report renders fitting runs as Markdown.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/pk"
)

// BestSubjects is how many subjects the report lists by lowest RMSE.
const BestSubjects = 5

// WriteMarkdown renders the run report.
func WriteMarkdown(w io.Writer, s domain.RunSummary) error {
	var b strings.Builder

	title := "PK grid-search fit report"
	if s.Metadata.Study != "" {
		title += " (" + s.Metadata.Study + ")"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Run: %s\n", s.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", s.StartedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Duration: %s\n\n", s.Duration.Round(time.Millisecond))

	b.WriteString("## Data summary\n")
	d := s.Dataset
	fmt.Fprintf(&b, "- Subjects: %d\n", d.Subjects)
	fmt.Fprintf(&b, "- Observations: %d\n", d.Observations)
	if d.Observations > 0 {
		fmt.Fprintf(&b, "- Time range%s: %s to %s\n", unit(s.Metadata.TimeUnit), num(d.MinTime), num(d.MaxTime))
	}
	fmt.Fprintf(&b, "- Doses%s: %s\n", unit(s.Metadata.DoseUnit), joinNums(d.Doses))
	fmt.Fprintf(&b, "- Infusion durations%s: %s\n", unit(s.Metadata.TimeUnit), joinNums(d.InfusionDurations))
	if s.Metadata.TimeUnit != "" || s.Metadata.ConcUnit != "" {
		fmt.Fprintf(&b, "- Units: time=%s, conc=%s\n", s.Metadata.TimeUnit, s.Metadata.ConcUnit)
	}
	b.WriteString("\n")

	b.WriteString("## Model\n")
	b.WriteString("- One-compartment IV infusion with first-order elimination\n")
	b.WriteString("- Parameters: CL, V, k = CL/V\n")
	fmt.Fprintf(&b, "- Subject grid: %s\n", describeGrid(s.Grid))
	fmt.Fprintf(&b, "- Pooled grid: %s\n\n", describeGrid(s.PooledGrid))

	b.WriteString("## Results\n")
	if s.Pooled != nil {
		p := s.Pooled
		fmt.Fprintf(&b, "- Pooled fit: CL=%.3g, V=%.3g, k=%.3g, SSE=%.3g, RMSE=%.3g (n=%d)\n", p.CL, p.V, p.K(), p.SSE, p.RMSE, p.N)
	} else {
		b.WriteString("- Pooled fit: not available\n")
	}
	if len(s.Subjects) > 0 {
		fmt.Fprintf(&b, "- Sum of individual SSEs: %.3g\n", s.TotalSubjectSSE())
		b.WriteString("- Best individual fits (lowest RMSE):\n")
		for _, r := range s.BestByRMSE(BestSubjects) {
			fmt.Fprintf(&b, "  - Subject %s: CL=%.3g, V=%.3g, RMSE=%.3g\n", r.SubjectID, r.CL, r.V, r.RMSE)
		}
	}
	b.WriteString("\n")

	if len(s.Failures) > 0 {
		b.WriteString("## Failures\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", f.SubjectID, f.Kind, f.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Limitations\n")
	b.WriteString("- No population model (no mixed effects)\n")
	b.WriteString("- Grid search only (no confidence intervals)\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteValidationSummary renders residual statistics for the subject fits.
func WriteValidationSummary(w io.Writer, s domain.RunSummary, residuals []pk.Residual, residualsPath string) error {
	var b strings.Builder
	b.WriteString("# Validation summary\n\n")
	fmt.Fprintf(&b, "- Subjects: %d\n", len(s.Subjects))
	fmt.Fprintf(&b, "- Observations: %d\n", len(residuals))

	if len(s.Subjects) > 0 {
		rmses := make([]float64, len(s.Subjects))
		for i, r := range s.Subjects {
			rmses[i] = r.RMSE
		}
		sort.Float64s(rmses)
		fmt.Fprintf(&b, "- RMSE (min/median/max): %.3g / %.3g / %.3g\n", rmses[0], rmses[len(rmses)/2], rmses[len(rmses)-1])
	}
	if residualsPath != "" {
		fmt.Fprintf(&b, "- Residuals file: %s\n", residualsPath)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describeGrid(g domain.GridSpec) string {
	spacing := g.Spacing
	if spacing == "" {
		spacing = domain.SpacingLinear
	}
	return fmt.Sprintf("CL [%s, %s] x %d, V [%s, %s] x %d, %s spacing",
		num(g.CLMin), num(g.CLMax), g.CLSteps, num(g.VMin), num(g.VMax), g.VSteps, spacing)
}

func unit(u string) string {
	if u == "" {
		return ""
	}
	return " (" + u + ")"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinNums(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = num(f)
	}
	return strings.Join(parts, ", ")
}
