package fs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/pk"
	"github.com/bft-labs/pkfit/internal/report"
)

// Output file names inside the result directory.
const (
	ResultsFileName    = "results.csv"
	ResidualsFileName  = "residuals.csv"
	SummaryFileName    = "summary.json"
	ReportFileName     = "report.md"
	ValidationFileName = "validation.md"
)

// ResultWriter implements ports.ResultSink by writing files into a directory.
// results.csv and summary.json are always written; the Markdown report and
// the residual validation files are optional.
type ResultWriter struct {
	dir       string
	report    bool
	residuals bool
}

// WriterOption configures a ResultWriter.
type WriterOption func(*ResultWriter)

// WithReport enables report.md.
func WithReport(enabled bool) WriterOption {
	return func(w *ResultWriter) { w.report = enabled }
}

// WithResiduals enables residuals.csv and validation.md.
func WithResiduals(enabled bool) WriterOption {
	return func(w *ResultWriter) { w.residuals = enabled }
}

// NewResultWriter creates a ResultWriter for dir.
func NewResultWriter(dir string, opts ...WriterOption) *ResultWriter {
	w := &ResultWriter{dir: dir}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write persists the run.
func (w *ResultWriter) Write(ctx context.Context, s domain.RunSummary, series []domain.SubjectSeries) error {
	if err := writeAtomic(w.path(ResultsFileName), func(out io.Writer) error {
		return WriteResultsCSV(out, s)
	}); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if err := writeAtomic(w.path(SummaryFileName), func(out io.Writer) error {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = out.Write(append(data, '\n'))
		return err
	}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if w.report {
		if err := writeAtomic(w.path(ReportFileName), func(out io.Writer) error {
			return report.WriteMarkdown(out, s)
		}); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if w.residuals {
		res := SubjectResiduals(s, series)
		if err := writeAtomic(w.path(ResidualsFileName), func(out io.Writer) error {
			return WriteResidualsCSV(out, res)
		}); err != nil {
			return fmt.Errorf("write residuals: %w", err)
		}
		if err := writeAtomic(w.path(ValidationFileName), func(out io.Writer) error {
			return report.WriteValidationSummary(out, s, res, w.path(ResidualsFileName))
		}); err != nil {
			return fmt.Errorf("write validation summary: %w", err)
		}
	}
	return nil
}

func (w *ResultWriter) path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteResultsCSV writes one row per fitted subject followed by the pooled row.
func WriteResultsCSV(out io.Writer, s domain.RunSummary) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"id", "cl", "v", "sse", "rmse", "n"}); err != nil {
		return err
	}
	rows := s.Subjects
	if s.Pooled != nil {
		rows = append(append([]domain.FitResult(nil), rows...), *s.Pooled)
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.SubjectID,
			formatFloat(r.CL),
			formatFloat(r.V),
			formatFloat(r.SSE),
			formatFloat(r.RMSE),
			strconv.Itoa(r.N),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SubjectResiduals evaluates each fitted subject's parameters at its own
// observations. Subjects without a fit are skipped.
func SubjectResiduals(s domain.RunSummary, series []domain.SubjectSeries) []pk.Residual {
	fitted := make(map[string]domain.Candidate, len(s.Subjects))
	for _, r := range s.Subjects {
		fitted[r.SubjectID] = domain.Candidate{CL: r.CL, V: r.V}
	}
	var out []pk.Residual
	for _, ser := range series {
		c, ok := fitted[ser.ID]
		if !ok {
			continue
		}
		out = append(out, pk.Residuals(ser.Observations, c)...)
	}
	return out
}

// WriteResidualsCSV writes observed, predicted and residual concentrations.
func WriteResidualsCSV(out io.Writer, res []pk.Residual) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"subject_id", "time", "conc_obs", "conc_pred", "residual"}); err != nil {
		return err
	}
	for _, r := range res {
		if err := cw.Write([]string{
			r.SubjectID,
			formatFloat(r.Time),
			formatFloat(r.Observed),
			formatFloat(r.Predicted),
			formatFloat(r.Residual),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
