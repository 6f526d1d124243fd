package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

var resultHeader = []string{"set", "task_dir", "model", "property", "status", "timed_out", "seconds"}

var summaryHeader = []string{"set", "tasks", "verified", "falsified", "unknown", "timed_out", "errors", "verified_pct", "mean_seconds"}

// WriteResultsCSV writes one row per task.
func WriteResultsCSV(w io.Writer, results []model.TaskResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return errs.Wrap(errs.ErrCodeResults, "write results header", err)
	}
	for _, r := range results {
		timedOut := ""
		if r.TimedOut {
			timedOut = "TO"
		}
		row := []string{
			r.Set,
			r.TaskDir,
			r.Model,
			r.Property,
			r.Status,
			timedOut,
			strconv.FormatFloat(r.Seconds, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return errs.Wrap(errs.ErrCodeResults, "write result row", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one row per benchmark set.
func WriteSummaryCSV(w io.Writer, summaries []model.SetSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return errs.Wrap(errs.ErrCodeResults, "write summary header", err)
	}
	for _, s := range summaries {
		verifiedPct := 0.0
		if s.Tasks > 0 {
			verifiedPct = float64(s.Verified) / float64(s.Tasks) * 100
		}
		row := []string{
			s.Set,
			strconv.Itoa(s.Tasks),
			strconv.Itoa(s.Verified),
			strconv.Itoa(s.Falsified),
			strconv.Itoa(s.Unknown),
			strconv.Itoa(s.TimedOut),
			strconv.Itoa(s.Errors),
			strconv.FormatFloat(verifiedPct, 'f', 2, 64),
			strconv.FormatFloat(s.MeanSeconds, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return errs.Wrap(errs.ErrCodeResults, "write summary row", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles writes results.csv and summary.csv into outDir, creating it if
// needed.
func WriteFiles(outDir string, results []model.TaskResult, summaries []model.SetSummary) error {
	if err := os.MkdirAll(outDir, constants.WorkDirPerm); err != nil {
		return errs.Wrap(errs.ErrCodeResults, fmt.Sprintf("create output directory %s", outDir), err)
	}

	resultsPath := filepath.Join(outDir, constants.ResultsFileName)
	rf, err := os.Create(resultsPath)
	if err != nil {
		return errs.Wrap(errs.ErrCodeResults, fmt.Sprintf("create %s", resultsPath), err)
	}
	defer rf.Close()
	if err := WriteResultsCSV(rf, results); err != nil {
		return err
	}

	summaryPath := filepath.Join(outDir, constants.SummaryFileName)
	sf, err := os.Create(summaryPath)
	if err != nil {
		return errs.Wrap(errs.ErrCodeResults, fmt.Sprintf("create %s", summaryPath), err)
	}
	defer sf.Close()
	if err := WriteSummaryCSV(sf, summaries); err != nil {
		return err
	}

	zap.L().Info("result files written",
		zap.String("results", resultsPath),
		zap.String("summary", summaryPath),
		zap.Int("tasks", len(results)),
		zap.Int("sets", len(summaries)),
	)
	return nil
}
