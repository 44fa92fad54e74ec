package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/RyanBlaney/sonido-vitals/baseline"
	"github.com/RyanBlaney/sonido-vitals/biomarker"
	"github.com/RyanBlaney/sonido-vitals/features"
	"github.com/RyanBlaney/sonido-vitals/ingest"
	"github.com/RyanBlaney/sonido-vitals/logging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// analysis is the per-file output of analyze
type analysis struct {
	File     string                           `json:"file"`
	Report   *biomarker.StatisticalBiomarkers `json:"report"`
	Features baseline.FeatureSummary          `json:"features"`
	Segments []biomarker.Segment              `json:"segments,omitempty"`
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		inputs       []string
		withSegments bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build a biomarker report for each export file",
		Example: `  vitals analyze -i week1.json -i week2.json
  vitals analyze -i export.json --segments`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs = append(inputs, args...)
			if len(inputs) == 0 {
				return fmt.Errorf("no input files; pass -i FILE")
			}

			results, err := analyzeFiles(cmd.Context(), root, inputs)
			if err != nil {
				printError(cmd, "analyze", err)
				return err
			}
			if !withSegments {
				for i := range results {
					results[i].Segments = nil
				}
			}
			for _, r := range results {
				if err := writeJSON(cmd.OutOrStdout(), r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "export file(s) to analyze")
	cmd.Flags().BoolVar(&withSegments, "segments", false, "include every extracted segment with its quality flags")

	return cmd
}

// analyzeFiles decodes and analyzes files concurrently; results keep input order
func analyzeFiles(ctx context.Context, root *rootOptions, files []string) ([]analysis, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.ContextWithFields(ctx, logging.Fields{"component": "cli"})
	logger := logging.WithContext(ctx)
	decoder := ingest.NewDecoder(logger)
	analyzer := biomarker.NewAnalyzer(root.cfg, biomarker.WithLogger(logger))
	estimator := features.NewEstimator()

	results := make([]analysis, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			recs, err := decoder.DecodeFile(file)
			if err != nil {
				logging.Error(err, "Failed to decode export", logging.Fields{"file": file})
				return err
			}
			report, segments := analyzer.Analyze(ctx, recs)
			if report.IsEmpty() {
				logging.Warn("No valid speech segments in export", logging.Fields{"file": file, "records": len(recs)})
			}
			results[i] = analysis{
				File:     file,
				Report:   report,
				Features: estimator.Estimate(report, segments),
				Segments: segments,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.Info("Exports analyzed", logging.Fields{"files": len(files)})
	return results, nil
}
