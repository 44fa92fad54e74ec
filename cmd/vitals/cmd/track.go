package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-vitals/baseline"
	"github.com/RyanBlaney/sonido-vitals/biomarker"
	"github.com/RyanBlaney/sonido-vitals/logging"
	"github.com/spf13/cobra"
)

// trackOutput is what track prints
type trackOutput struct {
	UserID    string                     `json:"user_id"`
	Updates   []trackStep                `json:"updates"`
	Baseline  *baseline.PersonalBaseline `json:"baseline"`
	Deviation baseline.DeviationAnalysis `json:"deviation"`
}

type trackStep struct {
	File      string                `json:"file"`
	At        time.Time             `json:"at"`
	Status    baseline.UpdateStatus `json:"status"`
	Alpha     float64               `json:"alpha"`
	Selection baseline.Selection    `json:"selection"`
}

func newTrackCmd(root *rootOptions) *cobra.Command {
	var (
		inputs []string
		userID string
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Feed export files into a personal baseline in order",
		Long: `track analyzes each file, then folds the reports into the user's
baseline in the order given. The last file is checked for deviation against
the baseline built from the files before it, then folded in as well.

Each update is timed at the end of the file's latest utterance. The baseline
lives in memory for the duration of the command.`,
		Example: `  vitals track --user me -i mon.json -i tue.json -i wed.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs = append(inputs, args...)
			if len(inputs) == 0 {
				return fmt.Errorf("no input files; pass -i FILE")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results, err := analyzeFiles(ctx, root, inputs)
			if err != nil {
				printError(cmd, "analyze", err)
				return err
			}

			logger := logging.WithFields(logging.Fields{"component": "cli", "user_id": userID})
			tracker := baseline.NewTracker(root.cfg, baseline.WithLogger(logger))
			out := trackOutput{UserID: userID}

			for i, r := range results {
				at := observedAt(r.Segments)
				if i == len(results)-1 {
					out.Deviation, err = tracker.CheckDeviationAt(ctx, userID, at, r.Report, r.Features)
					if err != nil {
						printError(cmd, "check deviation", err)
						return err
					}
				}

				res, err := tracker.UpdateAt(ctx, userID, at, r.Report, r.Features)
				if err != nil {
					printError(cmd, "update baseline", err)
					return err
				}
				out.Updates = append(out.Updates, trackStep{
					File:      r.File,
					At:        at,
					Status:    res.Status,
					Alpha:     res.Alpha,
					Selection: res.Selection,
				})
				if res.Baseline != nil {
					out.Baseline = res.Baseline
				}
			}

			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "export file(s), oldest first")
	cmd.Flags().StringVar(&userID, "user", "", "user id the baseline belongs to")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// observedAt is the end of the latest segment, or now for files without any
func observedAt(segments []biomarker.Segment) time.Time {
	var latest time.Time
	for _, s := range segments {
		end := s.Timestamp.Add(time.Duration(s.DurationMs * float64(time.Millisecond)))
		if end.After(latest) {
			latest = end
		}
	}
	if latest.IsZero() {
		return time.Now()
	}
	return latest
}
