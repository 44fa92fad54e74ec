package cmd

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-vitals/config"
	"github.com/RyanBlaney/sonido-vitals/logging"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	cfgFile  string
	logLevel string
	verbose  bool

	cfg *config.Config
}

// NewRootCmd builds the vitals command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "vitals",
		Short: "Speech biomarker statistics from transcript exports",
		Long: `vitals turns timestamped transcripts into speech biomarkers
(speech rate, pauses, vocabulary complexity) and tracks them against a
personal baseline.

Commands:
  analyze  - build one biomarker report per export file
  track    - feed export files into a personal baseline and check the last one`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file (default: built-in defaults)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newTrackCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command against os.Args
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.cfgFile != "" {
		loaded, err := config.Load(o.cfgFile)
		if err != nil {
			printError(cmd, "load config", err)
			return err
		}
		cfg = loaded
	}

	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	if o.verbose {
		level = logging.DebugLevel.String()
	}

	logging.SetGlobalLogger(logging.NewDefaultLoggerTo(cmd.ErrOrStderr()))
	logging.SetLevel(logging.ParseLevel(level))
	logging.Debug("Configuration loaded", logging.Fields{"config": o.cfgFile, "level": level})

	o.cfg = cfg
	return nil
}

func printError(cmd *cobra.Command, msg string, err error) {
	w := cmd.ErrOrStderr()
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Error: %s: %v\n", msg, err)
}
