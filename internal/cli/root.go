// Package cli wires configuration, logging, the store and the report
// service behind the dgdash command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/dgdash/internal/config"
	"github.com/sadopc/dgdash/internal/logging"
	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/store"
	"github.com/sadopc/dgdash/internal/tui"
)

// Options customizes NewRootCommand. Zero values use the process streams
// and a full-screen Bubble Tea program.
type Options struct {
	Out io.Writer
	Err io.Writer
	// RunTUI starts the interactive dashboard.
	RunTUI func(svc *report.Service, cfg *config.Config) error
}

// runtime is what every command gets once PersistentPreRunE has run.
type runtime struct {
	cfg   *config.Config
	store *store.Store
	svc   *report.Service
	log   *logrus.Logger

	closers []io.Closer
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i].Close()
	}
	rt.closers = nil
}

func runProgram(svc *report.Service, cfg *config.Config) error {
	p := tea.NewProgram(tui.NewApp(svc, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// NewRootCommand builds the dgdash command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.RunTUI == nil {
		opts.RunTUI = runProgram
	}

	rt := &runtime{}
	var envFile string

	root := &cobra.Command{
		Use:           "dgdash",
		Short:         "Design group timesheet dashboard",
		Long:          "dgdash reports how the design group spends its time. Run it without a command for the interactive dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The dashboard owns the terminal, so only subcommands log to stderr.
			return rt.open(envFile, cmd.HasParent())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			rt.close()
		},
		RunE: func(*cobra.Command, []string) error {
			rt.log.Info("starting dashboard")
			return opts.RunTUI(rt.svc, rt.cfg)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")

	if opts.Out != nil {
		root.SetOut(opts.Out)
	}
	if opts.Err != nil {
		root.SetErr(opts.Err)
	}

	root.AddCommand(
		newAllocationCommand(rt),
		newTasksCommand(rt),
		newMetricsCommand(rt),
		newImportCommand(rt),
	)
	return root
}

func (rt *runtime) open(envFile string, stderr bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log, logFile, err := logging.New(cfg.Log, logging.Options{Stderr: stderr})
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, logFile)

	s, err := store.Open(cfg.StoreOptions())
	if err != nil {
		rt.close()
		return fmt.Errorf("open store: %w", err)
	}
	rt.closers = append(rt.closers, s)

	log.WithFields(logrus.Fields{"driver": s.Dialect(), "table": cfg.Table}).Debug("store opened")

	rt.cfg = cfg
	rt.store = s
	rt.log = log
	rt.svc = report.NewService(s, log)
	return nil
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	root := NewRootCommand(Options{})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
