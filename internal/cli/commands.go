package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/dgdash/internal/export"
	"github.com/sadopc/dgdash/internal/importer"
	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

// now is swapped in tests.
var now = time.Now

// windowFlags are the --from/--to pair shared by report commands.
type windowFlags struct {
	from string
	to   string
}

func (f *windowFlags) register(cmd *cobra.Command, what string) {
	cmd.Flags().StringVar(&f.from, "from", "", "first day of the "+what+" (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "day after the last day of the "+what+" (YYYY-MM-DD, exclusive)")
}

// window parses the flags, filling a missing bound from fallback.
func (f windowFlags) window(fallback report.Window) (report.Window, error) {
	w := fallback
	if f.from != "" {
		d, err := timesheet.ParseDay(f.from)
		if err != nil {
			return w, fmt.Errorf("--from: %w", err)
		}
		w.Start = d
	}
	if f.to != "" {
		d, err := timesheet.ParseDay(f.to)
		if err != nil {
			return w, fmt.Errorf("--to: %w", err)
		}
		w.End = d
	}
	return w, nil
}

func allocationWindow(weeks int) report.Window {
	end := timesheet.Day(now())
	return report.Window{Start: end.AddDate(0, 0, -7*weeks), End: end}
}

func newAllocationCommand(rt *runtime) *cobra.Command {
	var (
		win    windowFlags
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "allocation",
		Short: "Hours per engineer in each work category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := win.window(allocationWindow(rt.cfg.AllocationWeeks))
			if err != nil {
				return err
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			rep, err := rt.svc.Allocation(cmd.Context(), w)
			if err != nil {
				return err
			}
			if out != "" {
				return writeAllocationFile(rep, out)
			}
			return writeAllocation(cmd.OutOrStdout(), rep, format)
		},
	}
	win.register(cmd, "window")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a .csv, .json or .xlsx file instead of stdout")
	return cmd
}

func newTasksCommand(rt *runtime) *cobra.Command {
	var taskType string
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the task numbers recorded for a task type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			field, err := parseTaskType(taskType)
			if err != nil {
				return err
			}
			numbers, err := rt.svc.TaskNumbers(cmd.Context(), field)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, n := range numbers {
				fmt.Fprintln(w, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&taskType, "type", "t", "ECR", "task type: "+taskTypeNames())
	return cmd
}

func newMetricsCommand(rt *runtime) *cobra.Command {
	var (
		win      windowFlags
		taskType string
		tasks    []string
		grouping string
		format   string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Hours per engineer per period for selected tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			field, err := parseTaskType(taskType)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return errors.New("--tasks: name at least one task number")
			}
			g, err := report.ParseGrouping(grouping)
			if err != nil {
				return fmt.Errorf("--grouping: %w", err)
			}
			if err := checkFormat(format); err != nil {
				return err
			}

			q := report.Query{Field: field, Numbers: tasks, Grouping: g}
			if win.from == "" || win.to == "" {
				span, err := rt.svc.TaskSpan(cmd.Context(), field, tasks)
				if err != nil {
					return err
				}
				q.Window = span.Window()
			}
			if q.Window, err = win.window(q.Window); err != nil {
				return err
			}

			rep, err := rt.svc.TaskMetrics(cmd.Context(), q)
			if err != nil {
				return err
			}
			if out != "" {
				return writeMetricsFile(rep, out)
			}
			return writeMetrics(cmd.OutOrStdout(), rep, format)
		},
	}
	win.register(cmd, "window; defaults to when the tasks were worked on")
	cmd.Flags().StringVarP(&taskType, "type", "t", "ECR", "task type: "+taskTypeNames())
	cmd.Flags().StringSliceVar(&tasks, "tasks", nil, "comma-separated task numbers")
	cmd.Flags().StringVarP(&grouping, "grouping", "g", "auto", "period: auto, daily, weekly or monthly")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a .csv, .json or .xlsx file instead of stdout")
	return cmd
}

func newImportCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Load timesheet rows from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := importer.ReadCSVFile(args[0])
			if err != nil {
				return err
			}
			if err := rt.store.Insert(cmd.Context(), entries...); err != nil {
				return err
			}
			rt.log.WithFields(logrus.Fields{"file": args[0], "rows": len(entries)}).Info("imported")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows from %s\n", len(entries), filepath.Base(args[0]))
			return nil
		},
	}
}

func parseTaskType(s string) (timesheet.Field, error) {
	f, err := timesheet.ParseField(s)
	if err != nil {
		return f, fmt.Errorf("--type: %w", err)
	}
	for _, t := range timesheet.TaskTypes {
		if t == f {
			return f, nil
		}
	}
	return f, fmt.Errorf("--type: %s is not a task type (want %s)", f.Column(), taskTypeNames())
}

func taskTypeNames() string {
	names := make([]string, len(timesheet.TaskTypes))
	for i, f := range timesheet.TaskTypes {
		names[i] = f.Column()
	}
	return strings.Join(names, ", ")
}

func writeAllocationFile(rep report.AllocationReport, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.AllocationCSV(rep, path)
	case ".json":
		return export.AllocationJSON(rep, path)
	case ".xlsx":
		return export.AllocationXLSX(rep, path)
	}
	return fmt.Errorf("--out %s: want a .csv, .json or .xlsx file", path)
}

func writeMetricsFile(rep report.MetricsReport, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.MetricsCSV(rep, path)
	case ".json":
		return export.ToJSON(rep, path)
	case ".xlsx":
		return export.ToXLSX(rep, path)
	}
	return fmt.Errorf("--out %s: want a .csv, .json or .xlsx file", path)
}
