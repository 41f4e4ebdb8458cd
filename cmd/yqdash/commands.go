package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/komsit37/yqdash/pkg/yqdash/dispatch"
	"github.com/komsit37/yqdash/pkg/yqdash/filter"
	"github.com/komsit37/yqdash/pkg/yqdash/pipeline"
	"github.com/komsit37/yqdash/pkg/yqdash/render"
	"github.com/komsit37/yqdash/pkg/yqdash/session"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
	"github.com/komsit37/yqdash/pkg/yqdash/yahoo"
)

const dateLayout = "2006-01-02"

func (a *app) executeOptions(endpoint string, args ...any) pipeline.ExecuteOptions {
	opts := pipeline.ExecuteOptions{
		Endpoint:    endpoint,
		Args:        args,
		Color:       a.cfg.Color,
		PrettyJSON:  a.cfg.Pretty,
		MaxColWidth: a.cfg.MaxColWidth,
	}
	if a.cfg.Output == "table" {
		opts.TableWidth = detectTerminalWidth()
	}
	return opts
}

// run invokes one endpoint for the configured symbols and renders it to
// stdout.
func (a *app) run(cmd *cobra.Command, endpoint string, args ...any) error {
	syms, err := a.symbols()
	if err != nil {
		return err
	}
	r, err := render.New(a.cfg.Output)
	if err != nil {
		return err
	}
	s := session.New("cli", a.dispatcher, a.factory(), nil, a.log)
	runner := &pipeline.Runner{Session: s, Renderer: r, Writer: os.Stdout}
	opts := a.executeOptions(endpoint, args...)
	opts.Symbols = syms
	opts.Options = a.cfg.Options()
	_, err = runner.Execute(cmd.Context(), opts)
	return err
}

func (a *app) endpointsCmd() *cobra.Command {
	var (
		cats []string
		expr string
	)
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "List catalog endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var selected []types.Category
			for _, c := range cats {
				cat, err := types.ParseCategory(c)
				if err != nil {
					return err
				}
				selected = append(selected, cat)
			}
			f, err := filter.Parse(expr)
			if err != nil {
				return err
			}
			pipeline.ListEndpoints(os.Stdout, a.catalog, f, selected, a.executeOptions(""))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&cats, "category", "c", nil, "restrict to categories (profile, financial_statement, fund, market, aggregate, premium)")
	cmd.Flags().StringVarP(&expr, "filter", "f", "", "filter by id or name: exact list, glob, /regex/ or substring")
	return cmd
}

func (a *app) queryCmd() *cobra.Command {
	var frequency string
	cmd := &cobra.Command{
		Use:   "query <endpoint>",
		Short: "Read one endpoint for the configured symbols",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []any
			if frequency != "" {
				code, err := dispatch.FrequencyCode(frequency)
				if err != nil {
					return err
				}
				extra = append(extra, code)
			}
			return a.run(cmd, args[0], extra...)
		},
	}
	cmd.Flags().StringVar(&frequency, "frequency", "", "statement frequency: annual or quarterly")
	return cmd
}

func (a *app) modulesCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "modules [module...]",
		Short: "Read raw quoteSummary modules, or list their names",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return a.run(cmd, "all_modules")
			}
			if len(args) == 0 {
				for _, m := range yahoo.Modules {
					fmt.Fprintln(os.Stdout, m)
				}
				return nil
			}
			var mods []string
			for _, arg := range args {
				for _, m := range strings.Split(arg, ",") {
					if m = strings.TrimSpace(m); m == "" {
						continue
					}
					if !yahoo.IsModule(m) {
						return fmt.Errorf("unknown module %q", m)
					}
					mods = append(mods, m)
				}
			}
			return a.run(cmd, "get_modules", mods)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "read every module")
	return cmd
}

func (a *app) optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Read the option chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "option_chain")
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	var period, interval, start, end string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Read historical prices for a period or a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !types.ValidInterval(interval) {
				return fmt.Errorf("interval must be one of: %s", strings.Join(types.HistoryIntervals, ", "))
			}
			s, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			e, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}
			if s == nil && e == nil && !types.ValidPeriod(period) {
				return fmt.Errorf("period must be one of: %s", strings.Join(types.HistoryPeriods, ", "))
			}
			return a.run(cmd, "history", dispatch.BuildHistoryRequest(period, interval, s, e))
		},
	}
	cmd.Flags().StringVar(&period, "period", "ytd", "period, ignored when --start or --end is set")
	cmd.Flags().StringVar(&interval, "interval", dispatch.DefaultInterval, "bar interval")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	return cmd
}

func parseDateFlag(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("--%s: want YYYY-MM-DD: %w", name, err)
	}
	return &t, nil
}
