package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	yfgo "github.com/komsit37/yf-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/komsit37/yqdash/pkg/yqdash/catalog"
	"github.com/komsit37/yqdash/pkg/yqdash/config"
	"github.com/komsit37/yqdash/pkg/yqdash/dispatch"
	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/logger"
	"github.com/komsit37/yqdash/pkg/yqdash/symbols"
	"github.com/komsit37/yqdash/pkg/yqdash/yahoo"
)

// app holds what every subcommand needs once flags and config are loaded.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg        *config.Config
	log        *logger.Logger
	catalog    *catalog.Catalog
	dispatcher *dispatch.Dispatcher
}

func main() {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "yqdash",
		Short:         "Browse Yahoo Finance endpoints for a set of symbols",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (yaml)")
	pf.StringP("symbols", "s", "", "comma or space separated symbols")
	pf.String("symbols-file", "", "YAML symbol list file or directory")
	pf.String("list", "", "named list inside --symbols-file (default: all lists)")
	pf.Bool("formatted", false, "return formatted values instead of raw numbers")
	pf.Bool("async", false, "fetch symbols concurrently")
	pf.String("username", "", "premium username")
	pf.String("password", "", "premium password")
	pf.StringP("output", "o", "json", "output format: json, table, code")
	pf.Bool("pretty", false, "indent JSON output")
	pf.Bool("color", false, "colorize output")
	pf.Int("max-col-width", 40, "max table column width")
	pf.String("log-level", "info", "log level")

	for key, flag := range map[string]string{
		"symbols":       "symbols",
		"symbols_file":  "symbols-file",
		"list":          "list",
		"formatted":     "formatted",
		"async":         "async",
		"username":      "username",
		"password":      "password",
		"output":        "output",
		"pretty":        "pretty",
		"color":         "color",
		"max_col_width": "max-col-width",
		"log.level":     "log-level",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(
		a.endpointsCmd(),
		a.queryCmd(),
		a.modulesCmd(),
		a.optionsCmd(),
		a.historyCmd(),
		a.serveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = l
	a.catalog = catalog.New()
	a.dispatcher = dispatch.New(a.catalog, l)
	return nil
}

// factory builds tickers from the yahoo section of the config. Every ticker
// shares one yf-go client, and with it the cookie and crumb session.
func (a *app) factory() handle.Factory {
	y := a.cfg.Yahoo
	yc := yfgo.NewClient(
		yfgo.WithHTTPClient(&http.Client{Timeout: y.Timeout}),
		yfgo.WithCacheDisabled(),
	)
	opts := []yahoo.Option{
		yahoo.WithYFClient(yc),
		yahoo.WithHTTPClient(&http.Client{Timeout: y.Timeout}),
		yahoo.WithBaseURL(y.BaseURL),
		yahoo.WithMaxConcurrency(y.MaxConcurrency),
	}
	if y.UserAgent != "" {
		opts = append(opts, yahoo.WithUserAgent(y.UserAgent))
	}
	return yahoo.NewFactory(opts...)
}

// symbols merges --symbols with the lists in --symbols-file.
func (a *app) symbols() ([]string, error) {
	parts := []string{a.cfg.Symbols}
	if a.cfg.SymbolsFile != "" {
		lists, err := symbols.LoadFile(a.cfg.SymbolsFile)
		if err != nil {
			return nil, err
		}
		if a.cfg.List != "" {
			var found bool
			for _, l := range lists {
				if l.Name == a.cfg.List {
					lists, found = []symbols.List{l}, true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("list %q not found in %s", a.cfg.List, a.cfg.SymbolsFile)
			}
		}
		parts = append(parts, symbols.Flatten(lists)...)
	}
	syms := symbols.Parse(strings.Join(parts, ","))
	if len(syms) == 0 {
		return nil, errors.New("no symbols: use --symbols or --symbols-file")
	}
	return syms, nil
}
