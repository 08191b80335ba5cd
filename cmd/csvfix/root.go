package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/oleg578/csvfix"
)

const usageLine = "Usage: csvfix <path_to_file.csv>"

var (
	// errUsage is returned after the usage line was printed.
	errUsage = errors.New("missing input path")
	// errReported is returned after the failure was already logged.
	errReported = errors.New("run failed")
)

// config is the resolved command configuration. Every flag can also be set
// through a CSVFIX_* environment variable, e.g. CSVFIX_LOG_FORMAT=json.
type config struct {
	Delimiter   string
	CRLF        bool
	AlwaysQuote bool
	Strict      bool
	Jobs        int
	Verbose     int
	LogFormat   string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("csvfix")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "csvfix [flags] <path_to_file.csv> [more.csv ...]",
		Short:         "Escape stray quotes inside CSV fields",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(stdout, usageLine)
				return errUsage
			}
			cfg := config{
				Delimiter:   v.GetString("delimiter"),
				CRLF:        v.GetBool("crlf"),
				AlwaysQuote: v.GetBool("always-quote"),
				Strict:      v.GetBool("strict"),
				Jobs:        v.GetInt("jobs"),
				Verbose:     v.GetInt("verbose"),
				LogFormat:   v.GetString("log-format"),
			}
			return execute(cmd.Context(), cfg, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.String("delimiter", ",", `field delimiter: a single byte, or "tab"`)
	flags.Bool("crlf", true, `terminate output records with \r\n`)
	flags.Bool("always-quote", false, "quote every output field")
	flags.Bool("strict", false, "reject bare quotes and ragged records instead of reading leniently")
	flags.IntP("jobs", "j", 1, "number of files processed concurrently")
	flags.CountP("verbose", "v", "log per-file stats (-v) or every altered field (-vv) to stderr")
	flags.String("log-format", "console", "stderr log format: console or json")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	return cmd
}

// execute fixes every path, at most cfg.Jobs at a time. The first failure
// stops further files from starting.
func execute(ctx context.Context, cfg config, paths []string, stdout, stderr io.Writer) error {
	log, err := newLogger(stderr, cfg.LogFormat, cfg.Verbose)
	if err != nil {
		return err
	}
	opts, err := cfg.options(log)
	if err != nil {
		return err
	}
	jobs := cfg.Jobs
	if jobs < 1 {
		jobs = 1
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, path := range paths {
		path := path
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fileLog := log.With().Str("input", path).Logger()
			fileOpts := opts
			fileOpts.Logger = fileLog

			res, err := csvfix.FixFile(path, fileOpts)
			if err != nil {
				fileLog.Error().Err(err).Str("output", res.Output).Msg("fix failed")
				return err
			}
			mu.Lock()
			fmt.Fprintf(stdout, "Corrected CSV saved as %s\n", res.Output)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", errReported, err)
	}
	return nil
}

func (c config) options(log zerolog.Logger) (csvfix.Options, error) {
	comma, err := parseDelimiter(c.Delimiter)
	if err != nil {
		return csvfix.Options{}, err
	}
	return csvfix.Options{
		Comma:       comma,
		UseCRLF:     c.CRLF,
		AlwaysQuote: c.AlwaysQuote,
		Strict:      c.Strict,
		Logger:      log,
	}, nil
}

func parseDelimiter(s string) (byte, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	}
	if len(s) != 1 || s[0] == '"' || s[0] == '\n' || s[0] == '\r' {
		return 0, fmt.Errorf("invalid delimiter %q: want a single byte other than a quote or line break", s)
	}
	return s[0], nil
}
