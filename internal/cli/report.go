package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"weatherman/internal/aggregate"
	"weatherman/internal/core"
	applog "weatherman/internal/log"
	"weatherman/internal/readings"
	"weatherman/internal/readings/files"
	"weatherman/internal/report"
)

// Exit codes returned by Command.Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const usageLine = "usage: weatherman <data_dir> [-e YYYY] [-a YYYY/MM] [-c YYYY/MM] [-b YYYY/MM] [-no-color]"

// Command is the weatherman report command. Zero fields fall back to the
// process streams, os.Getenv and the flat-file store.
type Command struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Open   func(dir string) readings.Source
}

// request is one report option in command-line order.
type request struct {
	flag  string
	raw   string
	year  int
	month core.YearMonth
}

// Run parses args, loads the data directory once and prints every requested
// report in order. It stops at the first report without data.
func (c *Command) Run(ctx context.Context, args []string) int {
	c.defaults()
	logger := SetupCLILogger(c.Stderr)
	ctx = applog.NewContext(ctx, logger)

	fs := flag.NewFlagSet("weatherman", flag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usageLine)
		fs.PrintDefaults()
	}

	var reqs []request
	option := func(name string) func(string) error {
		return func(v string) error {
			reqs = append(reqs, request{flag: name, raw: v})
			return nil
		}
	}
	fs.Func("e", "`YYYY`: highest and lowest temperature and highest humidity of a year", option("e"))
	fs.Func("a", "`YYYY/MM`: average temperatures and mean humidity of a month", option("a"))
	fs.Func("c", "`YYYY/MM`: one bar per day from lowest to highest temperature", option("c"))
	fs.Func("b", "`YYYY/MM`: two bars per day for highest and lowest temperature", option("b"))
	noColor := fs.Bool("no-color", false, "draw chart bars without ANSI colours")

	if len(args) == 0 {
		fs.Usage()
		return ExitFailure
	}

	// The data directory may appear before, between or after the options.
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return ExitOK
			}
			return ExitUsage
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
	if len(positional) != 1 {
		fmt.Fprintf(c.Stderr, "expected exactly one data directory, got %d\n", len(positional))
		fmt.Fprintln(c.Stderr, usageLine)
		return ExitUsage
	}

	for i := range reqs {
		if err := reqs[i].parse(); err != nil {
			fmt.Fprintln(c.Stderr, err)
			return ExitUsage
		}
	}

	dir := positional[0]
	rs, err := c.Open(dir).Load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load readings",
			applog.FieldDataDir, dir,
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
		fmt.Fprintf(c.Stderr, "cannot read %s: %v\n", dir, err)
		return ExitFailure
	}

	palette := report.ANSI
	if *noColor || c.Getenv("NO_COLOR") != "" {
		palette = report.Plain
	}

	for _, req := range reqs {
		out, err := req.render(rs, palette)
		if err != nil {
			if errors.Is(err, core.ErrNoData) {
				fmt.Fprintln(c.Stderr, err)
				return ExitFailure
			}
			logger.ErrorContext(ctx, "Report failed",
				applog.FieldReport, req.flag,
				applog.FieldError, err)
			return ExitFailure
		}
		fmt.Fprint(c.Stdout, out)
	}
	return ExitOK
}

func (c *Command) defaults() {
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}
	if c.Open == nil {
		c.Open = func(dir string) readings.Source { return files.New(dir) }
	}
}

func (r *request) parse() error {
	var err error
	if r.flag == "e" {
		r.year, err = core.ParseYear(r.raw)
		return err
	}
	r.month, err = core.ParseYearMonth(r.raw)
	return err
}

// render returns the printed form of one report. Text reports are followed
// by a blank line; charts end with their own trailing newline.
func (r request) render(rs []core.Reading, p report.Palette) (string, error) {
	switch r.flag {
	case "e":
		e, err := aggregate.ExtremesForYear(rs, r.year)
		if err != nil {
			return "", err
		}
		out, err := report.YearExtremesText(e)
		return out + "\n", err
	case "a":
		a, err := aggregate.MonthlyAverages(rs, r.month.Year, r.month.Month)
		if err != nil {
			return "", err
		}
		out, err := report.MonthAveragesText(a)
		return out + "\n", err
	case "c":
		s, err := aggregate.MonthlyExtremesSeries(rs, r.month.Year, r.month.Month)
		if err != nil {
			return "", err
		}
		return report.NetChart(s, p)
	default:
		s, err := aggregate.MonthlyExtremesSeries(rs, r.month.Year, r.month.Month)
		if err != nil {
			return "", err
		}
		return report.BasicChart(s, p)
	}
}
