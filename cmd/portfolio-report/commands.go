package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"portfoliodash/internal/chart"
	"portfoliodash/internal/i18n"
	"portfoliodash/internal/models"
	"portfoliodash/internal/report"
	"portfoliodash/internal/service"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// dashboardFlags are shared by every command that builds a report.
type dashboardFlags struct {
	file       string
	mappings   string
	lang       string
	groupBy    string
	allocateBy string
	sel        models.FilterSelection
	verbose    bool
}

func (d *dashboardFlags) set(f *flag.FlagSet) {
	f.StringVar(&d.file, "file", "portfolioinputs.csv", "holdings CSV file")
	f.StringVar(&d.mappings, "mappings", ".", "directory holding the *_mapping.json and titles.json files")
	f.StringVar(&d.lang, "lang", "en", "display language (en, ta)")
	f.StringVar(&d.groupBy, "group-by", "member", "summary table dimension (member, sector, broker)")
	f.StringVar(&d.allocateBy, "allocate-by", "member", "allocation dimension (member, sector, broker)")
	f.StringVar(&d.sel.Portfolio, "portfolio", models.All, "portfolio filter")
	f.StringVar(&d.sel.Member, "member", models.All, "member display name filter")
	f.StringVar(&d.sel.Sector, "sector", models.All, "sector display name filter")
	f.StringVar(&d.sel.Broker, "broker", models.All, "broker filter")
	f.BoolVar(&d.verbose, "v", false, "verbose logging")
}

func (d *dashboardFlags) build(ctx context.Context) (*service.Report, error) {
	groupBy, err := models.ParseDimension(d.groupBy)
	if err != nil {
		return nil, fmt.Errorf("-group-by: %w", err)
	}
	allocateBy, err := models.ParseDimension(d.allocateBy)
	if err != nil {
		return nil, fmt.Errorf("-allocate-by: %w", err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if d.verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	dash := service.NewDashboard(service.NewSourceCache(time.Hour, log), d.mappings, log)
	return dash.Build(ctx, service.Request{
		Source:     service.FileSource(d.file),
		Lang:       i18n.Match(d.lang, ""),
		Selection:  d.sel,
		GroupBy:    groupBy,
		AllocateBy: allocateBy,
	}), nil
}

type summaryCmd struct {
	flags  dashboardFlags
	format string
	width  int
	out    string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio summary report" }
func (*summaryCmd) Usage() string {
	return `portfolio-report summary [-file <csv>] [-lang en|ta] [-group-by <dim>] [-format term|md|html] [-o <file>]

  Displays the portfolio summary, grouped table, allocation and detailed holdings.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.flags.set(f)
	f.StringVar(&c.format, "format", "term", "output format (term, md, html)")
	f.IntVar(&c.width, "width", 120, "word wrap width for terminal output")
	f.StringVar(&c.out, "o", "", "write to file instead of stdout")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rep, err := c.flags.build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var out []byte
	switch c.format {
	case "term":
		s, err := report.Terminal(rep, c.width)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		out = []byte(s)
	case "md":
		out = []byte(report.Markdown(rep, report.Bold))
	case "html":
		if out, err = report.HTML(rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	if err := write(c.out, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if rep.Condition != service.ConditionOK {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type pieCmd struct {
	flags dashboardFlags
	out   string
}

func (*pieCmd) Name() string     { return "pie" }
func (*pieCmd) Synopsis() string { return "render the investment allocation pie chart as PNG" }
func (*pieCmd) Usage() string {
	return `portfolio-report pie [-allocate-by <dim>] -o <file.png>

  Renders the share of investment per member, sector or broker.
`
}

func (c *pieCmd) SetFlags(f *flag.FlagSet) {
	c.flags.set(f)
	f.StringVar(&c.out, "o", "allocation.png", "output PNG file, - for stdout")
}

func (c *pieCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rep, err := c.flags.build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if rep.Condition != service.ConditionOK {
		fmt.Fprintln(os.Stderr, rep.Message)
		return subcommands.ExitFailure
	}
	png, err := chart.RenderPie(rep.Labels.AllocationTitle, rep.Allocation)
	if errors.Is(err, chart.ErrNoSlices) {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	out := c.out
	if out == "-" {
		out = ""
	}
	if err := write(out, png); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type languagesCmd struct{}

func (*languagesCmd) Name() string             { return "languages" }
func (*languagesCmd) Synopsis() string         { return "list the supported display languages" }
func (*languagesCmd) Usage() string            { return "portfolio-report languages\n" }
func (*languagesCmd) SetFlags(f *flag.FlagSet) {}

func (*languagesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	for _, l := range i18n.Languages {
		fmt.Printf("%s\t%s\n", l.Tag, l.Name)
	}
	return subcommands.ExitSuccess
}

func write(path string, b []byte) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := w.Write(b)
	return err
}
