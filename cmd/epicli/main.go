// Command epicli loads an epidemiological table and prints what was found:
// overall statistics, the monthly table or the interpreted structure. It
// can also export the normalized records as CSV or XLSX.
//
//	epicli -in cases.csv -monthly
//	epicli -in cases.xlsx -export normalized.csv -bom
//	epicli -dir data -json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"epicli/internal/config"
	"epicli/internal/dataprocessing"
	"epicli/internal/files"
	"epicli/internal/infrastructure"
	"epicli/internal/services"
	"epicli/internal/validation"
	"epicli/pkg/contracts"
	"epicli/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	in         string
	export     string
	dir        string
	configFile string
	bom        bool
	monthly    bool
	structure  bool
	asJSON     bool
	version    bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("epicli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "input file (.csv, .txt, .tsv or .xlsx)")
	fs.StringVar(&opts.export, "export", "", "write normalized records to this file; .xlsx selects a workbook, anything else CSV")
	fs.StringVar(&opts.dir, "dir", "", "list loadable data files in this directory")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (default: $EPI_CONFIG_FILE or ./epicli.yaml)")
	fs.BoolVar(&opts.bom, "bom", false, "prefix CSV exports with a UTF-8 byte order mark")
	fs.BoolVar(&opts.monthly, "monthly", false, "print the monthly summary table")
	fs.BoolVar(&opts.structure, "structure", false, "print how columns were interpreted")
	fs.BoolVar(&opts.asJSON, "json", false, "print JSON instead of tables")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.version {
		return opts, nil
	}
	if opts.in == "" && opts.dir == "" {
		return opts, errors.New("one of -in or -dir is required")
	}
	if opts.export != "" && opts.in == "" {
		return opts, errors.New("-export requires -in")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "epicli:", err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		fmt.Fprintln(stderr, "epicli:", err)
		return exitError
	}
	cfg.Logging.Output = "console"
	if opts.bom {
		cfg.Export.BOM = true
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "epicli:", err)
		return exitError
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	out := &printer{w: stdout, json: opts.asJSON}

	if opts.dir != "" {
		if err := listFiles(out, opts.dir); err != nil {
			logger.ErrorContext(ctx, "listing data files failed", slog.String("error", err.Error()))
			return exitError
		}
		if opts.in == "" {
			return exitOK
		}
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputFile(opts.in); err != nil {
		logger.ErrorContext(ctx, "invalid input", slog.String("error", err.Error()))
		return exitError
	}
	if opts.export != "" {
		if err := validator.ValidateOutputFile(opts.export); err != nil {
			logger.ErrorContext(ctx, "invalid export target", slog.String("error", err.Error()))
			return exitError
		}
	}

	svc := services.NewDatasetService(services.DatasetServiceDeps{
		Processor: dataprocessing.NewProcessor(logger, dataprocessing.ProcessorConfig{}),
		Reader: files.NewReader(files.ReaderConfig{
			Encodings: cfg.Ingest.Encodings,
			MaxBytes:  cfg.Ingest.MaxFileBytes,
		}, logger),
		Export: cfg.Export,
		Logger: logger,
	})

	if err := process(ctx, svc, out, opts); err != nil {
		logger.ErrorContext(ctx, "epicli failed",
			slog.String("input", opts.in),
			slog.String("error", err.Error()))
		return exitError
	}
	return exitOK
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func process(ctx context.Context, svc *services.DatasetService, out *printer, opts options) error {
	summary, err := svc.LoadFile(ctx, opts.in)
	if err != nil {
		return err
	}

	switch {
	case opts.monthly:
		monthly, err := svc.Monthly(ctx)
		if err != nil {
			return err
		}
		out.monthly(monthly)
	case opts.structure:
		report, err := svc.Structure(ctx)
		if err != nil {
			return err
		}
		out.structure(report)
	default:
		stats, err := svc.Statistics(ctx)
		if err != nil {
			return err
		}
		out.statistics(summary, stats)
	}
	if out.err != nil {
		return out.err
	}

	if opts.export != "" {
		return exportTo(ctx, svc, opts.export)
	}
	return nil
}

func exportTo(ctx context.Context, svc *services.DatasetService, path string) (err error) {
	format := services.FormatCSV
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		format = services.FormatXLSX
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()

	return svc.Export(ctx, f, format)
}

func listFiles(out *printer, dir string) error {
	found, err := files.DiscoverDataFiles(dir)
	if err != nil {
		return err
	}
	out.files(found)
	return out.err
}

// printer writes either aligned tables or indented JSON. The first write
// error is kept in err.
type printer struct {
	w    io.Writer
	json bool
	err  error
}

func (p *printer) encode(v interface{}) {
	if p.err != nil {
		return
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	p.err = enc.Encode(v)
}

func (p *printer) table(write func(tw *tabwriter.Writer)) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	write(tw)
	p.err = tw.Flush()
}

func (p *printer) statistics(summary domain.LoadSummary, stats domain.OverallStatistics) {
	if p.json {
		p.encode(map[string]interface{}{"summary": summary, "statistics": stats})
		return
	}
	d := summary.Diagnostics
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Source\t%s\n", summary.Source)
		fmt.Fprintf(tw, "Records\t%d\n", stats.TotalRecords)
		fmt.Fprintf(tw, "Locations\t%d\n", stats.UniqueLocations)
		fmt.Fprintf(tw, "Period\t%s\n", stats.DateRange)
		fmt.Fprintf(tw, "New cases\t%d\n", stats.TotalNewCases)
		fmt.Fprintf(tw, "New deaths\t%d\n", stats.TotalNewDeaths)
		fmt.Fprintf(tw, "New vaccinated\t%d\n", stats.TotalNewVaccinated)
		fmt.Fprintf(tw, "Max accumulated cases\t%d\n", stats.MaxAccumulatedCases)
		fmt.Fprintf(tw, "Max accumulated deaths\t%d\n", stats.MaxAccumulatedDeaths)
		fmt.Fprintf(tw, "Mortality rate\t%.2f%%\n", stats.MortalityRate)
		fmt.Fprintf(tw, "Columns detected\t%d\n", stats.ColumnsDetected)
		fmt.Fprintf(tw, "Dropped rows\t%d (short %d, rejected %d, malformed %d)\n",
			d.DroppedRows(), d.ShortRows, d.RejectedRows, d.MalformedRows)
	})
}

func (p *printer) monthly(months []domain.MonthlySummary) {
	if p.json {
		p.encode(months)
		return
	}
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "MONTH\tNEW CASES\tNEW DEATHS\tNEW VACCINATED\tMAX ACC CASES\tMAX ACC DEATHS\tRECORDS")
		for _, m := range months {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n", m.Month, m.NewCases, m.NewDeaths,
				m.NewVaccinated, m.MaxAccumulatedCases, m.MaxAccumulatedDeaths, m.Records)
		}
	})
}

func (p *printer) structure(report domain.StructureReport) {
	if p.json {
		p.encode(report)
		return
	}
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Delimiter\t%q\n", report.Delimiter)
		fmt.Fprintf(tw, "Header row\t%t\n\n", report.HasHeader)
		fmt.Fprintln(tw, "#\tCOLUMN\tROLE")
		for _, c := range report.Columns {
			role := "-"
			if c.Mapped {
				role = string(c.Role)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", c.Index, c.Name, role)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "ROLE\tCOLUMN")
		for _, r := range report.Roles {
			column := "(not found)"
			if r.Found {
				column = r.Column
			}
			fmt.Fprintf(tw, "%s\t%s\n", r.Role, column)
		}
	})
}

func (p *printer) files(found []files.FileInfo) {
	if p.json {
		p.encode(found)
		return
	}
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
		for _, f := range found {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Name, f.Size, f.ModTime.Format("2006-01-02 15:04"))
		}
	})
}
