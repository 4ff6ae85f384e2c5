package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/text/language"

	invoicedoc "github.com/goliatone/go-invoicedoc"
	"github.com/goliatone/go-invoicedoc/internal/config"
	"github.com/goliatone/go-invoicedoc/internal/logger"
	"github.com/goliatone/go-invoicedoc/internal/server"
	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/export"
	"github.com/goliatone/go-invoicedoc/pkg/notify"
	"github.com/goliatone/go-invoicedoc/pkg/render"
)

const usage = `usage: invoicedoc <command> [flags]

commands:
  render     render a record to HTML (and optionally PDF)
  notify     print the notification e-mail for a record
  templates  list the template catalog
  serve      run the preview server
`

// app carries what every command needs. Tests swap the prompter and streams.
type app struct {
	cfg      config.AppConfig
	log      *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	prompter Prompter
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	a := &app{
		cfg:      cfg,
		log:      logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		prompter: surveyPrompter{},
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		a.log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "render":
		return a.render(ctx, args[1:])
	case "notify":
		return a.notify(ctx, args[1:])
	case "templates":
		return a.templates()
	case "serve":
		return a.serve(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		fmt.Fprint(a.stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) engine() (*render.Engine, error) {
	reg, err := invoicedoc.LoadCatalogFile(a.cfg.Render.CatalogPath)
	if err != nil {
		return nil, err
	}
	formatOpts := []render.FormatterOption{
		render.WithCurrencyGlyph(a.cfg.Render.CurrencyGlyph),
		render.WithCalendar(a.cfg.Render.Calendar),
	}
	if locale := strings.TrimSpace(a.cfg.Render.DefaultLocale); locale != "" {
		formatOpts = append(formatOpts, render.WithLanguage(language.Make(locale)))
	}
	return invoicedoc.NewEngine(
		invoicedoc.WithCatalog(reg),
		render.WithFormatter(render.NewLocaleFormatter(formatOpts...)),
		render.WithTemplatesDir(a.cfg.Render.TemplatesDir),
		render.WithBrand(render.Brand{Name: a.cfg.Render.BrandName, SupportEmail: a.cfg.Render.BrandEmail}),
	)
}

func (a *app) exporter() *export.PDFExporter {
	return export.NewPDFExporter(
		export.WithSettleDelay(a.cfg.Export.SettleDelay),
		export.WithTimeout(a.cfg.Export.Timeout),
		export.WithChromePath(a.cfg.Export.ChromePath),
	)
}

type recordFlags struct {
	input    string
	kind     string
	template string
	locale   string
	variant  string
}

func (f *recordFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.input, "input", "", "record file (JSON or YAML); - reads stdin")
	fs.StringVar(&f.kind, "kind", "", "document kind: invoice or quote")
	fs.StringVar(&f.template, "template", "", "template id; defaults to the record's template")
	fs.StringVar(&f.locale, "locale", "", "label locale, e.g. th")
	fs.StringVar(&f.variant, "variant", "", "palette variant, e.g. print")
}

func (a *app) readRecord(path string) (document.Record, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return document.Record{}, errors.New("-input is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return document.Record{}, fmt.Errorf("read record: %w", err)
	}
	return invoicedoc.Decode(data, path)
}

func (a *app) locale(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return a.cfg.Render.DefaultLocale
}

func (a *app) render(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var rf recordFlags
	rf.bind(fs)
	output := fs.String("output", "", "HTML output file (stdout if empty)")
	pdfPath := fs.String("pdf", "", "also print the document to this PDF file")
	interactive := fs.Bool("interactive", false, "prompt for kind and template when not given")
	if err := fs.Parse(args); err != nil {
		return err
	}

	record, err := a.readRecord(rf.input)
	if err != nil {
		return err
	}
	engine, err := a.engine()
	if err != nil {
		return err
	}

	if *interactive {
		if err := a.promptMissing(ctx, engine, &rf, record); err != nil {
			return err
		}
	}
	kind, err := parseKindOrDefault(rf.kind)
	if err != nil {
		return err
	}

	if drift, ok := render.AmountDrift(record); ok {
		a.log.Warn("declared amount differs from line items",
			"number", record.Number, "declared", drift.Declared, "computed", drift.Computed)
	}

	opts := render.Options{Template: rf.template, Locale: a.locale(rf.locale), Variant: rf.variant}
	html, err := engine.Render(ctx, record, kind, opts)
	if err != nil {
		return err
	}

	if *output == "" {
		if _, err := io.WriteString(a.stdout, html); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(*output, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		a.log.Info("document written", "path", *output, "number", record.Number, "kind", kind)
	}

	if *pdfPath != "" {
		pdf, err := a.exporter().Export(ctx, html)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		a.log.Info("pdf written", "path", *pdfPath, "suggested_name", export.Filename(kind, record.Number))
	}
	return nil
}

func (a *app) promptMissing(ctx context.Context, engine *render.Engine, rf *recordFlags, record document.Record) error {
	if strings.TrimSpace(rf.kind) == "" {
		kinds := document.Kinds()
		options := make([]string, len(kinds))
		for i, kind := range kinds {
			options[i] = kind.String()
		}
		idx, err := a.prompter.Select(ctx, SelectConfig{Message: "Document kind", Options: options})
		if err != nil {
			return err
		}
		if idx >= 0 {
			rf.kind = options[idx]
		}
	}
	if strings.TrimSpace(rf.template) == "" {
		configs := engine.Templates().List()
		options := make([]string, len(configs))
		descriptions := make([]string, len(configs))
		current := engine.Templates().Lookup(record.Template).ID
		defaultIndex := 0
		for i, cfg := range configs {
			options[i] = cfg.ID
			descriptions[i] = cfg.Description
			if cfg.ID == current {
				defaultIndex = i
			}
		}
		idx, err := a.prompter.Select(ctx, SelectConfig{
			Message:      "Template",
			Options:      options,
			Descriptions: descriptions,
			DefaultIndex: defaultIndex,
		})
		if err != nil {
			return err
		}
		if idx >= 0 {
			rf.template = options[idx]
		}
	}
	return nil
}

func (a *app) notify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var rf recordFlags
	rf.bind(fs)
	link := fs.String("link", "", "call-to-action URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	record, err := a.readRecord(rf.input)
	if err != nil {
		return err
	}
	kind, err := parseKindOrDefault(rf.kind)
	if err != nil {
		return err
	}
	engine, err := a.engine()
	if err != nil {
		return err
	}
	composer, err := notify.New(engine, notify.WithAppName(a.cfg.Render.NotifyAppName))
	if err != nil {
		return err
	}
	msg, err := composer.Compose(ctx, record, kind, notify.Options{
		Template: rf.template,
		Locale:   a.locale(rf.locale),
		Variant:  rf.variant,
		Link:     *link,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Subject: %s\n\n%s\n", msg.Subject, msg.HTML)
	return err
}

func (a *app) templates() error {
	engine, err := a.engine()
	if err != nil {
		return err
	}
	reg := engine.Templates()
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRIMARY\tDESCRIPTION")
	for _, cfg := range reg.List() {
		marker := ""
		if cfg.ID == reg.Default().ID {
			marker = " (default)"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", cfg.ID, marker, cfg.Name, cfg.PrimaryColor, cfg.Description)
	}
	return w.Flush()
}

func (a *app) serve(ctx context.Context) error {
	engine, err := a.engine()
	if err != nil {
		return err
	}
	composer, err := notify.New(engine, notify.WithAppName(a.cfg.Render.NotifyAppName))
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Addr:            a.cfg.HTTP.Address(),
		Logger:          a.log,
		Engine:          engine,
		Notifier:        composer,
		Exporter:        a.exporter(),
		DefaultLocale:   a.cfg.Render.DefaultLocale,
		BatchLimit:      a.cfg.Render.BatchLimit,
		MaxBodyBytes:    a.cfg.HTTP.MaxBodyBytes,
		ReadTimeout:     a.cfg.HTTP.ReadTimeout,
		WriteTimeout:    a.cfg.HTTP.WriteTimeout,
		IdleTimeout:     a.cfg.HTTP.IdleTimeout,
		ShutdownTimeout: a.cfg.HTTP.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	a.log.Info("starting preview server", "version", a.cfg.App.Version, "env", a.cfg.App.Environment)
	return srv.Run(ctx)
}

func parseKindOrDefault(raw string) (document.Kind, error) {
	if strings.TrimSpace(raw) == "" {
		return document.KindInvoice, nil
	}
	return document.ParseKind(raw)
}
