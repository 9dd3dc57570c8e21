package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
	"github.com/nearbytask/admin-dashboard/pkg/config"
	"github.com/nearbytask/admin-dashboard/pkg/datasource"
	"github.com/nearbytask/admin-dashboard/pkg/logger"
	"github.com/nearbytask/admin-dashboard/pkg/screens"
)

type cli struct {
	LogLevel string `default:"warn" enum:"debug,info,warn,error" help:"Log level."`

	List     listCmd     `cmd:"" help:"List the built-in screens."`
	Export   exportCmd   `cmd:"" help:"Fetch a screen from the backend and export it as CSV or PDF."`
	Scaffold scaffoldCmd `cmd:"" help:"Add or replace a screen entry in a manifest YAML file."`
}

type globals struct {
	log logger.Logger
	out io.Writer
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("listctl"),
		kong.Description("Export and manifest tooling for the NearByTask admin screens."),
		kong.UsageOnError(),
	)
	g := &globals{
		log: logger.NewLogger(&logger.Config{Level: logger.LogLevel(app.LogLevel), Output: os.Stderr, TimeFormat: time.TimeOnly}),
		out: os.Stdout,
	}
	err := ctx.Run(context.Background(), g)
	ctx.FatalIfErrorf(err)
}

type listCmd struct {
	Manifest string `type:"path" help:"Optional manifest applied before listing."`
}

func (cmd *listCmd) Run(_ context.Context, g *globals) error {
	doc, err := readManifest(cmd.Manifest)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tCATEGORY\tPAGE SIZE\tENABLED")
	for _, def := range screens.Catalog() {
		def = doc.Apply(def)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", def.Code, def.Name, def.Category, def.PageSize, doc.Enabled(def.Code))
	}
	return w.Flush()
}

type exportCmd struct {
	Screen   string            `arg:"" help:"Screen code (see 'listctl list')."`
	BaseURL  string            `name:"base-url" help:"Backend base URL (defaults to NEARBYTASK_API_BASE_URL)."`
	Token    string            `env:"NEARBYTASK_API_TOKEN" help:"Bearer token for the backend."`
	Format   string            `default:"csv" enum:"csv,pdf" help:"Output format."`
	Scope    string            `default:"filtered" enum:"filtered,page" help:"Export every filtered row or only the current page."`
	Search   string            `help:"Search text."`
	Filter   map[string]string `help:"Filter selections as axis=value (repeatable)."`
	Sort     string            `help:"Sort key."`
	Dir      string            `default:"asc" enum:"asc,desc" help:"Sort direction."`
	PageSize int               `name:"page-size" help:"Page size (page scope only)."`
	Page     int               `help:"Page number (page scope only)."`
	Month    string            `help:"Month parameter for report endpoints (YYYY-MM)."`
	Manifest string            `type:"path" help:"Optional manifest applied to the screen definitions."`
	Out      string            `short:"o" type:"path" help:"Output file (defaults to the screen export name)."`
}

func (cmd *exportCmd) Run(ctx context.Context, g *globals) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	baseURL := cmd.BaseURL
	if baseURL == "" {
		baseURL = cfg.API.BaseURL
	}
	token := cmd.Token
	if token == "" {
		token = cfg.API.Token
	}
	doc, err := readManifest(cmd.Manifest)
	if err != nil {
		return err
	}
	if doc == nil && cfg.Screens.Manifest != "" {
		if doc, err = readManifest(cfg.Screens.Manifest); err != nil {
			return err
		}
	}
	if _, ok := screens.Definition(cmd.Screen); !ok {
		return fmt.Errorf("listctl: %w: %s", listing.ErrUnknownScreen, cmd.Screen)
	}
	format, err := export.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}

	client, err := datasource.NewHTTPClient(datasource.HTTPConfig{
		BaseURL: baseURL,
		Session: datasource.StaticSession(token),
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		return err
	}
	defs := make([]listing.ScreenDefinition, 0, len(screens.Catalog()))
	for _, def := range screens.Catalog() {
		defs = append(defs, doc.Apply(def))
	}
	var opts []datasource.SourceOption
	if cmd.Month != "" {
		opts = append(opts, datasource.WithMonth(cmd.Month))
	}
	reg, err := screens.Build(screens.HTTPSourcesFor(defs, client, opts...), screens.Options{
		Manifest:  doc,
		Notifier:  listing.LogNotifier{Logger: g.log},
		Telemetry: logger.NewTelemetry(g.log),
		PDF:       pdfOptions(cfg.Export),
		Defaults:  &screens.Defaults{PageSize: cfg.Listing.PageSize, Pagination: cfg.Listing.Pagination()},
	})
	if err != nil {
		return err
	}
	screen, err := reg.Lookup(cmd.Screen)
	if err != nil {
		return fmt.Errorf("listctl: screen %s is disabled by the manifest", cmd.Screen)
	}
	if err := screen.Refresh(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	result, err := screen.Export(ctx, listing.ExportRequest{
		State:       cmd.state(),
		Format:      format,
		Scope:       listing.ExportScope(cmd.Scope),
		GeneratedAt: time.Now(),
	}, &buf)
	if err != nil {
		return err
	}
	out := cmd.Out
	if out == "" {
		out = result.Filename
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("listctl: write %s: %w", out, err)
	}
	g.log.Info("export written", "screen", cmd.Screen, "rows", result.Rows, "path", out)
	fmt.Fprintf(g.out, "✓ Wrote %d rows to %s\n", result.Rows, out)
	return nil
}

func pdfOptions(cfg config.ExportConfig) export.PDFOptions {
	opts := export.PDFOptions{Placeholder: cfg.Placeholder}
	if cfg.Brand != "" {
		opts.Logos = []string{cfg.Brand, cfg.Brand}
	}
	return opts
}

func (cmd *exportCmd) state() listing.ListState {
	state := listing.ListState{
		Search:   cmd.Search,
		Filters:  cmd.Filter,
		SortKey:  cmd.Sort,
		PageSize: cmd.PageSize,
		Page:     cmd.Page,
	}
	if cmd.Sort != "" {
		state.SortDirection, _ = listing.ParseDirection(cmd.Dir)
	}
	return state
}

type scaffoldCmd struct {
	Code         string `required:"" help:"Screen code, e.g. task-taken."`
	ManifestPath string `required:"" name:"manifest" type:"path" help:"Manifest YAML file to create or update."`
	Name         string `help:"Display name (defaults to the code in title case)."`
	Category     string `help:"Menu category."`
	Path         string `help:"Backend collection path override."`
	PageSize     int    `name:"page-size" help:"Default page size."`
	Window       int    `enum:"0,3,5" default:"0" help:"Pagination window width (3 or 5)."`
	Ellipsis     string `enum:",true,false" default:"" help:"Use the ellipsis pagination policy (true or false)."`
	ExportName   string `name:"export-name" help:"Export file base name (defaults to the code in PascalCase)."`
	ExportTitle  string `name:"export-title" help:"PDF title."`
	Disabled     bool   `help:"Disable the screen."`
	Overwrite    bool   `help:"Replace an existing entry for the code."`
}

func (cmd *scaffoldCmd) Run(_ context.Context, g *globals) error {
	code := strcase.ToKebab(cmd.Code)
	if code == "" {
		return errors.New("listctl: screen code is required")
	}
	if _, ok := screens.Definition(code); !ok {
		g.log.Warn("code does not match a built-in screen; the entry will be ignored at startup", "code", code)
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("listctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	entry := listing.ManifestScreen{
		Code:        code,
		Name:        cmd.Name,
		Category:    cmd.Category,
		Path:        cmd.Path,
		PageSize:    cmd.PageSize,
		Window:      cmd.Window,
		Ellipsis:    parseOptionalBool(cmd.Ellipsis),
		ExportName:  cmd.ExportName,
		ExportTitle: cmd.ExportTitle,
		Disabled:    cmd.Disabled,
	}
	if entry.Name == "" {
		entry.Name = titleFromCode(code)
	}
	if entry.ExportName == "" {
		entry.ExportName = strcase.ToPascal(code)
	}

	replaced := false
	for idx := range doc.Screens {
		if doc.Screens[idx].Code != code {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("listctl: manifest already defines screen %s (use --overwrite to replace)", code)
		}
		doc.Screens[idx] = entry
		replaced = true
	}
	if !replaced {
		doc.Screens = append(doc.Screens, entry)
	}
	sort.Slice(doc.Screens, func(i, j int) bool { return doc.Screens[i].Code < doc.Screens[j].Code })
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(g.out, "✓ Added %s to %s\n", code, manifestPath)
	return nil
}

func parseOptionalBool(value string) *bool {
	if value == "" {
		return nil
	}
	v := value == "true"
	return &v
}

func titleFromCode(code string) string {
	parts := strings.Split(code, "-")
	for i, part := range parts {
		parts[i] = strcase.ToPascal(part)
	}
	return strings.Join(parts, " ")
}

func readManifest(path string) (*listing.ScreenManifestDocument, error) {
	if path == "" {
		return nil, nil
	}
	return listing.ReadManifest(path)
}

func loadOrInitManifest(path string) (*listing.ScreenManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &listing.ScreenManifestDocument{
				Version: listing.ManifestVersion,
				Screens: []listing.ManifestScreen{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("listctl: stat manifest: %w", err)
	}
	return listing.ReadManifest(path)
}

func writeManifest(path string, doc *listing.ScreenManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("listctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("listctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("listctl: write manifest: %w", err)
	}
	return encoder.Close()
}
