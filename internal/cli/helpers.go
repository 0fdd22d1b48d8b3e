package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/imgajeed76/pgrid/internal/config"
	"github.com/imgajeed76/pgrid/internal/db"
	"github.com/imgajeed76/pgrid/internal/grid"
	"github.com/imgajeed76/pgrid/internal/query"
	"github.com/imgajeed76/pgrid/internal/source"
	"github.com/imgajeed76/pgrid/internal/ui/table"
	"github.com/imgajeed76/pgrid/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// addSourceFlags registers the flags that pick a data source.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "PostgreSQL connection URL (default: db.url from config)")
	cmd.Flags().StringP("table", "t", "", "Table to show, optionally schema-qualified")
	cmd.Flags().StringP("key", "k", "", "Column that identifies rows (default: first column)")
	cmd.Flags().Int("timeout", 0, "Query timeout in seconds (default: db.timeout from config)")
}

// addStateFlags registers the flags that seed the grid state.
func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("sort", "s", "", "Sort column, optionally with direction (name, age:desc)")
	cmd.Flags().IntP("page", "p", 1, "Page to show")
	cmd.Flags().IntP("page-size", "n", 0, "Rows per page (default: grid.page_size from config)")
	cmd.Flags().StringSlice("select", nil, "Keys of selected rows (comma-separated; quote keys containing commas)")
	cmd.Flags().StringP("filter", "f", "", "Only rows containing this text")
	cmd.Flags().Bool("prune-selection", false, "Drop selected keys that are not on the shown page")
}

// addOutputFlags registers the output mode flags.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("raw", false, "Output raw values without formatting (for piping)")
	cmd.Flags().Bool("json", false, "Output results as JSON array")
	cmd.Flags().Bool("no-pager", false, "Disable interactive table view")
}

func displayOptions(cmd *cobra.Command) table.DisplayOptions {
	raw, _ := cmd.Flags().GetBool("raw")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	noPager, _ := cmd.Flags().GetBool("no-pager")
	return table.DisplayOptions{JSON: jsonOutput, Raw: raw, NoPager: noPager}
}

// loadConfig reads the user config, wrapping failures for display.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, util.NewError("Cannot read config file").
			WithContext(config.Path()).
			WithSuggestions("pgrid config --list   # Show the effective settings").
			Wrap(err)
	}
	return cfg, nil
}

// queryTimeout returns --timeout or the configured default.
func queryTimeout(cmd *cobra.Command, cfg *config.Config) time.Duration {
	seconds, _ := cmd.Flags().GetInt("timeout")
	if seconds <= 0 {
		seconds = cfg.DB.Timeout
	}
	return time.Duration(seconds) * time.Second
}

// readState builds the initial grid state from flags and config.
func readState(cmd *cobra.Command, cfg *config.Config) (*query.State, error) {
	st := &query.State{
		Page:     1,
		PageSize: cfg.Grid.PageSize,
		Selected: grid.Selection{},
	}

	if sortStr, _ := cmd.Flags().GetString("sort"); sortStr != "" {
		s, err := grid.ParseSort(sortStr)
		if err != nil {
			return nil, util.NewError("Invalid --sort value").
				WithMessage(err.Error()).
				WithSuggestions("--sort name", "--sort age:desc").
				Wrap(err)
		}
		st.Sort = s
	}

	page, _ := cmd.Flags().GetInt("page")
	if page < 1 {
		return nil, util.NewError("Invalid --page value").
			WithMessage(fmt.Sprintf("Pages start at 1, got %d", page))
	}
	st.Page = page

	if cmd.Flags().Changed("page-size") {
		size, _ := cmd.Flags().GetInt("page-size")
		if size < 1 {
			return nil, util.NewError("Invalid --page-size value").
				WithMessage(fmt.Sprintf("Page size must be at least 1, got %d", size))
		}
		st.PageSize = size
	}

	st.Filter, _ = cmd.Flags().GetString("filter")

	keys, _ := cmd.Flags().GetStringSlice("select")
	st.Selected = grid.SelectAll(keys, true)

	return st, nil
}

// pruneSelection reports whether stale selected keys should be dropped.
func pruneSelection(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("prune-selection") {
		prune, _ := cmd.Flags().GetBool("prune-selection")
		return prune
	}
	return cfg.Grid.PruneSelection
}

// openSource opens the CSV file in args or the table named by --table.
// The caller must Close the source.
func openSource(ctx context.Context, cmd *cobra.Command, args []string, cfg *config.Config) (source.Source, error) {
	tableName, _ := cmd.Flags().GetString("table")
	keyColumn, _ := cmd.Flags().GetString("key")

	var csvPath string
	if len(args) > 0 {
		csvPath = args[0]
	}

	switch {
	case csvPath != "" && tableName != "":
		return nil, util.NewError("Conflicting data sources").
			WithMessage(fmt.Sprintf("Got both the file '%s' and --table %s", csvPath, tableName)).
			Wrap(util.ErrConflictingInput)

	case csvPath != "":
		src, err := source.OpenCSV(csvPath, keyColumn)
		if err != nil {
			return nil, util.NewError("Cannot read CSV file").
				WithContext(csvPath).
				WithMessage(err.Error()).
				Wrap(err)
		}
		logger.Debug("opened csv", zap.String("path", csvPath), zap.Int("rows", src.Len()))
		return src, nil

	case tableName == "":
		return nil, util.NoSourceError()
	}

	url, _ := cmd.Flags().GetString("db")
	if url == "" {
		url = cfg.DB.URL
	}
	if url == "" {
		return nil, util.NoSourceError().
			WithMessage("--table needs a database: pass --db or set db.url")
	}

	connectCtx, cancel := context.WithTimeout(ctx, queryTimeout(cmd, cfg))
	defer cancel()

	// serve answers concurrent requests; the other commands fetch once.
	connect := db.ConnectLite
	if cmd.Name() == "serve" {
		connect = db.Connect
	}
	conn, err := connect(connectCtx, url)
	if err != nil {
		return nil, util.DatabaseConnectionError(url, err)
	}

	src, err := source.NewPostgres(connectCtx, conn, tableName, keyColumn, true)
	if err != nil {
		conn.Close()
		switch {
		case errors.Is(err, db.ErrTableNotFound):
			return nil, util.NewError(fmt.Sprintf("Table '%s' not found", tableName)).
				WithCauses("The table is in another schema", "The connection user cannot see it").
				WithSuggestions("pgrid view --table myschema." + tableName).
				Wrap(err)
		case errors.Is(err, source.ErrUnknownColumn):
			return nil, util.NewError(fmt.Sprintf("Unknown key column '%s'", keyColumn)).Wrap(err)
		}
		return nil, err
	}

	logger.Debug("opened table", zap.String("table", src.Name()), zap.String("key", src.KeyColumn()))
	return src, nil
}

// fetchPage loads the page for st and checks that row keys are unique.
func fetchPage(ctx context.Context, src source.Source, st *query.State) (source.Page, error) {
	q := source.QueryFor(st.Sort, st.Pagination(0), st.Filter)

	start := time.Now()
	page, err := src.Fetch(ctx, q)
	if err != nil {
		if errors.Is(err, source.ErrUnknownColumn) {
			cols, _ := src.Columns(ctx)
			return source.Page{}, util.UnknownColumnError(st.Sort.Key, cols, err)
		}
		return source.Page{}, err
	}
	logger.Debug("fetched page",
		zap.String("source", src.Name()),
		zap.Stringer("sort", st.Sort),
		zap.Int("page", st.Page),
		zap.Int("page_size", st.PageSize),
		zap.Int("rows", len(page.Rows)),
		zap.Int("total", page.Total),
		zap.Duration("took", time.Since(start)))

	if err := grid.Validate(page.Rows, source.RowKey); err != nil {
		return source.Page{}, util.DuplicateKeyError(src.KeyColumn(), err)
	}
	return page, nil
}

// newGrid builds a controller over page whose state is owned by st.
func newGrid(page source.Page, st *query.State, cfg *config.Config, selectable bool) *grid.Controller[source.Record] {
	return grid.New(gridOptions(page, st, cfg, selectable))
}

// gridOptions binds the grid to st. A page size of 0 means every row on
// one page, so pagination is left unconfigured.
func gridOptions(page source.Page, st *query.State, cfg *config.Config, selectable bool) grid.Options[source.Record] {
	opts := grid.Options[source.Record]{
		Columns:      source.GridColumns(page.Columns, nil),
		Data:         page.Rows,
		RowKey:       source.RowKey,
		Selectable:   selectable,
		EmptyText:    cfg.Grid.EmptyText,
		SkeletonRows: cfg.Grid.SkeletonRows,
		Sort:         grid.Controlled(&st.Sort, nil),
		Selection:    grid.Controlled(&st.Selected, nil),
		Logger:       logger,
	}
	if st.PageSize > 0 {
		pagination := st.Pagination(page.Total)
		opts.Pagination = &grid.Binding[grid.Pagination]{Value: &pagination}
	}
	return opts
}

// dropStale removes selected keys that are not on page.
func dropStale(st *query.State, page source.Page) {
	keys := make([]string, len(page.Rows))
	for i, r := range page.Rows {
		keys[i] = r.Key
	}
	st.Selected = grid.Prune(st.Selected, keys)
}

// selectedRows returns the rows of page whose keys are selected.
func selectedRows(page source.Page, sel grid.Selection) []source.Record {
	var out []source.Record
	for _, r := range page.Rows {
		if sel.Has(r.Key) {
			out = append(out, r)
		}
	}
	return out
}

// exportPrefix derives an export file prefix from a source name.
func exportPrefix(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), ".csv")
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "export"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
}

// signalContext is canceled on interrupt or termination.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
