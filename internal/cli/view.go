package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/imgajeed76/pgrid/internal/config"
	"github.com/imgajeed76/pgrid/internal/query"
	"github.com/imgajeed76/pgrid/internal/source"
	"github.com/imgajeed76/pgrid/internal/ui"
	"github.com/imgajeed76/pgrid/internal/ui/styles"
	"github.com/imgajeed76/pgrid/internal/ui/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file.csv]",
		Short: "Show a CSV file or database table as a grid",
		Long: `Show tabular data as a sortable, selectable, paginated grid.

The data comes from a CSV file given as argument, or from a PostgreSQL
table given with --table (and --db or db.url in the config).

On a terminal an interactive viewer opens:
  ←/→ column   ↑/↓ row     s sort       space select   a select all
  n/p page     +/- size    / filter     enter open     x export
  y/Y copy     J/R/P print after exit   q quit

Piped output, --no-pager, --json and --raw print one page and exit.
The grid state is taken from the flags, so a printed page can be
reproduced exactly.`,
		Example: `  pgrid view people.csv
  pgrid view people.csv --sort age:desc --page 2 -n 10 --no-pager
  pgrid view --db postgres://localhost/app --table users --key id --json
  pgrid view people.csv --select 3,7 --filter ada`,
		Args: cobra.MaximumNArgs(1),
		RunE: runView,
	}

	addSourceFlags(cmd)
	addStateFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().Bool("select-mode", false, "Show the selection column in printed output")

	return cmd
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := readState(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	src, err := openSource(ctx, cmd, args, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	opts := displayOptions(cmd)
	if opts.Interactive() {
		return runViewTUI(ctx, cmd, src, st, cfg)
	}

	fetchCtx, cancelFetch := context.WithTimeout(ctx, queryTimeout(cmd, cfg))
	defer cancelFetch()

	spinner := ui.NewSpinner(fmt.Sprintf("Loading %s...", src.Name()))
	spinner.Start()
	page, err := fetchPage(fetchCtx, src, st)
	spinner.Stop()
	if err != nil {
		return err
	}

	if pruneSelection(cmd, cfg) {
		dropStale(st, page)
	}

	selectMode, _ := cmd.Flags().GetBool("select-mode")
	selectable := selectMode || cmd.Flags().Changed("select")

	d := newGrid(page, st, cfg, selectable).Render()
	return table.DisplayResults(os.Stdout, d, opts)
}

func runViewTUI(ctx context.Context, cmd *cobra.Command, src source.Source, st *query.State, cfg *config.Config) error {
	cols, err := src.Columns(ctx)
	if err != nil {
		return err
	}

	log := logger
	if logsToTerminal(cmd) {
		log = zap.NewNop()
	}

	exportDir, _ := os.Getwd()
	prefix := exportPrefix(src.Name())

	result, err := table.RunTUI(ctx, src, table.TUIOptions{
		Title:        src.Name(),
		Columns:      cols,
		Sort:         st.Sort,
		Pagination:   st.Pagination(0),
		Filter:       st.Filter,
		Selected:     st.Selected,
		Selectable:   true,
		PruneStale:   pruneSelection(cmd, cfg),
		EmptyText:    cfg.Grid.EmptyText,
		SkeletonRows: cfg.Grid.SkeletonRows,
		ColumnWidth:  cfg.Grid.ColumnWidth,
		Export: func(columns []string, rows []source.Record) (string, error) {
			return writeExport(exportDir, prefix, formatCSV, columns, rows)
		},
		Logger: log,
	})
	if err != nil {
		return err
	}

	logger.Debug("viewer closed",
		zap.Stringer("sort", result.Sort),
		zap.Int("page", result.Pagination.Page),
		zap.Int("selected", result.Selected.Len()))

	if n := result.Selected.Len(); n > 0 {
		fmt.Fprintln(os.Stderr, styles.MutedMsg(fmt.Sprintf("%d selected: %s", n, joinKeys(result.Selected.Keys(), 10))))
	}
	return nil
}

// joinKeys lists up to limit keys, noting how many were left out.
func joinKeys(keys []string, limit int) string {
	if len(keys) <= limit {
		return strings.Join(keys, ",")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(keys[:limit], ","), len(keys)-limit)
}
