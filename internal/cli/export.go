package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/imgajeed76/pgrid/internal/source"
	"github.com/imgajeed76/pgrid/internal/ui"
	"github.com/imgajeed76/pgrid/internal/ui/styles"
	"github.com/imgajeed76/pgrid/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	formatCSV  = "csv"
	formatJSON = "json"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Write the selected rows to a file",
		Long: `Write the selected rows of one page to a new file.

The page is chosen with the same flags as 'pgrid view'. Rows are picked
with --select; keys that are not on the page are reported and skipped.
With --all the selection is matched against every row instead of one
page.

Files are named <source>-<id>.<format> so repeated exports never
overwrite each other.`,
		Example: `  pgrid export people.csv --select 3,7
  pgrid export --table users --select 42 --format json -o /tmp
  pgrid export people.csv --filter ada --select 1 --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	addSourceFlags(cmd)
	addStateFlags(cmd)
	cmd.Flags().String("format", formatCSV, "Output format: csv or json")
	cmd.Flags().StringP("output-dir", "o", ".", "Directory to write the file to")
	cmd.Flags().Bool("all", false, "Match the selection against all rows, not one page")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != formatCSV && format != formatJSON {
		return util.NewError("Invalid --format value").
			WithMessage(fmt.Sprintf("Unknown format '%s'", format)).
			WithSuggestions("--format csv", "--format json")
	}
	outDir, _ := cmd.Flags().GetString("output-dir")
	all, _ := cmd.Flags().GetBool("all")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := readState(cmd, cfg)
	if err != nil {
		return err
	}
	if st.Selected.Len() == 0 {
		return util.NewError("Nothing to export").
			WithMessage("No rows are selected").
			WithSuggestions("pgrid export people.csv --select 1,2").
			Wrap(util.ErrNothingSelected)
	}
	if all {
		st.Page = 1
		st.PageSize = 0
	}

	ctx, cancel := signalContext()
	defer cancel()

	src, err := openSource(ctx, cmd, args, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	fetchCtx, cancelFetch := context.WithTimeout(ctx, queryTimeout(cmd, cfg))
	defer cancelFetch()

	spinner := ui.NewSpinner(fmt.Sprintf("Loading %s...", src.Name()))
	spinner.Start()
	page, err := fetchPage(fetchCtx, src, st)
	spinner.Stop()
	if err != nil {
		return err
	}

	rows := selectedRows(page, st.Selected)
	if missing := st.Selected.Len() - len(rows); missing > 0 {
		fmt.Fprintln(os.Stderr, styles.WarningMsg(fmt.Sprintf("%d selected key(s) not found on this page", missing)))
	}
	if len(rows) == 0 {
		return util.NewError("Nothing to export").
			WithMessage("None of the selected keys matched a row").
			WithSuggestions("pgrid export --all ...   # Match against every row").
			Wrap(util.ErrNothingSelected)
	}

	path, err := writeExport(outDir, exportPrefix(src.Name()), format, page.Columns, rows)
	if err != nil {
		return err
	}

	logger.Info("exported rows",
		zap.String("source", src.Name()),
		zap.String("path", path),
		zap.Int("rows", len(rows)))
	fmt.Println(styles.SuccessMsg(fmt.Sprintf("Exported %d row(s) to %s", len(rows), path)))
	return nil
}

// writeExport writes rows to a new file in dir and returns its path.
func writeExport(dir, prefix, format string, columns []string, rows []source.Record) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, util.ExportFileName(prefix, format))

	err := createExport(path, func(w io.Writer) error {
		if format == formatJSON {
			return writeJSONRows(w, columns, rows)
		}
		return writeCSVRows(w, columns, rows)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// createExport creates path, which must not exist, and fills it with write.
// A partly written file is removed on failure.
func createExport(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func writeCSVRows(f io.Writer, columns []string, rows []source.Record) error {
	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.Values); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSONRows(f io.Writer, columns []string, rows []source.Record) error {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		obj := make(map[string]any, len(columns))
		for j, col := range columns {
			var v any
			if j < len(r.Values) && !r.IsNull(j) {
				v = r.Values[j]
			}
			obj[col] = v
		}
		out[i] = obj
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
