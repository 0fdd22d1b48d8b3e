package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/imgajeed76/pgrid/internal/config"
	"github.com/imgajeed76/pgrid/internal/query"
	"github.com/imgajeed76/pgrid/internal/source"
	"github.com/imgajeed76/pgrid/internal/ui/styles"
	"github.com/imgajeed76/pgrid/internal/ui/table"
	"github.com/imgajeed76/pgrid/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [file.csv]",
		Short: "Show the grid in a browser",
		Long: `Serve the grid as an HTML page.

The page state lives in the URL: sort, page, page_size, filter and
select are query parameters, and every header, checkbox and pager link
points at the next state. A page can be bookmarked or shared as-is.

Add format=json to any grid URL to get the rows as JSON.`,
		Example: `  pgrid serve people.csv
  pgrid serve --table users --addr :9000`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}

	addSourceFlags(cmd)
	cmd.Flags().String("addr", "", "Listen address (default: serve.addr from config)")
	cmd.Flags().Bool("prune-selection", false, "Drop selected keys that are not on the shown page")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	ctx, cancel := signalContext()
	defer cancel()

	src, err := openSource(ctx, cmd, args, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	h := &gridHandler{
		src:     src,
		cfg:     cfg,
		log:     logger,
		prune:   pruneSelection(cmd, cfg),
		timeout: queryTimeout(cmd, cfg),
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Println(styles.SuccessMsg(fmt.Sprintf("Serving %s at http://%s/", src.Name(), addr)))
	logger.Info("server started", zap.String("addr", addr), zap.String("source", src.Name()))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return util.NewError("Cannot start server").
				WithContext(addr).
				WithMessage(err.Error()).
				WithSuggestions("pgrid serve --addr 127.0.0.1:9000").
				Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// gridHandler serves one source. Every request builds its own controller
// from the state in its URL.
type gridHandler struct {
	src     source.Source
	cfg     *config.Config
	log     *zap.Logger
	prune   bool
	timeout time.Duration
}

func (h *gridHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	st := query.FromURL(r.URL, h.cfg.Grid.PageSize)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, err := fetchPage(ctx, h.src, st)
	if err != nil {
		h.log.Warn("fetch failed", zap.String("url", r.URL.String()), zap.Error(err))
		status := http.StatusInternalServerError
		var gridErr *util.GridError
		if errors.As(err, &gridErr) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	if h.prune {
		dropStale(st, page)
	}

	d := newGrid(page, st, h.cfg, true).Render()

	var buf bytes.Buffer
	if r.URL.Query().Get("format") == formatJSON {
		w.Header().Set("Content-Type", "application/json")
		err = table.PrintJSON(&buf, d)
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = table.RenderHTML(&buf, d, table.HTMLOptions{
			Title: h.src.Name(),
			Links: st,
			Form: table.FilterForm{
				Action:   st.FormAction(),
				Filter:   st.Filter,
				Sort:     st.Sort.String(),
				PageSize: st.PageSize,
				Select:   st.Selected.Keys(),
			},
		})
	}
	if err != nil {
		h.log.Error("render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	_, _ = w.Write(buf.Bytes())
	h.log.Info("served grid",
		zap.String("url", r.URL.String()),
		zap.Int("rows", len(page.Rows)),
		zap.Int("total", page.Total),
		zap.Int("selected", st.Selected.Len()),
		zap.Duration("took", time.Since(start)))
}
