package table

import (
	"embed"
	"io"
	"strconv"
	"sync"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/imgajeed76/pgrid/internal/grid"
)

//go:embed templates/*
var templateFS embed.FS

var (
	gridTemplate     *template.Template
	gridTemplateErr  error
	gridTemplateOnce sync.Once
)

func loadTemplate() (*template.Template, error) {
	gridTemplateOnce.Do(func() {
		trustedFS := template.TrustedFSFromEmbed(templateFS)
		gridTemplate, gridTemplateErr = template.New("grid.html").ParseFS(trustedFS, "templates/grid.html")
	})
	return gridTemplate, gridTemplateErr
}

// Links builds the URLs that carry the next grid state. The HTML page is
// controlled by its URL: every click is a navigation to the state the grid
// would have emitted.
type Links interface {
	SortURL(key string) safehtml.URL
	SelectAllURL(keys []string, checked bool) safehtml.URL
	ToggleRowURL(key string, checked bool) safehtml.URL
	PageURL(page int) safehtml.URL
	PageSizeURL(size int) safehtml.URL
}

// FilterForm holds the values of the filter form. The hidden fields keep
// the rest of the state across a submit; the page always resets to 1.
type FilterForm struct {
	Action   safehtml.URL
	Filter   string
	Sort     string
	PageSize int
	Select   []string
}

// HTMLOptions configures RenderHTML.
type HTMLOptions struct {
	Title     string
	Links     Links
	Form      FilterForm
	PageSizes []int
}

// DefaultPageSizes are offered by the HTML pager.
var DefaultPageSizes = []int{10, 25, 50, 100}

type htmlLink struct {
	Label string
	URL   safehtml.URL
	Link  bool
}

type htmlHeader struct {
	htmlLink
	Checkbox bool
	Glyph    string
}

type htmlCell struct {
	Text     string
	URL      safehtml.URL
	Link     bool
	Checkbox bool
	Skeleton bool
}

type htmlRow struct {
	Selected bool
	Cells    []htmlCell
}

type htmlPager struct {
	Caption string
	Page    int
	Pages   int
	Prev    htmlLink
	Next    htmlLink
	Sizes   []htmlLink
}

type htmlPage struct {
	Title         string
	Interactive   bool
	Form          FilterForm
	Headers       []htmlHeader
	Rows          []htmlRow
	Empty         bool
	EmptyText     string
	Pager         *htmlPager
	SelectedCount int
}

// RenderHTML writes d as an HTML page. Links are omitted while the grid is
// not interactive.
func RenderHTML(w io.Writer, d grid.Descriptor, opts HTMLOptions) error {
	tmpl, err := loadTemplate()
	if err != nil {
		return err
	}
	return tmpl.Execute(w, buildHTMLPage(d, opts))
}

func buildHTMLPage(d grid.Descriptor, opts HTMLOptions) htmlPage {
	interactive := d.Interactive && opts.Links != nil

	page := htmlPage{
		Title:       opts.Title,
		Interactive: interactive,
		Form:        opts.Form,
		Empty:       d.Empty,
		EmptyText:   d.EmptyText,
	}
	if d.Selectable {
		page.SelectedCount = d.Selection.Count
	}

	keys := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		if !row.Skeleton {
			keys = append(keys, row.Key)
		}
	}

	for _, h := range d.Headers {
		hh := htmlHeader{htmlLink: htmlLink{Label: headerLabel(h)}, Glyph: h.Glyph}
		switch {
		case h.Kind == grid.CellCheckbox:
			hh.Checkbox = true
			if interactive && len(keys) > 0 {
				hh.URL = opts.Links.SelectAllURL(keys, !h.Checked)
				hh.Link = true
			}
		case h.Sortable && interactive:
			hh.URL = opts.Links.SortURL(h.Key)
			hh.Link = true
		}
		page.Headers = append(page.Headers, hh)
	}

	for _, row := range d.Rows {
		hr := htmlRow{Selected: row.Selected}
		for _, c := range row.Cells {
			hc := htmlCell{Text: cellText(c)}
			switch c.Kind {
			case grid.CellSkeleton:
				hc.Skeleton = true
			case grid.CellCheckbox:
				hc.Checkbox = true
				if interactive {
					hc.URL = opts.Links.ToggleRowURL(row.Key, !c.Checked)
					hc.Link = true
				}
			}
			hr.Cells = append(hr.Cells, hc)
		}
		page.Rows = append(page.Rows, hr)
	}

	if d.ShowPagination() {
		page.Pager = buildPager(*d.Pagination, interactive, opts)
	}

	return page
}

func headerLabel(h grid.HeaderCell) string {
	if h.Kind == grid.CellCheckbox {
		return checkboxText(h.Checked, h.Indeterminate)
	}
	return h.Label
}

func buildPager(p grid.Pagination, interactive bool, opts HTMLOptions) *htmlPager {
	pager := &htmlPager{
		Caption: p.Caption(),
		Page:    p.Page,
		Pages:   p.PageCount(),
	}
	if !interactive {
		return pager
	}

	if p.HasPrev() {
		pager.Prev = htmlLink{URL: opts.Links.PageURL(p.Page - 1), Link: true}
	}
	if p.HasNext() {
		pager.Next = htmlLink{URL: opts.Links.PageURL(p.Page + 1), Link: true}
	}

	sizes := opts.PageSizes
	if len(sizes) == 0 {
		sizes = DefaultPageSizes
	}
	for _, size := range sizes {
		l := htmlLink{Label: strconv.Itoa(size)}
		if size != p.PageSize {
			l.URL = opts.Links.PageSizeURL(size)
			l.Link = true
		}
		pager.Sizes = append(pager.Sizes, l)
	}
	return pager
}
