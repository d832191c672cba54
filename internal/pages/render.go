package pages

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/selgo-dev/selgo-web/internal/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PageTemplate is the name handlers pass to gin's c.HTML
const PageTemplate = "page"

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	tmpl, err := template.New(PageTemplate).Funcs(template.FuncMap{
		"columns": func(n int) string { return "grid-cols-" + strconv.Itoa(n) },
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func pageURL(base string, q catalog.Query, page int) string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.MinPrice > 0 {
		v.Set("min_price", strconv.FormatInt(q.MinPrice, 10))
	}
	if q.MaxPrice > 0 {
		v.Set("max_price", strconv.FormatInt(q.MaxPrice, 10))
	}
	if q.Sort != "" && q.Sort != catalog.SortNewest {
		v.Set("sort", q.Sort)
	}
	if q.PerPage > 0 && q.PerPage != catalog.DefaultPerPage {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	v.Set("page", strconv.Itoa(page))
	return base + "?" + v.Encode()
}

func withRedirect(path, redirect string) string {
	if redirect == "" {
		return path
	}
	return path + "?" + url.Values{"redirect": {redirect}}.Encode()
}
