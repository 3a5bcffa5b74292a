package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

const placeholder = "—"

type LoginPage struct {
	Theme    model.Theme
	Email    string
	Remember bool
	Toast    *Toast
}

type DashboardPage struct {
	Theme  model.Theme
	Email  string
	Role   string
	Stats  model.Stats
	Rows   []model.Record
	Filter model.RecordFilter
	Toast  *Toast
}

// Table is what the "rows" partial needs.
func (p DashboardPage) Table() RowsView {
	return RowsView{Rows: p.Rows, Filter: p.Filter}
}

// Link points back at the dashboard with the current filter and a notice.
func (p DashboardPage) Link(notice string) string {
	return DashboardURL(p.Filter, notice)
}

// RowsView is the table body plus the filter every row action carries along.
type RowsView struct {
	Rows   []model.Record
	Filter model.RecordFilter
}

// DashboardURL builds /dashboard with the non-empty filter fields and notice.
func DashboardURL(filter model.RecordFilter, notice string) string {
	q := url.Values{}
	if text := strings.TrimSpace(filter.Text); text != "" {
		q.Set("q", filter.Text)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	if len(q) == 0 {
		return "/dashboard"
	}
	return "/dashboard?" + q.Encode()
}

// Renderer executes the embedded page templates. html/template escapes every
// user-supplied value, so titles are never interpreted as markup.
type Renderer struct {
	tmpl *template.Template
	loc  *time.Location
}

func NewRenderer(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	r := &Renderer{loc: loc}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"formatDate":  r.formatDate,
		"statusLabel": statusLabel,
		"statusBadge": statusBadge,
		"isDark":      func(t model.Theme) bool { return t == model.ThemeDark },
		"orDash":      orDash,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) Login(w io.Writer, page LoginPage) error {
	return r.tmpl.ExecuteTemplate(w, "login.html", page)
}

func (r *Renderer) Dashboard(w io.Writer, page DashboardPage) error {
	return r.tmpl.ExecuteTemplate(w, "dashboard.html", page)
}

// Rows renders only the table body, the same markup the dashboard embeds.
func (r *Renderer) Rows(w io.Writer, rows []model.Record, filter model.RecordFilter) error {
	return r.tmpl.ExecuteTemplate(w, "rows", RowsView{Rows: rows, Filter: filter})
}

// formatDate mirrors the pt-BR short date and time style.
func (r *Renderer) formatDate(t time.Time) string {
	return t.In(r.loc).Format("02/01/2006 15:04")
}

func statusLabel(s model.Status) string {
	if s == model.StatusDone {
		return "Concluído"
	}
	return "Pendente"
}

func statusBadge(s model.Status) string {
	if s == model.StatusDone {
		return "text-bg-success"
	}
	return "text-bg-warning text-dark"
}

func orDash(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
