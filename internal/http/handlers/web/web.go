// Package web serves the browser form UI: a login page and a single
// dashboard to add, edit, delete, filter, sort and download records.
//
// Forms post back and redirect (POST/redirect/GET). The outcome message
// travels to the next page in a short-lived flash cookie.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/http/handlers/session"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/logging"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/store"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
	"github.com/aanand-mishra/student-records/internal/validation"
)

//go:embed templates/*.html
var templateFiles embed.FS

const flashCookie = "student_records_flash"

// Messages shown after each form action.
const (
	MsgCreated      = "Data berhasil ditambahkan."
	MsgUpdated      = "Data berhasil diperbarui."
	MsgDeleted      = "Data berhasil dihapus."
	MsgDuplicate    = "NIM sudah ada."
	MsgNotFound     = "NIM tidak ditemukan."
	MsgBadLogin     = "Username atau password salah."
	MsgStorage      = "Gagal menyimpan data. Silakan coba lagi."
	msgWelcomeFmt   = "Login berhasil. Selamat datang, %s!"
	flashSuccess    = "success"
	flashError      = "error"
	defaultSortHint = "Filter, urutkan, dan unduh data CSV."
)

// Flash is a one-off message for the next page.
type Flash struct {
	Kind    string
	Message string
}

// Handler renders the UI pages.
type Handler struct {
	records  student.Records
	sessions *auth.Sessions
	tmpl     *template.Template
}

// New parses the embedded templates.
func New(records student.Records, sessions *auth.Sessions) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web.New: parse templates: %w", err)
	}
	return &Handler{records: records, sessions: sessions, tmpl: tmpl}, nil
}

// Routes mounts the UI on r. Everything except the login page requires a
// session.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(h.sessions, false))

		r.Get("/", h.Dashboard)
		r.Post("/logout", h.Logout)
		r.Post("/students", h.Create)
		r.Post("/students/{id}", h.Update)
		r.Post("/students/{id}/delete", h.Delete)
		r.Get("/export", h.Export)
	})
}

type loginPage struct {
	Username string
	Flash    *Flash
}

// LoginPage handles GET /login.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.FromRequest(r, h.sessions); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login.html", loginPage{Flash: takeFlash(w, r)})
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")

	sess, err := h.sessions.Login(username, r.PostFormValue("password"))
	if err != nil {
		logging.FromContext(r.Context()).Warn("login failed", slog.String("username", username))
		h.render(w, r, http.StatusUnauthorized, "login.html", loginPage{
			Username: username,
			Flash:    &Flash{Kind: flashError, Message: MsgBadLogin},
		})
		return
	}

	session.SetCookie(w, sess)
	redirect(w, r, "/", flashSuccess, fmt.Sprintf(msgWelcomeFmt, sess.Username))
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session.End(w, r, h.sessions)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// dashboard is everything the main page shows.
type dashboard struct {
	Username string
	Flash    *Flash
	Hint     string

	// Add form values, kept after a failed submit.
	Form validation.Form

	// Edit panel.
	IDs     []string
	Editing *types.Student

	// Table and its controls.
	Students []types.Student
	Query    string
	Key      sorting.Key
	Dir      sorting.Direction
	Algo     sorting.Algorithm

	Genders    []types.Gender
	Keys       []sorting.Key
	Dirs       []sorting.Direction
	Algorithms []sorting.Algorithm
}

// Dashboard handles GET /.
//
//	?q=     keyword filter
//	?key= ?dir= ?algo=  display order
//	?edit=  NIM to load into the edit form
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, http.StatusOK, takeFlash(w, r), validation.Form{})
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request, status int, flash *Flash, form validation.Form) {
	q := r.URL.Query()

	opts, err := sorting.ParseOptions(q.Get("algo"), q.Get("key"), q.Get("dir"))
	if err != nil {
		opts = sorting.DefaultOptions()
		flash = &Flash{Kind: flashError, Message: err.Error()}
	}

	list, err := h.records.View(q.Get("q"), opts)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	// The edit picker lists every NIM, unfiltered, in stored order.
	all := h.records.All()
	ids := make([]string, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.ID)
	}

	data := dashboard{
		Flash:      flash,
		Hint:       defaultSortHint,
		Form:       form,
		IDs:        ids,
		Students:   list,
		Query:      q.Get("q"),
		Key:        opts.Key,
		Dir:        opts.Direction,
		Algo:       opts.Algorithm,
		Genders:    types.Genders,
		Keys:       []sorting.Key{sorting.KeyID, sorting.KeyName, sorting.KeyGPA},
		Dirs:       []sorting.Direction{sorting.Ascending, sorting.Descending},
		Algorithms: []sorting.Algorithm{sorting.Merge, sorting.Insertion, sorting.Bubble},
	}
	if sess, ok := middleware.SessionFrom(r.Context()); ok {
		data.Username = sess.Username
	}
	if id := q.Get("edit"); id != "" {
		if st, ok := h.records.FindByID(id); ok {
			data.Editing = &st
		}
	}

	h.render(w, r, status, "dashboard.html", data)
}

// Create handles POST /students (the "Tambah Data" form).
// Checks run in the order the user sees them: missing fields, NIM format,
// duplicate NIM, then the remaining fields.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := validation.Form{
		ID:         r.PostFormValue("id"),
		Name:       r.PostFormValue("name"),
		Gender:     r.PostFormValue("gender"),
		Department: r.PostFormValue("department"),
		Term:       r.PostFormValue("term"),
		GPA:        r.PostFormValue("gpa"),
	}

	st, err := validation.ParseForm(form)
	if err != nil {
		verr, _ := validation.AsValidationError(err)
		early := verr != nil && (verr.Has("form") || verr.Has("id"))
		if _, exists := h.records.FindByID(form.ID); exists && !early {
			err = fmt.Errorf("%w: %s", store.ErrDuplicateKey, strings.TrimSpace(form.ID))
		}
		h.formError(w, r, err, form)
		return
	}

	if err := h.records.Insert(r.Context(), st); err != nil {
		h.formError(w, r, err, form)
		return
	}

	redirect(w, r, "/", flashSuccess, MsgCreated)
}

// Update handles POST /students/{id} (the "Edit Data" form). The NIM comes
// from the path and cannot change.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fields, err := validation.ParseFields(
		r.PostFormValue("name"),
		r.PostFormValue("gender"),
		r.PostFormValue("department"),
		r.PostFormValue("term"),
		r.PostFormValue("gpa"),
	)
	if err == nil {
		err = h.records.Update(r.Context(), id, fields)
	}
	if err != nil {
		redirect(w, r, "/?edit="+url.QueryEscape(id), flashError, message(err))
		return
	}

	redirect(w, r, "/?edit="+url.QueryEscape(id), flashSuccess, MsgUpdated)
}

// Delete handles POST /students/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		redirect(w, r, "/", flashError, message(err))
		return
	}
	redirect(w, r, "/", flashSuccess, MsgDeleted)
}

// Export handles GET /export, the "Download CSV" link.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	student.WriteExport(w, r, h.records)
}

// formError re-renders the dashboard with the add form still filled in.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error, form validation.Form) {
	logging.FromContext(r.Context()).Warn("add form rejected", slog.String("error", err.Error()))
	h.renderDashboard(w, r, response.StatusFor(err), &Flash{Kind: flashError, Message: message(err)}, form)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("page failed", slog.String("error", err.Error()))
	http.Error(w, MsgStorage, http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logging.FromContext(r.Context()).Error("render failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
	}
}

// message turns a store or validation error into the text the user sees.
func message(err error) string {
	if verr, ok := validation.AsValidationError(err); ok && len(verr.Fields) > 0 {
		return verr.Fields[0].Message + "."
	}
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		return MsgDuplicate
	case errors.Is(err, store.ErrNotFound):
		return MsgNotFound
	case store.IsStorageError(err):
		return MsgStorage
	}
	return err.Error()
}

func redirect(w http.ResponseWriter, r *http.Request, to, kind, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// takeFlash reads the flash cookie and clears it.
func takeFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(raw, "|")
	if !ok || msg == "" {
		return nil
	}
	if kind != flashSuccess {
		kind = flashError
	}
	return &Flash{Kind: kind, Message: msg}
}
