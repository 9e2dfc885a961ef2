// Package student contains the JSON API handlers for student records.
//
// Every handler is a factory: it receives its dependencies once at route
// registration and returns the http.HandlerFunc the router calls on every
// request.
//
//	r.Post("/api/students", student.New(records))
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/student-records/internal/logging"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/store"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// ExportFilename is the name offered for downloads, the same as the data file.
const ExportFilename = "data_mahasiswa.csv"

// Records is what the handlers need from the store.
type Records interface {
	Insert(ctx context.Context, s types.Student) error
	Update(ctx context.Context, id string, f types.StudentFields) error
	Delete(ctx context.Context, id string) error
	Sort(ctx context.Context, o sorting.Options) error
	FindByID(id string) (types.Student, bool)
	All() []types.Student
	View(keyword string, o sorting.Options) ([]types.Student, error)
	Export(w io.Writer) error
}

var errEmptyBody = errors.New("request body is empty")

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "id": "200300400500", "name": "Siti Aminah", "gender": "Perempuan",
//	  "department": "Informatics", "term": 3, "gpa": 3.75 }
//
// Success response (201 Created):
//
//	{ "id": "200300400500" }
//
// Error responses: 400 bad body or validation, 409 duplicate NIM, 500 storage.
// ─────────────────────────────────────────────────────────────────────────────
func New(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context())
		log.Info("creating a student")

		var st types.Student
		if err := decode(r, &st); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := records.Insert(r.Context(), st); err != nil {
			log.Warn("error creating student",
				slog.String("id", st.ID),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		created, _ := records.FindByID(st.ID)
		response.WriteJSON(w, http.StatusCreated, map[string]string{"id": created.ID})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
// Query parameters (all optional):
//
//	q     keyword matched against NIM and name
//	key   id | name | gpa          (default id)
//	dir   asc | desc               (default asc)
//	algo  bubble | insertion | merge (default merge)
//
// The stored order is not changed; use POST /api/students/sort for that.
// Returns [] (not null) when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		opts, err := sorting.ParseOptions(q.Get("algo"), q.Get("key"), q.Get("dir"))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		list, err := records.View(q.Get("q"), opts)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, list)
	}
}

// GetByID handles GET /api/students/{id}
func GetByID(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		st, ok := records.FindByID(id)
		if !ok {
			response.Error(w, fmt.Errorf("%w: %s", store.ErrNotFound, id))
			return
		}

		response.WriteJSON(w, http.StatusOK, st)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces every field except the NIM, which cannot change.
//
// Request body (JSON):
//
//	{ "name": "Siti A.", "gender": "Perempuan", "department": "Informatics",
//	  "term": 4, "gpa": 3.8 }
//
// Success response (200 OK): the updated student.
// ─────────────────────────────────────────────────────────────────────────────
func Update(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logging.FromContext(r.Context()).With(slog.String("id", id))
		log.Info("updating a student")

		var f types.StudentFields
		if err := decode(r, &f); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := records.Update(r.Context(), id, f); err != nil {
			log.Warn("error updating student", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		updated, _ := records.FindByID(id)
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id}
//
//	200 { "status": "deleted" }  |  404 unknown NIM  |  500 storage
func Delete(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logging.FromContext(r.Context()).With(slog.String("id", id))
		log.Info("deleting a student")

		if err := records.Delete(r.Context(), id); err != nil {
			log.Warn("error deleting student", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// sortRequest is the body of POST /api/students/sort.
type sortRequest struct {
	Algorithm string `json:"algorithm"`
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

// Sort handles POST /api/students/sort and stores the new order.
//
//	{ "algorithm": "merge", "key": "gpa", "direction": "desc" }
func Sort(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sortRequest
		if err := decode(r, &req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		opts, err := sorting.ParseOptions(req.Algorithm, req.Key, req.Direction)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := records.Sort(r.Context(), opts); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	}
}

// Export handles GET /api/students/export: every record, unfiltered, as a
// CSV download.
func Export(records Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteExport(w, r, records)
	}
}

// WriteExport streams the CSV export with download headers.
func WriteExport(w http.ResponseWriter, r *http.Request, records Records) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)

	if err := records.Export(w); err != nil {
		// Headers are gone by now; all that is left is to log it.
		logging.FromContext(r.Context()).Error("export failed", slog.String("error", err.Error()))
	}
}

// decode reads a JSON body into v, rejecting empty bodies.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}
