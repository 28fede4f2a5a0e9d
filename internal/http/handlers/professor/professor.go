// Package professor contains the HTTP handlers of the professors service.
package professor

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
	"github.com/aanand-mishra/university-api/internal/utils/request"
	"github.com/aanand-mishra/university-api/internal/utils/response"
)

// New handles POST /professors.
//
//	{ "firstName": "Ada", "lastName": "Lovelace", "department": "Mathematics",
//	  "specialties": ["Algebra", "Analysis"] }
//
// Specialties unknown so far are created by name.
func New(store storage.ProfessorStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ProfessorRequest
		if err := request.Decode(r, &req); err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		prof, err := store.CreateProfessor(r.Context(), req)
		if err != nil {
			slog.Error("error creating professor", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("professor created", slog.Int("id", prof.ID))
		response.WriteJSON(w, http.StatusCreated, prof)
	}
}

// GetList handles GET /professors.
func GetList(store storage.ProfessorStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profs, err := store.GetProfessors(r.Context())
		if err != nil {
			slog.Error("error getting professors", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, profs)
	}
}

// GetByID handles GET /professors/{professorId}.
func GetByID(store storage.ProfessorStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt(r, "professorId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		prof, err := store.GetProfessorByID(r.Context(), id)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, prof)
	}
}

// ByDepartment handles GET /professors/department/{department}.
func ByDepartment(store storage.ProfessorStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profs, err := store.GetProfessorsByDepartment(r.Context(), r.PathValue("department"))
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, profs)
	}
}

// BySpecialty handles GET /professors/specialty/{name}.
func BySpecialty(store storage.ProfessorStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profs, err := store.GetProfessorsBySpecialty(r.Context(), r.PathValue("name"))
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, profs)
	}
}
