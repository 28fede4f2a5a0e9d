// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (storage)
//  2. Returns a function with the exact signature the router needs
//
// Example:
//
//	router.HandleFunc("POST /students", student.New(store))
//	//                                    ^^^^^^^^^^^^^^^^^
//	//                   New(store) is called ONCE at startup. It returns
//	//                   a handler func called on EVERY incoming request.
package student

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
	"github.com/aanand-mishra/university-api/internal/utils/request"
	"github.com/aanand-mishra/university-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "firstName": "John", "lastName": "Doe", "address": "123 Main St",
//	  "city": "Springfield", "telephone": "5551234567" }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		// ── Step 1: Decode and validate the body ──────────────────────
		var req types.StudentRequest
		if err := request.Decode(r, &req); err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		// ── Step 2: Persist to database ───────────────────────────────
		// We call the storage interface, not SQLite directly.
		id, err := store.CreateStudent(r.Context(), req.Student())
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("student created", slog.Int("id", id))

		// ── Step 3: Return 201 Created with the new student's ID ──────
		response.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{studentId}
// Returns the student together with its courses. This is the shape the
// gateway consumes.
//
// Error responses:
//
//	400 Bad Request  — id is not a positive integer
//	404 Not Found    — no such student
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}
		slog.Info("getting a student", slog.Int("id", id))

		student, err := store.GetStudentByID(r.Context(), id)
		if err != nil {
			slog.Error("error getting student",
				slog.Int("id", id),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /students.
// Returns an empty array [] (not null) when there are no students.
func GetList(store storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/{studentId}
// Replaces the profile fields of an existing student. Courses are untouched.
//
// Success response (200 OK) — the updated student with its courses.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, or validation failure
//	404 Not Found    — no such student
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}
		slog.Info("updating a student", slog.Int("id", id))

		// Same validation rules as creation.
		var req types.StudentRequest
		if err := request.Decode(r, &req); err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		updated, err := store.UpdateStudentByID(r.Context(), id, req.Student())
		if err != nil {
			slog.Error("error updating student",
				slog.Int("id", id),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("student updated", slog.Int("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /students/{studentId}
// Permanently removes a student and its courses.
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.StudentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}
		slog.Info("deleting a student", slog.Int("id", id))

		if err := store.DeleteStudentByID(r.Context(), id); err != nil {
			slog.Error("error deleting student",
				slog.Int("id", id),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("student deleted", slog.Int("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
