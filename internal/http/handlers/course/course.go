// Package course contains the HTTP handlers for a student's courses and for
// the course type catalogue. Handlers follow the same factory pattern as
// package student.
package course

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
	"github.com/aanand-mishra/university-api/internal/utils/request"
	"github.com/aanand-mishra/university-api/internal/utils/response"
)

// Types handles GET /courseTypes.
func Types(store storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseTypes, err := store.GetCourseTypes(r.Context())
		if err != nil {
			slog.Error("error getting course types", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, courseTypes)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students/{studentId}/courses
//
// Request body (JSON):
//
//	{ "title": "Computer Science", "credits": 6, "typeId": 1,
//	  "enrollmentDate": "2024-01-10" }
//
// enrollmentDate is optional and defaults to today.
//
// Error responses:
//
//	400 Bad Request  — validation failure or unknown typeId
//	404 Not Found    — no such student
//	409 Conflict     — the student already holds 7 courses
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := request.PathInt(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		var req types.CourseRequest
		if err := request.Decode(r, &req); err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		course, err := store.CreateCourse(r.Context(), studentID, req)
		if err != nil {
			slog.Warn("course registration rejected",
				slog.Int("student_id", studentID),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("course created",
			slog.Int("student_id", studentID),
			slog.Int("course_id", course.ID))
		response.WriteJSON(w, http.StatusCreated, course)
	}
}

// GetList handles GET /students/{studentId}/courses.
func GetList(store storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := request.PathInt(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		courses, err := store.GetCoursesByStudent(r.Context(), studentID)
		if err != nil {
			slog.Error("error getting courses",
				slog.Int("student_id", studentID),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, courses)
	}
}

// GetByID handles GET /students/{studentId}/courses/{courseId}.
// The response carries the owner's full name instead of the course list.
func GetByID(store storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, courseID, ok := ids(w, r)
		if !ok {
			return
		}

		info, err := store.GetCourseInfo(r.Context(), studentID, courseID)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, info)
	}
}

// Update handles PUT /students/{studentId}/courses/{courseId}.
// Responds 204 No Content on success.
func Update(store storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, courseID, ok := ids(w, r)
		if !ok {
			return
		}

		var req types.CourseRequest
		if err := request.Decode(r, &req); err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		if err := store.UpdateCourse(r.Context(), studentID, courseID, req); err != nil {
			slog.Error("error updating course",
				slog.Int("course_id", courseID),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("course updated", slog.Int("course_id", courseID))
		w.WriteHeader(http.StatusNoContent)
	}
}

// Delete handles DELETE /students/{studentId}/courses/{courseId}.
func Delete(store storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, courseID, ok := ids(w, r)
		if !ok {
			return
		}

		if err := store.DeleteCourse(r.Context(), studentID, courseID); err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("course deleted", slog.Int("course_id", courseID))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ids parses both path ids, writing a 400 and returning ok=false on failure.
func ids(w http.ResponseWriter, r *http.Request) (studentID, courseID int, ok bool) {
	studentID, err := request.PathInt(r, "studentId")
	if err != nil {
		response.WriteBadRequest(w, err)
		return 0, 0, false
	}
	courseID, err = request.PathInt(r, "courseId")
	if err != nil {
		response.WriteBadRequest(w, err)
		return 0, 0, false
	}
	return studentID, courseID, true
}
