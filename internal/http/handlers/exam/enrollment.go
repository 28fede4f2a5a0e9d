package exam

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
	"github.com/aanand-mishra/university-api/internal/utils/request"
	"github.com/aanand-mishra/university-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// Enroll handles POST /enrollments/students/{studentId}/courses/{courseId}
//
// Error responses:
//
//	409 Conflict — already enrolled, or the student holds 7 enrollments
//
// ─────────────────────────────────────────────────────────────────────────────
func Enroll(store storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := request.PathInt(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}
		courseID, err := request.PathInt(r, "courseId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		enrollment, err := store.CreateEnrollment(r.Context(), studentID, courseID)
		if err != nil {
			slog.Warn("enrollment rejected",
				slog.Int("student_id", studentID),
				slog.Int("course_id", courseID),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("student enrolled",
			slog.Int("student_id", studentID),
			slog.Int("course_id", courseID))
		response.WriteJSON(w, http.StatusCreated, enrollment)
	}
}

// ByStudent handles GET /enrollments/students/{studentId}.
func ByStudent(store storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := request.PathInt(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		enrollments, err := store.GetEnrollmentsByStudent(r.Context(), studentID)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, enrollments)
	}
}

// ByCourse handles GET /enrollments/courses/{courseId}.
func ByCourse(store storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := request.PathInt(r, "courseId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		enrollments, err := store.GetEnrollmentsByCourse(r.Context(), courseID)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, enrollments)
	}
}

// Bulk handles GET /enrollments/students/bulk?studentId=1,2.
func Bulk(store storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentIDs, err := request.QueryIntList(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		enrollments, err := store.GetEnrollmentsByStudents(r.Context(), studentIDs)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, types.Enrollments{Items: enrollments})
	}
}

// Unenroll handles DELETE /enrollments/{enrollmentId}.
func Unenroll(store storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt(r, "enrollmentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		if err := store.DeleteEnrollment(r.Context(), id); err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("enrollment deleted", slog.Int("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
