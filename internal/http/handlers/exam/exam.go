// Package exam contains the HTTP handlers of the exams service: exam
// scheduling and lookup, and course enrollments.
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
// GetByCourses handles GET /courses/exams?courseId=1,2,3
// This is the endpoint the gateway calls.
//
// Success response (200 OK):
//
//	{ "items": [ { "id": 300, "examDate": "2024-02-15",
//	               "subject": "Midterm Exam", "courseId": 20 } ] }
//
// A missing or empty courseId yields { "items": [] }. A non-integer id is a
// 400.
// ─────────────────────────────────────────────────────────────────────────────
func GetByCourses(store storage.ExamStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseIDs, err := request.QueryIntList(r, "courseId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}
		slog.Info("getting exams", slog.Any("course_ids", courseIDs))

		exams, err := store.GetExamsByCourseIDs(r.Context(), courseIDs)
		if err != nil {
			slog.Error("error getting exams", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, types.Exams{Items: exams})
	}
}

// New handles POST /courses/{courseId}/exams.
//
//	{ "examDate": "2024-02-15", "subject": "Midterm Exam" }
func New(store storage.ExamStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := request.PathInt(r, "courseId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		var req types.ExamRequest
		if err := request.Decode(r, &req); err != nil {
			response.WriteBadRequest(w, err)
			return
		}

		exam, err := store.CreateExam(r.Context(), courseID, req)
		if err != nil {
			slog.Error("error creating exam", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("exam created",
			slog.Int("course_id", courseID),
			slog.Int("exam_id", exam.ID))
		response.WriteJSON(w, http.StatusCreated, exam)
	}
}
