// Package gateway contains the HTTP handlers of the gateway binary.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/university-api/internal/breaker"
	"github.com/aanand-mishra/university-api/internal/http/middleware"
	"github.com/aanand-mishra/university-api/internal/types"
	"github.com/aanand-mishra/university-api/internal/upstream"
	"github.com/aanand-mishra/university-api/internal/utils/request"
	"github.com/aanand-mishra/university-api/internal/utils/response"
)

// DetailsGetter is satisfied by *gateway.Orchestrator.
type DetailsGetter interface {
	GetStudentDetails(ctx context.Context, studentID int) (types.StudentDetails, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// StudentDetails handles GET /api/gateway/students/{studentId}
//
// Success response (200 OK):
//
//	{ "id": 1, "firstName": "John", ..., "courses": [
//	    { "id": 20, "title": "Computer Science", "enrollmentDate": "2024-01-10",
//	      "type": { "id": 1, "name": "Lecture" },
//	      "exams": [ { "id": 300, "examDate": "2024-02-15",
//	                   "subject": "Midterm Exam", "courseId": 20 } ] } ] }
//
// When the exams service fails, each course carries "exams": [] and the
// status is still 200.
//
// Error responses:
//
//	400 Bad Request  — id is not a positive integer
//	4xx / 5xx        — the students service's own status, passed through
//	502 Bad Gateway  — the students service could not be reached or decoded
//
// ─────────────────────────────────────────────────────────────────────────────
func StudentDetails(details DetailsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathInt(r, "studentId")
		if err != nil {
			response.WriteBadRequest(w, err)
			return
		}
		requestID := middleware.RequestIDFromContext(r.Context())
		slog.Info("getting student details",
			slog.Int("student_id", id),
			slog.String("request_id", requestID))

		student, err := details.GetStudentDetails(r.Context(), id)
		if errors.Is(err, context.Canceled) {
			// The client went away; nobody is left to answer.
			slog.Info("student details request cancelled",
				slog.Int("student_id", id),
				slog.String("request_id", requestID))
			return
		}
		if err != nil {
			status := upstream.StatusCode(err)
			if status == 0 {
				status = http.StatusBadGateway
			}
			slog.Error("error getting student details",
				slog.Int("student_id", id),
				slog.Int("status", status),
				slog.String("error", err.Error()),
				slog.String("request_id", requestID))
			response.WriteJSON(w, status, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// Breakers handles GET /api/gateway/breakers: name, state and window counts
// of every breaker.
func Breakers(registry *breaker.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, registry.Snapshots())
	}
}
