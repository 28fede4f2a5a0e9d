// Package gateway assembles a student's details from the students service
// and the exams service.
//
// The students call is fatal: its error reaches the caller untouched. The
// exams call is optional: it runs behind a circuit breaker, and any failure
// (transport, status, decoding, open breaker) leaves every course with an
// empty exam list instead of failing the request.
package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aanand-mishra/university-api/internal/breaker"
	"github.com/aanand-mishra/university-api/internal/http/middleware"
	"github.com/aanand-mishra/university-api/internal/types"
	"github.com/aanand-mishra/university-api/internal/upstream"
)

// BreakerName keys the breaker guarding the exams call.
const BreakerName = "getStudentDetails"

// Orchestrator runs the student lookup, the exams lookup and the join.
type Orchestrator struct {
	students upstream.Fetcher[int, types.StudentDetails]
	exams    upstream.Fetcher[[]int, types.Exams]
	breaker  *breaker.Breaker
	log      *slog.Logger
}

// NewOrchestrator takes the breaker named BreakerName from breakers.
func NewOrchestrator(
	students upstream.Fetcher[int, types.StudentDetails],
	exams upstream.Fetcher[[]int, types.Exams],
	breakers *breaker.Registry,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		students: students,
		exams:    exams,
		breaker:  breakers.Get(BreakerName),
		log:      log,
	}
}

// GetStudentDetails returns the student enriched with the exams of each of
// its courses.
//
// The exams call is never issued before the student call succeeds, and is
// skipped entirely for a student without courses. If ctx is cancelled the
// partially built result is discarded and ctx.Err() is returned.
func (o *Orchestrator) GetStudentDetails(ctx context.Context, studentID int) (types.StudentDetails, error) {
	student, err := o.students.Fetch(ctx, studentID)
	if err != nil {
		return types.StudentDetails{}, err
	}

	details := snapshot(student)

	courseIDs := details.CourseIDs()
	if len(courseIDs) == 0 {
		return details, nil
	}

	exams := breaker.Run(ctx, o.breaker,
		func(ctx context.Context) (types.Exams, error) {
			return o.exams.Fetch(ctx, courseIDs)
		},
		func(err error) types.Exams {
			level := slog.LevelWarn
			if errors.Is(err, breaker.ErrOpen) || errors.Is(err, breaker.ErrTrialInFlight) {
				level = slog.LevelDebug
			}
			o.log.Log(ctx, level, "exams unavailable, returning student without exams",
				slog.Int("student_id", studentID),
				slog.String("breaker_state", o.breaker.State().String()),
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.RequestIDFromContext(ctx)),
			)
			return types.Exams{Items: make([]types.Exam, 0)}
		},
	)

	if err := ctx.Err(); err != nil {
		return types.StudentDetails{}, err
	}

	details.Courses = join(details.Courses, exams.Items)
	return details, nil
}

// snapshot copies the upstream student into a response the orchestrator
// owns, with every exam list empty.
func snapshot(s types.StudentDetails) types.StudentDetails {
	out := s
	out.Courses = make([]types.CourseDetails, len(s.Courses))
	for i, c := range s.Courses {
		c.Exams = make([]types.Exam, 0)
		out.Courses[i] = c
	}
	return out
}
