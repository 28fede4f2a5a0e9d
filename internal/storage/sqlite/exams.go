package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
)

// examsSchema creates the exams service's tables. Courses live in the
// students service, so course_id and student_id are plain integers here.
const examsSchema = `
CREATE TABLE IF NOT EXISTS exams (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	exam_date TEXT    NOT NULL,
	subject   TEXT    NOT NULL,
	course_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exams_course ON exams(course_id);

CREATE TABLE IF NOT EXISTS enrollments (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	enrollment_date TEXT    NOT NULL,
	student_id      INTEGER NOT NULL,
	course_id       INTEGER NOT NULL,
	UNIQUE (student_id, course_id)
);

CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments(course_id);
`

// Exams implements storage.ExamStorage and storage.EnrollmentStorage.
type Exams struct {
	db
	now func() time.Time
}

var (
	_ storage.ExamStorage       = (*Exams)(nil)
	_ storage.EnrollmentStorage = (*Exams)(nil)
	_ storage.Pinger            = (*Exams)(nil)
)

// NewExams opens the exams database at path.
func NewExams(path string) (*Exams, error) {
	d, err := open(path, examsSchema)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewExams: %w", err)
	}
	return &Exams{db: d, now: time.Now}, nil
}

// CreateExam schedules an exam for courseID.
func (e *Exams) CreateExam(ctx context.Context, courseID int, req types.ExamRequest) (types.Exam, error) {
	stmt, err := e.Db.PrepareContext(ctx,
		`INSERT INTO exams (exam_date, subject, course_id) VALUES (?, ?, ?)`)
	if err != nil {
		return types.Exam{}, fmt.Errorf("CreateExam: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, req.ExamDate, req.Subject, courseID)
	if err != nil {
		return types.Exam{}, fmt.Errorf("CreateExam: exec: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.Exam{}, fmt.Errorf("CreateExam: last insert id: %w", err)
	}

	return types.Exam{
		ID:       int(id),
		ExamDate: req.ExamDate,
		Subject:  req.Subject,
		CourseID: courseID,
	}, nil
}

// GetExamsByCourseIDs returns the exams of every listed course in a single
// query. Unknown course ids simply contribute nothing.
func (e *Exams) GetExamsByCourseIDs(ctx context.Context, courseIDs []int) ([]types.Exam, error) {
	exams := make([]types.Exam, 0)
	if len(courseIDs) == 0 {
		return exams, nil
	}

	placeholders, args := inClause(courseIDs)
	rows, err := e.Db.QueryContext(ctx, `
		SELECT id, exam_date, subject, course_id
		FROM exams WHERE course_id IN (`+placeholders+`)
		ORDER BY exam_date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("GetExamsByCourseIDs: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ex types.Exam
		if err := rows.Scan(&ex.ID, &ex.ExamDate, &ex.Subject, &ex.CourseID); err != nil {
			return nil, fmt.Errorf("GetExamsByCourseIDs: scan: %w", err)
		}
		exams = append(exams, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetExamsByCourseIDs: rows: %w", err)
	}

	return exams, nil
}

// CreateEnrollment enrolls a student in a course. The duplicate check, the
// limit check and the insert run in one write transaction.
func (e *Exams) CreateEnrollment(ctx context.Context, studentID, courseID int) (types.Enrollment, error) {
	enrollment := types.Enrollment{
		EnrollmentDate: e.now().Format(dateLayout),
		StudentID:      studentID,
		CourseID:       courseID,
	}

	err := e.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM enrollments WHERE student_id = ? AND course_id = ?`,
			studentID, courseID).Scan(&one)
		switch {
		case err == nil:
			return storage.ErrDuplicateEnrollment
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("lookup enrollment: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM enrollments WHERE student_id = ?`, studentID).Scan(&count); err != nil {
			return fmt.Errorf("count enrollments: %w", err)
		}
		if count >= storage.MaxCoursesPerStudent {
			return storage.ErrCourseLimit
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO enrollments (enrollment_date, student_id, course_id)
			VALUES (?, ?, ?)`,
			enrollment.EnrollmentDate, studentID, courseID)
		if err != nil {
			return fmt.Errorf("insert enrollment: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		enrollment.ID = int(id)
		return nil
	})
	if err != nil {
		return types.Enrollment{}, fmt.Errorf("CreateEnrollment: student %d course %d: %w", studentID, courseID, err)
	}

	return enrollment, nil
}

// GetEnrollmentsByStudent returns the enrollments of one student.
func (e *Exams) GetEnrollmentsByStudent(ctx context.Context, studentID int) ([]types.Enrollment, error) {
	enrollments, err := e.queryEnrollments(ctx, `WHERE student_id = ?`, studentID)
	if err != nil {
		return nil, fmt.Errorf("GetEnrollmentsByStudent: %w", err)
	}
	return enrollments, nil
}

// GetEnrollmentsByCourse returns the enrollments of one course.
func (e *Exams) GetEnrollmentsByCourse(ctx context.Context, courseID int) ([]types.Enrollment, error) {
	enrollments, err := e.queryEnrollments(ctx, `WHERE course_id = ?`, courseID)
	if err != nil {
		return nil, fmt.Errorf("GetEnrollmentsByCourse: %w", err)
	}
	return enrollments, nil
}

// GetEnrollmentsByStudents returns the enrollments of every listed student.
func (e *Exams) GetEnrollmentsByStudents(ctx context.Context, studentIDs []int) ([]types.Enrollment, error) {
	if len(studentIDs) == 0 {
		return make([]types.Enrollment, 0), nil
	}

	placeholders, args := inClause(studentIDs)
	enrollments, err := e.queryEnrollments(ctx, `WHERE student_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("GetEnrollmentsByStudents: %w", err)
	}
	return enrollments, nil
}

// DeleteEnrollment removes an enrollment by id.
func (e *Exams) DeleteEnrollment(ctx context.Context, id int) error {
	result, err := e.Db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("DeleteEnrollment: exec: %w", err)
	}
	if err := expectRow(result); err != nil {
		return fmt.Errorf("DeleteEnrollment: enrollment %d: %w", id, err)
	}
	return nil
}

func (e *Exams) queryEnrollments(ctx context.Context, where string, args ...any) ([]types.Enrollment, error) {
	rows, err := e.Db.QueryContext(ctx, `
		SELECT id, enrollment_date, student_id, course_id
		FROM enrollments `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]types.Enrollment, 0)
	for rows.Next() {
		var en types.Enrollment
		if err := rows.Scan(&en.ID, &en.EnrollmentDate, &en.StudentID, &en.CourseID); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, en)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("enrollment rows: %w", err)
	}

	return enrollments, nil
}
