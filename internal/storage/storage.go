// Package storage defines the storage contracts the services depend on.
//
// Handlers (HTTP layer) should not know or care which database they are
// talking to. By depending only on these interfaces:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero handler changes.
//
//   - Writing tests = pass a fake that satisfies the interface.
//
// Every method takes a context so a disconnected client cancels its query.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/university-api/internal/types"
)

// MaxCoursesPerStudent caps both course registrations in the students
// service and enrollments in the exams service.
const MaxCoursesPerStudent = 7

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCourseLimit is returned when a student already holds
	// MaxCoursesPerStudent courses or enrollments.
	ErrCourseLimit = errors.New("student cannot register for more than 7 courses per semester")
	// ErrDuplicateEnrollment is returned when a student is already enrolled
	// in the course.
	ErrDuplicateEnrollment = errors.New("student is already enrolled in this course")
	// ErrUnknownCourseType is returned when a course references a missing type.
	ErrUnknownCourseType = errors.New("unknown course type")
)

// StudentStorage is the students service's contract for students.
type StudentStorage interface {
	// CreateStudent inserts a new student and returns the generated id.
	CreateStudent(ctx context.Context, student types.Student) (int, error)

	// GetStudentByID returns the student with its courses, or ErrNotFound.
	GetStudentByID(ctx context.Context, id int) (types.Student, error)

	// GetStudents returns every student with its courses.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID replaces the profile fields of a student and returns
	// the stored record, or ErrNotFound.
	UpdateStudentByID(ctx context.Context, id int, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student and its courses, or ErrNotFound.
	DeleteStudentByID(ctx context.Context, id int) error
}

// CourseStorage is the students service's contract for courses.
type CourseStorage interface {
	// GetCourseTypes returns every course type ordered by name.
	GetCourseTypes(ctx context.Context) ([]types.CourseType, error)

	// CreateCourse registers a course for a student. It fails with
	// ErrNotFound for an unknown student, ErrUnknownCourseType for an unknown
	// type and ErrCourseLimit when the student is full.
	CreateCourse(ctx context.Context, studentID int, req types.CourseRequest) (types.Course, error)

	// GetCoursesByStudent returns the courses of one student.
	GetCoursesByStudent(ctx context.Context, studentID int) ([]types.Course, error)

	// GetCourseInfo returns a course with the name of its owner.
	GetCourseInfo(ctx context.Context, studentID, courseID int) (types.CourseInfo, error)

	// UpdateCourse replaces the fields of a student's course.
	UpdateCourse(ctx context.Context, studentID, courseID int, req types.CourseRequest) error

	// DeleteCourse removes a student's course.
	DeleteCourse(ctx context.Context, studentID, courseID int) error
}

// ExamStorage is the exams service's contract for exams.
type ExamStorage interface {
	// CreateExam schedules an exam for a course.
	CreateExam(ctx context.Context, courseID int, req types.ExamRequest) (types.Exam, error)

	// GetExamsByCourseIDs returns the exams of every listed course.
	// An empty list yields an empty (non-nil) slice.
	GetExamsByCourseIDs(ctx context.Context, courseIDs []int) ([]types.Exam, error)
}

// EnrollmentStorage is the exams service's contract for enrollments.
type EnrollmentStorage interface {
	// CreateEnrollment enrolls a student. It fails with
	// ErrDuplicateEnrollment or ErrCourseLimit.
	CreateEnrollment(ctx context.Context, studentID, courseID int) (types.Enrollment, error)

	GetEnrollmentsByStudent(ctx context.Context, studentID int) ([]types.Enrollment, error)
	GetEnrollmentsByCourse(ctx context.Context, courseID int) ([]types.Enrollment, error)
	GetEnrollmentsByStudents(ctx context.Context, studentIDs []int) ([]types.Enrollment, error)

	// DeleteEnrollment removes an enrollment, or returns ErrNotFound.
	DeleteEnrollment(ctx context.Context, id int) error
}

// ProfessorStorage is the professors service's contract.
type ProfessorStorage interface {
	// CreateProfessor inserts a professor, creating unknown specialties.
	CreateProfessor(ctx context.Context, req types.ProfessorRequest) (types.Professor, error)

	GetProfessors(ctx context.Context) ([]types.Professor, error)
	GetProfessorByID(ctx context.Context, id int) (types.Professor, error)
	GetProfessorsByDepartment(ctx context.Context, department string) ([]types.Professor, error)
	GetProfessorsBySpecialty(ctx context.Context, specialty string) ([]types.Professor, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
