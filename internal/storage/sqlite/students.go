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

// studentsSchema creates the students service's tables and seeds the
// course types. INSERT OR IGNORE keeps the seed idempotent.
const studentsSchema = `
CREATE TABLE IF NOT EXISTS students (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	address    TEXT NOT NULL,
	city       TEXT NOT NULL,
	telephone  TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS course_types (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

INSERT OR IGNORE INTO course_types (name) VALUES
	('Lecture'), ('Laboratory'), ('Seminar'), ('Online');

CREATE TABLE IF NOT EXISTS courses (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	title           TEXT    NOT NULL,
	credits         INTEGER NOT NULL,
	enrollment_date TEXT    NOT NULL,
	type_id         INTEGER NOT NULL REFERENCES course_types(id),
	student_id      INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_courses_student ON courses(student_id);
`

const courseColumns = `
	c.id, c.title, c.credits, c.enrollment_date, t.id, t.name, c.student_id
	FROM courses c JOIN course_types t ON t.id = c.type_id`

// Students implements storage.StudentStorage and storage.CourseStorage.
type Students struct {
	db
	now func() time.Time
}

// Compile-time checks.
var (
	_ storage.StudentStorage = (*Students)(nil)
	_ storage.CourseStorage  = (*Students)(nil)
	_ storage.Pinger         = (*Students)(nil)
)

// NewStudents opens the students database at path.
func NewStudents(path string) (*Students, error) {
	d, err := open(path, studentsSchema)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewStudents: %w", err)
	}
	return &Students{db: d, now: time.Now}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

// CreateStudent inserts a student and returns the id SQLite assigned.
func (s *Students) CreateStudent(ctx context.Context, st types.Student) (int, error) {
	// Prepare compiles the SQL once; the ? placeholders are filled by the
	// driver, which protects against SQL injection.
	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO students (first_name, last_name, address, city, telephone, email, department)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		st.FirstName, st.LastName, st.Address, st.City, st.Telephone, st.Email, st.Department)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return int(id), nil
}

// GetStudentByID returns one student together with its courses.
func (s *Students) GetStudentByID(ctx context.Context, id int) (types.Student, error) {
	var st types.Student
	err := s.Db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, address, city, telephone, email, department
		FROM students WHERE id = ?`, id).
		Scan(&st.ID, &st.FirstName, &st.LastName, &st.Address, &st.City, &st.Telephone, &st.Email, &st.Department)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("GetStudentByID: student %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	st.Courses, err = s.GetCoursesByStudent(ctx, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}

	return st, nil
}

// GetStudents returns every student with its courses, using one query for
// the students and one for all courses.
func (s *Students) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx, `
		SELECT id, first_name, last_name, address, city, telephone, email, department
		FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Initialise as empty slice (not nil) so JSON encodes as [] not null.
	students := make([]types.Student, 0)
	index := make(map[int]int)
	for rows.Next() {
		var st types.Student
		if err := rows.Scan(&st.ID, &st.FirstName, &st.LastName, &st.Address, &st.City, &st.Telephone, &st.Email, &st.Department); err != nil {
			return nil, fmt.Errorf("GetStudents: scan: %w", err)
		}
		st.Courses = make([]types.Course, 0)
		index[st.ID] = len(students)
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows: %w", err)
	}

	courses, err := s.queryCourses(ctx, `SELECT`+courseColumns+` ORDER BY c.student_id, c.id`)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}
	for _, c := range courses {
		if i, ok := index[c.StudentID]; ok {
			students[i].Courses = append(students[i].Courses, c)
		}
	}

	return students, nil
}

// UpdateStudentByID overwrites the profile fields and returns the stored row.
func (s *Students) UpdateStudentByID(ctx context.Context, id int, st types.Student) (types.Student, error) {
	result, err := s.Db.ExecContext(ctx, `
		UPDATE students
		SET first_name = ?, last_name = ?, address = ?, city = ?, telephone = ?, email = ?, department = ?
		WHERE id = ?`,
		st.FirstName, st.LastName, st.Address, st.City, st.Telephone, st.Email, st.Department, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}
	if err := expectRow(result); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: student %d: %w", id, err)
	}

	return s.GetStudentByID(ctx, id)
}

// DeleteStudentByID removes a student. Its courses go with it through
// ON DELETE CASCADE.
func (s *Students) DeleteStudentByID(ctx context.Context, id int) error {
	result, err := s.Db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}
	if err := expectRow(result); err != nil {
		return fmt.Errorf("DeleteStudentByID: student %d: %w", id, err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

// GetCourseTypes returns every course type ordered by name.
func (s *Students) GetCourseTypes(ctx context.Context) ([]types.CourseType, error) {
	rows, err := s.Db.QueryContext(ctx, `SELECT id, name FROM course_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("GetCourseTypes: query: %w", err)
	}
	defer rows.Close()

	courseTypes := make([]types.CourseType, 0)
	for rows.Next() {
		var ct types.CourseType
		if err := rows.Scan(&ct.ID, &ct.Name); err != nil {
			return nil, fmt.Errorf("GetCourseTypes: scan: %w", err)
		}
		courseTypes = append(courseTypes, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetCourseTypes: rows: %w", err)
	}

	return courseTypes, nil
}

// CreateCourse registers a course for a student. The limit check and the
// insert share one write transaction, so two concurrent requests cannot both
// take the seventh slot.
func (s *Students) CreateCourse(ctx context.Context, studentID int, req types.CourseRequest) (types.Course, error) {
	course := types.Course{
		Title:          req.Title,
		Credits:        req.Credits,
		EnrollmentDate: req.EnrollmentDate,
		StudentID:      studentID,
	}
	if course.EnrollmentDate == "" {
		course.EnrollmentDate = s.now().Format(dateLayout)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := studentExists(ctx, tx, studentID); err != nil {
			return err
		}

		ct, err := courseType(ctx, tx, req.TypeID)
		if err != nil {
			return err
		}
		course.Type = ct

		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM courses WHERE student_id = ?`, studentID).Scan(&count); err != nil {
			return fmt.Errorf("count courses: %w", err)
		}
		if count >= storage.MaxCoursesPerStudent {
			return storage.ErrCourseLimit
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO courses (title, credits, enrollment_date, type_id, student_id)
			VALUES (?, ?, ?, ?, ?)`,
			course.Title, course.Credits, course.EnrollmentDate, ct.ID, studentID)
		if err != nil {
			return fmt.Errorf("insert course: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		course.ID = int(id)
		return nil
	})
	if err != nil {
		return types.Course{}, fmt.Errorf("CreateCourse: %w", err)
	}

	return course, nil
}

// GetCoursesByStudent returns a student's courses ordered by id.
func (s *Students) GetCoursesByStudent(ctx context.Context, studentID int) ([]types.Course, error) {
	courses, err := s.queryCourses(ctx,
		`SELECT`+courseColumns+` WHERE c.student_id = ? ORDER BY c.id`, studentID)
	if err != nil {
		return nil, fmt.Errorf("GetCoursesByStudent: %w", err)
	}
	return courses, nil
}

// GetCourseInfo returns a course with the full name of its owner.
func (s *Students) GetCourseInfo(ctx context.Context, studentID, courseID int) (types.CourseInfo, error) {
	var (
		info        types.CourseInfo
		first, last string
	)
	err := s.Db.QueryRowContext(ctx, `
		SELECT c.id, c.title, c.credits, t.id, t.name, s.first_name, s.last_name
		FROM courses c
		JOIN course_types t ON t.id = c.type_id
		JOIN students s ON s.id = c.student_id
		WHERE c.id = ? AND c.student_id = ?`, courseID, studentID).
		Scan(&info.ID, &info.Title, &info.Credits, &info.Type.ID, &info.Type.Name, &first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CourseInfo{}, fmt.Errorf("GetCourseInfo: course %d of student %d: %w", courseID, studentID, storage.ErrNotFound)
	}
	if err != nil {
		return types.CourseInfo{}, fmt.Errorf("GetCourseInfo: scan: %w", err)
	}

	info.Student = first + " " + last
	return info, nil
}

// UpdateCourse replaces title, credits and type of a student's course. The
// enrollment date is kept unless the request carries a new one.
func (s *Students) UpdateCourse(ctx context.Context, studentID, courseID int, req types.CourseRequest) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := courseType(ctx, tx, req.TypeID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE courses
			SET title = ?, credits = ?, type_id = ?,
			    enrollment_date = COALESCE(NULLIF(?, ''), enrollment_date)
			WHERE id = ? AND student_id = ?`,
			req.Title, req.Credits, req.TypeID, req.EnrollmentDate, courseID, studentID)
		if err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		return expectRow(result)
	})
	if err != nil {
		return fmt.Errorf("UpdateCourse: course %d of student %d: %w", courseID, studentID, err)
	}
	return nil
}

// DeleteCourse removes a student's course.
func (s *Students) DeleteCourse(ctx context.Context, studentID, courseID int) error {
	result, err := s.Db.ExecContext(ctx,
		`DELETE FROM courses WHERE id = ? AND student_id = ?`, courseID, studentID)
	if err != nil {
		return fmt.Errorf("DeleteCourse: exec: %w", err)
	}
	if err := expectRow(result); err != nil {
		return fmt.Errorf("DeleteCourse: course %d of student %d: %w", courseID, studentID, err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func (s *Students) queryCourses(ctx context.Context, query string, args ...any) ([]types.Course, error) {
	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		var c types.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Credits, &c.EnrollmentDate, &c.Type.ID, &c.Type.Name, &c.StudentID); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("course rows: %w", err)
	}

	return courses, nil
}

func studentExists(ctx context.Context, tx *sql.Tx, id int) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup student: %w", err)
	}
	return nil
}

func courseType(ctx context.Context, tx *sql.Tx, id int) (types.CourseType, error) {
	ct := types.CourseType{ID: id}
	err := tx.QueryRowContext(ctx, `SELECT name FROM course_types WHERE id = ?`, id).Scan(&ct.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CourseType{}, fmt.Errorf("course type %d: %w", id, storage.ErrUnknownCourseType)
	}
	if err != nil {
		return types.CourseType{}, fmt.Errorf("lookup course type: %w", err)
	}
	return ct, nil
}

// expectRow turns "zero rows affected" into storage.ErrNotFound.
func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
