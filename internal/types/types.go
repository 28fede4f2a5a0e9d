// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, upstream clients and the gateway can all import
// types without depending on each other.
//
// Struct tags serve two purposes:
//
//  1. json:"..."     — the wire names shared by every service.
//  2. validate:"..." — rules checked by go-playground/validator on
//     incoming request bodies.
package types

// ─────────────────────────────────────────────────────────────────────────────
// Students service
// ─────────────────────────────────────────────────────────────────────────────

// Student is a row of the students table together with its courses.
// Courses is always a non-nil slice when returned by storage.
type Student struct {
	ID         int      `json:"id"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	Telephone  string   `json:"telephone"`
	Email      string   `json:"email,omitempty"`
	Department string   `json:"department,omitempty"`
	Courses    []Course `json:"courses"`
}

// StudentRequest is the body accepted by POST and PUT /students.
type StudentRequest struct {
	FirstName  string `json:"firstName"  validate:"required"`
	LastName   string `json:"lastName"   validate:"required"`
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"       validate:"required"`
	Telephone  string `json:"telephone"  validate:"required,numeric,max=12"`
	Email      string `json:"email"      validate:"omitempty,email"`
	Department string `json:"department"`
}

// Student converts the request into a Student without an id.
func (r StudentRequest) Student() Student {
	return Student{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Address:    r.Address,
		City:       r.City,
		Telephone:  r.Telephone,
		Email:      r.Email,
		Department: r.Department,
	}
}

// CourseType is a label such as "Lecture" or "Laboratory".
type CourseType struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Course is a course a student is registered for.
// EnrollmentDate is formatted as YYYY-MM-DD.
type Course struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Credits        int        `json:"credits"`
	EnrollmentDate string     `json:"enrollmentDate"`
	Type           CourseType `json:"type"`
	StudentID      int        `json:"-"`
}

// CourseRequest is the body accepted by POST and PUT on a student's courses.
type CourseRequest struct {
	Title          string `json:"title"          validate:"required,min=1"`
	Credits        int    `json:"credits"        validate:"required,min=1"`
	TypeID         int    `json:"typeId"         validate:"required,min=1"`
	EnrollmentDate string `json:"enrollmentDate" validate:"omitempty,datetime=2006-01-02"`
}

// CourseInfo is a course together with the full name of the student who owns it.
type CourseInfo struct {
	ID      int        `json:"id"`
	Title   string     `json:"title"`
	Student string     `json:"student"`
	Credits int        `json:"credits"`
	Type    CourseType `json:"type"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Exams service
// ─────────────────────────────────────────────────────────────────────────────

// Exam is a single scheduled exam for a course. ExamDate is YYYY-MM-DD.
type Exam struct {
	ID       int    `json:"id"`
	ExamDate string `json:"examDate"`
	Subject  string `json:"subject"`
	CourseID int    `json:"courseId"`
}

// Exams is the envelope returned by GET /courses/exams.
// Items carries no ordering guarantee relative to any course list.
type Exams struct {
	Items []Exam `json:"items"`
}

// ExamRequest is the body accepted by POST /courses/{courseId}/exams.
type ExamRequest struct {
	ExamDate string `json:"examDate" validate:"required,datetime=2006-01-02"`
	Subject  string `json:"subject"  validate:"required"`
}

// Enrollment links a student to a course inside the exams service.
type Enrollment struct {
	ID             int    `json:"id"`
	EnrollmentDate string `json:"enrollmentDate"`
	StudentID      int    `json:"studentId"`
	CourseID       int    `json:"courseId"`
}

// Enrollments is the envelope returned by the bulk enrollment lookup.
type Enrollments struct {
	Items []Enrollment `json:"items"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Professors service
// ─────────────────────────────────────────────────────────────────────────────

// Specialty is a teaching specialty shared between professors.
type Specialty struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Professor is a member of the teaching staff.
type Professor struct {
	ID          int         `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Department  string      `json:"department"`
	Specialties []Specialty `json:"specialties"`
}

// ProfessorRequest is the body accepted by POST /professors.
type ProfessorRequest struct {
	FirstName   string   `json:"firstName"   validate:"required"`
	LastName    string   `json:"lastName"    validate:"required"`
	Department  string   `json:"department"  validate:"required"`
	Specialties []string `json:"specialties" validate:"dive,required"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Gateway
// ─────────────────────────────────────────────────────────────────────────────

// StudentDetails is what the gateway returns: a student snapshot from the
// students service enriched with exams from the exams service.
type StudentDetails struct {
	ID        int             `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Address   string          `json:"address"`
	City      string          `json:"city"`
	Telephone string          `json:"telephone"`
	Courses   []CourseDetails `json:"courses"`
}

// CourseIDs returns the ids of the student's courses in order.
func (s StudentDetails) CourseIDs() []int {
	ids := make([]int, 0, len(s.Courses))
	for _, c := range s.Courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// CourseDetails is the gateway's view of a course. Exams is populated by the
// join step and is never nil in a gateway response.
type CourseDetails struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	EnrollmentDate string     `json:"enrollmentDate"`
	Type           CourseType `json:"type"`
	Exams          []Exam     `json:"exams"`
}
