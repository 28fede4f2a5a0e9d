package server

import (
	"net/http"

	"github.com/aanand-mishra/university-api/internal/breaker"
	"github.com/aanand-mishra/university-api/internal/http/handlers/course"
	"github.com/aanand-mishra/university-api/internal/http/handlers/exam"
	"github.com/aanand-mishra/university-api/internal/http/handlers/gateway"
	"github.com/aanand-mishra/university-api/internal/http/handlers/health"
	"github.com/aanand-mishra/university-api/internal/http/handlers/professor"
	"github.com/aanand-mishra/university-api/internal/http/handlers/student"
	"github.com/aanand-mishra/university-api/internal/storage"
)

// StudentsStore is everything the students service persists.
type StudentsStore interface {
	storage.StudentStorage
	storage.CourseStorage
}

// ExamsStore is everything the exams service persists.
type ExamsStore interface {
	storage.ExamStorage
	storage.EnrollmentStorage
}

// The handler functions are FACTORIES — they receive their dependencies and
// return the actual handler.

// StudentsRoutes is the route table of the students service.
//
//	POST   /students                                → create a student
//	GET    /students                                → list students
//	GET    /students/{studentId}                    → one student with courses
//	PUT    /students/{studentId}                    → update a student
//	DELETE /students/{studentId}                    → delete a student
//	GET    /courseTypes                             → course type catalogue
//	POST   /students/{studentId}/courses            → register a course
//	GET    /students/{studentId}/courses            → list a student's courses
//	GET    /students/{studentId}/courses/{courseId} → course with owner name
//	PUT    /students/{studentId}/courses/{courseId} → update a course
//	DELETE /students/{studentId}/courses/{courseId} → drop a course
//	GET    /health
func StudentsRoutes(store StudentsStore, checker *health.Checker) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("POST /students", student.New(store))
	router.HandleFunc("GET /students", student.GetList(store))
	router.HandleFunc("GET /students/{studentId}", student.GetByID(store))
	router.HandleFunc("PUT /students/{studentId}", student.Update(store))
	router.HandleFunc("DELETE /students/{studentId}", student.Delete(store))

	router.HandleFunc("GET /courseTypes", course.Types(store))
	router.HandleFunc("POST /students/{studentId}/courses", course.New(store))
	router.HandleFunc("GET /students/{studentId}/courses", course.GetList(store))
	router.HandleFunc("GET /students/{studentId}/courses/{courseId}", course.GetByID(store))
	router.HandleFunc("PUT /students/{studentId}/courses/{courseId}", course.Update(store))
	router.HandleFunc("DELETE /students/{studentId}/courses/{courseId}", course.Delete(store))

	router.HandleFunc("GET /health", checker.Handler())
	return router
}

// ExamsRoutes is the route table of the exams service.
//
//	GET    /courses/exams?courseId=1,2                            → exams of courses
//	POST   /courses/{courseId}/exams                              → schedule an exam
//	POST   /enrollments/students/{studentId}/courses/{courseId}   → enroll
//	GET    /enrollments/students/{studentId}                      → by student
//	GET    /enrollments/students/bulk?studentId=1,2               → by students
//	GET    /enrollments/courses/{courseId}                        → by course
//	DELETE /enrollments/{enrollmentId}                            → unenroll
//	GET    /health
func ExamsRoutes(store ExamsStore, checker *health.Checker) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /courses/exams", exam.GetByCourses(store))
	router.HandleFunc("POST /courses/{courseId}/exams", exam.New(store))

	router.HandleFunc("POST /enrollments/students/{studentId}/courses/{courseId}", exam.Enroll(store))
	router.HandleFunc("GET /enrollments/students/bulk", exam.Bulk(store))
	router.HandleFunc("GET /enrollments/students/{studentId}", exam.ByStudent(store))
	router.HandleFunc("GET /enrollments/courses/{courseId}", exam.ByCourse(store))
	router.HandleFunc("DELETE /enrollments/{enrollmentId}", exam.Unenroll(store))

	router.HandleFunc("GET /health", checker.Handler())
	return router
}

// ProfessorsRoutes is the route table of the professors service.
//
//	POST /professors
//	GET  /professors
//	GET  /professors/{professorId}
//	GET  /professors/department/{department}
//	GET  /professors/specialty/{name}
//	GET  /health
func ProfessorsRoutes(store storage.ProfessorStorage, checker *health.Checker) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("POST /professors", professor.New(store))
	router.HandleFunc("GET /professors", professor.GetList(store))
	router.HandleFunc("GET /professors/{professorId}", professor.GetByID(store))
	router.HandleFunc("GET /professors/department/{department}", professor.ByDepartment(store))
	router.HandleFunc("GET /professors/specialty/{name}", professor.BySpecialty(store))

	router.HandleFunc("GET /health", checker.Handler())
	return router
}

// GatewayRoutes is the route table of the gateway.
//
//	GET /api/gateway/students/{studentId} → student enriched with exams
//	GET /api/gateway/breakers             → circuit breaker states
//	GET /health
func GatewayRoutes(details gateway.DetailsGetter, breakers *breaker.Registry, checker *health.Checker) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /api/gateway/students/{studentId}", gateway.StudentDetails(details))
	router.HandleFunc("GET /api/gateway/breakers", gateway.Breakers(breakers))

	router.HandleFunc("GET /health", checker.Handler())
	return router
}
