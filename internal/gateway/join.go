package gateway

import "github.com/aanand-mishra/university-api/internal/types"

// join returns a copy of courses in which each course's Exams holds exactly
// the exams whose CourseID matches, in the order they appear in exams.
// Courses without a match get an empty, non-nil list. Neither argument is
// modified, so joining a result again with the same exams yields the same
// result.
func join(courses []types.CourseDetails, exams []types.Exam) []types.CourseDetails {
	byCourse := make(map[int][]types.Exam, len(courses))
	for _, ex := range exams {
		byCourse[ex.CourseID] = append(byCourse[ex.CourseID], ex)
	}

	out := make([]types.CourseDetails, len(courses))
	for i, c := range courses {
		matched := byCourse[c.ID]
		c.Exams = make([]types.Exam, len(matched))
		copy(c.Exams, matched)
		out[i] = c
	}
	return out
}
