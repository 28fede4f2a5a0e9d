package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/university-api/internal/types"
)

func TestJoin(t *testing.T) {
	courses := []types.CourseDetails{
		{ID: 20, Title: "Computer Science"},
		{ID: 21, Title: "Algebra"},
		{ID: 22, Title: "History"},
	}
	exams := []types.Exam{
		{ID: 301, CourseID: 21, Subject: "Quiz"},
		{ID: 300, CourseID: 20, Subject: "Midterm Exam"},
		{ID: 999, CourseID: 77, Subject: "Unrelated"},
		{ID: 302, CourseID: 20, Subject: "Final Exam"},
	}

	got := join(courses, exams)

	require.Len(t, got, 3)
	assert.Equal(t, []types.Exam{exams[1], exams[3]}, got[0].Exams, "matching exams in input order")
	assert.Equal(t, []types.Exam{exams[0]}, got[1].Exams)
	assert.NotNil(t, got[2].Exams)
	assert.Empty(t, got[2].Exams)

	for i := range courses {
		assert.Equal(t, courses[i].ID, got[i].ID, "course order preserved")
		assert.Nil(t, courses[i].Exams, "input untouched")
	}
}

func TestJoin_Idempotent(t *testing.T) {
	courses := []types.CourseDetails{{ID: 20}, {ID: 21}}
	exams := []types.Exam{{ID: 300, CourseID: 20}, {ID: 301, CourseID: 21}}

	once := join(courses, exams)
	twice := join(once, exams)

	assert.Equal(t, once, twice)
}

func TestJoin_NoExams(t *testing.T) {
	got := join([]types.CourseDetails{{ID: 20}}, nil)

	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Exams)
	assert.Empty(t, got[0].Exams)
}
