package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/university-api/internal/http/middleware"
	"github.com/aanand-mishra/university-api/internal/types"
)

const studentJSON = `{
	"id": 1,
	"firstName": "John",
	"lastName": "Doe",
	"address": "123 Main St",
	"city": "Springfield",
	"telephone": "5551234567",
	"email": "john@example.com",
	"courses": [
		{"id": 20, "title": "Computer Science", "credits": 6, "enrollmentDate": "2024-01-10", "type": {"id": 1, "name": "Lecture"}}
	]
}`

func TestStudentClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students/1", r.URL.Path)
		assert.Equal(t, "req-42", r.Header.Get(middleware.HeaderRequestID))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(studentJSON))
	}))
	defer srv.Close()

	c := NewStudentClient(srv.URL+"/", NewHTTPClient(time.Second))
	ctx := middleware.WithRequestID(context.Background(), "req-42")

	got, err := c.Fetch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, "Springfield", got.City)
	require.Len(t, got.Courses, 1)
	assert.Equal(t, "Computer Science", got.Courses[0].Title)
	assert.Equal(t, "Lecture", got.Courses[0].Type.Name)
}

func TestStudentClient_NotFoundKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","error":"student 9 not found"}`))
	}))
	defer srv.Close()

	_, err := NewStudentClient(srv.URL, nil).Fetch(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Contains(t, err.Error(), "student 9 not found")
}

func TestStudentClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "one"`))
	}))
	defer srv.Close()

	_, err := NewStudentClient(srv.URL, nil).Fetch(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, StatusCode(err))
}

func TestExamClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses/exams", r.URL.Path)
		assert.Equal(t, "20,21", r.URL.Query().Get("courseId"))
		_, _ = w.Write([]byte(`{"items":[{"id":300,"examDate":"2024-02-15","subject":"Midterm Exam","courseId":20}]}`))
	}))
	defer srv.Close()

	got, err := NewExamClient(srv.URL, nil).Fetch(context.Background(), []int{20, 21})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, types.Exam{ID: 300, ExamDate: "2024-02-15", Subject: "Midterm Exam", CourseID: 20}, got.Items[0])
}

func TestExamClient_EmptyListMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	got, err := NewExamClient(srv.URL, nil).Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
	assert.Zero(t, calls.Load())
}

func TestExamClient_NullItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":null}`))
	}))
	defer srv.Close()

	got, err := NewExamClient(srv.URL, nil).Fetch(context.Background(), []int{1})
	require.NoError(t, err)
	assert.NotNil(t, got.Items)
}

func TestExamClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewExamClient(srv.URL, nil).Fetch(context.Background(), []int{1})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestExamClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewExamClient(addr, nil).Fetch(context.Background(), []int{1})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, StatusCode(err))
}

func TestExamClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewExamClient(srv.URL, NewHTTPClient(50*time.Millisecond)).Fetch(context.Background(), []int{1})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetcherFunc(t *testing.T) {
	boom := errors.New("boom")
	var f Fetcher[int, string] = FetcherFunc[int, string](func(_ context.Context, n int) (string, error) {
		if n < 0 {
			return "", boom
		}
		return "ok", nil
	})

	got, err := f.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = f.Fetch(context.Background(), -1)
	assert.ErrorIs(t, err, boom)
}
