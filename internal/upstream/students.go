package upstream

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/university-api/internal/types"
)

// StudentClient calls GET /students/{studentId} on the students service.
type StudentClient struct {
	client
}

var _ Fetcher[int, types.StudentDetails] = (*StudentClient)(nil)

func NewStudentClient(baseURL string, httpClient *http.Client) *StudentClient {
	return &StudentClient{client: newClient("students", baseURL, httpClient)}
}

// Fetch returns the student with its courses. Course exam lists are left nil.
func (c *StudentClient) Fetch(ctx context.Context, studentID int) (types.StudentDetails, error) {
	var details types.StudentDetails
	if err := c.getJSON(ctx, "/students/"+strconv.Itoa(studentID), nil, &details); err != nil {
		return types.StudentDetails{}, err
	}
	return details, nil
}
