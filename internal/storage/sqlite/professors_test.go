package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
)

func newProfessors(t *testing.T) *Professors {
	t.Helper()
	p, err := NewProfessors(filepath.Join(t.TempDir(), "professors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestProfessors_CreateSharesSpecialties(t *testing.T) {
	ctx := context.Background()
	p := newProfessors(t)

	ada, err := p.CreateProfessor(ctx, types.ProfessorRequest{
		FirstName: "Ada", LastName: "Lovelace", Department: "Mathematics",
		Specialties: []string{"Algebra", "Analysis", "Algebra"},
	})
	require.NoError(t, err)
	assert.Positive(t, ada.ID)
	require.Len(t, ada.Specialties, 2, "repeated names are linked once")

	alan, err := p.CreateProfessor(ctx, types.ProfessorRequest{
		FirstName: "Alan", LastName: "Turing", Department: "Computer Science",
		Specialties: []string{"Algebra"},
	})
	require.NoError(t, err)
	require.Len(t, alan.Specialties, 1)
	assert.Equal(t, ada.Specialties[0].ID, alan.Specialties[0].ID, "specialty row is reused")
}

func TestProfessors_Queries(t *testing.T) {
	ctx := context.Background()
	p := newProfessors(t)

	none, err := p.GetProfessors(ctx)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	ada, err := p.CreateProfessor(ctx, types.ProfessorRequest{
		FirstName: "Ada", LastName: "Lovelace", Department: "Mathematics",
		Specialties: []string{"Analysis", "Algebra"},
	})
	require.NoError(t, err)
	_, err = p.CreateProfessor(ctx, types.ProfessorRequest{
		FirstName: "Alan", LastName: "Turing", Department: "Computer Science",
		Specialties: []string{"Computability"},
	})
	require.NoError(t, err)

	all, err := p.GetProfessors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := p.GetProfessorByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", got.LastName)
	require.Len(t, got.Specialties, 2)
	assert.Equal(t, "Algebra", got.Specialties[0].Name, "specialties ordered by name")

	_, err = p.GetProfessorByID(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	maths, err := p.GetProfessorsByDepartment(ctx, "Mathematics")
	require.NoError(t, err)
	require.Len(t, maths, 1)
	assert.Equal(t, ada.ID, maths[0].ID)

	computability, err := p.GetProfessorsBySpecialty(ctx, "Computability")
	require.NoError(t, err)
	require.Len(t, computability, 1)
	assert.Equal(t, "Turing", computability[0].LastName)
	require.Len(t, computability[0].Specialties, 1)

	unknown, err := p.GetProfessorsBySpecialty(ctx, "Alchemy")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}
