package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/university-api/internal/logger"
	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
)

// fakeStore counts how often each read reaches storage.
type fakeStore struct {
	mu    sync.Mutex
	profs []types.Professor
	reads map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{reads: make(map[string]int)}
}

func (f *fakeStore) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[name]++
}

func (f *fakeStore) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[name]
}

func (f *fakeStore) CreateProfessor(_ context.Context, req types.ProfessorRequest) (types.Professor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prof := types.Professor{
		ID:          len(f.profs) + 1,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Department:  req.Department,
		Specialties: make([]types.Specialty, 0),
	}
	f.profs = append(f.profs, prof)
	return prof, nil
}

func (f *fakeStore) GetProfessors(context.Context) ([]types.Professor, error) {
	f.hit("all")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(make([]types.Professor, 0, len(f.profs)), f.profs...), nil
}

func (f *fakeStore) GetProfessorByID(_ context.Context, id int) (types.Professor, error) {
	f.hit("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profs {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Professor{}, fmt.Errorf("professor %d: %w", id, storage.ErrNotFound)
}

func (f *fakeStore) GetProfessorsByDepartment(_ context.Context, department string) ([]types.Professor, error) {
	f.hit("department")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Professor, 0)
	for _, p := range f.profs {
		if p.Department == department {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProfessorsBySpecialty(context.Context, string) ([]types.Professor, error) {
	f.hit("specialty")
	return make([]types.Professor, 0), nil
}

func setup(t *testing.T) (*Professors, *fakeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newFakeStore()
	return NewProfessors(store, client, time.Minute, logger.Discard()), store, mr
}

var ada = types.ProfessorRequest{FirstName: "Ada", LastName: "Lovelace", Department: "Mathematics"}

func TestProfessors_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cache, store, mr := setup(t)

	_, err := cache.CreateProfessor(ctx, ada)
	require.NoError(t, err)

	first, err := cache.GetProfessors(ctx)
	require.NoError(t, err)
	second, err := cache.GetProfessors(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.count("all"), "second read is served from Redis")
	assert.True(t, mr.Exists(keyAll))

	ttl := mr.TTL(keyAll)
	assert.Equal(t, time.Minute, ttl)
}

func TestProfessors_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	cache, store, mr := setup(t)

	_, err := cache.GetProfessorsByDepartment(ctx, "Mathematics")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.GetProfessorsByDepartment(ctx, "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, 2, store.count("department"))
}

func TestProfessors_CreateInvalidates(t *testing.T) {
	ctx := context.Background()
	cache, store, mr := setup(t)

	empty, err := cache.GetProfessors(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	_, err = cache.GetProfessorsBySpecialty(ctx, "Algebra")
	require.NoError(t, err)

	_, err = cache.CreateProfessor(ctx, ada)
	require.NoError(t, err)
	assert.Empty(t, mr.Keys(), "every professors key is dropped")

	all, err := cache.GetProfessors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 2, store.count("all"))
}

func TestProfessors_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	cache, store, mr := setup(t)

	_, err := cache.GetProfessorByID(ctx, 7)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, mr.Exists(fmt.Sprintf(keyID, 7)))

	_, err = cache.GetProfessorByID(ctx, 7)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 2, store.count("id"))
}

func TestProfessors_RedisDownFallsBackToStorage(t *testing.T) {
	ctx := context.Background()
	cache, store, mr := setup(t)

	_, err := cache.CreateProfessor(ctx, ada)
	require.NoError(t, err)

	mr.Close()

	all, err := cache.GetProfessors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1, store.count("all"))

	_, err = cache.CreateProfessor(ctx, ada)
	assert.NoError(t, err, "invalidation failure does not fail the write")

	assert.Error(t, cache.Ping(ctx))
}

func TestProfessors_UnreadableEntryIsReloaded(t *testing.T) {
	ctx := context.Background()
	cache, store, mr := setup(t)

	require.NoError(t, mr.Set(keyAll, "not json"))

	all, err := cache.GetProfessors(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Equal(t, 1, store.count("all"))
}
