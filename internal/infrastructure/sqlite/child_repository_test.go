package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/finder/internal/domain"
	"github.com/zjrosen/finder/internal/finder"
)

// setupTestRepo creates an in-memory DB and returns its repository.
// The DB is closed when the test completes.
func setupTestRepo(t *testing.T) domain.AbstractChildRepository {
	t.Helper()
	db, err := NewMemoryDB()
	require.NoError(t, err, "Failed to create test database")
	t.Cleanup(func() { db.Close() })
	return db.AbstractChildRepository()
}

func saveChild(t *testing.T, repo domain.AbstractChildRepository, parentID int64, name string, status domain.Status, created time.Time) *domain.AbstractChild {
	t.Helper()
	c := domain.ReconstituteAbstractChild(0, name+"-guid", parentID, name, status, created, created)
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func ids(children []*domain.AbstractChild) []int64 {
	out := make([]int64, len(children))
	for i, c := range children {
		out[i] = c.ID()
	}
	return out
}

func TestChildRepository_Save_Insert(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	child := domain.NewAbstractChild(3, "gear")
	require.Equal(t, int64(0), child.ID())

	require.NoError(t, repo.Save(ctx, child))
	require.Greater(t, child.ID(), int64(0), "Child should have ID assigned after insert")

	found, err := repo.FindByID(ctx, child.ID())
	require.NoError(t, err)
	require.Equal(t, child.GUID(), found.GUID())
	require.Equal(t, child.ParentID(), found.ParentID())
	require.Equal(t, child.Name(), found.Name())
	require.Equal(t, child.Status(), found.Status())
	require.WithinDuration(t, child.CreatedAt(), found.CreatedAt(), time.Second)
}

func TestChildRepository_Save_Update(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	child := domain.NewAbstractChild(1, "gear")
	require.NoError(t, repo.Save(ctx, child))
	id := child.ID()

	child.SetName("bolt")
	child.SetStatus(domain.StatusArchived)
	require.NoError(t, repo.Save(ctx, child))
	require.Equal(t, id, child.ID(), "Update must not change the ID")

	found, err := repo.FindByGUID(ctx, child.GUID())
	require.NoError(t, err)
	require.Equal(t, "bolt", found.Name())
	require.Equal(t, domain.StatusArchived, found.Status())
}

func TestChildRepository_Save_Invalid(t *testing.T) {
	repo := setupTestRepo(t)
	err := repo.Save(context.Background(), domain.NewAbstractChild(1, ""))
	require.ErrorIs(t, err, domain.ErrInvalidChild)
}

func TestChildRepository_Save_UpdateMissing(t *testing.T) {
	repo := setupTestRepo(t)
	ghost := domain.ReconstituteAbstractChild(99, "g", 1, "ghost", domain.StatusActive, time.Now(), time.Now())
	err := repo.Save(context.Background(), ghost)
	require.True(t, domain.IsNotFound(err))
}

func TestChildRepository_Save_DuplicateGUID(t *testing.T) {
	repo := setupTestRepo(t)
	now := time.Now()
	saveChild(t, repo, 1, "a", domain.StatusActive, now)

	dup := domain.ReconstituteAbstractChild(0, "a-guid", 2, "b", domain.StatusActive, now, now)
	require.Error(t, repo.Save(context.Background(), dup))
}

func TestChildRepository_Find_NotFound(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 42)
	var nf *domain.ChildNotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, int64(42), nf.ID)

	_, err = repo.FindByGUID(ctx, "missing")
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "missing", nf.GUID)
}

func TestChildRepository_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	c := saveChild(t, repo, 1, "a", domain.StatusActive, time.Now())

	require.NoError(t, repo.Delete(ctx, c.ID()))
	require.True(t, domain.IsNotFound(repo.Delete(ctx, c.ID())))

	_, err := repo.FindByID(ctx, c.ID())
	require.True(t, domain.IsNotFound(err))
}

func TestChildRepository_Resolve(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	a := saveChild(t, repo, 1, "alpha", domain.StatusActive, now.AddDate(0, 0, -10))
	b := saveChild(t, repo, 1, "beta", domain.StatusInactive, now)
	c := saveChild(t, repo, 2, "Alphabet", domain.StatusActive, now.AddDate(0, 0, -2))
	d := saveChild(t, repo, 2, "delta", domain.StatusArchived, now)

	tests := []struct {
		name  string
		input string
		want  []int64
	}{
		{"all", "all", []int64{a.ID(), b.ID(), c.ID(), d.ID()}},
		{"by parent", "parent_id = 1", []int64{a.ID(), b.ID()}},
		{"contains ignores case", "name ~ alpha", []int64{a.ID(), c.ID()}},
		{"status in", "status in (inactive, archived)", []int64{b.ID(), d.ID()}},
		{"not", "not status = active", []int64{b.ID(), d.ID()}},
		{"recent", "created >= -7d", []int64{b.ID(), c.ID(), d.ID()}},
		{"order by name", "parent_id = 2 or parent_id = 1 order by name desc", []int64{d.ID(), b.ID(), a.ID(), c.ID()}},
		{"order tiebreak", "order by parent_id desc", []int64{c.ID(), d.ID(), a.ID(), b.ID()}},
		{"none", "id = 0", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := finder.Parse(tt.input)
			require.NoError(t, err)
			filter := q.Filter
			if filter == nil {
				filter = finder.All()
			}

			got, err := repo.Resolve(ctx, filter, q.OrderBy)
			require.NoError(t, err)
			require.Equal(t, tt.want, ids(got))

			n, err := repo.Count(ctx, filter)
			require.NoError(t, err)
			require.Equal(t, len(tt.want), n)
		})
	}
}

func TestChildRepository_InvalidOperation(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Resolve(ctx, finder.Eq("colour", "red"), nil)
	require.ErrorContains(t, err, "invalid operation")

	_, err = repo.Resolve(ctx, nil, nil)
	require.Error(t, err)

	_, err = repo.Resolve(ctx, finder.All(), []finder.OrderTerm{{Attribute: "colour"}})
	require.ErrorContains(t, err, "ORDER BY")

	_, err = repo.Count(ctx, finder.Gt("status", "active"))
	require.Error(t, err)

	_, err = repo.DeleteAll(ctx, finder.Eq("name", 3))
	require.Error(t, err)
}

func TestChildRepository_DeleteAll(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	saveChild(t, repo, 1, "a", domain.StatusActive, now)
	saveChild(t, repo, 1, "b", domain.StatusArchived, now)
	keep := saveChild(t, repo, 2, "c", domain.StatusArchived, now)

	n, err := repo.DeleteAll(ctx, finder.And(finder.Eq("parent_id", 1)))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	left, err := repo.Resolve(ctx, finder.All(), nil)
	require.NoError(t, err)
	require.Equal(t, []int64{keep.ID()}, ids(left))

	n, err = repo.DeleteAll(ctx, finder.All())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestChildRepository_ResolvesList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	saveChild(t, repo, 5, "x", domain.StatusActive, now)
	saveChild(t, repo, 5, "y", domain.StatusActive, now)
	saveChild(t, repo, 6, "z", domain.StatusActive, now)

	l := domain.NewAbstractChildListForOperation(finder.Eq(domain.AttrParentID, 5))

	n, err := l.Count(ctx, repo)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.False(t, l.IsResolved())

	require.NoError(t, l.Resolve(ctx, repo))
	require.Equal(t, 2, l.Len())
}

func TestChildRepository_Close(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Close())
}

func TestAbstractChildModel_RoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	original := domain.ReconstituteAbstractChild(7, "guid-7", 3, "gear", domain.StatusInactive, now.Add(-time.Hour), now)

	model := toChildModel(original)
	require.Equal(t, int64(7), model.ID)
	require.Equal(t, "inactive", model.Status)
	require.Equal(t, now.Unix(), model.UpdatedAt)

	restored := model.toDomain()
	require.Equal(t, original.ID(), restored.ID())
	require.Equal(t, original.GUID(), restored.GUID())
	require.Equal(t, original.ParentID(), restored.ParentID())
	require.Equal(t, original.Name(), restored.Name())
	require.Equal(t, original.Status(), restored.Status())
	require.Equal(t, original.CreatedAt().Unix(), restored.CreatedAt().Unix())
	require.Equal(t, original.UpdatedAt().Unix(), restored.UpdatedAt().Unix())
}

func TestExplainResolve(t *testing.T) {
	query, params, err := ExplainResolve(finder.Eq(domain.AttrParentID, 3), []finder.OrderTerm{{Attribute: domain.AttrName}})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(query, "SELECT c.id, c.guid"))
	require.True(t, strings.HasSuffix(query, "FROM abstract_child c WHERE c.parent_id = ? ORDER BY c.name ASC, c.id ASC"), query)
	require.Equal(t, []any{int64(3)}, params)

	query, params, err = ExplainResolve(finder.All(), nil)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(query, "FROM abstract_child c ORDER BY c.id ASC"), query)
	require.Empty(t, params)

	_, _, err = ExplainResolve(finder.Eq("colour", "red"), nil)
	require.Error(t, err)
}
