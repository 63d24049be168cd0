package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jersey-bot/internal/models"
	"jersey-bot/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "jersey.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(" ")
	require.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jersey.db")
	first, err := Open(path)
	require.NoError(t, err)
	ctx := context.Background()
	want := time.Date(2030, time.May, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, first.SetVoteDeadline(ctx, want))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetDeadlines(ctx)
	require.NoError(t, err)
	assert.True(t, got.VoteDeadline.Equal(want), "seed must not overwrite an existing deadline row")
}

func TestDeadlinesSeededAndUpdatedInPlace(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	d, err := store.GetDeadlines(ctx)
	require.NoError(t, err)
	assert.True(t, d.VoteDeadline.After(time.Now().AddDate(0, 11, 0)))
	assert.True(t, d.PaymentDeadline.After(time.Now().AddDate(0, 11, 0)))

	vote := time.Date(2026, time.March, 1, 18, 30, 0, 0, time.UTC)
	pay := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetVoteDeadline(ctx, vote))
	require.NoError(t, store.SetPaymentDeadline(ctx, pay))

	d, err = store.GetDeadlines(ctx)
	require.NoError(t, err)
	assert.True(t, d.VoteDeadline.Equal(vote))
	assert.True(t, d.PaymentDeadline.Equal(pay))
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	_, err := store.GetUser(ctx, 100)
	require.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.EnsureUser(ctx, 100))
	require.NoError(t, store.EnsureUser(ctx, 100))

	u, err := store.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), u.ID)
	assert.False(t, u.HasVoted)
	assert.False(t, u.HasOrdered)
	assert.Nil(t, u.VoteChoice)
}

func TestCreateOrderFlipsFlagOnce(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	paid := time.Date(2026, time.January, 10, 10, 0, 0, 0, time.UTC)

	o, err := store.CreateOrder(ctx, models.Order{
		UserID:        7,
		FullName:      "Jane Doe",
		ShirtNumber:   7,
		ShirtName:     "JANE",
		Size:          models.SizeM,
		ReceiptHandle: "img123",
		PaymentTime:   paid,
	})
	require.NoError(t, err)
	assert.NotZero(t, o.ID)

	u, err := store.GetUser(ctx, 7)
	require.NoError(t, err)
	assert.True(t, u.HasOrdered)

	_, err = store.CreateOrder(ctx, models.Order{UserID: 7, FullName: "Again", ShirtName: "X", Size: models.SizeS, ReceiptHandle: "img", PaymentTime: paid})
	require.True(t, errors.Is(err, storage.ErrConflict))

	n, err := store.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a rejected second order must not leave a row behind")
}

func TestCreateOrderConcurrentSameUser(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dupes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateOrder(ctx, models.Order{UserID: 9, FullName: "Racer", ShirtName: "R", Size: models.SizeL, ReceiptHandle: "img"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, storage.ErrConflict):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, dupes)
}

func TestListOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)

	for i, uid := range []int64{1, 2, 3} {
		_, err := store.CreateOrder(ctx, models.Order{
			UserID: uid, FullName: "User", ShirtNumber: i, ShirtName: "U", Size: models.SizeXL,
			ReceiptHandle: "img", PaymentTime: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{orders[0].UserID, orders[1].UserID, orders[2].UserID})
	assert.Equal(t, models.SizeXL, orders[0].Size)
}

func TestRecordVoteOnce(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	d, err := store.CreateDesign(ctx, models.Design{Name: "Classic", ImageHandle: "img", IsActive: true})
	require.NoError(t, err)

	require.NoError(t, store.RecordVote(ctx, 5, d.ID))
	err = store.RecordVote(ctx, 5, d.ID)
	require.True(t, errors.Is(err, storage.ErrConflict))

	u, err := store.GetUser(ctx, 5)
	require.NoError(t, err)
	assert.True(t, u.HasVoted)
	require.NotNil(t, u.VoteChoice)
	assert.Equal(t, d.ID, *u.VoteChoice)
}

func TestListActiveDesignsOrdering(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	older, err := store.CreateDesign(ctx, models.Design{Name: "Older", ImageHandle: "a", IsActive: true, CreatedAt: base})
	require.NoError(t, err)
	newer, err := store.CreateDesign(ctx, models.Design{Name: "Newer", ImageHandle: "b", IsActive: true, CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	pinned, err := store.CreateDesign(ctx, models.Design{Name: "Last", ImageHandle: "c", IsActive: true, CreatedAt: base.Add(2 * time.Hour), DisplayOrder: 5})
	require.NoError(t, err)
	_, err = store.CreateDesign(ctx, models.Design{Name: "Hidden", ImageHandle: "d", IsActive: false, CreatedAt: base})
	require.NoError(t, err)

	designs, err := store.ListActiveDesigns(ctx)
	require.NoError(t, err)
	require.Len(t, designs, 3)
	assert.Equal(t, []int64{newer.ID, older.ID, pinned.ID}, []int64{designs[0].ID, designs[1].ID, designs[2].ID})
}

func TestUpdateDesignPartial(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	d, err := store.CreateDesign(ctx, models.Design{Name: "Stripes", Description: "blue", ImageHandle: "img1", IsActive: true})
	require.NoError(t, err)

	name := "Bold Stripes"
	require.NoError(t, store.UpdateDesign(ctx, d.ID, models.DesignPatch{Name: &name}))

	got, err := store.GetDesign(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bold Stripes", got.Name)
	assert.Equal(t, "blue", got.Description)
	assert.Equal(t, "img1", got.ImageHandle)
	assert.True(t, got.IsActive)

	err = store.UpdateDesign(ctx, 999, models.DesignPatch{Name: &name})
	require.True(t, errors.Is(err, storage.ErrNotFound))
	err = store.UpdateDesign(ctx, 999, models.DesignPatch{})
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestUpdateDesignEmptyPatchOnlyChecksExistence(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	d, err := store.CreateDesign(ctx, models.Design{Name: "Stripes", ImageHandle: "img1", IsActive: true, DisplayOrder: 2})
	require.NoError(t, err)

	patch := models.DesignPatch{}
	require.True(t, patch.Empty())
	require.NoError(t, store.UpdateDesign(ctx, d.ID, patch))

	got, err := store.GetDesign(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stripes", got.Name)
	assert.Equal(t, 2, got.DisplayOrder)
	assert.True(t, got.IsActive)
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	d, err := store.CreateDesign(ctx, models.Design{Name: "Gone", ImageHandle: "img", IsActive: true})
	require.NoError(t, err)

	inactive := false
	require.NoError(t, store.UpdateDesign(ctx, d.ID, models.DesignPatch{IsActive: &inactive}))
	require.NoError(t, store.UpdateDesign(ctx, d.ID, models.DesignPatch{IsActive: &inactive}))

	got, err := store.GetDesign(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	designs, err := store.ListActiveDesigns(ctx)
	require.NoError(t, err)
	assert.Empty(t, designs)
}

func TestVoteTallyCountsAndDangling(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	a, err := store.CreateDesign(ctx, models.Design{Name: "A", ImageHandle: "a", IsActive: true})
	require.NoError(t, err)
	b, err := store.CreateDesign(ctx, models.Design{Name: "B", ImageHandle: "b", IsActive: true})
	require.NoError(t, err)
	c, err := store.CreateDesign(ctx, models.Design{Name: "C", ImageHandle: "c", IsActive: true})
	require.NoError(t, err)

	require.NoError(t, store.RecordVote(ctx, 1, b.ID))
	require.NoError(t, store.RecordVote(ctx, 2, b.ID))
	require.NoError(t, store.RecordVote(ctx, 3, c.ID))
	require.NoError(t, store.EnsureUser(ctx, 4))

	inactive := false
	require.NoError(t, store.UpdateDesign(ctx, c.ID, models.DesignPatch{IsActive: &inactive}))

	tally, err := store.VoteTally(ctx)
	require.NoError(t, err)
	require.Len(t, tally.Results, 2)
	assert.Equal(t, b.ID, tally.Results[0].Design.ID)
	assert.Equal(t, 2, tally.Results[0].Votes)
	assert.Equal(t, a.ID, tally.Results[1].Design.ID)
	assert.Equal(t, 0, tally.Results[1].Votes)
	assert.Equal(t, 1, tally.Dangling)
	assert.Equal(t, 3, tally.Total())
}

func TestVoteTallyTiesBrokenByID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"X", "Y", "Z"} {
		d, err := store.CreateDesign(ctx, models.Design{Name: name, ImageHandle: name, IsActive: true})
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	tally, err := store.VoteTally(ctx)
	require.NoError(t, err)
	require.Len(t, tally.Results, 3)
	for i, r := range tally.Results {
		assert.Equal(t, ids[i], r.Design.ID)
	}
}
