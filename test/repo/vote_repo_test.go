package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/steveyeow/academi/internal/repo"
	"github.com/steveyeow/academi/test/testutil"
)

func TestVoteRepoUpsertCaseInsensitive(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	votes := repo.NewVoteRepo(db)
	first, err := votes.Upsert(context.Background(), "Thinking, Fast and Slow Test")
	require.NoError(t, err)
	defer db.Exec(`DELETE FROM votes WHERE id = $1`, first.ID)
	require.Equal(t, 1, first.Count)

	// same title in a different casing lands on the same row
	second, err := votes.Upsert(context.Background(), "THINKING, FAST AND SLOW TEST")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 2, second.Count)
	require.Equal(t, first.Title, second.Title)
}

func TestVoteRepoIncrementAndThreshold(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	votes := repo.NewVoteRepo(db)
	vote, err := votes.Upsert(context.Background(), "Vote Threshold Test Book")
	require.NoError(t, err)
	defer db.Exec(`DELETE FROM votes WHERE id = $1`, vote.ID)

	for i := 0; i < 2; i++ {
		vote, err = votes.Increment(context.Background(), vote.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 3, vote.Count)

	crossed, err := votes.ListAtOrAbove(context.Background(), 3)
	require.NoError(t, err)
	found := false
	for _, v := range crossed {
		if v.ID == vote.ID {
			found = true
		}
	}
	require.True(t, found)

	_, err = votes.Increment(context.Background(), "missing-vote-id")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
