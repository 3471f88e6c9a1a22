package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/steveyeow/academi/internal/repo"
	"github.com/steveyeow/academi/test/testutil"
)

func TestBookRepoCreateAndLookup(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	book := &model.Book{
		Name:   "The Feynman Lectures on Physics Test",
		Author: "Richard Feynman",
		Source: model.BookSourceCatalog,
		Status: model.BookStatusCatalog,
	}
	require.NoError(t, books.Create(context.Background(), book))
	defer books.Delete(context.Background(), book.ID)
	require.NotEmpty(t, book.ID)

	got, err := books.Get(context.Background(), book.ID)
	require.NoError(t, err)
	require.Equal(t, book.Name, got.Name)

	// title lookup is case-insensitive
	found, err := books.FindByName(context.Background(), "the feynman lectures on physics test")
	require.NoError(t, err)
	require.Equal(t, book.ID, found.ID)

	dup := &model.Book{
		Name:   "THE FEYNMAN LECTURES ON PHYSICS TEST",
		Source: model.BookSourceChat,
		Status: model.BookStatusCatalog,
	}
	require.ErrorIs(t, books.Create(context.Background(), dup), errs.ErrConflict)
}

func TestBookRepoCompareAndSetStatus(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	book := &model.Book{
		Name:   "CAS Transition Test Book",
		Source: model.BookSourceCatalog,
		Status: model.BookStatusCatalog,
	}
	require.NoError(t, books.Create(context.Background(), book))
	defer books.Delete(context.Background(), book.ID)

	ok, err := books.CompareAndSetStatus(context.Background(), book.ID, model.BookStatusCatalog, model.BookStatusIndexing)
	require.NoError(t, err)
	require.True(t, ok)

	// second claim loses: the book is no longer in the expected state
	ok, err = books.CompareAndSetStatus(context.Background(), book.ID, model.BookStatusCatalog, model.BookStatusIndexing)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, books.MarkReady(context.Background(), book.ID, 7, "gemini", "text-embedding-004"))
	got, err := books.Get(context.Background(), book.ID)
	require.NoError(t, err)
	require.Equal(t, model.BookStatusReady, got.Status)
	require.Equal(t, 7, got.ChunkCount)
	require.Equal(t, "gemini", got.EmbedProvider)
}

func TestBookRepoMarkError(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	book := &model.Book{
		Name:   "Error State Test Book",
		Source: model.BookSourceChat,
		Status: model.BookStatusIndexing,
	}
	require.NoError(t, books.Create(context.Background(), book))
	defer books.Delete(context.Background(), book.ID)

	require.NoError(t, books.MarkError(context.Background(), book.ID, "fetch content: no content found"))
	got, err := books.Get(context.Background(), book.ID)
	require.NoError(t, err)
	require.Equal(t, model.BookStatusError, got.Status)
	require.Contains(t, got.LastError, "no content found")

	// error books can be reclaimed for a retry
	ok, err := books.CompareAndSetStatus(context.Background(), book.ID, model.BookStatusError, model.BookStatusIndexing)
	require.NoError(t, err)
	require.True(t, ok)
}
