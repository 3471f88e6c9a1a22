package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/filestore"
	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/steveyeow/academi/internal/repo"
	"github.com/steveyeow/academi/internal/sources"
	"github.com/steveyeow/academi/internal/vector"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// AgentService owns the book lifecycle: catalog -> indexing -> ready/error.
// The catalog->indexing transition is guarded by a database compare-and-set,
// so concurrent chats with the same cold book start exactly one indexing run.
type AgentService struct {
	books     *repo.BookRepo
	store     *vector.Store
	chunker   *ai.Chunker
	fetcher   *sources.Fetcher
	questions *QuestionService
	files     filestore.Store
}

func NewAgentService(
	books *repo.BookRepo,
	store *vector.Store,
	chunker *ai.Chunker,
	fetcher *sources.Fetcher,
	questions *QuestionService,
	files filestore.Store,
) *AgentService {
	return &AgentService{
		books:     books,
		store:     store,
		chunker:   chunker,
		fetcher:   fetcher,
		questions: questions,
		files:     files,
	}
}

func (s *AgentService) Get(ctx context.Context, id string) (*model.Book, error) {
	return s.books.Get(ctx, id)
}

func (s *AgentService) List(ctx context.Context) ([]*model.Book, error) {
	return s.books.List(ctx)
}

func (s *AgentService) FindByName(ctx context.Context, name string) (*model.Book, error) {
	return s.books.FindByName(ctx, name)
}

// Delete removes a book, its chunks, its stored source file, and its chat
// history. Chunk and message rows go with the book via foreign keys.
func (s *AgentService) Delete(ctx context.Context, id string) error {
	logger := logutil.GetLogger(ctx)
	book, err := s.books.Get(ctx, id)
	if err != nil {
		return err
	}
	if book.Source == model.BookSourceUpload {
		if err := s.files.Delete(ctx, uploadKey(book.ID)); err != nil {
			logger.Warn("failed to remove stored source file",
				zap.String("book_id", id), zap.Error(err))
		}
	}
	return s.books.Delete(ctx, id)
}

// SeedCatalog idempotently writes the starter catalog. Titles that already
// exist are skipped via the unique name index.
func (s *AgentService) SeedCatalog(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	created := 0
	for _, seed := range seedCatalog {
		book := *seed
		book.Source = model.BookSourceCatalog
		book.Status = model.BookStatusCatalog
		err := s.books.Create(ctx, &book)
		if errors.Is(err, errs.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		created++
	}
	if created > 0 {
		logger.Info("seeded starter catalog", zap.Int("created", created))
	}
	return nil
}

// CreateCatalogBook registers a book without content. When a book with the
// same title already exists, it is returned as-is.
func (s *AgentService) CreateCatalogBook(ctx context.Context, name, author, category, description, sourceKind string) (*model.Book, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: book name is required", errs.ErrInvalid)
	}
	if existing, err := s.books.FindByName(ctx, name); err == nil {
		return existing, nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	book := &model.Book{
		Name:        name,
		Author:      strings.TrimSpace(author),
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		Source:      sourceKind,
		Status:      model.BookStatusCatalog,
	}
	err := s.books.Create(ctx, book)
	if errors.Is(err, errs.ErrConflict) {
		// lost a race with another creator; return the winner
		return s.books.FindByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// CreateUploadBook registers an uploaded book, stores the raw file, and
// starts indexing the extracted text in the background.
func (s *AgentService) CreateUploadBook(ctx context.Context, filename string, file filestore.ReadSeekCloser, size int64, text string) (*model.Book, error) {
	name := strings.TrimSpace(strings.TrimSuffix(filename, fileExt(filename)))
	if name == "" {
		name = "Uploaded Book"
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: uploaded file has no extractable text", errs.ErrInvalid)
	}
	book := &model.Book{
		Name:   name,
		Source: model.BookSourceUpload,
		Status: model.BookStatusCatalog,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	if err := s.files.Save(ctx, uploadKey(book.ID), file, size); err != nil {
		logger := logutil.GetLogger(ctx)
		logger.Warn("failed to persist uploaded source file",
			zap.String("book_id", book.ID), zap.Error(err))
	}
	s.TriggerIndexingWithText(ctx, book, text)
	return book, nil
}

// CreateTopicBook builds a book from a Wikipedia topic summary.
func (s *AgentService) CreateTopicBook(ctx context.Context, topic string, language string) (*model.Book, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", errs.ErrInvalid)
	}
	summary := s.fetcher.FetchWikipediaSummary(ctx, topic, language)
	if summary == "" {
		return nil, fmt.Errorf("%w: no source text found for topic %q", errs.ErrNotFound, topic)
	}
	book := &model.Book{
		Name:   topic,
		Source: model.BookSourceTopic,
		Status: model.BookStatusCatalog,
	}
	if err := s.books.Create(ctx, book); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, fmt.Errorf("%w: a book named %q already exists", errs.ErrConflict, topic)
		}
		return nil, err
	}
	s.TriggerIndexingWithText(ctx, book, topic+"\n\n"+summary)
	return book, nil
}

// TriggerIndexing starts a background indexing run for a cold book. Books
// already indexing or ready are left alone; error books get another try.
func (s *AgentService) TriggerIndexing(ctx context.Context, book *model.Book) {
	s.triggerIndexing(ctx, book, "")
}

// TriggerIndexingWithText is TriggerIndexing with the source text already in
// hand (uploads and topic books), skipping the public-source fetch.
func (s *AgentService) TriggerIndexingWithText(ctx context.Context, book *model.Book, text string) {
	s.triggerIndexing(ctx, book, text)
}

func (s *AgentService) triggerIndexing(ctx context.Context, book *model.Book, text string) {
	logger := logutil.GetLogger(ctx)
	from := book.Status
	if from != model.BookStatusCatalog && from != model.BookStatusError {
		return
	}
	ok, err := s.books.CompareAndSetStatus(ctx, book.ID, from, model.BookStatusIndexing)
	if err != nil {
		logger.Error("failed to claim indexing run", zap.String("book_id", book.ID), zap.Error(err))
		return
	}
	if !ok {
		// someone else claimed it first
		return
	}
	logger.Info("indexing started",
		zap.String("book_id", book.ID), zap.String("book", book.Name))
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.indexBook(bgCtx, book, text); err != nil {
			logutil.GetLogger(bgCtx).Error("indexing failed",
				zap.String("book_id", book.ID), zap.Error(err))
			if markErr := s.books.MarkError(bgCtx, book.ID, err.Error()); markErr != nil {
				logutil.GetLogger(bgCtx).Error("failed to record indexing error",
					zap.String("book_id", book.ID), zap.Error(markErr))
			}
		}
	}()
}

func (s *AgentService) indexBook(ctx context.Context, book *model.Book, text string) error {
	logger := logutil.GetLogger(ctx)
	if text == "" && book.Source == model.BookSourceUpload {
		// re-index path: the original upload was kept in the file store
		text = s.readStoredSource(ctx, book.ID)
	}
	if text == "" {
		fetched, err := s.fetcher.FetchBookContent(ctx, book.Name, book.Author)
		if err != nil {
			return fmt.Errorf("fetch content: %w", err)
		}
		text = fetched
	}
	chunks := s.chunker.Chunk(ctx, text)
	if len(chunks) == 0 {
		return fmt.Errorf("no indexable text for book %q", book.Name)
	}
	res, err := s.store.Index(ctx, book.ID, chunks)
	if err != nil {
		return fmt.Errorf("index passages: %w", err)
	}
	if _, err := s.questions.Generate(ctx, book.ID, text); err != nil {
		logger.Warn("study question generation failed",
			zap.String("book_id", book.ID), zap.Error(err))
	}
	if err := s.books.MarkReady(ctx, book.ID, res.ChunkCount, res.Provider, res.Model); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	logger.Info("book ready",
		zap.String("book_id", book.ID),
		zap.String("book", book.Name),
		zap.Int("chunks", res.ChunkCount),
		zap.String("embed_provider", res.Provider))
	return nil
}

func (s *AgentService) readStoredSource(ctx context.Context, bookID string) string {
	file, err := s.files.Open(ctx, uploadKey(bookID))
	if err != nil {
		return ""
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		logutil.GetLogger(ctx).Warn("failed to read stored source",
			zap.String("book_id", bookID), zap.Error(err))
		return ""
	}
	return string(raw)
}

func uploadKey(bookID string) string {
	return "book_" + bookID + ".src"
}

func fileExt(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx:]
}
