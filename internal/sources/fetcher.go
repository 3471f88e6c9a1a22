package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	openLibraryBase = "https://openlibrary.org"
	googleBooksBase = "https://www.googleapis.com/books/v1"
	wikipediaBase   = "https://%s.wikipedia.org/api/rest_v1/page/summary/"

	cacheSize = 256
	cacheTTL  = 30 * time.Minute

	// below these lengths a source result is too thin to index on its own
	minOpenLibraryChars = 100
	minGoogleBooksChars = 50
)

// Fetcher pulls public book text from Open Library, Google Books and
// Wikipedia. Results are cached per title+author so repeated indexing
// attempts and synopsis lookups do not hammer the upstream APIs.
type Fetcher struct {
	client *http.Client
	cache  *lru.LRU[string, string]
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  lru.NewLRU[string, string](cacheSize, nil, cacheTTL),
	}
}

// FetchBookContent tries Open Library, then Google Books, then the English
// Wikipedia summary, and returns the richest text found. Returns ErrNotFound
// when every source comes back empty.
func (f *Fetcher) FetchBookContent(ctx context.Context, title string, author string) (string, error) {
	logger := logutil.GetLogger(ctx)
	key := strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
	if cached, ok := f.cache.Get(key); ok {
		return cached, nil
	}

	text := f.fetchOpenLibrary(ctx, title, author)
	if len(text) > minOpenLibraryChars {
		if gb := f.fetchGoogleBooks(ctx, title, author); gb != "" {
			text += "\n\n--- Google Books ---\n\n" + gb
		}
		f.cache.Add(key, text)
		return text, nil
	}

	if gb := f.fetchGoogleBooks(ctx, title, author); len(gb) > minGoogleBooksChars {
		f.cache.Add(key, gb)
		return gb, nil
	}

	if wiki := f.FetchWikipediaSummary(ctx, title, "en"); wiki != "" {
		header := "Title: " + title
		if author != "" {
			header += " by " + author
		}
		content := header + "\n\nWikipedia: " + wiki
		f.cache.Add(key, content)
		return content, nil
	}

	logger.Warn("no public source had content for book",
		zap.String("title", title), zap.String("author", author))
	return "", fmt.Errorf("%w: no content found for %q", errs.ErrNotFound, title)
}

type openLibrarySearch struct {
	Docs []struct {
		Key           string          `json:"key"`
		Title         string          `json:"title"`
		AuthorName    []string        `json:"author_name"`
		FirstSentence json.RawMessage `json:"first_sentence"`
		Subject       []string        `json:"subject"`
	} `json:"docs"`
}

type openLibraryWork struct {
	Description json.RawMessage `json:"description"`
}

func (f *Fetcher) fetchOpenLibrary(ctx context.Context, title string, author string) string {
	logger := logutil.GetLogger(ctx)
	query := url.Values{}
	query.Set("title", title)
	if author != "" {
		query.Set("author", author)
	}
	query.Set("limit", "3")
	var search openLibrarySearch
	if err := f.getJSON(ctx, openLibraryBase+"/search.json?"+query.Encode(), &search); err != nil {
		logger.Warn("open library search failed", zap.Error(err))
		return ""
	}
	if len(search.Docs) == 0 {
		return ""
	}
	doc := search.Docs[0]
	var parts []string
	if doc.Title != "" {
		line := "Title: " + doc.Title
		if len(doc.AuthorName) > 0 {
			line += " by " + strings.Join(truncateSlice(doc.AuthorName, 3), ", ")
		}
		parts = append(parts, line)
	}
	if sentence := rawStringOrFirst(doc.FirstSentence); sentence != "" {
		parts = append(parts, "First sentence: "+sentence)
	}
	if len(doc.Subject) > 0 {
		parts = append(parts, "Subjects: "+strings.Join(truncateSlice(doc.Subject, 15), ", "))
	}
	if doc.Key != "" {
		var work openLibraryWork
		if err := f.getJSON(ctx, openLibraryBase+doc.Key+".json", &work); err == nil {
			if desc := rawStringOrValue(work.Description); desc != "" {
				parts = append(parts, "Description: "+desc)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

type googleBooksVolumes struct {
	Items []struct {
		VolumeInfo struct {
			Title       string   `json:"title"`
			Authors     []string `json:"authors"`
			Description string   `json:"description"`
			Categories  []string `json:"categories"`
			PageCount   int      `json:"pageCount"`
		} `json:"volumeInfo"`
		SearchInfo struct {
			TextSnippet string `json:"textSnippet"`
		} `json:"searchInfo"`
	} `json:"items"`
}

func (f *Fetcher) fetchGoogleBooks(ctx context.Context, title string, author string) string {
	logger := logutil.GetLogger(ctx)
	q := title
	if author != "" {
		q += " inauthor:" + author
	}
	query := url.Values{}
	query.Set("q", q)
	query.Set("maxResults", "3")
	var volumes googleBooksVolumes
	if err := f.getJSON(ctx, googleBooksBase+"/volumes?"+query.Encode(), &volumes); err != nil {
		logger.Warn("google books fetch failed", zap.Error(err))
		return ""
	}
	if len(volumes.Items) == 0 {
		return ""
	}
	item := volumes.Items[0]
	vol := item.VolumeInfo
	var parts []string
	if vol.Title != "" {
		line := "Title: " + vol.Title
		if len(vol.Authors) > 0 {
			line += " by " + strings.Join(vol.Authors, ", ")
		}
		parts = append(parts, line)
	}
	if vol.Description != "" {
		parts = append(parts, "Description: "+vol.Description)
	}
	if len(vol.Categories) > 0 {
		parts = append(parts, "Categories: "+strings.Join(vol.Categories, ", "))
	}
	if vol.PageCount > 0 {
		parts = append(parts, fmt.Sprintf("Pages: %d", vol.PageCount))
	}
	if item.SearchInfo.TextSnippet != "" {
		parts = append(parts, "Snippet: "+item.SearchInfo.TextSnippet)
	}
	return strings.Join(parts, "\n\n")
}

type wikipediaSummary struct {
	Extract string `json:"extract"`
}

// FetchWikipediaSummary returns the REST summary extract for a topic, or ""
// when the page does not exist.
func (f *Fetcher) FetchWikipediaSummary(ctx context.Context, topic string, lang string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ""
	}
	if lang == "" {
		lang = "en"
	}
	endpoint := fmt.Sprintf(wikipediaBase, lang) + url.PathEscape(topic)
	var summary wikipediaSummary
	if err := f.getJSON(ctx, endpoint, &summary); err != nil {
		return ""
	}
	return strings.TrimSpace(summary.Extract)
}

func (f *Fetcher) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed: %s: %s", endpoint, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func truncateSlice(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// rawStringOrFirst handles fields that may be a string or a list of strings.
func rawStringOrFirst(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// rawStringOrValue handles fields that may be a string or {"value": string}.
func rawStringOrValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Value
	}
	return ""
}
