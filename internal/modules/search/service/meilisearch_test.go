package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledes.com/labportal/internal/entity"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// fakeMeili answers the handful of endpoints the index uses.
type fakeMeili struct {
	mu         sync.Mutex
	requests   []recordedRequest
	searchBody string
	failSearch bool
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
	failSearch, searchBody := f.failSearch, f.searchBody
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/indexes/publications/search" {
		if failSearch {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"message":"boom","code":"internal","type":"internal","link":""}`)
			return
		}
		_, _ = io.WriteString(w, searchBody)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, `{"taskUid":1,"indexUid":"publications","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2024-01-01T00:00:00Z"}`)
}

func (f *fakeMeili) last(method, path string) (recordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Method == method && f.requests[i].Path == path {
			return f.requests[i], true
		}
	}
	return recordedRequest{}, false
}

func newTestIndex(t *testing.T) (*meiliSearchService, *fakeMeili) {
	t.Helper()
	fake := &fakeMeili{searchBody: `{"hits":[],"query":"","processingTimeMs":0}`}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	idx := NewMeiliSearchService(meilisearch.New(srv.URL)).(*meiliSearchService)
	idx.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return idx, fake
}

func TestNewMeiliSearchService_ConfiguresIndex(t *testing.T) {
	_, fake := newTestIndex(t)

	req, ok := fake.last(http.MethodPut, "/indexes/publications/settings/filterable-attributes")
	require.True(t, ok)
	var filterable []string
	require.NoError(t, json.Unmarshal(req.Body, &filterable))
	assert.ElementsMatch(t, []string{"visible", "visible_from", "featured"}, filterable)

	_, ok = fake.last(http.MethodPut, "/indexes/publications/settings/sortable-attributes")
	assert.True(t, ok)
}

func TestIndexPublication(t *testing.T) {
	idx, fake := newTestIndex(t)

	visibleFrom := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := idx.IndexPublication(context.Background(), &entity.Publication{
		ID:          42,
		Title:       "Semana Acadêmica",
		Body:        "<p>Inscrições</p><p>abertas &amp; gratuitas</p>",
		Featured:    true,
		Visible:     true,
		VisibleFrom: visibleFrom,
		Author:      &entity.Account{FirstName: "Ana", LastName: "Lima"},
	})
	require.NoError(t, err)

	req, ok := fake.last(http.MethodPost, "/indexes/publications/documents")
	require.True(t, ok)
	assert.Equal(t, "primaryKey=id", req.Query)

	var docs []publicationDoc
	require.NoError(t, json.Unmarshal(req.Body, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, publicationDoc{
		ID:          42,
		Title:       "Semana Acadêmica",
		Body:        "Inscrições abertas & gratuitas",
		Author:      "Ana Lima",
		Featured:    true,
		Visible:     true,
		VisibleFrom: visibleFrom.Unix(),
	}, docs[0])
}

func TestDeletePublication(t *testing.T) {
	idx, fake := newTestIndex(t)

	require.NoError(t, idx.DeletePublication(context.Background(), 7))
	_, ok := fake.last(http.MethodDelete, "/indexes/publications/documents/7")
	assert.True(t, ok)
}

func TestSearchPublications(t *testing.T) {
	idx, fake := newTestIndex(t)
	ctx := context.Background()
	fake.mu.Lock()
	fake.searchBody = `{"hits":[{"id":3},{"id":1}],"query":"robótica","processingTimeMs":1}`
	fake.mu.Unlock()

	searchRequest := func(t *testing.T) map[string]any {
		t.Helper()
		req, ok := fake.last(http.MethodPost, "/indexes/publications/search")
		require.True(t, ok)
		var body map[string]any
		require.NoError(t, json.Unmarshal(req.Body, &body))
		return body
	}

	t.Run("published only", func(t *testing.T) {
		ids, err := idx.SearchPublications(ctx, "robótica", true, 5)
		require.NoError(t, err)
		assert.Equal(t, []uint{3, 1}, ids)

		body := searchRequest(t)
		assert.Equal(t, "robótica", body["q"])
		assert.Equal(t, float64(5), body["limit"])
		assert.Equal(t, "visible = true AND visible_from <= 1700000000", body["filter"])
	})

	t.Run("every publication", func(t *testing.T) {
		_, err := idx.SearchPublications(ctx, "robótica", false, 5)
		require.NoError(t, err)
		assert.Nil(t, searchRequest(t)["filter"])
	})

	t.Run("server error", func(t *testing.T) {
		fake.mu.Lock()
		fake.failSearch = true
		fake.mu.Unlock()

		_, err := idx.SearchPublications(ctx, "robótica", true, 5)
		assert.Error(t, err)
	})
}
