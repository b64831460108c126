package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/newsgrab/articles"
	"github.com/pevans/newsgrab/collector"
	"github.com/pevans/newsgrab/extractor"
	"github.com/pevans/newsgrab/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helper: create a router backed by a temp store and a real fetcher
func setupTestRouter(t *testing.T, opts Options) (*gin.Engine, *articles.ArticleStore) {
	store, err := articles.NewArticleStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	coll := collector.New(fetcher.New(fetcher.Options{Timeout: 5 * time.Second}), store, nil)
	router, err := NewServer(store, coll, opts).SetupRouter()
	require.NoError(t, err)
	return router, store
}

// Test helper: submit the form
func postURL(router *gin.Engine, submitted string) *httptest.ResponseRecorder {
	form := url.Values{"url": {submitted}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Test helper: serve an article page of roughly 3000 bytes
func articleServer(t *testing.T) *httptest.Server {
	body := `<html><head><title>Served Article</title>` +
		`<meta property="og:site_name" content="Test Site"></head><body>` +
		`<p>发布时间：2024-06-01</p><div class="content">` + strings.Repeat("news ", 560) +
		`</div></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// Test helper: count stored rows
func countRows(t *testing.T, store *articles.ArticleStore) int {
	n, err := store.Count()
	require.NoError(t, err)
	return n
}

// TestHandleIndex_Get verifies the form renders with an empty history
func TestHandleIndex_Get(t *testing.T) {
	router, _ := setupTestRouter(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="url"`)
	assert.Contains(t, w.Body.String(), "No articles collected yet.")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "should tag the response with a request ID")
}

// TestHandleIndex_ValidationError verifies scheme-less input creates no rows
func TestHandleIndex_ValidationError(t *testing.T) {
	router, store := setupTestRouter(t, Options{})

	w := postURL(router, "example.com")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), collector.OutcomeInvalidURL.Message())
	assert.NotContains(t, w.Body.String(), "Collecting, please wait...")
	assert.Equal(t, 0, countRows(t, store))
}

// TestHandleIndex_FetchFailure verifies unreachable URLs create no rows
func TestHandleIndex_FetchFailure(t *testing.T) {
	router, store := setupTestRouter(t, Options{})

	refused := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	refusedURL := refused.URL + "/news"
	refused.Close()

	w := postURL(router, refusedURL)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), collector.OutcomeNetworkError.Message())
	assert.Equal(t, 0, countRows(t, store))
}

// TestHandleIndex_Success verifies one row is stored with the submitted URL
// and the draft is rendered inline
func TestHandleIndex_Success(t *testing.T) {
	router, store := setupTestRouter(t, Options{})
	server := articleServer(t)
	submitted := server.URL + "/news/42"

	w := postURL(router, submitted)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, collector.OutcomeSuccess.Message())
	assert.Contains(t, body, "Served Article")
	assert.Contains(t, body, "Test Site", "the inline draft should show its source")

	require.Equal(t, 1, countRows(t, store))
	summaries, err := store.ListAll()
	require.NoError(t, err)
	assert.Equal(t, submitted, summaries[0].URL)
	assert.Equal(t, "2024-06-01", summaries[0].PubDate)
}

// TestHandleIndex_HistoryNewestFirst verifies the history order
func TestHandleIndex_HistoryNewestFirst(t *testing.T) {
	router, store := setupTestRouter(t, Options{})

	_, err := store.Insert(extractor.Draft{Title: "Older Story", URL: "http://example.com/1"})
	require.NoError(t, err)
	_, err = store.Insert(extractor.Draft{Title: "Newer Story", URL: "http://example.com/2"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	require.Contains(t, body, "Older Story")
	require.Contains(t, body, "Newer Story")
	assert.Less(t, strings.Index(body, "Newer Story"), strings.Index(body, "Older Story"))
}

// TestHandleIndex_StorageError verifies storage failures are not masked
func TestHandleIndex_StorageError(t *testing.T) {
	router, store := setupTestRouter(t, Options{})
	require.NoError(t, store.Close())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestSetupRouter_TemplateOverride verifies a templates directory replaces
// the embedded page
func TestSetupRouter_TemplateOverride(t *testing.T) {
	dir := t.TempDir()
	custom := `<p>custom page with {{len .Articles}} articles</p>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(custom), 0o600))

	router, _ := setupTestRouter(t, Options{TemplatesDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>custom page with 0 articles</p>", w.Body.String())
}

// TestSetupRouter_Static verifies static assets are served
func TestSetupRouter_Static(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body {}"), 0o600))

	router, _ := setupTestRouter(t, Options{StaticDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/static/style.css", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body {}", w.Body.String())
}

// TestHandleListArticles verifies the JSON listing
func TestHandleListArticles(t *testing.T) {
	router, store := setupTestRouter(t, Options{})

	first, err := store.Insert(extractor.Draft{Title: "One", URL: "http://example.com/1"})
	require.NoError(t, err)
	second, err := store.Insert(extractor.Draft{Title: "Two", URL: "http://example.com/2"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ListArticlesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Articles, 2)
	assert.Equal(t, second, resp.Articles[0].ID)
	assert.Equal(t, first, resp.Articles[1].ID)
	assert.Equal(t, articles.Unknown, resp.Articles[0].PubDate)
}

// TestHandleGetArticle verifies single record lookups and their errors
func TestHandleGetArticle(t *testing.T) {
	router, store := setupTestRouter(t, Options{})

	id, err := store.Insert(extractor.Draft{Title: "One", Content: "Body", URL: "http://example.com/1"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantErr  string
	}{
		{name: "found", path: "/api/v1/articles/" + strconv.FormatInt(id, 10), wantCode: http.StatusOK},
		{name: "missing", path: "/api/v1/articles/999", wantCode: http.StatusNotFound, wantErr: "not_found"},
		{name: "invalid", path: "/api/v1/articles/abc", wantCode: http.StatusBadRequest, wantErr: "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				var resp struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantErr, resp.Error.Code)
				return
			}

			var article articles.Article
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &article))
			assert.Equal(t, id, article.ID)
			assert.Equal(t, "Body", article.Content)
		})
	}
}

// TestMessagesFor verifies notice categories per outcome
func TestMessagesFor(t *testing.T) {
	invalid := messagesFor(collector.Result{Outcome: collector.OutcomeInvalidURL})
	require.Len(t, invalid, 1)
	assert.Equal(t, "error", invalid[0].Category)

	success := messagesFor(collector.Result{Outcome: collector.OutcomeSuccess})
	require.Len(t, success, 2)
	assert.Equal(t, "info", success[0].Category)
	assert.Equal(t, "success", success[1].Category)

	timeout := messagesFor(collector.Result{Outcome: collector.OutcomeTimeout})
	require.Len(t, timeout, 2)
	assert.Equal(t, "error", timeout[1].Category)
}
