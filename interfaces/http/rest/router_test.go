package rest

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/infrastructure/config"
	"github.com/Jabramco/memebase/infrastructure/di"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 24)...)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string                 `json:"type"`
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

type uploadedMeme struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
	ImageURL string   `json:"imageUrl"`
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (http.Handler, *di.Container) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	c, err := di.NewContainer(context.Background(), cfg, zap.NewNop(), zap.NewAtomicLevel())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewRouter(c).Setup(), c
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, target string, values map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func upload(t *testing.T, h http.Handler, title, keywords string) uploadedMeme {
	t.Helper()
	req := multipartRequest(t, "/api/v1/memes",
		map[string]string{"title": title, "keywords": keywords},
		formFile{field: "file", name: "meme.png", data: pngBytes},
	)
	rec, env := do(t, h, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		Meme         uploadedMeme `json:"meme"`
		SavedLocally bool         `json:"savedLocally"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.False(t, res.SavedLocally)
	return res.Meme
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestMemes_UploadListSearchDelete(t *testing.T) {
	h, _ := newTestServer(t, nil)

	doge := upload(t, h, "Doge", "dog, wow")
	upload(t, h, "Pikachu", "surprised")
	assert.Equal(t, []string{"dog", "wow"}, doge.Keywords)

	// The in-memory store serves the uploaded image
	u, err := url.Parse(doge.ImageURL)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u.Path, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	_, env := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/memes", nil))
	var all []uploadedMeme
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)

	_, env = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/memes?q=WOW", nil))
	var found []uploadedMeme
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, doge.ID, found[0].ID)

	rec, _ = do(t, h, httptest.NewRequest(http.MethodDelete, "/api/v1/memes/"+doge.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, httptest.NewRequest(http.MethodDelete, "/api/v1/memes/"+doge.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestMemes_UploadValidation(t *testing.T) {
	h, _ := newTestServer(t, func(cfg *config.Config) { cfg.MaxUploadBytes = 16 })

	req := multipartRequest(t, "/api/v1/memes",
		map[string]string{"title": "Big", "keywords": "x"},
		formFile{field: "file", name: "big.png", data: pngBytes},
	)
	rec, env := do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)
	assert.Contains(t, env.Error.Details, "maxBytes")

	req = multipartRequest(t, "/api/v1/memes",
		map[string]string{"title": "Text", "keywords": "x"},
		formFile{field: "file", name: "notes.txt", data: []byte("hello")},
	)
	rec, env = do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FILE_TYPE", env.Error.Code)
	assert.Equal(t, "notes.txt", env.Error.Details["fileName"])

	req = multipartRequest(t, "/api/v1/memes", map[string]string{"title": "No file"})
	rec, _ = do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInteractionsAndChampion(t *testing.T) {
	h, _ := newTestServer(t, nil)

	// No interactions yet means no champion
	rec, env := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/champion", nil))
	assert.True(t, env.Success)
	var empty struct {
		Data interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	assert.Nil(t, empty.Data)

	doge := upload(t, h, "Doge", "dog")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memes/"+doge.ID+"/interactions", strings.NewReader(`{"kind":"copies"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, env = do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats struct {
		MemeID string `json:"memeId"`
		Week   string `json:"week"`
		Stats  struct {
			Copies int `json:"copies"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, doge.ID, stats.MemeID)
	assert.Equal(t, 1, stats.Stats.Copies)
	assert.NotEmpty(t, stats.Week)

	_, env = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/memes/"+doge.ID+"/stats", nil))
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Stats.Copies)

	_, env = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/champion", nil))
	var champ struct {
		Meme uploadedMeme `json:"meme"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &champ))
	assert.Equal(t, doge.ID, champ.Meme.ID)
}

func TestInteractions_RejectsBadKind(t *testing.T) {
	h, _ := newTestServer(t, nil)

	for _, body := range []string{`{"kind":"share"}`, `{}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/memes/m1/interactions", strings.NewReader(body))
		rec, env := do(t, h, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "VALIDATION", env.Error.Type, body)
	}
}

func TestBulk_PreviewAndSave(t *testing.T) {
	h, c := newTestServer(t, nil)

	files := []formFile{
		{field: "files", name: "cat_vs_dog_2023-05-01.jpg", data: pngBytes},
		{field: "files", name: "DOGE.PNG", data: pngBytes},
		{field: "files", name: "DOGE.PNG", data: pngBytes},
	}

	_, env := do(t, h, multipartRequest(t, "/api/v1/memes/bulk/preview", nil, files...))
	require.True(t, env.Success)
	var preview struct {
		Items []struct {
			Title       string `json:"title"`
			IsDuplicate bool   `json:"isDuplicate"`
		} `json:"items"`
		DuplicateCount int `json:"duplicateCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &preview))
	require.Len(t, preview.Items, 3)
	assert.Equal(t, "Cat Vs Dog", preview.Items[0].Title)
	assert.Equal(t, "Doge", preview.Items[1].Title)
	assert.True(t, preview.Items[2].IsDuplicate)
	assert.Equal(t, 2, preview.DuplicateCount)

	values := map[string]string{"titles[0]": "Versus", "keywords[0]": "cat, dog"}
	rec, env := do(t, h, multipartRequest(t, "/api/v1/memes/bulk", values, files...))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Saved   int `json:"saved"`
		Skipped int `json:"skipped"`
		Items   []struct {
			Title string `json:"title"`
			State string `json:"state"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, "Versus", result.Items[0].Title)
	assert.Equal(t, "success", result.Items[0].State)
	assert.Equal(t, 1, c.Images.Len())
}

func TestBulk_OverrideForMissingFileRejected(t *testing.T) {
	h, c := newTestServer(t, nil)

	values := map[string]string{"titles[0]": "Kept", "titles[3]": "Nobody"}
	rec, env := do(t, h, multipartRequest(t, "/api/v1/memes/bulk", values,
		formFile{field: "files", name: "a.png", data: pngBytes},
		formFile{field: "files", name: "b.png", data: pngBytes},
	))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "index 3")
	assert.Equal(t, 0, c.Images.Len())
}

func TestBulk_AllDuplicatesRejected(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec, env := do(t, h, multipartRequest(t, "/api/v1/memes/bulk", nil,
		formFile{field: "files", name: "a.png", data: pngBytes},
		formFile{field: "files", name: "a.png", data: pngBytes},
	))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Message, "all are duplicates")
}

func TestTitles_Suggest(t *testing.T) {
	h, _ := newTestServer(t, nil)

	_, env := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/titles/suggest?filename=funny_cat_meme.jpg&filename=DOGE.PNG", nil))
	assert.JSONEq(t, `[{"filename":"funny_cat_meme.jpg","title":"Cat"},{"filename":"DOGE.PNG","title":"Doge"}]`, string(env.Data))

	rec, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/titles/suggest", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, nil)
	upload(t, h, "Doge", "dog")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/memes`)

	h, _ = newTestServer(t, func(cfg *config.Config) { cfg.EnableMetrics = false })
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
