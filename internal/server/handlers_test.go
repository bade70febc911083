package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FastDict/internal/testutil"
)

type testServer struct {
	mgr  *DictionaryManager
	mux  *http.ServeMux
	path string
}

func newTestServer(t *testing.T, opts HandlerOptions) *testServer {
	t.Helper()
	mgr, path := newManager(t, testutil.SampleWords)
	mux := http.NewServeMux()
	NewHandler(mgr, opts, nil).RegisterRoutes(mux)
	return &testServer{mgr: mgr, mux: mux, path: path}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHandleMatch(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{})

	tests := []struct {
		text string
		want []string
	}{
		{"catdog", []string{"cat", "dog"}},
		{"banana", []string{"ana"}},
		{"car", []string{"car"}},
		{"horse", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/match", map[string]string{"text": tt.text})
			require.Equal(t, http.StatusOK, rec.Code)

			var resp struct {
				Words      []string `json:"words"`
				Generation uint64   `json:"generation"`
			}
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.want, resp.Words)
			assert.Equal(t, uint64(1), resp.Generation)
		})
	}
}

func TestHandleMatch_BadRequest(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{})

	rec := srv.do(t, http.MethodPost, "/match", `{"text": "cat", "limit": 3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/match", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Error.Message, "invalid request body")
}

func TestHandleMatch_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{})
	rec := srv.do(t, http.MethodGet, "/match", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleMatchBatch(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{BatchWorkers: 4})

	texts := []string{"catdog", "banana", "horse", "dogcatcardog"}
	rec := srv.do(t, http.MethodPost, "/match/batch", map[string]interface{}{"texts": texts})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results    [][]string `json:"results"`
		Generation uint64     `json:"generation"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Results, len(texts))
	assert.Equal(t, []string{"cat", "dog"}, resp.Results[0])
	assert.Equal(t, []string{"ana"}, resp.Results[1])
	assert.Equal(t, []string{}, resp.Results[2])
	assert.Equal(t, []string{"cat", "car", "dog"}, resp.Results[3])
}

func TestHandleMatchBatch_Limits(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{MaxBatch: 2})

	rec := srv.do(t, http.MethodPost, "/match/batch", map[string]interface{}{"texts": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/match/batch", map[string]interface{}{"texts": []string{"a", "b", "c"}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = srv.do(t, http.MethodPost, "/match/batch", map[string]interface{}{"texts": []string{"a", "b"}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleDictionaryInfo(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{})

	rec := srv.do(t, http.MethodGet, "/dictionary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Generation uint64 `json:"generation"`
		Dictionary struct {
			Words       int    `json:"words"`
			States      int    `json:"states"`
			Transitions int    `json:"transitions"`
			Normalizer  string `json:"normalizer"`
			Fingerprint string `json:"fingerprint"`
		} `json:"dictionary"`
		Readers int `json:"readers"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, uint64(1), resp.Generation)
	assert.Equal(t, len(testutil.SampleWords), resp.Dictionary.Words)
	assert.Greater(t, resp.Dictionary.States, 1)
	assert.Greater(t, resp.Dictionary.Transitions, resp.Dictionary.States)
	assert.Equal(t, "none", resp.Dictionary.Normalizer)
	assert.True(t, strings.HasPrefix(resp.Dictionary.Fingerprint, "xxh64:"))
	// The request's own snapshot is still held while the body is written.
	assert.Equal(t, 1, resp.Readers)
	assert.Equal(t, 0, srv.mgr.Snapshots().ActiveSnapshotCount())
}

func TestHandleDump(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{})

	rec := srv.do(t, http.MethodGet, "/dictionary/dump", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "automaton: ")
	assert.Contains(t, rec.Body.String(), `"c" ==> 1`)
}

func TestHandleReload(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{})

	testutil.WriteWordList(t, filepath.Dir(srv.path), filepath.Base(srv.path), []string{"horse"})
	rec := srv.do(t, http.MethodPost, "/dictionary/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status     string `json:"status"`
		Generation uint64 `json:"generation"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "reloaded", resp.Status)
	assert.Equal(t, uint64(2), resp.Generation)

	rec = srv.do(t, http.MethodPost, "/match", map[string]string{"text": "catdoghorse"})
	var match struct {
		Words      []string `json:"words"`
		Generation uint64   `json:"generation"`
	}
	decodeBody(t, rec, &match)
	assert.Equal(t, []string{"horse"}, match.Words)
	assert.Equal(t, uint64(2), match.Generation)
}

func TestHandleReload_Unchanged(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{})

	rec := srv.do(t, http.MethodPost, "/dictionary/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status     string `json:"status"`
		Generation uint64 `json:"generation"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "unchanged", resp.Status)
	assert.Equal(t, uint64(1), resp.Generation)
}

func TestHandleReload_Failure(t *testing.T) {
	srv := newTestServer(t, HandlerOptions{})

	require.NoError(t, os.Remove(srv.path))
	rec := srv.do(t, http.MethodPost, "/dictionary/reload", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, uint64(1), srv.mgr.Snapshots().CurrentGeneration())
}
