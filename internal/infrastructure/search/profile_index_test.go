package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiosite/abio-api/internal/domain/entity"
)

type recorded struct {
	method, path string
	body         []byte
}

func newTestIndex(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*ProfileIndex, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, body: b})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handle(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewProfileIndex(es, "profiles"), &reqs
}

func TestNewProfileIndex_Disabled(t *testing.T) {
	x := NewProfileIndex(nil, "profiles")
	assert.Nil(t, x)
	assert.NoError(t, x.Index(context.Background(), &entity.Profile{ID: "p1"}))
	assert.NoError(t, x.Remove(context.Background(), "p1"))
	hits, err := x.Search(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestProfileIndex_Index(t *testing.T) {
	x, reqs := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	name := "alice"
	require.NoError(t, x.Index(context.Background(), &entity.Profile{ID: "p1", Username: &name, DisplayName: "Alice"}))

	require.Len(t, *reqs, 1)
	r := (*reqs)[0]
	assert.Equal(t, http.MethodPut, r.method)
	assert.Equal(t, "/profiles/_doc/p1", r.path)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(r.body, &doc))
	assert.Equal(t, "alice", doc["username"])
	assert.Equal(t, "Alice", doc["displayName"])
}

func TestProfileIndex_Remove_IgnoresMissing(t *testing.T) {
	x, _ := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	assert.NoError(t, x.Remove(context.Background(), "p1"))
}

func TestProfileIndex_Search(t *testing.T) {
	x, reqs := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_id":"p1","_source":{"id":"p1","username":"alice","displayName":"Alice","bio":"hi","avatarUrl":"https://cdn/a.png"}}
		]}}`))
	})
	hits, err := x.Search(context.Background(), "ali", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alice", hits[0].Username)
	assert.Equal(t, "https://cdn/a.png", hits[0].AvatarURL)

	r := (*reqs)[0]
	assert.Equal(t, "/profiles/_search", r.path)
	assert.Contains(t, string(r.body), `"username^2"`)
	assert.Contains(t, string(r.body), `"size":5`)
}

func TestProfileIndex_SearchError(t *testing.T) {
	x, _ := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	_, err := x.Search(context.Background(), "ali", 5)
	assert.Error(t, err)
}
