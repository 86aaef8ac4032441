package shop

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swadbest/shopctl/internal/apiclient"
	"github.com/swadbest/shopctl/internal/counts"
	"github.com/swadbest/shopctl/internal/session"
)

// fakeBackend records every request and answers from registered routes
type fakeBackend struct {
	mu       sync.Mutex
	hits     map[string]int
	requests []*http.Request
	routes   map[string]http.HandlerFunc
	srv      *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		hits:   make(map[string]int),
		routes: make(map[string]http.HandlerFunc),
	}
	b.srv = httptest.NewServer(b)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.hits[key]++
	b.requests = append(b.requests, r.Clone(r.Context()))
	h, ok := b.routes[key]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route " + key})
		return
	}
	h(w, r)
}

func (b *fakeBackend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

func (b *fakeBackend) reply(method, path string, status int, body any) {
	b.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

func (b *fakeBackend) Hits(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

func (b *fakeBackend) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.hits {
		n += c
	}
	return n
}

func (b *fakeBackend) Last(method, path string) *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		r := b.requests[i]
		if r.Method == method && r.URL.Path == path {
			return r
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type testEnv struct {
	backend  *fakeBackend
	store    *session.Store
	client   *apiclient.Client
	counts   *counts.Synchronizer
	services *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := newFakeBackend(t)
	store := session.NewStore(session.NewMemoryStorage(nil))

	client, err := apiclient.New(apiclient.Config{BaseURL: backend.srv.URL}, store,
		apiclient.WithUnauthorizedHandler(func() { _ = store.Logout() }))
	require.NoError(t, err)

	syncer := counts.New(store, CountsFetcher(client))
	return &testEnv{
		backend:  backend,
		store:    store,
		client:   client,
		counts:   syncer,
		services: NewServices(client, store, Options{PaymentPublicKey: "rzp_test_key", Counts: syncer}),
	}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	require.NoError(t, e.store.Login(session.User{ID: "u1", Name: "Asha", Email: "asha@example.com"}, "access-1", "refresh-1"))
}
