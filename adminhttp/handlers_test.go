package adminhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pumped-fn/kernel/component"
	"github.com/pumped-fn/kernel/drivers/memory"
)

type widget struct{}

func (w *widget) OnInit() error { return nil }

func newTestHandlers(t *testing.T, shutdown func()) (*Handlers, *component.Container, *component.Scheduler, *memory.Cache) {
	t.Helper()
	c := component.New()
	s := component.NewScheduler(c)
	cache := memory.NewCache(0)
	return New(c, s, cache, shutdown, zerolog.Nop()), c, s, cache
}

func newRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	return r
}

func TestListBeansReturnsRegisteredNames(t *testing.T) {
	h, c, _, _ := newTestHandlers(t, nil)
	ref := component.AsComponent(c, func() (*widget, error) { return &widget{}, nil }, component.WithName("w"))
	if _, err := ref.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/_bean", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(names) != 1 || names[0] != "w" {
		t.Fatalf("names = %v, want [w]", names)
	}
}

func TestListJobsReportsCronByComponentAndTask(t *testing.T) {
	h, _, s, _ := newTestHandlers(t, nil)
	s.Register(context.Background(), "worker", nil, component.TaskSpec{
		Name:    "tick",
		Cron:    component.LiteralCron("@every 1h"),
		Handler: func(context.Context) error { return nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/_job", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	var out map[string]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["worker"]["tick"] != "@every 1h" {
		t.Fatalf("jobs = %v", out)
	}
}

func TestTriggerJobFiresFirstTask(t *testing.T) {
	h, _, s, _ := newTestHandlers(t, nil)
	fired := make(chan struct{}, 1)
	s.Register(context.Background(), "worker", nil, component.TaskSpec{
		Name: "tick",
		Cron: component.LiteralCron("@yearly"),
		Handler: func(context.Context) error {
			fired <- struct{}{}
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/_job/worker", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("expected the triggered task to fire")
	}
}

func TestDestroyJobRemovesRunnerAndReportsMissing(t *testing.T) {
	h, _, s, _ := newTestHandlers(t, nil)
	s.Register(context.Background(), "worker", nil, component.TaskSpec{
		Name:    "tick",
		Cron:    component.LiteralCron("@every 1h"),
		Handler: func(context.Context) error { return nil },
	})

	req := httptest.NewRequest(http.MethodDelete, "/_job/worker", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	if _, ok := s.Runner("worker"); ok {
		t.Fatalf("expected the Runner to be gone")
	}

	req = httptest.NewRequest(http.MethodDelete, "/_job/worker", nil)
	rec = httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for an already-destroyed Runner", rec.Code)
	}
}

func TestCacheRoutesReadWriteAndDelete(t *testing.T) {
	h, _, _, cache := newTestHandlers(t, nil)
	if err := cache.Set(context.Background(), "greeting", "hello", component.CacheOptions{ExpiryMS: farFuture()}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/_cache/greeting", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/_cache?pattern=*", nil)
	rec = httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	var keys []string
	if err := json.Unmarshal(rec.Body.Bytes(), &keys); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(keys) != 1 || keys[0] != "greeting" {
		t.Fatalf("keys = %v", keys)
	}

	req = httptest.NewRequest(http.MethodDelete, "/_cache/greeting", nil)
	rec = httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/_cache/greeting", nil)
	rec = httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 after delete", rec.Code)
	}
}

func TestShutdownRouteInvokesCallback(t *testing.T) {
	called := make(chan struct{}, 1)
	h, _, _, _ := newTestHandlers(t, func() { called <- struct{}{} })

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected shutdown callback to run")
	}
}

func farFuture() int64 {
	return 1 << 62
}
