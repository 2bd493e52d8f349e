// Package adminhttp mounts the bit-exact admin surface over a
// Container, Scheduler, and Cache: the HTTP collaborator the core's
// registry and scheduler are meant to be driven through from outside
// the process.
package adminhttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pumped-fn/kernel/component"
)

// Handlers wires the admin routes to a Container, Scheduler, and
// Cache. Construct with New and mount with Register.
type Handlers struct {
	container *component.Container
	scheduler *component.Scheduler
	cache     component.Cache
	shutdown  func()
	logger    zerolog.Logger
}

// New constructs Handlers. shutdown is invoked by DELETE / and should
// trigger the process's shutdown supervisor; a nil shutdown makes that
// route a no-op beyond a 202.
func New(container *component.Container, scheduler *component.Scheduler, cache component.Cache, shutdown func(), logger zerolog.Logger) *Handlers {
	if shutdown == nil {
		shutdown = func() {}
	}
	return &Handlers{container: container, scheduler: scheduler, cache: cache, shutdown: shutdown, logger: logger}
}

// Register mounts every admin route on router.
func (h *Handlers) Register(router *mux.Router) {
	router.HandleFunc("/_bean", h.listBeans).Methods(http.MethodGet)
	router.HandleFunc("/_job", h.listJobs).Methods(http.MethodGet)
	router.HandleFunc("/_job/{name}/restart", h.restartJob).Methods(http.MethodPost)
	router.HandleFunc("/_job/{name}", h.destroyJob).Methods(http.MethodDelete)
	router.HandleFunc("/_job/{name}", h.triggerJob).Methods(http.MethodPost)
	router.HandleFunc("/_cache", h.listCacheKeys).Methods(http.MethodGet)
	router.HandleFunc("/_cache", h.clearCacheKeys).Methods(http.MethodDelete)
	router.HandleFunc("/_cache/{key}", h.getCacheKey).Methods(http.MethodGet)
	router.HandleFunc("/_cache/{key}", h.deleteCacheKey).Methods(http.MethodDelete)
	router.HandleFunc("/", h.shutdownProcess).Methods(http.MethodDelete)
}

func (h *Handlers) listBeans(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.container.Names())
}

func (h *Handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	enumeration := h.scheduler.Enumerate()
	out := make(map[string]map[string]string, len(enumeration))
	for name, tasks := range enumeration {
		byName := make(map[string]string, len(tasks))
		for _, task := range tasks {
			byName[task.Name] = task.Cron
		}
		out[name] = byName
	}
	respondJSON(w, out)
}

func (h *Handlers) restartJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := h.scheduler.RestartRunner(name); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) destroyJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, ok := h.scheduler.Runner(name); !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	h.scheduler.Destroy(name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) triggerJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := h.scheduler.TriggerFirst(name); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) listCacheKeys(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	keys, err := h.cache.Keys(r.Context(), pattern)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, keys)
}

func (h *Handlers) clearCacheKeys(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	keys, err := h.cache.Keys(r.Context(), pattern)
	if err != nil {
		respondError(w, err)
		return
	}
	for _, key := range keys {
		if _, _, err := h.cache.Delete(r.Context(), key); err != nil {
			h.logger.Error().Err(err).Str("key", key).Msg("admin cache clear failed to delete key")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getCacheKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	result, err := h.cache.Get(r.Context(), key, "")
	if err != nil {
		respondError(w, err)
		return
	}
	if !result.Hit {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	respondJSON(w, result.Value)
}

func (h *Handlers) deleteCacheKey(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	_, hadValue, err := h.cache.Delete(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	if !hadValue {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) shutdownProcess(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
	go h.shutdown()
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	var unknown *component.UnknownComponentError
	if errors.As(err, &unknown) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
