package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"FastDict/internal/snapshot"
)

// Handler holds HTTP handlers for the FastDict API.
type Handler struct {
	mgr          *DictionaryManager
	logger       *slog.Logger
	maxBatch     int
	batchWorkers int
}

// HandlerOptions tunes request limits.
type HandlerOptions struct {
	// MaxBatch is the largest number of texts in one batch request.
	MaxBatch int
	// BatchWorkers bounds concurrent scans within one batch request.
	BatchWorkers int
}

// NewHandler creates a new Handler backed by the given DictionaryManager.
func NewHandler(mgr *DictionaryManager, opts HandlerOptions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 1000
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = 1
	}
	return &Handler{
		mgr:          mgr,
		logger:       logger,
		maxBatch:     opts.MaxBatch,
		batchWorkers: opts.BatchWorkers,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Matching.
	mux.HandleFunc("POST /match", h.handleMatch)
	mux.HandleFunc("POST /match/batch", h.handleMatchBatch)

	// Dictionary inspection and lifecycle.
	mux.HandleFunc("GET /dictionary", h.handleDictionaryInfo)
	mux.HandleFunc("GET /dictionary/dump", h.handleDump)
	mux.HandleFunc("POST /dictionary/reload", h.handleReload)
}

// acquire pins the current generation or writes an error response.
func (h *Handler) acquire(w http.ResponseWriter) (*snapshot.Snapshot, bool) {
	snap, err := h.mgr.Snapshots().Acquire()
	if err != nil {
		if errors.Is(err, snapshot.ErrNoDictionary) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "failed to acquire snapshot: "+err.Error())
		return nil, false
	}
	return snap, true
}

// --- Matching ---

type matchRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := h.acquire(w)
	if !ok {
		return
	}
	defer snap.Release()

	start := time.Now()
	words := snap.Dictionary.ContainedWords(req.Text)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"words":      words,
		"generation": snap.Generation,
		"took_us":    time.Since(start).Microseconds(),
	})
}

type batchRequest struct {
	Texts []string `json:"texts"`
}

func (h *Handler) handleMatchBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "no texts provided")
		return
	}
	if len(req.Texts) > h.maxBatch {
		writeError(w, http.StatusRequestEntityTooLarge, "too many texts in batch")
		return
	}

	snap, ok := h.acquire(w)
	if !ok {
		return
	}
	defer snap.Release()

	start := time.Now()
	results := make([][]string, len(req.Texts))

	// Every worker scans the same pinned dictionary with its own cursor.
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(h.batchWorkers)
	for i, text := range req.Texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = snap.Dictionary.ContainedWords(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Warn("batch match aborted", "error", err, "texts", len(req.Texts))
		writeError(w, http.StatusServiceUnavailable, "batch aborted: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":    results,
		"generation": snap.Generation,
		"took_us":    time.Since(start).Microseconds(),
	})
}

// --- Dictionary ---

func (h *Handler) handleDictionaryInfo(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.acquire(w)
	if !ok {
		return
	}
	defer snap.Release()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generation": snap.Generation,
		"dictionary": snap.Dictionary.Stats(),
		"readers":    h.mgr.Snapshots().ActiveSnapshotCount(),
	})
}

func (h *Handler) handleDump(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.acquire(w)
	if !ok {
		return
	}
	defer snap.Release()

	// Render first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := snap.Dictionary.Dump(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "dump failed: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	gen, changed, err := h.mgr.Reload()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "reload failed: "+err.Error())
		return
	}
	status := "reloaded"
	if !changed {
		status = "unchanged"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"generation": gen,
	})
}
