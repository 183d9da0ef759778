package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chris/forum-miniapp-store/pkg/models"
	"github.com/chris/forum-miniapp-store/pkg/store"
	"github.com/go-chi/chi/v5"
)

// Store is the part of the state store exposed over HTTP.
type Store interface {
	Snapshot() store.State
	SortedNodes() []models.Node
	SetArticle(article models.Article)
	LoadThreads(ctx context.Context, q store.ThreadQuery) *store.Task
	LoadNodeList(ctx context.Context) *store.Task
	LoadNodeDetail(ctx context.Context, nodeID int) *store.Task
	LoadUserProfile(ctx context.Context, userID int) *store.Task
	LoadDiscuss(ctx context.Context, threadID int) *store.Task
}

// Make sure the store conforms to the interface
var _ Store = (*store.Store)(nil)

// TaskResponse is returned when an action has been dispatched.
type TaskResponse struct {
	TaskID string      `json:"taskId"`
	Field  store.Field `json:"field"`
	URL    string      `json:"url"`
}

// ApiHandler exposes the store to a UI shell.
type ApiHandler struct {
	Store Store
}

// NewApiHandler creates a new ApiHandler with a store dependency.
func NewApiHandler(s Store) *ApiHandler {
	return &ApiHandler{Store: s}
}

// Register mounts the handler's routes on r.
func (h *ApiHandler) Register(r chi.Router) {
	r.Get("/state", h.GetState)
	r.Get("/nodes/sorted", h.GetSortedNodes)
	r.Put("/article", h.PutArticle)
	r.Post("/threads", h.LoadThreads)
	r.Post("/threads/{id}/discuss", h.LoadDiscuss)
	r.Post("/nodes", h.LoadNodeList)
	r.Post("/nodes/{id}", h.LoadNodeDetail)
	r.Post("/members/{id}", h.LoadUserProfile)
}

// GetState returns a snapshot of the whole state.
func (h *ApiHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Snapshot())
}

// GetSortedNodes returns the node list ordered by topic count.
func (h *ApiHandler) GetSortedNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.SortedNodes())
}

// PutArticle replaces the current article.
func (h *ApiHandler) PutArticle(w http.ResponseWriter, r *http.Request) {
	var article models.Article
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	h.Store.SetArticle(article)
	w.WriteHeader(http.StatusNoContent)
}

// LoadThreads dispatches the thread router with the query string as payload.
func (h *ApiHandler) LoadThreads(w http.ResponseWriter, r *http.Request) {
	q := store.ThreadQuery{
		Name:     store.ThreadSource(r.URL.Query().Get("name")),
		Username: r.URL.Query().Get("username"),
	}
	switch q.Name {
	case store.SourceNode:
		raw := r.URL.Query().Get("node_id")
		if raw == "" {
			http.Error(w, "Missing node_id for name=node", http.StatusBadRequest)
			return
		}
		nodeID, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid node_id: %q", raw), http.StatusBadRequest)
			return
		}
		q.NodeID = nodeID
	case store.SourceUser:
		if q.Username == "" {
			http.Error(w, "Missing username for name=user", http.StatusBadRequest)
			return
		}
	}

	h.dispatch(w, r, h.Store.LoadThreads(dispatchContext(r), q))
}

// LoadNodeList dispatches a node list fetch.
func (h *ApiHandler) LoadNodeList(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.Store.LoadNodeList(dispatchContext(r)))
}

// LoadNodeDetail dispatches a node detail fetch.
func (h *ApiHandler) LoadNodeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, h.Store.LoadNodeDetail(dispatchContext(r), id))
}

// LoadUserProfile dispatches a user profile fetch.
func (h *ApiHandler) LoadUserProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, h.Store.LoadUserProfile(dispatchContext(r), id))
}

// LoadDiscuss dispatches a discussion fetch for a thread.
func (h *ApiHandler) LoadDiscuss(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, h.Store.LoadDiscuss(dispatchContext(r), id))
}

// dispatch answers 202 with the task, or with ?wait=true blocks until the
// task settles and answers with the resulting state.
func (h *ApiHandler) dispatch(w http.ResponseWriter, r *http.Request, task *store.Task) {
	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, TaskResponse{TaskID: task.ID(), Field: task.Field(), URL: task.URL()})
		return
	}

	select {
	case <-task.Done():
	case <-r.Context().Done():
		return
	}

	if err := task.Err(); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.Canceled) {
			status = http.StatusConflict
		} else if errors.Is(err, store.ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, fmt.Sprintf("Failed to load %s: %v", task.Field(), err), status)
		return
	}
	writeJSON(w, http.StatusOK, h.Store.Snapshot())
}

// dispatchContext detaches the request from the HTTP request's lifetime.
func dispatchContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid id: %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
