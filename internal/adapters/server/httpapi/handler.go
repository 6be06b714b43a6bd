// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/evanschultz/taskboard/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// actorHeader names the optional caller identity used for activity attribution.
const actorHeader = "X-Actor"

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	service common.Service
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// setStatusRequest is the body for POST /tasks/{id}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// NewHandler constructs one HTTP API adapter over the transport service.
func NewHandler(service common.Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch {
	case path == "tasks":
		switch r.Method {
		case http.MethodGet:
			h.handleListTasks(w, r)
		case http.MethodPost:
			h.handleCreateTask(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	case path == "analytics":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleAnalytics(w, r)
		return
	case path == "activity":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListActivity(w, r)
		return
	case path == "notifications":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListNotifications(w, r)
		return
	case path == "notifications/read_all":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMarkAllNotificationsRead(w, r)
		return
	}

	if taskID, ok := parseIDPath(path, "tasks/", "/status"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleSetTaskStatus(w, r, taskID)
		return
	}
	if notificationID, ok := parseIDPath(path, "notifications/", "/read"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMarkNotificationRead(w, r, notificationID)
		return
	}
	if taskID, ok := parseIDPath(path, "tasks/", ""); ok {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetTask(w, r, taskID)
		return
	}

	writeJSONError(w, http.StatusNotFound, APIError{
		Code:    "not_found",
		Message: fmt.Sprintf("route %q not found", r.URL.Path),
	})
}

// handleListTasks serves GET /tasks with repeatable filter parameters.
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tasks, err := h.service.ListTasks(r.Context(), common.ListTasksRequest{
		Priorities: splitValues(query["priority"]),
		Assignees:  query["assignee"],
		Projects:   query["project"],
		Statuses:   splitValues(query["status"]),
		Query:      query.Get("q"),
		From:       query.Get("from"),
		To:         query.Get("to"),
		Sort:       query.Get("sort"),
		Direction:  query.Get("dir"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
	})
}

// handleCreateTask serves POST /tasks.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req common.CreateTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.Actor = r.Header.Get(actorHeader)
	task, err := h.service.CreateTask(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.Header().Set("Location", "/tasks/"+task.ID)
	writeJSON(w, http.StatusCreated, task)
}

// handleGetTask serves GET /tasks/{id}.
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := h.service.GetTask(r.Context(), taskID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleSetTaskStatus serves POST /tasks/{id}/status.
func (h *Handler) handleSetTaskStatus(w http.ResponseWriter, r *http.Request, taskID string) {
	var req setStatusRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.service.SetTaskStatus(r.Context(), common.SetTaskStatusRequest{
		TaskID: taskID,
		Status: req.Status,
		Actor:  r.Header.Get(actorHeader),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleAnalytics serves GET /analytics.
func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Analytics(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleListActivity serves GET /activity?task_id=&limit=.
func (h *Handler) handleListActivity(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"))
	if err != nil {
		writeErrorFrom(w, fmt.Errorf("limit: %w", errors.Join(common.ErrInvalidRequest, err)))
		return
	}
	events, err := h.service.ListActivity(r.Context(), common.ListActivityRequest{
		TaskID: query.Get("task_id"),
		Limit:  limit,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
	})
}

// handleListNotifications serves GET /notifications?unread=true.
func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly, err := parseOptionalBool(r.URL.Query().Get("unread"))
	if err != nil {
		writeErrorFrom(w, fmt.Errorf("unread: %w", errors.Join(common.ErrInvalidRequest, err)))
		return
	}
	notes, err := h.service.ListNotifications(r.Context(), unreadOnly)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	unread := 0
	for _, note := range notes {
		if note.ReadAt == nil {
			unread++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notes,
		"unread":        unread,
	})
}

// handleMarkNotificationRead serves POST /notifications/{id}/read.
func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request, notificationID string) {
	note, err := h.service.MarkNotificationRead(r.Context(), notificationID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// handleMarkAllNotificationsRead serves POST /notifications/read_all.
func (h *Handler) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.MarkAllNotificationsRead(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"marked": count,
	})
}

// parseIDPath extracts one id segment between prefix and suffix.
func parseIDPath(path, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix))
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// splitValues accepts both repeated parameters and comma-separated lists.
func splitValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for part := range strings.SplitSeq(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseOptionalInt parses an optional integer query value.
func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// parseOptionalBool parses an optional boolean query value.
func parseOptionalBool(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	var fieldErrs *common.FieldErrors
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.As(err, &fieldErrs):
		fields := make(map[string]any, len(fieldErrs.Fields))
		for key, msg := range fieldErrs.Fields {
			fields[key] = msg
		}
		writeJSONError(w, http.StatusUnprocessableEntity, APIError{
			Code:    "validation_failed",
			Message: err.Error(),
			Hint:    "Fix the listed fields and resubmit.",
			Context: map[string]any{"fields": fields},
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
