package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/pkg/logger"
)

// EventDependencies defines the interface for event ingestion.
type EventDependencies interface {
	Submit(ctx context.Context, e model.Event) (string, error)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps   EventDependencies
	logger logger.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies, l logger.Logger) *EventsHandler {
	return &EventsHandler{deps: deps, logger: l}
}

// eventRequest mirrors the OpenAPI schema shared by the event endpoints.
type eventRequest struct {
	Type        string         `json:"type"`
	Source      string         `json:"source"`
	Lines       int            `json:"lines"`
	FilePath    *string        `json:"file_path"`
	DeveloperID string         `json:"developer_id"`
	Timestamp   string         `json:"timestamp"`
	Metadata    model.Metadata `json:"metadata"`

	Language      string   `json:"language"`
	TestFramework string   `json:"test_framework"`
	Coverage      *float64 `json:"coverage"`
	DocType       string   `json:"doc_type"`
}

// toEvent validates the request and converts it into an event of category.
// A zero timestamp is filled in by the service.
func (req eventRequest) toEvent(category model.Category) (model.Event, error) {
	// file_path is informational: the key is required, its value may be empty.
	if req.FilePath == nil {
		return model.Event{}, errors.New("missing file_path")
	}
	src, err := model.ParseSource(req.Source)
	if err != nil {
		return model.Event{}, err
	}

	var ts time.Time
	if req.Timestamp != "" {
		if ts, err = ParseTime(req.Timestamp); err != nil {
			return model.Event{}, err
		}
	}

	e := model.Event{
		Category:      category,
		Source:        src,
		Lines:         req.Lines,
		FilePath:      *req.FilePath,
		DeveloperID:   req.DeveloperID,
		Timestamp:     ts,
		Metadata:      req.Metadata,
		Language:      req.Language,
		TestFramework: req.TestFramework,
		Coverage:      req.Coverage,
		DocType:       req.DocType,
	}
	return e, e.Validate()
}

type eventResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
}

// savedMessages is indexed by model.Category.Index().
var savedMessages = [len(model.Categories)]string{ //nolint:gochecknoglobals // immutable table
	"Code insertion event saved",
	"Test generation event saved",
	"Documentation event saved",
}

// HandlePostEvent handles POST /api/events/ requests. The category comes
// from the body's type field and defaults to code.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}

	category := model.CategoryCode
	if req.Type != "" {
		c, err := model.ParseCategory(req.Type)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		category = c
	}
	h.submit(w, r, op, req, category, "Event saved")
}

// HandlePostCategoryEvent handles POST /api/events/{category} requests.
// The path decides the category regardless of the body.
func (h *EventsHandler) HandlePostCategoryEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_category_event"
	category, err := model.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	h.submit(w, r, op, req, category, savedMessages[category.Index()])
}

func (h *EventsHandler) decode(w http.ResponseWriter, r *http.Request, op string) (eventRequest, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return eventRequest{}, false
	}
	return req, true
}

func (h *EventsHandler) submit(w http.ResponseWriter, r *http.Request, op string, req eventRequest, category model.Category, message string) {
	e, err := req.toEvent(category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id, err := h.deps.Submit(r.Context(), e)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}

	writeJSON(w, http.StatusOK, eventResponse{
		Success:   true,
		Message:   message,
		EventID:   id,
		EventType: string(category),
	})
}
