// Package api provides HTTP handlers for the querygate REST API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"querygate/internal/domain"
	"querygate/internal/service"
)

// APIHandler holds the services behind the REST API.
type APIHandler struct {
	requests    *service.ExecutionRequestService
	connections *service.ConnectionService
	users       *service.UserService
	logger      *slog.Logger
}

// NewHandler creates a new APIHandler with all required service dependencies.
func NewHandler(
	requests *service.ExecutionRequestService,
	connections *service.ConnectionService,
	users *service.UserService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		requests:    requests,
		connections: connections,
		users:       users,
		logger:      logger,
	}
}

// Routes mounts all API endpoints on the given router.
func (h *APIHandler) Routes(r chi.Router) {
	r.Route("/execution-requests", func(r chi.Router) {
		r.Post("/", h.createExecutionRequest)
		r.Get("/", h.listExecutionRequests)
		r.Get("/{requestID}", h.getExecutionRequest)
		r.Patch("/{requestID}", h.updateExecutionRequest)
		r.Post("/{requestID}/comments", h.addComment)
		r.Post("/{requestID}/reviews", h.addReview)
		r.Post("/{requestID}/execute", h.executeRequest)
	})

	r.Route("/connections", func(r chi.Router) {
		r.Post("/", h.createConnection)
		r.Get("/", h.listConnections)
		r.Get("/{connectionID}", h.getConnection)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Get("/", h.listUsers)
		r.Get("/{userID}", h.getUser)
	})
}

// --- helpers ---

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// ReviewStatus is set on execution rejections so clients can show the
	// blocking status without a second round trip.
	ReviewStatus string `json:"reviewStatus,omitempty"`
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	code := httpStatusFromDomainError(err)
	resp := errorResponse{Code: code, Message: err.Error()}

	var notApproved *domain.NotApprovedError
	if errors.As(err, &notApproved) {
		resp.ReviewStatus = string(notApproved.Status)
	}
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		resp.Message = "internal server error"
	}
	h.writeJSON(w, code, resp)
}

func (h *APIHandler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return false
	}
	return true
}

// pageFromQuery extracts a PageRequest from max_results/page_token params.
func pageFromQuery(r *http.Request) domain.PageRequest {
	p := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.MaxResults = n
		}
	}
	return p
}
