package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"querygate/internal/domain"
	"querygate/internal/service"
)

type executionRequestResponse struct {
	ID           string    `json:"id"`
	ConnectionID string    `json:"connectionId"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Statement    string    `json:"statement"`
	ReadOnly     bool      `json:"readOnly"`
	AuthorID     string    `json:"authorId"`
	CreatedAt    time.Time `json:"createdAt"`
	ReviewStatus string    `json:"reviewStatus,omitempty"`
}

type eventResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`

	Comment string `json:"comment,omitempty"`
	Action  string `json:"action,omitempty"`

	PreviousQuery         string `json:"previousQuery,omitempty"`
	PreviousCommand       string `json:"previousCommand,omitempty"`
	PreviousContainerName string `json:"previousContainerName,omitempty"`
	PreviousPodName       string `json:"previousPodName,omitempty"`
	PreviousNamespace     string `json:"previousNamespace,omitempty"`

	Query         string `json:"query,omitempty"`
	Command       string `json:"command,omitempty"`
	ContainerName string `json:"containerName,omitempty"`
	PodName       string `json:"podName,omitempty"`
	Namespace     string `json:"namespace,omitempty"`
}

type executionRequestDetailResponse struct {
	executionRequestResponse
	Events []eventResponse `json:"events"`
}

type listResponse struct {
	Data          interface{} `json:"data"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

func requestToAPI(req *domain.ExecutionRequest, status domain.ReviewStatus) executionRequestResponse {
	return executionRequestResponse{
		ID:           req.ID,
		ConnectionID: req.ConnectionID,
		Type:         string(req.Type),
		Title:        req.Title,
		Description:  req.Description,
		Statement:    req.Statement,
		ReadOnly:     req.ReadOnly,
		AuthorID:     req.AuthorID,
		CreatedAt:    req.CreatedAt,
		ReviewStatus: string(status),
	}
}

func eventToAPI(evt domain.Event) eventResponse {
	meta := evt.Meta()
	out := eventResponse{
		ID:        meta.ID,
		Type:      string(evt.Type()),
		AuthorID:  meta.AuthorID,
		CreatedAt: meta.CreatedAt,
	}
	switch e := evt.(type) {
	case *domain.CommentEvent:
		out.Comment = e.Comment
	case *domain.ReviewEvent:
		out.Comment = e.Comment
		out.Action = string(e.Action)
	case *domain.EditEvent:
		out.PreviousQuery = e.PreviousQuery
		out.PreviousCommand = e.PreviousCommand
		out.PreviousContainerName = e.PreviousContainerName
		out.PreviousPodName = e.PreviousPodName
		out.PreviousNamespace = e.PreviousNamespace
	case *domain.ExecuteEvent:
		out.Query = e.Query
		out.Command = e.Command
		out.ContainerName = e.ContainerName
		out.PodName = e.PodName
		out.Namespace = e.Namespace
	}
	return out
}

func detailsToAPI(det *service.RequestDetails) executionRequestDetailResponse {
	events := make([]eventResponse, len(det.Events))
	for i, evt := range det.Events {
		events[i] = eventToAPI(evt)
	}
	return executionRequestDetailResponse{
		executionRequestResponse: requestToAPI(det.Request, det.ReviewStatus),
		Events:                   events,
	}
}

func (h *APIHandler) createExecutionRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ConnectionID string `json:"connectionId"`
		Type         string `json:"type"`
		Title        string `json:"title"`
		Description  string `json:"description"`
		Statement    string `json:"statement"`
		ReadOnly     bool   `json:"readOnly"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	req, err := h.requests.Create(r.Context(), domain.CreateExecutionRequestInput{
		ConnectionID: body.ConnectionID,
		Type:         domain.RequestType(body.Type),
		Title:        body.Title,
		Description:  body.Description,
		Statement:    body.Statement,
		ReadOnly:     body.ReadOnly,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, requestToAPI(req, domain.StatusAwaitingApproval))
}

func (h *APIHandler) listExecutionRequests(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	items, total, err := h.requests.List(r.Context(), page)
	if err != nil {
		h.writeError(w, err)
		return
	}

	data := make([]executionRequestResponse, len(items))
	for i, item := range items {
		data[i] = requestToAPI(&item.Request, item.ReviewStatus)
	}
	h.writeJSON(w, http.StatusOK, listResponse{
		Data:          data,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *APIHandler) getExecutionRequest(w http.ResponseWriter, r *http.Request) {
	det, err := h.requests.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detailsToAPI(det))
}

func (h *APIHandler) updateExecutionRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Statement   *string `json:"statement"`
		ReadOnly    *bool   `json:"readOnly"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	det, err := h.requests.Update(r.Context(), chi.URLParam(r, "requestID"), domain.UpdateExecutionRequestInput{
		Title:       body.Title,
		Description: body.Description,
		Statement:   body.Statement,
		ReadOnly:    body.ReadOnly,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detailsToAPI(det))
}

func (h *APIHandler) addComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Comment string `json:"comment"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	evt, err := h.requests.AddComment(r.Context(), chi.URLParam(r, "requestID"), body.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, eventToAPI(evt))
}

func (h *APIHandler) addReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action  string `json:"action"`
		Comment string `json:"comment"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	evt, err := h.requests.AddReview(r.Context(), chi.URLParam(r, "requestID"),
		domain.ReviewAction(body.Action), body.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, eventToAPI(evt))
}

func (h *APIHandler) executeRequest(w http.ResponseWriter, r *http.Request) {
	evt, err := h.requests.Execute(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, eventToAPI(evt))
}
