package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"querygate/internal/domain"
)

type connectionResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	ReviewsRequired int       `json:"reviewsRequired"`
	CreatedAt       time.Time `json:"createdAt"`
}

func connectionToAPI(conn *domain.DatasourceConnection) connectionResponse {
	return connectionResponse{
		ID:              conn.ID,
		Name:            conn.Name,
		Description:     conn.Description,
		Type:            string(conn.Type),
		ReviewsRequired: conn.ReviewsRequired,
		CreatedAt:       conn.CreatedAt,
	}
}

func (h *APIHandler) createConnection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		Type            string `json:"type"`
		ReviewsRequired int    `json:"reviewsRequired"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	conn, err := h.connections.Create(r.Context(), domain.CreateConnectionInput{
		Name:            body.Name,
		Description:     body.Description,
		Type:            domain.DatasourceType(body.Type),
		ReviewsRequired: body.ReviewsRequired,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, connectionToAPI(conn))
}

func (h *APIHandler) listConnections(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	conns, total, err := h.connections.List(r.Context(), page)
	if err != nil {
		h.writeError(w, err)
		return
	}

	data := make([]connectionResponse, len(conns))
	for i := range conns {
		data[i] = connectionToAPI(&conns[i])
	}
	h.writeJSON(w, http.StatusOK, listResponse{
		Data:          data,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *APIHandler) getConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.connections.Get(r.Context(), chi.URLParam(r, "connectionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, connectionToAPI(conn))
}
