package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"querygate/internal/domain"
	"querygate/internal/service"
)

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
}

func userToAPI(user *domain.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		CreatedAt:   user.CreatedAt,
	}
}

func (h *APIHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		IsAdmin     bool   `json:"isAdmin"`
	}
	if !h.decodeBody(w, r, &body) {
		return
	}

	user, err := h.users.Create(r.Context(), service.CreateUserInput{
		Email:       body.Email,
		DisplayName: body.DisplayName,
		IsAdmin:     body.IsAdmin,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, userToAPI(user))
}

func (h *APIHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	users, total, err := h.users.List(r.Context(), page)
	if err != nil {
		h.writeError(w, err)
		return
	}

	data := make([]userResponse, len(users))
	for i := range users {
		data[i] = userToAPI(&users[i])
	}
	h.writeJSON(w, http.StatusOK, listResponse{
		Data:          data,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *APIHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, userToAPI(user))
}
