package handler

import (
	"context"
	"net/http"

	"github.com/2sn/starfit-server/internal/common"

	"github.com/go-chi/chi/v5"
)

type Unsubscriber interface {
	Unsubscribe(ctx context.Context, token string) (string, error)
}

// UnsubscribeHandler serves the link of the List-Unsubscribe header. POST is the
// one-click form mail clients use.
type UnsubscribeHandler struct {
	unsubscribeService Unsubscriber
}

func NewUnsubscribeHandler(us Unsubscriber) *UnsubscribeHandler {
	return &UnsubscribeHandler{unsubscribeService: us}
}

func (h *UnsubscribeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.unsubscribe)
	r.Post("/", h.unsubscribe)
}

func (h *UnsubscribeHandler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	// FormValue reads the query string as well as a posted form.
	email, err := h.unsubscribeService.Unsubscribe(r.Context(), r.FormValue("token"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": email + " will receive no further StarFit emails"})
}
