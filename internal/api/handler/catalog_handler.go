package handler

import (
	"net/http"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/catalog"

	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listDatabases)
}

func (h *CatalogHandler) listDatabases(w http.ResponseWriter, r *http.Request) {
	databases := []catalog.Database{}
	if h.catalog != nil {
		databases = append(databases, h.catalog.Databases...)
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"databases": databases})
}
