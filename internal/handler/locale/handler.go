package locale

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	localeModel "github.com/sumoniya0512-oss/mobifix/internal/model/locale"
	"github.com/sumoniya0512-oss/mobifix/pkg/utils"
)

// Handler serves the bundled language packs.
type Handler struct {
	store localeModel.Store
}

// New creates the locale handler.
func New(store localeModel.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers the locale routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/locales", func(lr chi.Router) {
		lr.Get("/", h.handleList)
		lr.Get("/{language}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	language, ok := localeModel.ParseLanguage(chi.URLParam(r, "language"))
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "language must be one of en, ta, hi")
		return
	}

	pack, ok := h.store.FindByLanguage(language)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "language pack not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, pack)
}
