package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tutorgen/internal/api/shared"
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/registry"
	"github.com/phrazzld/tutorgen/internal/service"
)

// RegistryOpener opens a collection's registry for a content combination.
type RegistryOpener interface {
	Open(collection string, subdirs []string, opts ...registry.Option) (*registry.Registry, error)
}

// RegistryHandler serves read access to the generated-content registries.
type RegistryHandler struct {
	registries RegistryOpener
}

// NewRegistryHandler creates a RegistryHandler.
func NewRegistryHandler(registries RegistryOpener) *RegistryHandler {
	return &RegistryHandler{registries: registries}
}

// ListEntries handles GET /api/registry/{collection}?contents=a,b.
func (h *RegistryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.open(w, r)
	if !ok {
		return
	}
	entries, err := reg.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list registry")
		return
	}
	if entries == nil {
		entries = []registry.Entry{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// GetEntry handles GET /api/registry/{collection}/{id}?contents=a,b.
func (h *RegistryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	reg, ok := h.open(w, r)
	if !ok {
		return
	}
	item, err := reg.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load registry item")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

func (h *RegistryHandler) open(w http.ResponseWriter, r *http.Request) (*registry.Registry, bool) {
	collection := chi.URLParam(r, "collection")
	if collection != service.QuestionsCollection && collection != service.ChallengesCollection {
		shared.RespondWithError(w, r, http.StatusNotFound, "Unknown collection")
		return nil, false
	}

	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("contents"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		HandleAPIError(w, r, fmt.Errorf("%w: contents query parameter is required", domain.ErrValidation), "")
		return nil, false
	}

	reg, err := h.registries.Open(collection, []string{registry.ComboKey(ids)})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to open registry")
		return nil, false
	}
	return reg, true
}
