// Package handler exposes the public catalog: search, single-body reads, and
// the policy-gated per-subtype mutation routes.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"astrarium/internal/catalog/models"
	catalogservice "astrarium/internal/catalog/service"
	id "astrarium/pkg/domain"
	dErrors "astrarium/pkg/domain-errors"
	"astrarium/pkg/platform/httputil"
	"astrarium/pkg/requestcontext"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves the catalog routes.
type Handler struct {
	service *catalogservice.Service
	logger  *slog.Logger
}

// New builds the catalog handler.
func New(service *catalogservice.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated read routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Route("/celestial-bodies", func(r chi.Router) {
		r.Get("/search", h.searchGet)
		r.Post("/search", h.searchPost)
		r.Get("/{id}", h.get)
	})
}

// RegisterProtected mounts the authenticated per-subtype mutation routes.
// Direct creation bypassing the discovery pipeline is rejected wholesale.
func (h *Handler) RegisterProtected(r chi.Router) {
	for _, t := range []models.BodyType{
		models.TypeStar, models.TypePlanet, models.TypeAsteroid,
		models.TypeSatellite, models.TypeGalaxyQuasar, models.TypeComet,
	} {
		subtype := t
		r.Route("/"+subtype.Slug(), func(r chi.Router) {
			r.Post("/", h.rejectDirectCreate)
			r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
				h.update(w, req, subtype)
			})
			r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
				h.delete(w, req, subtype)
			})
		})
	}
}

// rejectDirectCreate is the tombstone for the legacy direct-creation
// endpoints. Submissions go through the discovery pipeline; this route always
// fails before touching any store.
func (h *Handler) rejectDirectCreate(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnsupported,
		"direct creation is not supported; submit a discovery instead"))
}

func (h *Handler) searchGet(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	h.search(w, r, filter)
}

func (h *Handler) searchPost(w http.ResponseWriter, r *http.Request) {
	var filter models.SearchFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid search payload"))
		return
	}
	h.search(w, r, filter)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, filter models.SearchFilter) {
	page, pageSize := pagination(r)
	items, total, err := h.service.Search(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logError(r, "search failed", err)
		httputil.WriteError(w, err)
		return
	}
	resp := searchResponse{Items: make([]BodyResponse, 0, len(items)), Total: total, Page: page}
	for i := range items {
		resp.Items = append(resp.Items, NewBodyResponse(&items[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	bodyID, err := id.ParseBodyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, err := h.service.Get(r.Context(), bodyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewBodyResponse(body))
}

type updateRequest struct {
	Name    *string         `json:"name"`
	Alias   *string         `json:"alias"`
	Details json.RawMessage `json:"details"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, subtype models.BodyType) {
	bodyID, err := id.ParseBodyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid update payload"))
		return
	}
	in := catalogservice.UpdateInput{Name: req.Name, Alias: req.Alias}
	if len(req.Details) > 0 {
		spec := models.NewSpecialization(subtype)
		if err := json.Unmarshal(req.Details, spec); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid details payload"))
			return
		}
		in.Spec = spec
	}

	ctx := r.Context()
	err = h.service.Update(ctx, bodyID, subtype, in,
		requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.logError(r, "body update rejected", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, subtype models.BodyType) {
	bodyID, err := id.ParseBodyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	err = h.service.Delete(ctx, bodyID, subtype,
		requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.logError(r, "body delete rejected", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"error", err,
		"path", r.URL.Path,
		"request_id", requestcontext.RequestID(r.Context()),
	)
}

// filterFromQuery builds the coarse filter the GET variant supports: free
// text, type membership, subclass and sorting. Range blocks need the POST
// body.
func filterFromQuery(r *http.Request) models.SearchFilter {
	q := r.URL.Query()
	filter := models.SearchFilter{
		Text:     q.Get("text"),
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_desc") == "true",
	}
	if raw := q.Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			if t := models.BodyType(n); t.Valid() {
				filter.Types = append(filter.Types, t)
			}
		}
	}
	if raw := q.Get("subclass_id"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.SubclassID = &n
		}
	}
	return filter
}

// pagination clamps page and page_size so the engine never sees zero or
// negative values.
func pagination(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, defaultPageSize
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = min(n, maxPageSize)
		}
	}
	return page, pageSize
}
