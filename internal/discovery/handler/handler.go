// Package handler exposes the discovery workflow over HTTP: submission,
// owner reads and edits, withdrawal, and the admin moderation route.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	cataloghandler "astrarium/internal/catalog/handler"
	catalog "astrarium/internal/catalog/models"
	"astrarium/internal/discovery/models"
	discoveryservice "astrarium/internal/discovery/service"
	"astrarium/internal/platform/middleware"
	id "astrarium/pkg/domain"
	dErrors "astrarium/pkg/domain-errors"
	"astrarium/pkg/platform/httputil"
	"astrarium/pkg/requestcontext"
)

// Handler serves the discovery routes.
type Handler struct {
	service *discoveryservice.Service
	logger  *slog.Logger
}

// New builds the discovery handler.
func New(service *discoveryservice.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the workflow routes. The caller wraps the router in
// RequireAuth; moderation additionally requires the admin role.
func (h *Handler) Register(r chi.Router) {
	r.Route("/discoveries", func(r chi.Router) {
		r.Post("/{subtype}", h.submit)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.updateTitle)
		r.Delete("/{id}", h.delete)
		r.With(middleware.RequireAdmin(h.logger)).Post("/{id}/moderate", h.moderate)
	})
}

type submitRequest struct {
	Title   string          `json:"title"`
	Details json.RawMessage `json:"details"`
}

type detailsEnvelope struct {
	Name  string  `json:"name"`
	Alias *string `json:"alias"`
}

type discoveryResponse struct {
	ID          string                        `json:"id"`
	Title       string                        `json:"title"`
	Status      string                        `json:"status"`
	AliasStatus *string                       `json:"alias_status,omitempty"`
	UserID      string                        `json:"user_id"`
	Body        cataloghandler.BodyResponse   `json:"body"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

func newDiscoveryResponse(d *models.Discovery, body *catalog.CelestialBody) discoveryResponse {
	resp := discoveryResponse{
		ID:        d.ID.String(),
		Title:     d.Title,
		Status:    d.Status.String(),
		UserID:    d.UserID.String(),
		Body:      cataloghandler.NewBodyResponse(body),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.AliasStatus != nil {
		s := d.AliasStatus.String()
		resp.AliasStatus = &s
	}
	return resp
}

// submit decodes the polymorphic payload: the route segment selects the
// variant, details carries the common name/alias plus the scientific fields.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	subtype, ok := catalog.TypeFromSlug(chi.URLParam(r, "subtype"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnsupported,
			"objects of this type cannot be submitted as discoveries"))
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission payload"))
		return
	}
	var envelope detailsEnvelope
	if len(req.Details) > 0 {
		if err := json.Unmarshal(req.Details, &envelope); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid details payload"))
			return
		}
	}
	spec := catalog.NewSpecialization(subtype)
	if len(req.Details) > 0 {
		if err := json.Unmarshal(req.Details, spec); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid details payload"))
			return
		}
	}

	ctx := r.Context()
	d, body, err := h.service.Submit(ctx, models.SubmitInput{
		Title: req.Title,
		Name:  envelope.Name,
		Alias: envelope.Alias,
		Spec:  spec,
	}, requestcontext.UserID(ctx))
	if err != nil {
		h.logError(r, "submission rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newDiscoveryResponse(d, body))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	discoveryID, err := id.ParseDiscoveryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	d, body, err := h.service.Get(ctx, discoveryID,
		requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newDiscoveryResponse(d, body))
}

type updateTitleRequest struct {
	Title string `json:"title"`
}

func (h *Handler) updateTitle(w http.ResponseWriter, r *http.Request) {
	discoveryID, err := id.ParseDiscoveryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req updateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid update payload"))
		return
	}
	ctx := r.Context()
	err = h.service.UpdateTitle(ctx, discoveryID, req.Title,
		requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.logError(r, "discovery update rejected", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	discoveryID, err := id.ParseDiscoveryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx := r.Context()
	err = h.service.Delete(ctx, discoveryID,
		requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.logError(r, "discovery delete rejected", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moderateRequest struct {
	Status      int  `json:"status"`
	AliasStatus *int `json:"alias_status"`
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request) {
	discoveryID, err := id.ParseDiscoveryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req moderateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid moderation payload"))
		return
	}
	in := models.ModerateInput{Status: models.Status(req.Status)}
	if req.AliasStatus != nil {
		as := models.AliasStatus(*req.AliasStatus)
		in.AliasStatus = &as
	}

	ctx := r.Context()
	err = h.service.Moderate(ctx, discoveryID, in,
		requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.logError(r, "moderation rejected", err)
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
