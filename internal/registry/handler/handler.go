package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agaskrobot/fenix-university-registry/internal/platform/middleware"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/models"
	dErrors "github.com/agaskrobot/fenix-university-registry/pkg/domain-errors"
	"github.com/agaskrobot/fenix-university-registry/pkg/requestcontext"
)

// Service defines the registry operations the HTTP layer exposes.
type Service interface {
	AddUniversity(ctx context.Context, name, accountID string) (*models.University, error)
	GetAllUniversities(ctx context.Context) ([]models.Entry, error)
	GetUniversitiesByName(ctx context.Context, name string) ([]models.University, error)
	GetUniversityByAccountID(ctx context.Context, accountID string) (*models.University, error)
}

// Handler wires registry endpoints to the service. It stays thin: identity
// comes from the middleware chain, authorization and invariants live in the
// service.
type Handler struct {
	registry  Service
	logger    *slog.Logger
	validator middleware.IdentityValidator
}

// New creates a registry Handler.
func New(registry Service, logger *slog.Logger, validator middleware.IdentityValidator) *Handler {
	return &Handler{
		registry:  registry,
		logger:    logger,
		validator: validator,
	}
}

// Register registers the registry routes with the chi router. Reads are
// public; the write route requires an attested caller identity.
func (h *Handler) Register(r chi.Router) {
	r.Route("/registry/universities", func(r chi.Router) {
		r.Get("/", h.handleListUniversities)
		r.Get("/{accountID}", h.handleGetUniversity)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity(h.validator, h.logger))
			r.Post("/", h.handleAddUniversity)
		})
	})
}

type addUniversityRequest struct {
	Name      string `json:"name"`
	AccountID string `json:"account_id"`
}

// handleAddUniversity registers a university. Owner-only; any other attested
// identity gets 401 without learning whether the account ID is taken.
func (h *Handler) handleAddUniversity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addUniversityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid add university request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		h.writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	u, err := h.registry.AddUniversity(ctx, req.Name, req.AccountID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to add university",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, u)
}

// handleListUniversities lists the whole registry, or one name bucket when
// the name query parameter is present.
func (h *Handler) handleListUniversities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if name := r.URL.Query().Get("name"); name != "" {
		universities, err := h.registry.GetUniversitiesByName(ctx, name)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, universities)
		return
	}

	entries, err := h.registry.GetAllUniversities(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// handleGetUniversity returns the record under an account ID, or 404 when
// absent.
func (h *Handler) handleGetUniversity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := chi.URLParam(r, "accountID")

	u, err := h.registry.GetUniversityByAccountID(ctx, accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError centralizes domain error translation to HTTP responses so every
// endpoint emits the same JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             string(dErrors.CodeFor(err)),
		"error_description": dErrors.MessageFor(err),
	})
}
