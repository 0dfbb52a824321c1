package registry

import (
	"log/slog"

	"github.com/agaskrobot/fenix-university-registry/internal/platform/middleware"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/handler"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/service"
)

// Service is the university registry: one owner-only write, three open reads.
type Service = service.Service

// Handler wires HTTP endpoints to the registry service.
type Handler = handler.Handler

// NewService constructs the registry service with required dependencies.
func NewService(ownerAccount string, universities service.UniversityStore, opts ...service.Option) (*Service, error) {
	return service.New(ownerAccount, universities, opts...)
}

// NewHandler constructs an HTTP handler for registry routes.
func NewHandler(s *Service, logger *slog.Logger, validator middleware.IdentityValidator) *Handler {
	return handler.New(s, logger, validator)
}
