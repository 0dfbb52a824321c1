package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agaskrobot/fenix-university-registry/internal/audit"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/metrics"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/models"
	dErrors "github.com/agaskrobot/fenix-university-registry/pkg/domain-errors"
	"github.com/agaskrobot/fenix-university-registry/pkg/platform/sentinel"
	"github.com/agaskrobot/fenix-university-registry/pkg/requestcontext"
)

// UniversityStore is the persistence contract the service consumes. The
// store keeps both indexes consistent: a successful create lands in the
// primary (by account) and secondary (by name) views together, and a failed
// create lands in neither.
type UniversityStore interface {
	CreateIfAccountAvailable(ctx context.Context, u *models.University) error
	FindByAccountID(ctx context.Context, accountID string) (*models.University, error)
	ListByName(ctx context.Context, name string) ([]models.University, error)
	ListAll(ctx context.Context) ([]models.Entry, error)
	Count(ctx context.Context) (int, error)
}

// Service is the university registry. The owner account is fixed at
// construction and is the only identity allowed to register universities;
// read operations are open to any caller.
type Service struct {
	ownerAccount string
	universities UniversityStore
	logger       *slog.Logger
	metrics      *metrics.Metrics
	publisher    audit.Publisher
}

// Option configures optional service dependencies.
type Option func(s *Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics attaches registry metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditPublisher attaches an audit sink for registry mutations.
func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// New constructs the registry service. ownerAccount must be non-empty; an
// ownerless registry would make every write unauthorized forever, which is
// always a wiring mistake.
func New(ownerAccount string, universities UniversityStore, opts ...Option) (*Service, error) {
	if ownerAccount == "" {
		return nil, fmt.Errorf("owner account is required")
	}
	s := &Service{
		ownerAccount: ownerAccount,
		universities: universities,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddUniversity registers a university under a unique account ID.
//
// The owner check runs before anything else: an unauthorized caller learns
// nothing about existing records, not even via a duplicate error. The
// duplicate check and dual-index insert are one atomic store operation, so a
// failed call leaves the registry exactly as it was.
func (s *Service) AddUniversity(ctx context.Context, name, accountID string) (*models.University, error) {
	start := time.Now()

	caller := requestcontext.CallerAccount(ctx)
	if caller != s.ownerAccount {
		s.rejected("unauthorized")
		s.logger.WarnContext(ctx, "university registration denied",
			"caller", caller,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "permission denied")
	}

	u, err := models.NewUniversity(name, accountID)
	if err != nil {
		s.rejected("validation")
		return nil, err
	}

	if err := s.universities.CreateIfAccountAvailable(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			s.rejected("duplicate")
			return nil, dErrors.New(dErrors.CodeConflict, "account already exists")
		}
		s.logger.ErrorContext(ctx, "university registration failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to register university", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistered()
		s.metrics.ObserveRegister(start)
	}
	s.emit(ctx, audit.Event{
		Timestamp:      requestcontext.Now(ctx),
		Action:         audit.ActionUniversityRegistered,
		ActorAccount:   caller,
		SubjectAccount: u.AccountID,
		RequestID:      requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "university registered",
		"account_id", u.AccountID,
		"name", u.Name,
	)

	return u, nil
}

// GetAllUniversities lists every record paired with its account ID, in the
// order they were registered. An empty registry yields an empty slice.
func (s *Service) GetAllUniversities(ctx context.Context) ([]models.Entry, error) {
	start := time.Now()
	defer s.observeList(start)

	entries, err := s.universities.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list universities", err)
	}
	return entries, nil
}

// GetUniversitiesByName returns every university registered under the given
// name, in registration order. Absence is an empty slice, never an error.
func (s *Service) GetUniversitiesByName(ctx context.Context, name string) ([]models.University, error) {
	start := time.Now()
	defer s.observeList(start)

	universities, err := s.universities.ListByName(ctx, name)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list universities by name", err)
	}
	return universities, nil
}

// GetUniversityByAccountID returns the single record under the given account
// ID. Absence comes back as a CodeNotFound domain error, which the transport
// layer renders as an absent result rather than a failure.
func (s *Service) GetUniversityByAccountID(ctx context.Context, accountID string) (*models.University, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveLookup(start)
		}
	}()

	u, err := s.universities.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "university not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to find university", err)
	}
	return u, nil
}

// OwnerAccount exposes the fixed owner identity for wiring and diagnostics.
func (s *Service) OwnerAccount() string {
	return s.ownerAccount
}

func (s *Service) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(reason)
	}
}

func (s *Service) observeList(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveList(start)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
