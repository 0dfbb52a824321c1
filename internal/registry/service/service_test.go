package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/agaskrobot/fenix-university-registry/internal/audit"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/models"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/store/university"
	dErrors "github.com/agaskrobot/fenix-university-registry/pkg/domain-errors"
	"github.com/agaskrobot/fenix-university-registry/pkg/requestcontext"
)

const ownerAccount = "registry.admin"

type RegistryServiceSuite struct {
	suite.Suite
	svc       *Service
	publisher *audit.MemoryPublisher
	ownerCtx  context.Context
	userCtx   context.Context
	anonCtx   context.Context
}

func (s *RegistryServiceSuite) SetupTest() {
	s.publisher = audit.NewMemoryPublisher()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	svc, err := New(ownerAccount, university.NewInMemory(),
		WithLogger(logger),
		WithAuditPublisher(s.publisher),
	)
	s.Require().NoError(err)
	s.svc = svc

	s.ownerCtx = requestcontext.WithCallerAccount(context.Background(), ownerAccount)
	s.userCtx = requestcontext.WithCallerAccount(context.Background(), "somebody.else")
	s.anonCtx = context.Background()
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) TestConstructionRequiresOwner() {
	_, err := New("", university.NewInMemory())
	s.Require().Error(err)
}

func (s *RegistryServiceSuite) TestEmptyRegistry() {
	entries, err := s.svc.GetAllUniversities(s.anonCtx)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *RegistryServiceSuite) TestAddAndReadBack() {
	u, err := s.svc.AddUniversity(s.ownerCtx, "Acme U", "acme.test")
	s.Require().NoError(err)
	s.Equal("Acme U", u.Name)
	s.Equal("acme.test", u.AccountID)

	found, err := s.svc.GetUniversityByAccountID(s.anonCtx, "acme.test")
	s.Require().NoError(err)
	s.Equal(*u, *found)

	bucket, err := s.svc.GetUniversitiesByName(s.anonCtx, "Acme U")
	s.Require().NoError(err)
	s.Require().Len(bucket, 1)
	s.Equal(*u, bucket[0])
}

func (s *RegistryServiceSuite) TestDuplicateAccountRejectedWithoutStateChange() {
	_, err := s.svc.AddUniversity(s.ownerCtx, "State College", "state.test")
	s.Require().NoError(err)

	before, err := s.svc.GetAllUniversities(s.anonCtx)
	s.Require().NoError(err)

	_, err = s.svc.AddUniversity(s.ownerCtx, "Other", "state.test")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	after, err := s.svc.GetAllUniversities(s.anonCtx)
	s.Require().NoError(err)
	s.Equal(before, after)

	// The losing write must not leak into the secondary index either.
	bucket, err := s.svc.GetUniversitiesByName(s.anonCtx, "Other")
	s.Require().NoError(err)
	s.Empty(bucket)

	// The surviving record is the original.
	found, err := s.svc.GetUniversityByAccountID(s.anonCtx, "state.test")
	s.Require().NoError(err)
	s.Equal("State College", found.Name)
}

func (s *RegistryServiceSuite) TestNonOwnerRejected() {
	s.Run("non-owner write fails with unauthorized", func() {
		_, err := s.svc.AddUniversity(s.userCtx, "X", "x.test")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		_, err = s.svc.GetUniversityByAccountID(s.anonCtx, "x.test")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("anonymous write fails with unauthorized", func() {
		_, err := s.svc.AddUniversity(s.anonCtx, "X", "x.test")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("owner check runs before duplicate check", func() {
		_, err := s.svc.AddUniversity(s.ownerCtx, "Taken", "taken.test")
		s.Require().NoError(err)

		// A non-owner probing an existing account must see unauthorized,
		// not conflict, so they cannot enumerate registered accounts.
		_, err = s.svc.AddUniversity(s.userCtx, "Probe", "taken.test")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *RegistryServiceSuite) TestSharedNamesGroupInOrder() {
	_, err := s.svc.AddUniversity(s.ownerCtx, "Tech Institute", "a.test")
	s.Require().NoError(err)
	_, err = s.svc.AddUniversity(s.ownerCtx, "Tech Institute", "b.test")
	s.Require().NoError(err)

	bucket, err := s.svc.GetUniversitiesByName(s.anonCtx, "Tech Institute")
	s.Require().NoError(err)
	s.Require().Len(bucket, 2)
	s.Equal("a.test", bucket[0].AccountID)
	s.Equal("b.test", bucket[1].AccountID)
}

func (s *RegistryServiceSuite) TestAccountUniquenessAcrossMany() {
	universities := []struct{ name, account string }{
		{"Tech Institute", "a.test"},
		{"Tech Institute", "b.test"},
		{"State College", "c.test"},
		{"Acme U", "d.test"},
	}
	for _, u := range universities {
		_, err := s.svc.AddUniversity(s.ownerCtx, u.name, u.account)
		s.Require().NoError(err)
	}

	entries, err := s.svc.GetAllUniversities(s.anonCtx)
	s.Require().NoError(err)
	s.Require().Len(entries, len(universities))

	seen := map[string]bool{}
	for _, entry := range entries {
		s.False(seen[entry.AccountID], "duplicate account id %s", entry.AccountID)
		seen[entry.AccountID] = true
	}
}

func (s *RegistryServiceSuite) TestValidation() {
	s.Run("empty name", func() {
		_, err := s.svc.AddUniversity(s.ownerCtx, "", "x.test")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("blank account id", func() {
		_, err := s.svc.AddUniversity(s.ownerCtx, "X", "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RegistryServiceSuite) TestAuditTrail() {
	_, err := s.svc.AddUniversity(s.ownerCtx, "Acme U", "acme.test")
	s.Require().NoError(err)

	// Failed attempts do not produce audit events.
	_, _ = s.svc.AddUniversity(s.userCtx, "X", "x.test")
	_, _ = s.svc.AddUniversity(s.ownerCtx, "Dup", "acme.test")

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionUniversityRegistered, events[0].Action)
	s.Equal(ownerAccount, events[0].ActorAccount)
	s.Equal("acme.test", events[0].SubjectAccount)
}

func (s *RegistryServiceSuite) TestNameIsTrimmed() {
	u, err := s.svc.AddUniversity(s.ownerCtx, "  Acme U  ", "acme.test")
	s.Require().NoError(err)
	s.Equal("Acme U", u.Name)
	s.Equal(models.University{Name: "Acme U", AccountID: "acme.test"}, *u)
}
