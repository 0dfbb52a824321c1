//go:build integration

package university_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/agaskrobot/fenix-university-registry/internal/registry/models"
	"github.com/agaskrobot/fenix-university-registry/internal/registry/store/university"
	"github.com/agaskrobot/fenix-university-registry/pkg/platform/sentinel"
	"github.com/agaskrobot/fenix-university-registry/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *university.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = university.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "universities")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()

	err := s.store.CreateIfAccountAvailable(ctx, &models.University{
		Name:      "State College",
		AccountID: "state.test",
	})
	s.Require().NoError(err)

	found, err := s.store.FindByAccountID(ctx, "state.test")
	s.Require().NoError(err)
	s.Equal("State College", found.Name)

	_, err = s.store.FindByAccountID(ctx, "missing.test")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestSchemaBootstrapIsNonDestructive verifies re-running EnsureSchema over a
// populated registry does not reset state.
func (s *PostgresStoreSuite) TestSchemaBootstrapIsNonDestructive() {
	ctx := context.Background()

	err := s.store.CreateIfAccountAvailable(ctx, &models.University{
		Name:      "State College",
		AccountID: "state.test",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.store.EnsureSchema(ctx))

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// TestConcurrentDuplicateAccount verifies that concurrent creation attempts
// with the same account ID result in exactly one success.
func (s *PostgresStoreSuite) TestConcurrentDuplicateAccount() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.store.CreateIfAccountAvailable(ctx, &models.University{
				Name:      "Contested University",
				AccountID: "contested.test",
			})
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrAlreadyExists) {
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")

	bucket, err := s.store.ListByName(ctx, "Contested University")
	s.Require().NoError(err)
	s.Len(bucket, 1, "secondary index must hold exactly the winning record")
}

func (s *PostgresStoreSuite) TestInsertionOrderPreserved() {
	ctx := context.Background()

	for _, u := range []models.University{
		{Name: "Tech Institute", AccountID: "a.test"},
		{Name: "Tech Institute", AccountID: "b.test"},
		{Name: "State College", AccountID: "c.test"},
	} {
		u := u
		s.Require().NoError(s.store.CreateIfAccountAvailable(ctx, &u))
	}

	entries, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("a.test", entries[0].AccountID)
	s.Equal("b.test", entries[1].AccountID)
	s.Equal("c.test", entries[2].AccountID)

	bucket, err := s.store.ListByName(ctx, "Tech Institute")
	s.Require().NoError(err)
	s.Require().Len(bucket, 2)
	s.Equal("a.test", bucket[0].AccountID)
	s.Equal("b.test", bucket[1].AccountID)
}
