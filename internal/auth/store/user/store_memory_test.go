package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"tapcard/internal/auth/models"
	"tapcard/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) TestLookupBehavior() {
	s.Run("returns user by subject id when exists", func() {
		u := &models.User{
			ID:    "firebase-uid-1",
			Email: "jane.doe@example.com",
			Role:  models.RoleEditor,
		}
		s.Require().NoError(s.store.Save(context.Background(), u))

		found, err := s.store.Get(context.Background(), u.ID)
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
		s.Equal(u.Email, found.Email)
		s.Equal(models.RoleEditor, found.Role)
	})

	s.Run("returns ErrNotFound when subject does not exist", func() {
		_, err := s.store.Get(context.Background(), "missing-subject")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned record is a copy", func() {
		u := &models.User{ID: "uid-copy", Email: "copy@example.com", Role: models.RoleViewer}
		s.Require().NoError(s.store.Save(context.Background(), u))

		found, err := s.store.Get(context.Background(), u.ID)
		s.Require().NoError(err)
		found.Role = models.RoleAdmin

		again, err := s.store.Get(context.Background(), u.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleViewer, again.Role)
	})
}

func (s *InMemoryStoreSuite) TestRoleChangeIsVisibleOnNextGet() {
	u := &models.User{ID: "uid-role", Email: "r@example.com", Role: models.RoleEditor}
	s.Require().NoError(s.store.Save(context.Background(), u))

	u.Role = models.RoleViewer
	s.Require().NoError(s.store.Save(context.Background(), u))

	found, err := s.store.Get(context.Background(), u.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleViewer, found.Role)
}

func (s *InMemoryStoreSuite) TestDeletion() {
	s.Run("deletes user and makes them unfindable", func() {
		u := &models.User{ID: "uid-del", Email: "d@example.com", Role: models.RoleAdmin}
		s.Require().NoError(s.store.Save(context.Background(), u))

		s.Require().NoError(s.store.Delete(context.Background(), u.ID))

		_, err := s.store.Get(context.Background(), u.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when deleting a missing user", func() {
		err := s.store.Delete(context.Background(), "never-existed")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
