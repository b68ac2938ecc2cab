//go:build integration

package visit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tapcard/internal/analytics/models"
	"tapcard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	require.NoError(s.T(), s.pg.Truncate(context.Background(), "visits"))
}

func (s *PostgresStoreSuite) insert(cardID string, device models.Device) {
	s.T().Helper()
	require.NoError(s.T(), s.store.Insert(context.Background(), &models.Visit{
		CardID:    cardID,
		Device:    device,
		Timestamp: time.Now().UTC(),
	}))
}

func (s *PostgresStoreSuite) TestSummaryAggregatesByDevice() {
	s.insert("card-1", models.DeviceMobile)
	s.insert("card-1", models.DeviceMobile)
	s.insert("card-1", models.DeviceTablet)
	s.insert("card-1", models.DeviceDesktop)
	s.insert("card-1", models.DeviceUnknown)
	s.insert("other-card", models.DeviceMobile)

	summary, err := s.store.Summary(context.Background(), "card-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(5), summary.TotalVisits)
	assert.Equal(s.T(), int64(2), summary.MobileVisits)
	assert.Equal(s.T(), int64(1), summary.TabletVisits)
	assert.Equal(s.T(), int64(1), summary.DesktopVisits)
}

func (s *PostgresStoreSuite) TestSummaryForQuietCardIsZero() {
	summary, err := s.store.Summary(context.Background(), "quiet-card")
	require.NoError(s.T(), err)
	assert.Zero(s.T(), summary.TotalVisits)
}
