package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/loopwire/partnerly/internal/catalog/domain"
	catalogrepository "github.com/loopwire/partnerly/internal/catalog/repository"
	"github.com/loopwire/partnerly/internal/clock"
	"github.com/loopwire/partnerly/internal/discovery/domain"
	"github.com/loopwire/partnerly/internal/discovery/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDiscoveryService(t *testing.T, clk *clock.FakeClock) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Program{},
		&catalogdomain.Partner{},
		&domain.DiscoveredPartner{},
	))

	require.NoError(t, db.Create(&catalogdomain.Program{ID: "prog-a", Name: "prog-a"}).Error)
	require.NoError(t, db.Create(&catalogdomain.Partner{ID: "partner-1", Name: "partner-1"}).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		CatalogRepo: catalogrepository.Provide(),
	})
	return svc, db
}

func TestStarCreatesAndClearsMarker(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc, db := setupDiscoveryService(t, clk)

	row, err := svc.Star(context.Background(), "prog-a", "partner-1", true)
	require.NoError(t, err)
	require.NotNil(t, row.StarredAt)
	assert.True(t, row.StarredAt.Equal(clk.Now()))
	assert.Nil(t, row.IgnoredAt)

	// unstar keeps the row, clears the marker
	row, err = svc.Star(context.Background(), "prog-a", "partner-1", false)
	require.NoError(t, err)
	assert.Nil(t, row.StarredAt)

	var count int64
	require.NoError(t, db.Model(&domain.DiscoveredPartner{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStarAndIgnoreAreIndependentMarkers(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := setupDiscoveryService(t, clk)

	_, err := svc.Star(context.Background(), "prog-a", "partner-1", true)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	row, err := svc.Ignore(context.Background(), "prog-a", "partner-1", true)
	require.NoError(t, err)
	require.NotNil(t, row.StarredAt)
	require.NotNil(t, row.IgnoredAt)
	assert.True(t, row.IgnoredAt.After(*row.StarredAt))
}

func TestMarkInvitedIsSticky(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc, _ := setupDiscoveryService(t, clk)

	first, err := svc.MarkInvited(context.Background(), "prog-a", "partner-1")
	require.NoError(t, err)
	require.NotNil(t, first.InvitedAt)

	// re-inviting must not move the original timestamp
	clk.Advance(24 * time.Hour)
	second, err := svc.MarkInvited(context.Background(), "prog-a", "partner-1")
	require.NoError(t, err)
	require.NotNil(t, second.InvitedAt)
	assert.True(t, second.InvitedAt.Equal(*first.InvitedAt))
}

func TestPatchRejectsUnknownEntities(t *testing.T) {
	clk := clock.NewFakeClock(time.Now())
	svc, _ := setupDiscoveryService(t, clk)

	_, err := svc.Star(context.Background(), "prog-missing", "partner-1", true)
	assert.ErrorIs(t, err, domain.ErrUnknownProgram)

	_, err = svc.Ignore(context.Background(), "prog-a", "partner-missing", true)
	assert.ErrorIs(t, err, domain.ErrUnknownPartner)
}
