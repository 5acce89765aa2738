package service

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/repository"
	"audit_market_backend/internal/util"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMarketplaceEnv(t *testing.T) (*testEnv, *MarketplaceService) {
	t.Helper()
	env := newTestEnv(t)
	repo := repository.NewMarketplaceRepository(env.db)
	svc := NewMarketplaceService(repo, env.tracker)

	seed := []model.AuditService{
		{Name: "Budget Audit", Provider: "A", Category: "smart_contract", MinPriceUSD: 2000, TurnaroundDays: 14, Rating: 4.1, Active: true},
		{Name: "Express Audit", Provider: "B", Category: "smart_contract", MinPriceUSD: 9000, TurnaroundDays: 3, Rating: 4.4, Active: true},
		{Name: "Premium Audit", Provider: "C", Category: "protocol", MinPriceUSD: 30000, TurnaroundDays: 21, Rating: 4.9, Active: true},
		{Name: "Retired Audit", Provider: "D", Category: "protocol", MinPriceUSD: 1000, TurnaroundDays: 7, Rating: 3.0, Active: false},
	}
	for i := range seed {
		require.NoError(t, env.db.Create(&seed[i]).Error)
	}
	return env, svc
}

func TestMarketplaceListFilters(t *testing.T) {
	_, svc := newMarketplaceEnv(t)

	services, total, err := svc.List(repository.AuditServiceFilter{Category: "smart_contract"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, services, 2)

	// 下架状态要真的落库，不能被列默认值吃掉
	var retired model.AuditService
	require.NoError(t, svc.MarketplaceRepo.DB.Where("name = ?", "Retired Audit").First(&retired).Error)
	require.False(t, retired.Active)

	// 下架条目不出现在列表
	services, total, err = svc.List(repository.AuditServiceFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	for _, s := range services {
		assert.True(t, s.Active)
	}

	services, _, err = svc.List(repository.AuditServiceFilter{MaxPriceUSD: 5000}, 1, 10)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Budget Audit", services[0].Name)
}

func TestMarketplaceGetServiceTracksView(t *testing.T) {
	env, svc := newMarketplaceEnv(t)

	var budget model.AuditService
	require.NoError(t, env.db.Where("name = ?", "Budget Audit").First(&budget).Error)

	got, err := svc.GetService(budget.ID, 77, model.DeviceInfo{})
	require.NoError(t, err)
	assert.Equal(t, budget.ID, got.ID)

	events, err := env.analyticsRepo.FindBehavioralEvents(77, string(model.EventServiceViewed), time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, json.Number(strconv.FormatUint(uint64(budget.ID), 10)), events[0].EventData["service_id"])

	// 游客访问不产生埋点
	_, err = svc.GetService(budget.ID, 0, model.DeviceInfo{})
	require.NoError(t, err)
	events, err = env.analyticsRepo.FindBehavioralEvents(0, "", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMarketplaceGetServiceNotFound(t *testing.T) {
	_, svc := newMarketplaceEnv(t)
	_, err := svc.GetService(99999, 0, model.DeviceInfo{})
	assert.ErrorIs(t, err, util.ErrServiceNotFound)
}

func TestMarketplaceCompare(t *testing.T) {
	env, svc := newMarketplaceEnv(t)

	var all []model.AuditService
	require.NoError(t, env.db.Where("active = ?", true).Find(&all).Error)
	require.Len(t, all, 3)

	ids := make([]uint, len(all))
	byName := map[string]uint{}
	for i, s := range all {
		ids[i] = s.ID
		byName[s.Name] = s.ID
	}

	comparison, err := svc.Compare(ids, 0, model.DeviceInfo{})
	require.NoError(t, err)
	assert.Len(t, comparison.Services, 3)
	assert.Equal(t, byName["Budget Audit"], comparison.CheapestID)
	assert.Equal(t, byName["Express Audit"], comparison.FastestID)
	assert.Equal(t, byName["Premium Audit"], comparison.TopRatedID)
}

func TestMarketplaceCompareTooFew(t *testing.T) {
	_, svc := newMarketplaceEnv(t)

	_, err := svc.Compare([]uint{1}, 0, model.DeviceInfo{})
	assert.ErrorIs(t, err, util.ErrCompareTooFew)

	// 两个 id 但只命中一条记录同样拒绝
	_, err = svc.Compare([]uint{1, 99999}, 0, model.DeviceInfo{})
	assert.ErrorIs(t, err, util.ErrCompareTooFew)
}

func TestRecommendedForProfile(t *testing.T) {
	_, svc := newMarketplaceEnv(t)

	profile := &model.AuditorProfile{Specializations: []string{"protocol"}}
	services, err := svc.RecommendedForProfile(profile, 5)
	require.NoError(t, err)
	require.NotEmpty(t, services)
	assert.Equal(t, "protocol", services[0].Category)

	// 专长类目没有条目时退回全站高分
	profile.Specializations = []string{"zk_circuits"}
	services, err = svc.RecommendedForProfile(profile, 5)
	require.NoError(t, err)
	require.NotEmpty(t, services)
	assert.Equal(t, "Premium Audit", services[0].Name)
}
