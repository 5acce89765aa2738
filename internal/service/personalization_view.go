package service

import (
	"audit_market_backend/internal/config"
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/util"
	"audit_market_backend/pkg/logger"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ViewState int

const (
	StateUninitialized ViewState = iota
	StateLoading
	StateReady
	StateError
)

// PersonalizationView 单个审计师的个性化状态容器：持有画像、生成内容和
// 游戏化摘要的缓存，按 stale-while-revalidate 策略刷新。状态只被自身的
// 方法修改，外部拿到的都是快照。
type PersonalizationView struct {
	userID          uint
	personalization *PersonalizationService
	gamification    *GamificationService
	tracker         *EventTracker
	cacheTimeout    time.Duration
	now             func() time.Time

	mu         sync.Mutex
	profile    *model.AuditorProfile
	content    *model.PersonalizedContent
	summary    *model.GamificationSummary
	state      ViewState
	errMsg     string
	lastFetch  time.Time
	lastAccess time.Time
	closed     bool
	inflight   chan struct{} // 刷新进行中时非 nil，后来者等它收尾
}

// ViewSnapshot 对外暴露的状态快照
// swagger:model ViewSnapshot
type ViewSnapshot struct {
	Profile    *model.AuditorProfile      `json:"profile"`
	Content    *model.PersonalizedContent `json:"personalizedContent"`
	Summary    *model.GamificationSummary `json:"gamificationSummary"`
	IsLoading  bool                       `json:"isLoading"`
	Error      string                     `json:"error,omitempty"`
	Stale      bool                       `json:"stale"`
	LastFetch  time.Time                  `json:"lastFetchTimestamp"`
	SessionID  string                     `json:"sessionId"`
}

func NewPersonalizationView(
	userID uint,
	personalization *PersonalizationService,
	gamification *GamificationService,
	tracker *EventTracker,
	cacheTimeout time.Duration,
) *PersonalizationView {
	if cacheTimeout <= 0 {
		cacheTimeout = 5 * time.Minute
	}
	return &PersonalizationView{
		userID:          userID,
		personalization: personalization,
		gamification:    gamification,
		tracker:         tracker,
		cacheTimeout:    cacheTimeout,
		now:             time.Now,
		state:           StateUninitialized,
		lastAccess:      time.Now(),
	}
}

// Refresh 并发重新生成内容和摘要，两者都结束后才返回。
// 任一失败会设置 error，但不会清掉已持有的数据。
// 并发调用去重：已有刷新在途时等它完成而不是再发一轮。
func (v *PersonalizationView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return util.ErrViewClosed
	}
	v.lastAccess = v.now()
	if v.inflight != nil {
		done := v.inflight
		v.mu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	v.inflight = done
	v.state = StateLoading
	knownAuditorID := uint(0)
	if v.profile != nil {
		knownAuditorID = v.profile.ID
	}
	v.mu.Unlock()

	var (
		profile    *model.AuditorProfile
		content    *model.PersonalizedContent
		summary    *model.GamificationSummary
		contentErr error
		summaryErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, content, contentErr = v.personalization.GenerateForUser(v.userID)
		return nil
	})
	g.Go(func() error {
		aid := knownAuditorID
		if aid == 0 {
			p, err := v.personalization.GetProfileByUserID(v.userID)
			if err != nil {
				summaryErr = err
				return nil
			}
			aid = p.ID
		}
		summary, summaryErr = v.gamification.GetSummary(gctx, aid)
		return nil
	})
	_ = g.Wait() // 两个子调用都不经 errgroup 传错，确保都跑完

	v.mu.Lock()
	defer v.mu.Unlock()
	v.inflight = nil
	close(done)

	if v.closed {
		// 视图已被丢弃，迟到的结果不再写入
		return util.ErrViewClosed
	}

	if contentErr == nil {
		v.profile = profile
		v.content = content
		v.lastFetch = v.now()
	}
	if summaryErr == nil && summary != nil {
		v.summary = summary
	}

	switch {
	case contentErr != nil:
		v.errMsg = contentErr.Error()
		v.state = StateError
		return contentErr
	case summaryErr != nil:
		v.errMsg = summaryErr.Error()
		v.state = StateError
		return summaryErr
	default:
		v.errMsg = ""
		v.state = StateReady
		return nil
	}
}

// Snapshot 过期时先刷新再返回快照；旧数据在刷新失败时保持可见
func (v *PersonalizationView) Snapshot(ctx context.Context) (*ViewSnapshot, error) {
	if v.IsContentStale() {
		if err := v.Refresh(ctx); err != nil && !v.HasPersonalizedContent() {
			return nil, err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()
	return &ViewSnapshot{
		Profile:   v.profileCopyLocked(),
		Content:   v.contentCopyLocked(),
		Summary:   v.summary,
		IsLoading: v.state == StateLoading,
		Error:     v.errMsg,
		Stale:     v.staleLocked(),
		LastFetch: v.lastFetch,
		SessionID: v.tracker.SessionID(),
	}, nil
}

// contentCopyLocked 拷贝内容再交给快照持有者；内容会被乐观更新原地改写，
// 共享指针会让快照在锁外被改
func (v *PersonalizationView) contentCopyLocked() *model.PersonalizedContent {
	if v.content == nil {
		return nil
	}
	c := *v.content
	c.QuickWins = append([]model.QuickWin(nil), v.content.QuickWins...)
	c.RecommendedFeatures = append([]model.RecommendedFeature(nil), v.content.RecommendedFeatures...)
	c.ActionPlan = append([]model.ActionPlanItem(nil), v.content.ActionPlan...)
	return &c
}

func (v *PersonalizationView) profileCopyLocked() *model.AuditorProfile {
	if v.profile == nil {
		return nil
	}
	p := *v.profile
	return &p
}

// CompleteQuickWin 先乐观翻转本地 completed 标记，再上报事件。
// 上报失败返回 false，但乐观更新保持已生效（已知局限，不回滚不重试）。
// 未知 id 不改状态，但仍尝试上报。
func (v *PersonalizationView) CompleteQuickWin(ctx context.Context, qw model.QuickWin, device model.DeviceInfo) bool {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false
	}
	v.lastAccess = v.now()
	if v.content != nil {
		for i := range v.content.QuickWins {
			if v.content.QuickWins[i].ID == qw.ID {
				v.content.QuickWins[i].Completed = true
			}
		}
	}
	v.mu.Unlock()

	aid, err := v.resolveAuditorID()
	if err != nil {
		logger.Log.Warn("quick win completion not tracked", zap.Uint("userId", v.userID), zap.Error(err))
		return false
	}

	// XP 面值只认服务端规则表；重复完成不再发放（daily_checkin 按天重置）
	xp, known := quickWinXP[qw.ID]
	awardXP := known
	if known {
		since := time.Time{}
		if qw.ID == "daily_checkin" {
			n := v.now()
			since = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
		}
		completed, derr := v.personalization.AnalyticsRepo.CompletedQuickWinIDs(aid, since)
		if derr != nil {
			logger.Log.Warn("quick win dedup lookup failed", zap.Uint("auditorId", aid), zap.Error(derr))
			awardXP = false
		} else if completed[qw.ID] {
			awardXP = false
		}
	}

	trackErr := v.tracker.Track(aid, model.QuickWinCompletedPayload{
		QuickWinID: qw.ID,
		XPValue:    xp,
	}, device)
	if trackErr != nil {
		return false
	}

	if awardXP {
		if err := v.gamification.AddXP(ctx, aid, xp); err != nil {
			logger.Log.Warn("quick win XP not credited", zap.Uint("auditorId", aid), zap.Error(err))
		}
	}

	if qw.ID == "daily_checkin" {
		streak, err := v.gamification.RecordCheckin(ctx, aid)
		if err != nil && err != util.ErrAlreadyCheckedIn {
			logger.Log.Warn("daily check-in not recorded", zap.Uint("auditorId", aid), zap.Error(err))
		} else if err == nil {
			if berr := v.gamification.MaybeAwardStreakBadge(aid, streak); berr != nil {
				logger.Log.Warn("streak badge not awarded", zap.Uint("auditorId", aid), zap.Error(berr))
			}
		}
	}

	return true
}

// UpdatePreferences 读改写画像偏好；成功才合并到本地状态，
// 失败时本地状态保持原样，错误串进入视图 error
func (v *PersonalizationView) UpdatePreferences(ctx context.Context, prefs model.UserPreferences) error {
	aid, err := v.resolveAuditorID()
	if err != nil {
		v.setError(err)
		return err
	}

	if err := v.personalization.ProfileRepo.UpdatePreferences(aid, prefs); err != nil {
		v.setError(err)
		return err
	}

	v.mu.Lock()
	if v.profile != nil {
		v.profile.Preferences = prefs
	}
	v.errMsg = ""
	v.mu.Unlock()
	return nil
}

// UpdatePersonalityInsights 同 UpdatePreferences，针对性格画像
func (v *PersonalizationView) UpdatePersonalityInsights(ctx context.Context, insights model.PersonalityInsights) error {
	aid, err := v.resolveAuditorID()
	if err != nil {
		v.setError(err)
		return err
	}

	if err := v.personalization.ProfileRepo.UpdateInsights(aid, insights); err != nil {
		v.setError(err)
		return err
	}

	v.mu.Lock()
	if v.profile != nil {
		v.profile.Insights = insights
	}
	v.errMsg = ""
	v.mu.Unlock()
	return nil
}

// TrackInteraction 行为埋点，fire-and-forget
func (v *PersonalizationView) TrackInteraction(element, action string, context map[string]string, device model.DeviceInfo) error {
	aid, err := v.resolveAuditorID()
	if err != nil {
		return err
	}
	return v.tracker.TrackBehavioral(aid, model.InteractionPayload{
		Element: element,
		Action:  action,
		Context: context,
	}, device)
}

// IsContentStale 上次成功刷新距今超过缓存时限（或从未刷新）为 true
func (v *PersonalizationView) IsContentStale() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.staleLocked()
}

func (v *PersonalizationView) staleLocked() bool {
	if v.lastFetch.IsZero() {
		return true
	}
	return v.now().Sub(v.lastFetch) >= v.cacheTimeout
}

func (v *PersonalizationView) HasPersonalizedContent() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.content != nil
}

func (v *PersonalizationView) SessionID() string {
	return v.tracker.SessionID()
}

func (v *PersonalizationView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Close 标记视图废弃；在途刷新的结果不会再写入
func (v *PersonalizationView) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

func (v *PersonalizationView) lastAccessTime() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastAccess
}

func (v *PersonalizationView) resolveAuditorID() (uint, error) {
	v.mu.Lock()
	if v.profile != nil {
		id := v.profile.ID
		v.mu.Unlock()
		return id, nil
	}
	v.mu.Unlock()

	profile, err := v.personalization.GetProfileByUserID(v.userID)
	if err != nil {
		return 0, err
	}
	return profile.ID, nil
}

func (v *PersonalizationView) setError(err error) {
	v.mu.Lock()
	v.errMsg = err.Error()
	v.state = StateError
	v.mu.Unlock()
}

// ViewRegistry 按用户懒创建个性化视图，并回收闲置实例
type ViewRegistry struct {
	personalization *PersonalizationService
	gamification    *GamificationService
	tracker         *EventTracker
	cacheTimeout    time.Duration
	idleTimeout     time.Duration

	mu    sync.Mutex
	views map[uint]*PersonalizationView
}

func NewViewRegistry(
	personalization *PersonalizationService,
	gamification *GamificationService,
	tracker *EventTracker,
	cfg config.PersonalizationConfig,
) *ViewRegistry {
	return &ViewRegistry{
		personalization: personalization,
		gamification:    gamification,
		tracker:         tracker,
		cacheTimeout:    cfg.CacheTimeout(),
		idleTimeout:     cfg.ViewIdleTimeout(),
		views:           make(map[uint]*PersonalizationView),
	}
}

func (r *ViewRegistry) ViewFor(userID uint) *PersonalizationView {
	r.mu.Lock()
	defer r.mu.Unlock()
	if view, ok := r.views[userID]; ok {
		return view
	}
	view := NewPersonalizationView(userID, r.personalization, r.gamification, r.tracker, r.cacheTimeout)
	r.views[userID] = view
	return view
}

// EvictIdle 关闭并移除超过闲置阈值的视图，返回回收数量
func (r *ViewRegistry) EvictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	cutoff := time.Now().Add(-r.idleTimeout)
	for userID, view := range r.views {
		if view.lastAccessTime().Before(cutoff) {
			view.Close()
			delete(r.views, userID)
			evicted++
		}
	}
	return evicted
}

func (r *ViewRegistry) Remove(userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if view, ok := r.views[userID]; ok {
		view.Close()
		delete(r.views, userID)
	}
}
