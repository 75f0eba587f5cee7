package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

// 管理画面の既定値
const (
	DefaultAdminPageSize    = 10
	DefaultAdminCatalogSize = 200
)

// AnalyticsState は描画用の管理統計の状態です
type AnalyticsState struct {
	Loading    bool
	Stats      *model.AdminStats
	Users      []model.UserAnalytics
	Page       int
	TotalPages int
	Error      string
}

// AdminAnalytics はサマリーとユーザー一覧（ページ単位）を読み込みます
// 認可はサーバー側が判断します（管理者以外は 403）
type AdminAnalytics struct {
	repo     repository.AdminRepository
	pageSize int
	logger   *zap.Logger

	mu         sync.Mutex
	loading    bool
	stats      *model.AdminStats
	users      []model.UserAnalytics
	page       int
	totalPages int
	errMsg     string
}

// NewAdminAnalytics は新しいAdminAnalyticsインスタンスを作成します
func NewAdminAnalytics(repo repository.AdminRepository, pageSize int, logger *zap.Logger) *AdminAnalytics {
	if pageSize <= 0 {
		pageSize = DefaultAdminPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminAnalytics{repo: repo, pageSize: pageSize, logger: logger}
}

// Load は指定ページのユーザー一覧とサマリーを並行して取得します
// どちらかが失敗した場合は両方とも反映しません
func (a *AdminAnalytics) Load(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()

	var (
		wg       sync.WaitGroup
		stats    *model.AdminStats
		users    *model.Page[model.UserAnalytics]
		statsErr error
		usersErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		stats, statsErr = a.repo.Stats(ctx)
	}()
	go func() {
		defer wg.Done()
		users, usersErr = a.repo.Users(ctx, page, a.pageSize)
	}()
	wg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false

	err := statsErr
	if err == nil {
		err = usersErr
	}
	if err != nil {
		a.errMsg = "Failed to load analytics: " + model.MessageOf(err)
		a.logger.Warn("failed to load admin analytics",
			zap.Int("page", page),
			zap.Int("status", model.StatusOf(err)),
			zap.Error(err))
		return err
	}

	a.errMsg = ""
	a.stats = stats
	a.users = users.Content
	a.page = page
	a.totalPages = users.TotalPages
	return nil
}

// NextPage は次のページへ進みます。最終ページでは何もしません
func (a *AdminAnalytics) NextPage(ctx context.Context) error {
	a.mu.Lock()
	page, total := a.page, a.totalPages
	a.mu.Unlock()
	if page+1 >= total {
		return nil
	}
	return a.Load(ctx, page+1)
}

// PrevPage は前のページへ戻ります。先頭ページでは何もしません
func (a *AdminAnalytics) PrevPage(ctx context.Context) error {
	a.mu.Lock()
	page := a.page
	a.mu.Unlock()
	if page == 0 {
		return nil
	}
	return a.Load(ctx, page-1)
}

// Refresh は現在のページを読み込み直します
func (a *AdminAnalytics) Refresh(ctx context.Context) error {
	a.mu.Lock()
	page := a.page
	a.mu.Unlock()
	return a.Load(ctx, page)
}

// State は描画用の状態のコピーを返します
func (a *AdminAnalytics) State() AnalyticsState {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := AnalyticsState{
		Loading:    a.loading,
		Users:      append([]model.UserAnalytics(nil), a.users...),
		Page:       a.page,
		TotalPages: a.totalPages,
		Error:      a.errMsg,
	}
	if a.stats != nil {
		cp := *a.stats
		st.Stats = &cp
	}
	return st
}

// CatalogState は描画用の管理者向け出品一覧の状態です
type CatalogState struct {
	Loading bool
	Items   []model.Item
	Error   string
}

// AdminCatalog は管理者向けの出品一覧と削除を扱います
// 一覧は先頭の1ページ（最大 size 件）だけを読み込み、削除後は再取得せずに取り除きます
type AdminCatalog struct {
	items  repository.ItemRepository
	admin  repository.AdminRepository
	size   int
	logger *zap.Logger

	mu      sync.Mutex
	loading bool
	list    []model.Item
	errMsg  string
}

// NewAdminCatalog は新しいAdminCatalogインスタンスを作成します
func NewAdminCatalog(items repository.ItemRepository, admin repository.AdminRepository, size int, logger *zap.Logger) *AdminCatalog {
	if size <= 0 {
		size = DefaultAdminCatalogSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminCatalog{items: items, admin: admin, size: size, logger: logger}
}

// Load は出品物を新しい順に読み込みます
func (c *AdminCatalog) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	q := model.DefaultQuery(c.size)
	page, err := c.items.ListItems(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errMsg = "Failed to load items: " + model.MessageOf(err)
		c.logger.Warn("failed to load admin catalog", zap.Int("status", model.StatusOf(err)), zap.Error(err))
		return err
	}
	c.errMsg = ""
	c.list = page.Content
	return nil
}

// Delete は確認のうえ管理者として出品物を削除し、一覧から取り除きます
func (c *AdminCatalog) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm("Delete this item? This action cannot be undone.") {
		return ErrCancelled
	}
	if err := c.admin.AdminDeleteItem(ctx, id); err != nil {
		c.mu.Lock()
		c.errMsg = "Failed to delete item: " + model.MessageOf(err)
		c.mu.Unlock()
		c.logger.Warn("failed to delete item",
			zap.Int64("item_id", id),
			zap.Int("status", model.StatusOf(err)),
			zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
	kept := c.list[:0]
	for _, it := range c.list {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	c.list = kept
	c.logger.Info("item deleted by admin", zap.Int64("item_id", id))
	return nil
}

// State は描画用の状態のコピーを返します
func (c *AdminCatalog) State() CatalogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CatalogState{
		Loading: c.loading,
		Items:   append([]model.Item(nil), c.list...),
		Error:   c.errMsg,
	}
}
