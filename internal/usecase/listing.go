package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
	"jo3qma.com/bookswap_client/internal/policy"
)

// Status は一覧の読み込み状態です
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// ListingState は描画用の一覧状態のスナップショットです
type ListingState struct {
	Status        Status
	Query         model.Query
	Items         []model.Item
	Page          int
	TotalPages    int
	TotalElements int64
	Categories    []model.Category
	Error         string
	Deleting      []int64
	// Placeholder は一度も読み込めていない状態で読み込み中のときだけ true です
	Placeholder bool
}

// ListingEngine は一覧画面のフィルタ・ソート・ページング状態と取得を管理します
// 後から開始したリクエストの結果だけを採用します（開始順の連番で判定）
type ListingEngine struct {
	items      repository.ItemRepository
	admin      repository.AdminRepository
	categories repository.CategoryRepository
	sessions   SessionReader
	logger     *zap.Logger

	mu         sync.Mutex
	seq        uint64
	status     Status
	query      model.Query
	page       *model.Page[model.Item]
	loadedOnce bool
	cats       []model.Category
	errMsg     string
	deleting   map[int64]bool
}

// NewListingEngine は新しいListingEngineインスタンスを作成します
// initial は最初のクエリです。Page を指定すると Mount はそのページから読み込みます
func NewListingEngine(
	items repository.ItemRepository,
	admin repository.AdminRepository,
	categories repository.CategoryRepository,
	sessions SessionReader,
	initial model.Query,
	logger *zap.Logger,
) *ListingEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if initial.Page < 0 {
		initial.Page = 0
	}
	return &ListingEngine{
		items:      items,
		admin:      admin,
		categories: categories,
		sessions:   sessions,
		logger:     logger,
		query:      initial,
		deleting:   make(map[int64]bool),
	}
}

// Mount はカテゴリ一覧と初期クエリのページを読み込みます
// カテゴリの取得は一覧の取得を妨げず、失敗してもログに残すだけです
// 初期ページが範囲外だった場合に限り、最終ページを取り直します
func (e *ListingEngine) Mount(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.loadCategories(ctx)
	}()

	err := e.update(ctx, func(q *model.Query) {})
	if err == nil {
		e.mu.Lock()
		requested := e.query.Page
		clamped := e.clampPageLocked(requested)
		e.mu.Unlock()
		if clamped != requested {
			err = e.SetPage(ctx, clamped)
		}
	}
	wg.Wait()
	return err
}

func (e *ListingEngine) loadCategories(ctx context.Context) {
	cats, err := e.categories.ListCategories(ctx)
	if err != nil {
		e.logger.Warn("failed to load categories", zap.Error(err))
		return
	}
	e.mu.Lock()
	e.cats = cats
	e.mu.Unlock()
}

// SetCategory はカテゴリ名で絞り込みます。空文字は条件なしです
func (e *ListingEngine) SetCategory(ctx context.Context, category string) error {
	return e.update(ctx, func(q *model.Query) {
		q.Category = strings.TrimSpace(category)
		q.Page = 0
	})
}

// SetCondition は状態で絞り込みます。空文字は条件なしです
func (e *ListingEngine) SetCondition(ctx context.Context, cond model.Condition) error {
	return e.update(ctx, func(q *model.Query) {
		q.Condition = cond
		q.Page = 0
	})
}

// SetSort はソート条件を変更します
func (e *ListingEngine) SetSort(ctx context.Context, sortBy string, dir model.SortDir) error {
	return e.update(ctx, func(q *model.Query) {
		q.SortBy = sortBy
		q.SortDir = dir
		q.Page = 0
	})
}

// SetSearch は名前の部分一致で絞り込みます
func (e *ListingEngine) SetSearch(ctx context.Context, term string) error {
	return e.update(ctx, func(q *model.Query) {
		q.SearchTerm = strings.TrimSpace(term)
		q.Page = 0
	})
}

// SetPriceRange は価格帯で絞り込みます。nil は上限・下限なしです
func (e *ListingEngine) SetPriceRange(ctx context.Context, minPrice, maxPrice *float64) error {
	return e.update(ctx, func(q *model.Query) {
		q.MinPrice = minPrice
		q.MaxPrice = maxPrice
		q.Page = 0
	})
}

// SetPage は他の条件を変えずにページだけを移動します
func (e *ListingEngine) SetPage(ctx context.Context, page int) error {
	return e.update(ctx, func(q *model.Query) {
		q.Page = e.clampPageLocked(page)
	})
}

// NextPage は次のページへ移動します
func (e *ListingEngine) NextPage(ctx context.Context) error {
	return e.update(ctx, func(q *model.Query) {
		q.Page = e.clampPageLocked(q.Page + 1)
	})
}

// PrevPage は前のページへ移動します
func (e *ListingEngine) PrevPage(ctx context.Context) error {
	return e.update(ctx, func(q *model.Query) {
		q.Page = e.clampPageLocked(q.Page - 1)
	})
}

// Refresh は現在の条件で再取得します
func (e *ListingEngine) Refresh(ctx context.Context) error {
	return e.update(ctx, func(q *model.Query) {})
}

// clampPageLocked はページ番号を [0, totalPages-1] に収めます
// まだ何も読み込んでいない場合は上限を設けません
func (e *ListingEngine) clampPageLocked(page int) int {
	if e.page != nil && e.page.TotalPages > 0 && page > e.page.TotalPages-1 {
		page = e.page.TotalPages - 1
	}
	if page < 0 {
		page = 0
	}
	return page
}

// update はロック下でクエリを書き換え、新しい連番を付けて取得します
// 取得中に別のリクエストが開始された場合、結果は捨てて ErrSuperseded を返します
func (e *ListingEngine) update(ctx context.Context, mutate func(q *model.Query)) error {
	e.mu.Lock()
	mutate(&e.query)
	e.seq++
	seq := e.seq
	q := e.query
	e.status = StatusLoading
	e.mu.Unlock()

	page, err := e.items.SearchItems(ctx, q)

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.seq {
		e.logger.Debug("discarding stale listing result", zap.Uint64("seq", seq), zap.Uint64("latest", e.seq))
		return ErrSuperseded
	}
	if err != nil {
		e.status = StatusError
		e.errMsg = "Failed to load items: " + model.MessageOf(err)
		e.logger.Warn("failed to load items", zap.Int("page", q.Page), zap.Int("status", model.StatusOf(err)), zap.Error(err))
		return err
	}
	e.page = page
	e.loadedOnce = true
	e.status = StatusLoaded
	e.errMsg = ""
	return nil
}

// Delete は確認の後、権限に応じて出品者削除または管理者削除を呼び出します
// 成功したら表示中のページから即座に取り除き、現在のページを再取得します
// 再取得したページが空になった場合は、存在する最後のページへ戻ります
func (e *ListingEngine) Delete(ctx context.Context, item model.Item, confirm Confirmer) error {
	sess := e.sessions.Current()
	if !policy.CanDelete(sess, item) {
		return ErrNotPermitted
	}
	if confirm == nil || !confirm.Confirm(policy.DeleteConfirmation(sess, item)) {
		return ErrCancelled
	}

	e.mu.Lock()
	e.deleting[item.ID] = true
	e.mu.Unlock()

	var err error
	if sess.IsAdmin() {
		err = e.admin.AdminDeleteItem(ctx, item.ID)
	} else {
		err = e.items.DeleteItem(ctx, item.ID)
	}

	e.mu.Lock()
	delete(e.deleting, item.ID)
	if err != nil {
		e.errMsg = "Failed to delete item: " + model.MessageOf(err)
		e.mu.Unlock()
		e.logger.Warn("failed to delete item", zap.Int64("item_id", item.ID), zap.Int("status", model.StatusOf(err)), zap.Error(err))
		return err
	}
	e.removeLocked(item.ID)
	e.mu.Unlock()
	e.logger.Info("item deleted", zap.Int64("item_id", item.ID), zap.Bool("admin", sess.IsAdmin()))

	return e.reloadAfterDelete(ctx)
}

func (e *ListingEngine) removeLocked(id int64) {
	if e.page == nil {
		return
	}
	kept := e.page.Content[:0:0]
	for _, it := range e.page.Content {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) != len(e.page.Content) {
		cp := *e.page
		cp.Content = kept
		cp.NumberOfElements = len(kept)
		cp.TotalElements--
		e.page = &cp
	}
}

// reloadAfterDelete の途中で新しい取得が始まった場合は、そちらの結果に任せます
func (e *ListingEngine) reloadAfterDelete(ctx context.Context) error {
	if err := e.Refresh(ctx); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return nil
		}
		return err
	}

	e.mu.Lock()
	current := e.query.Page
	empty := e.page.Empty()
	totalPages := e.page.TotalPages
	e.mu.Unlock()

	if !empty || current == 0 {
		return nil
	}
	target := current - 1
	if totalPages-1 < target {
		target = totalPages - 1
	}
	if target < 0 {
		target = 0
	}
	e.logger.Debug("page emptied by delete, falling back", zap.Int("from", current), zap.Int("to", target))
	if err := e.update(ctx, func(q *model.Query) { q.Page = target }); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// Snapshot は現在の状態のコピーを返します
func (e *ListingEngine) Snapshot() ListingState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := ListingState{
		Status:      e.status,
		Query:       e.query,
		Categories:  append([]model.Category(nil), e.cats...),
		Error:       e.errMsg,
		Placeholder: e.status == StatusLoading && !e.loadedOnce,
	}
	if e.page != nil {
		st.Items = append([]model.Item(nil), e.page.Content...)
		st.Page = e.page.Number
		st.TotalPages = e.page.TotalPages
		st.TotalElements = e.page.TotalElements
	}
	for id := range e.deleting {
		st.Deleting = append(st.Deleting, id)
	}
	sort.Slice(st.Deleting, func(i, j int) bool { return st.Deleting[i] < st.Deleting[j] })
	return st
}
