package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

var (
	ownerSession = &model.Session{UserID: 2, FullName: "Owner", Role: model.RoleUser, Token: "o"}
	adminSession = &model.Session{UserID: 1, FullName: "Admin", Role: model.RoleAdmin, Token: "a"}
	otherSession = &model.Session{UserID: 3, FullName: "Other", Role: model.RoleUser, Token: "x"}
)

func newTestEngine(items *fakeItems, cats *fakeCategories, s *model.Session) *ListingEngine {
	if cats == nil {
		cats = &fakeCategories{}
	}
	return NewListingEngine(items, items, cats, staticSession{s}, model.DefaultQuery(12), nil)
}

func alwaysConfirm(prompts *[]string) Confirmer {
	return ConfirmFunc(func(p string) bool {
		if prompts != nil {
			*prompts = append(*prompts, p)
		}
		return true
	})
}

func TestListingEngine_MountLoadsCategoriesAndFirstPage(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(30, 2)}
	cats := &fakeCategories{cats: []model.Category{{ID: 1, Name: "Fiction"}}}
	e := newTestEngine(items, cats, nil)

	if st := e.Snapshot(); st.Status != StatusIdle || st.Placeholder {
		t.Fatalf("initial state got %+v", st)
	}
	if err := e.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	st := e.Snapshot()
	if st.Status != StatusLoaded || len(st.Items) != 12 || st.TotalPages != 3 {
		t.Errorf("state got status=%s items=%d pages=%d", st.Status, len(st.Items), st.TotalPages)
	}
	if len(st.Categories) != 1 {
		t.Errorf("categories got %d, want 1", len(st.Categories))
	}
}

func TestListingEngine_MountStartsAtInitialPage(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(30, 2)}
	q := model.DefaultQuery(12)
	q.Page = 1
	e := NewListingEngine(items, items, &fakeCategories{}, staticSession{nil}, q, nil)
	if err := e.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if len(items.queries) != 1 || items.queries[0].Page != 1 {
		t.Fatalf("queries got %+v, want a single fetch of page 1", items.queries)
	}
	if st := e.Snapshot(); st.Page != 1 || len(st.Items) != 12 {
		t.Errorf("state got page=%d items=%d", st.Page, len(st.Items))
	}
}

func TestListingEngine_MountClampsPageBeyondLast(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(30, 2)}
	q := model.DefaultQuery(12)
	q.Page = 9
	e := NewListingEngine(items, items, &fakeCategories{}, staticSession{nil}, q, nil)
	if err := e.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if len(items.queries) != 2 || items.queries[1].Page != 2 {
		t.Fatalf("queries got %+v, want refetch of last page 2", items.queries)
	}
	if st := e.Snapshot(); st.Page != 2 || len(st.Items) != 6 {
		t.Errorf("state got page=%d items=%d", st.Page, len(st.Items))
	}
}

func TestListingEngine_CategoryFailureDoesNotBlockItems(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(3, 2)}
	e := newTestEngine(items, &fakeCategories{err: errors.New("boom")}, nil)
	if err := e.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if st := e.Snapshot(); len(st.Items) != 3 || st.Error != "" {
		t.Errorf("state got %+v", st)
	}
}

func TestListingEngine_FilterChangesResetPage(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(60, 2)}
	e := newTestEngine(items, nil, nil)
	ctx := context.Background()
	_ = e.Mount(ctx)

	price := 10.0
	changes := map[string]func() error{
		"category":  func() error { return e.SetCategory(ctx, "Fiction") },
		"condition": func() error { return e.SetCondition(ctx, model.ConditionNew) },
		"sort":      func() error { return e.SetSort(ctx, "price", model.SortAsc) },
		"search":    func() error { return e.SetSearch(ctx, "dune") },
		"price":     func() error { return e.SetPriceRange(ctx, &price, nil) },
	}
	for name, change := range changes {
		if err := e.SetPage(ctx, 3); err != nil {
			t.Fatalf("SetPage: %v", err)
		}
		if err := change(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		items.mu.Lock()
		last := items.queries[len(items.queries)-1]
		items.mu.Unlock()
		if last.Page != 0 {
			t.Errorf("%s: query page got %d, want 0", name, last.Page)
		}
	}
}

func TestListingEngine_SetPageKeepsFilters(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(60, 2)}
	e := newTestEngine(items, nil, nil)
	ctx := context.Background()
	_ = e.Mount(ctx)
	_ = e.SetCategory(ctx, "Fiction")
	_ = e.SetPage(ctx, 2)

	items.mu.Lock()
	last := items.queries[len(items.queries)-1]
	items.mu.Unlock()
	if last.Page != 2 || last.Category != "Fiction" {
		t.Errorf("query got %+v", last)
	}
}

func TestListingEngine_PageNavigationClamps(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(25, 2)}
	e := newTestEngine(items, nil, nil)
	ctx := context.Background()
	_ = e.Mount(ctx)

	_ = e.PrevPage(ctx)
	if got := e.Snapshot().Page; got != 0 {
		t.Errorf("PrevPage from 0 got %d", got)
	}
	_ = e.SetPage(ctx, 99)
	if got := e.Snapshot().Page; got != 2 {
		t.Errorf("SetPage(99) got %d, want 2", got)
	}
	_ = e.NextPage(ctx)
	if got := e.Snapshot().Page; got != 2 {
		t.Errorf("NextPage past end got %d, want 2", got)
	}
}

func TestListingEngine_LatestInitiatedRequestWins(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	items := &fakeItems{}
	items.search = func(ctx context.Context, q model.Query) (*model.Page[model.Item], error) {
		if q.Category == "slow" {
			close(started)
			<-release
		}
		return &model.Page[model.Item]{
			Content:    []model.Item{{ID: 1, Name: "result for " + q.Category}},
			TotalPages: 1,
			Number:     q.Page,
		}, nil
	}
	e := newTestEngine(items, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowErr = e.SetCategory(ctx, "slow")
	}()
	<-started

	if err := e.SetCategory(ctx, "fast"); err != nil {
		t.Fatalf("fast: %v", err)
	}
	close(release)
	wg.Wait()

	if !errors.Is(slowErr, ErrSuperseded) {
		t.Errorf("slow result got %v, want ErrSuperseded", slowErr)
	}
	st := e.Snapshot()
	if len(st.Items) != 1 || st.Items[0].Name != "result for fast" || st.Query.Category != "fast" {
		t.Errorf("displayed got %+v (query %+v), want the fast result", st.Items, st.Query)
	}
}

func TestListingEngine_LoadingKeepsPreviousContent(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	items := &fakeItems{items: makeItems(5, 2)}
	e := newTestEngine(items, nil, nil)
	ctx := context.Background()
	_ = e.Mount(ctx)

	items.mu.Lock()
	items.search = func(ctx context.Context, q model.Query) (*model.Page[model.Item], error) {
		close(started)
		<-release
		return &model.Page[model.Item]{}, nil
	}
	items.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = e.Refresh(ctx)
		close(done)
	}()
	<-started
	st := e.Snapshot()
	if st.Status != StatusLoading || len(st.Items) != 5 || st.Placeholder {
		t.Errorf("while reloading got status=%s items=%d placeholder=%v", st.Status, len(st.Items), st.Placeholder)
	}
	close(release)
	<-done
}

func TestListingEngine_FirstLoadShowsPlaceholder(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	items := &fakeItems{search: func(ctx context.Context, q model.Query) (*model.Page[model.Item], error) {
		close(started)
		<-release
		return &model.Page[model.Item]{}, nil
	}}
	e := newTestEngine(items, nil, nil)

	done := make(chan struct{})
	go func() {
		_ = e.Refresh(context.Background())
		close(done)
	}()
	<-started
	if !e.Snapshot().Placeholder {
		t.Error("Placeholder got false during first load")
	}
	close(release)
	<-done
	if e.Snapshot().Placeholder {
		t.Error("Placeholder got true after load")
	}
}

func TestListingEngine_LoadErrorMessage(t *testing.T) {
	t.Parallel()

	items := &fakeItems{search: func(ctx context.Context, q model.Query) (*model.Page[model.Item], error) {
		return nil, &model.RemoteError{StatusCode: 500, Message: "Database unavailable"}
	}}
	e := newTestEngine(items, nil, nil)
	if err := e.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	st := e.Snapshot()
	if st.Status != StatusError || st.Error != "Failed to load items: Database unavailable" {
		t.Errorf("state got status=%s error=%q", st.Status, st.Error)
	}
}

func TestListingEngine_DeleteVisibilityAndDispatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	item := model.Item{ID: 1, Name: "Book 1", SellerID: ownerSession.UserID}

	// 他人の出品物は一般ユーザーには削除できない
	items := &fakeItems{items: makeItems(3, ownerSession.UserID)}
	e := newTestEngine(items, nil, otherSession)
	if err := e.Delete(ctx, item, alwaysConfirm(nil)); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("other user got %v, want ErrNotPermitted", err)
	}
	if len(items.deleted)+len(items.adminDelete) != 0 {
		t.Fatal("delete call issued for a user without permission")
	}

	// 管理者は管理者削除を使い、確認文に管理者操作であることが含まれる
	var prompts []string
	e = newTestEngine(items, nil, adminSession)
	_ = e.Mount(ctx)
	if err := e.Delete(ctx, item, alwaysConfirm(&prompts)); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(items.adminDelete) != 1 || len(items.deleted) != 0 {
		t.Errorf("admin delete dispatched owner=%v admin=%v", items.deleted, items.adminDelete)
	}
	if len(prompts) != 1 || prompts[0] != `Delete "Book 1"? This action cannot be undone. (Admin Action)` {
		t.Errorf("prompt got %v", prompts)
	}

	// 出品者本人は通常の削除を使う
	e = newTestEngine(items, nil, ownerSession)
	_ = e.Mount(ctx)
	if err := e.Delete(ctx, model.Item{ID: 2, SellerID: ownerSession.UserID}, alwaysConfirm(nil)); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if len(items.deleted) != 1 || items.deleted[0] != 2 {
		t.Errorf("owner delete got %v", items.deleted)
	}
}

func TestListingEngine_DeclinedConfirmationIssuesNoCall(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(1, ownerSession.UserID)}
	e := newTestEngine(items, nil, ownerSession)
	decline := ConfirmFunc(func(string) bool { return false })
	if err := e.Delete(context.Background(), items.items[0], decline); !errors.Is(err, ErrCancelled) {
		t.Fatalf("got %v, want ErrCancelled", err)
	}
	if len(items.deleted) != 0 {
		t.Error("delete issued after declined confirmation")
	}
}

func TestListingEngine_DeleteFailureMessage(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(2, ownerSession.UserID), deleteErr: &model.RemoteError{StatusCode: 400, Message: "Failed to delete item: You are not authorized to delete this item"}}
	e := newTestEngine(items, nil, ownerSession)
	_ = e.Mount(context.Background())

	if err := e.Delete(context.Background(), items.items[0], alwaysConfirm(nil)); err == nil {
		t.Fatal("expected error")
	}
	st := e.Snapshot()
	if st.Error != "Failed to delete item: Failed to delete item: You are not authorized to delete this item" {
		t.Errorf("error got %q", st.Error)
	}
	if len(st.Items) != 2 || len(st.Deleting) != 0 {
		t.Errorf("items=%d deleting=%v after failed delete", len(st.Items), st.Deleting)
	}
}

func TestListingEngine_DeleteRequeriesCurrentPage(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(30, ownerSession.UserID)}
	e := newTestEngine(items, nil, ownerSession)
	ctx := context.Background()
	_ = e.Mount(ctx)
	_ = e.SetPage(ctx, 1)

	target := e.Snapshot().Items[0]
	if err := e.Delete(ctx, target, alwaysConfirm(nil)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	items.mu.Lock()
	last := items.queries[len(items.queries)-1]
	items.mu.Unlock()
	if last.Page != 1 {
		t.Errorf("requery page got %d, want 1", last.Page)
	}
	st := e.Snapshot()
	if len(st.Items) != 12 || st.TotalElements != 29 {
		t.Errorf("after delete items=%d total=%d, want 12 and 29", len(st.Items), st.TotalElements)
	}
	for _, it := range st.Items {
		if it.ID == target.ID {
			t.Error("deleted item still displayed")
		}
	}
}

func TestListingEngine_DeletingLastItemOnLastPageFallsBack(t *testing.T) {
	t.Parallel()

	// 4ページ目（0始まりで3）に1件だけ残っている状態
	items := &fakeItems{items: makeItems(37, ownerSession.UserID)}
	e := newTestEngine(items, nil, ownerSession)
	ctx := context.Background()
	_ = e.Mount(ctx)
	_ = e.SetPage(ctx, 3)

	st := e.Snapshot()
	if st.Page != 3 || st.TotalPages != 4 || len(st.Items) != 1 {
		t.Fatalf("precondition got page=%d pages=%d items=%d", st.Page, st.TotalPages, len(st.Items))
	}

	if err := e.Delete(ctx, st.Items[0], alwaysConfirm(nil)); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	items.mu.Lock()
	n := len(items.queries)
	requery, fallback := items.queries[n-2], items.queries[n-1]
	items.mu.Unlock()
	if requery.Page != 3 {
		t.Errorf("requery page got %d, want 3", requery.Page)
	}
	if fallback.Page != 2 {
		t.Errorf("fallback page got %d, want 2", fallback.Page)
	}

	st = e.Snapshot()
	if st.Page != 2 || st.TotalPages != 3 || len(st.Items) != 12 || st.Query.Page != 2 {
		t.Errorf("after fallback page=%d pages=%d items=%d query=%d", st.Page, st.TotalPages, len(st.Items), st.Query.Page)
	}
}
