package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

// fakeAdmin は AdminRepository のテスト用実装です
type fakeAdmin struct {
	mu        sync.Mutex
	users     []model.UserAnalytics
	statsErr  error
	usersErr  error
	deleteErr error
	pages     []int
	deleted   []int64
}

func (f *fakeAdmin) Stats(ctx context.Context) (*model.AdminStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.AdminStats{TotalUsers: int64(len(f.users)), AdminUsers: 1}, nil
}

func (f *fakeAdmin) Users(ctx context.Context, page, size int) (*model.Page[model.UserAnalytics], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	start := page * size
	if start > len(f.users) {
		start = len(f.users)
	}
	end := start + size
	if end > len(f.users) {
		end = len(f.users)
	}
	return &model.Page[model.UserAnalytics]{
		Content:    append([]model.UserAnalytics(nil), f.users[start:end]...),
		TotalPages: (len(f.users) + size - 1) / size,
		Size:       size,
		Number:     page,
	}, nil
}

func (f *fakeAdmin) AllUsers(ctx context.Context) ([]model.UserAnalytics, error) {
	return f.users, nil
}

func (f *fakeAdmin) AdminDeleteItem(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func makeUsers(n int) []model.UserAnalytics {
	out := make([]model.UserAnalytics, n)
	for i := range out {
		out[i] = model.UserAnalytics{ID: int64(i + 1), Email: fmt.Sprintf("u%d@example.com", i+1), Role: model.RoleUser}
	}
	return out
}

func TestAdminAnalytics_LoadsStatsAndUserPage(t *testing.T) {
	t.Parallel()

	repo := &fakeAdmin{users: makeUsers(25)}
	a := NewAdminAnalytics(repo, 0, nil)

	if err := a.Load(context.Background(), 0); err != nil {
		t.Fatalf("Load: %v", err)
	}
	st := a.State()
	if st.Stats == nil || st.Stats.TotalUsers != 25 {
		t.Errorf("stats got %+v", st.Stats)
	}
	if len(st.Users) != DefaultAdminPageSize || st.TotalPages != 3 {
		t.Errorf("users=%d totalPages=%d, want %d and 3", len(st.Users), st.TotalPages, DefaultAdminPageSize)
	}
	if st.Loading {
		t.Error("still loading after Load returned")
	}
}

func TestAdminAnalytics_PagingIsClamped(t *testing.T) {
	t.Parallel()

	repo := &fakeAdmin{users: makeUsers(15)}
	a := NewAdminAnalytics(repo, 10, nil)
	ctx := context.Background()
	_ = a.Load(ctx, 0)

	if err := a.PrevPage(ctx); err != nil {
		t.Fatalf("PrevPage: %v", err)
	}
	if err := a.NextPage(ctx); err != nil {
		t.Fatalf("NextPage: %v", err)
	}
	if err := a.NextPage(ctx); err != nil {
		t.Fatalf("NextPage: %v", err)
	}
	st := a.State()
	if st.Page != 1 || len(st.Users) != 5 {
		t.Errorf("page=%d users=%d, want 1 and 5", st.Page, len(st.Users))
	}
	want := []int{0, 1}
	if fmt.Sprint(repo.pages) != fmt.Sprint(want) {
		t.Errorf("requested pages got %v, want %v", repo.pages, want)
	}

	if err := a.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if last := repo.pages[len(repo.pages)-1]; last != 1 {
		t.Errorf("Refresh requested page %d, want 1", last)
	}
}

func TestAdminAnalytics_FailureKeepsPreviousData(t *testing.T) {
	t.Parallel()

	repo := &fakeAdmin{users: makeUsers(3)}
	a := NewAdminAnalytics(repo, 10, nil)
	_ = a.Load(context.Background(), 0)

	repo.statsErr = &model.RemoteError{StatusCode: 403, Message: "Request failed with status code 403 (Forbidden)"}
	if err := a.Refresh(context.Background()); model.StatusOf(err) != 403 {
		t.Fatalf("got %v, want 403", err)
	}
	st := a.State()
	if st.Error != "Failed to load analytics: Request failed with status code 403 (Forbidden)" {
		t.Errorf("error got %q", st.Error)
	}
	if len(st.Users) != 3 || st.Stats == nil {
		t.Errorf("previous data dropped: users=%d stats=%v", len(st.Users), st.Stats)
	}
}

func TestAdminCatalog_LoadUsesCatalogSize(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(5, 2)}
	c := NewAdminCatalog(items, &fakeAdmin{}, 0, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := items.queries[0]; got.Size != DefaultAdminCatalogSize || got.Page != 0 {
		t.Errorf("query got %+v", got)
	}
	if n := len(c.State().Items); n != 5 {
		t.Errorf("items got %d, want 5", n)
	}
}

func TestAdminCatalog_DeleteRemovesLocally(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: makeItems(3, 2)}
	admin := &fakeAdmin{}
	c := NewAdminCatalog(items, admin, 200, nil)
	_ = c.Load(context.Background())

	var prompt string
	err := c.Delete(context.Background(), 2, ConfirmFunc(func(p string) bool { prompt = p; return true }))
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if prompt != "Delete this item? This action cannot be undone." {
		t.Errorf("prompt got %q", prompt)
	}
	if len(admin.deleted) != 1 || admin.deleted[0] != 2 {
		t.Errorf("admin delete calls got %v", admin.deleted)
	}
	got := c.State().Items
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("items after delete got %+v", got)
	}
	if len(items.queries) != 1 {
		t.Errorf("catalog refetched after delete: %d queries", len(items.queries))
	}
}

func TestAdminCatalog_DeleteDeclinedOrFailed(t *testing.T) {
	t.Parallel()

	admin := &fakeAdmin{}
	c := NewAdminCatalog(&fakeItems{items: makeItems(2, 2)}, admin, 200, nil)
	_ = c.Load(context.Background())

	if err := c.Delete(context.Background(), 1, ConfirmFunc(func(string) bool { return false })); !errors.Is(err, ErrCancelled) {
		t.Fatalf("got %v, want ErrCancelled", err)
	}
	if err := c.Delete(context.Background(), 1, nil); !errors.Is(err, ErrCancelled) {
		t.Fatalf("nil confirmer got %v, want ErrCancelled", err)
	}
	if len(admin.deleted) != 0 || len(c.State().Items) != 2 {
		t.Fatalf("delete issued without confirmation: deleted=%v items=%d", admin.deleted, len(c.State().Items))
	}

	admin.deleteErr = &model.RemoteError{StatusCode: 500, Message: "boom"}
	if err := c.Delete(context.Background(), 1, ConfirmFunc(func(string) bool { return true })); err == nil {
		t.Fatal("expected error")
	}
	st := c.State()
	if st.Error != "Failed to delete item: boom" || len(st.Items) != 2 {
		t.Errorf("error=%q items=%d", st.Error, len(st.Items))
	}
}
