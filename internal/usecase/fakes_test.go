package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

// fakeAuth は AuthRepository のテスト用実装です
type fakeAuth struct {
	resp  *model.AuthResponse
	err   error
	calls int
	last  any
}

func (f *fakeAuth) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

func (f *fakeAuth) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

func (f *fakeAuth) Me(ctx context.Context) (*model.UserProfile, error) {
	f.calls++
	return &model.UserProfile{ID: 1}, f.err
}

// fakeCreds は CredentialStore のテスト用実装です
type fakeCreds struct {
	mu      sync.Mutex
	creds   *model.Credentials
	loadErr error
	saveErr error
	clears  int
}

func (f *fakeCreds) Load(ctx context.Context) (*model.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.creds == nil {
		return nil, repository.ErrNoCredentials
	}
	c := *f.creds
	return &c, nil
}

func (f *fakeCreds) Save(ctx context.Context, c model.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.creds = &c
	return nil
}

func (f *fakeCreds) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.creds = nil
	f.loadErr = nil
	return nil
}

// staticSession は SessionReader のテスト用実装です
type staticSession struct{ s *model.Session }

func (f staticSession) Current() *model.Session { return f.s }

// fakeCategories は CategoryRepository のテスト用実装です
type fakeCategories struct {
	cats    []model.Category
	err     error
	deleted []int64
}

func (f *fakeCategories) ListCategories(ctx context.Context) ([]model.Category, error) {
	return f.cats, f.err
}

func (f *fakeCategories) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	for _, c := range f.cats {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &model.RemoteError{StatusCode: 404, Message: "Request failed with status code 404 (Not Found)"}
}

func (f *fakeCategories) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := model.Category{ID: int64(len(f.cats) + 1), Name: in.Name, Description: in.Description}
	f.cats = append(f.cats, c)
	return &c, nil
}

func (f *fakeCategories) UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (*model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Category{ID: id, Name: in.Name, Description: in.Description}, nil
}

func (f *fakeCategories) DeleteCategory(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeItems は ItemRepository / AdminRepository / ImageUploader のテスト用実装です
// search が設定されていればそれを使い、なければ items をページングして返します
type fakeItems struct {
	mu          sync.Mutex
	items       []model.Item
	search      func(ctx context.Context, q model.Query) (*model.Page[model.Item], error)
	queries     []model.Query
	created     []model.ItemInput
	createErr   error
	uploadURL   string
	uploadErr   error
	uploads     int
	deleted     []int64
	adminDelete []int64
	deleteErr   error
}

func (f *fakeItems) pageOf(q model.Query) *model.Page[model.Item] {
	size := q.Size
	if size <= 0 {
		size = 12
	}
	total := len(f.items)
	totalPages := (total + size - 1) / size
	start := q.Page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := append([]model.Item(nil), f.items[start:end]...)
	return &model.Page[model.Item]{
		Content:          content,
		TotalElements:    int64(total),
		TotalPages:       totalPages,
		Size:             size,
		Number:           q.Page,
		NumberOfElements: len(content),
	}
}

func (f *fakeItems) ListItems(ctx context.Context, q model.Query) (*model.Page[model.Item], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.pageOf(q), nil
}

func (f *fakeItems) SearchItems(ctx context.Context, q model.Query) (*model.Page[model.Item], error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	search := f.search
	f.mu.Unlock()
	if search != nil {
		return search(ctx, q)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageOf(q), nil
}

func (f *fakeItems) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, &model.RemoteError{StatusCode: 404, Message: "Request failed with status code 404 (Not Found)"}
}

func (f *fakeItems) CreateItem(ctx context.Context, in model.ItemInput) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	it := model.Item{ID: int64(100 + len(f.created)), Name: in.Name, Price: in.Price, ImageURL: in.ImageURL, Condition: in.Condition, CategoryID: in.CategoryID}
	return &it, nil
}

func (f *fakeItems) UpdateItem(ctx context.Context, id int64, in model.ItemUpdate) (*model.Item, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeItems) remove(id int64) {
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return
		}
	}
}

func (f *fakeItems) DeleteItem(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.remove(id)
	return nil
}

func (f *fakeItems) AdminDeleteItem(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminDelete = append(f.adminDelete, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.remove(id)
	return nil
}

func (f *fakeItems) MyItems(ctx context.Context, page, size int) (*model.Page[model.Item], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageOf(model.Query{Page: page, Size: size}), nil
}

func (f *fakeItems) Conditions(ctx context.Context) ([]string, error) {
	return []string{"NEW", "GOOD"}, nil
}

func (f *fakeItems) UploadImage(ctx context.Context, file model.LocalFile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return f.uploadURL, f.uploadErr
}

func (f *fakeItems) Stats(ctx context.Context) (*model.AdminStats, error) {
	return &model.AdminStats{TotalItems: int64(len(f.items))}, nil
}

func (f *fakeItems) Users(ctx context.Context, page, size int) (*model.Page[model.UserAnalytics], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeItems) AllUsers(ctx context.Context) ([]model.UserAnalytics, error) {
	return nil, errors.New("not implemented")
}

// makeItems は sellerID が出品した n 件の出品物を作ります
func makeItems(n int, sellerID int64) []model.Item {
	out := make([]model.Item, n)
	for i := range out {
		out[i] = model.Item{ID: int64(i + 1), Name: fmt.Sprintf("Book %d", i+1), Price: 100, SellerID: sellerID, Condition: model.ConditionGood}
	}
	return out
}

// fakePreviews は PreviewStore のテスト用実装です
type fakePreviews struct {
	mu       sync.Mutex
	next     int
	live     map[string]bool
	released int
	err      error
}

func (f *fakePreviews) Create(file model.LocalFile) (*model.Preview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.live == nil {
		f.live = make(map[string]bool)
	}
	f.next++
	id := fmt.Sprintf("p%d", f.next)
	f.live[id] = true
	return &model.Preview{ID: id, URL: "preview://" + id}, nil
}

func (f *fakePreviews) Release(p *model.Preview) {
	if p == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.live[p.ID] {
		delete(f.live, p.ID)
		f.released++
	}
}

func (f *fakePreviews) outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}
