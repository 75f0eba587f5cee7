// Package fakeapi はBookSwap APIのインメモリ実装です
// アダプタ・ユースケースのテストと、ローカルでの動作確認に使います
package fakeapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

type user struct {
	id           int64
	fullName     string
	email        string
	passwordHash []byte
	role         model.Role
	createdAt    time.Time
}

// fault は次の1回だけ返す異常応答です
type fault struct {
	method      string
	path        string
	status      int
	contentType string
	body        string
}

// Server はインメモリのAPIサーバーです
type Server struct {
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	users      map[int64]*user
	items      map[int64]*model.Item
	categories map[int64]*model.Category
	uploads    map[string][]byte
	faults     []fault
	nextUser   int64
	nextItem   int64
	nextCat    int64
}

// Option は Server の任意設定です
type Option func(*Server)

// WithSecret はトークン署名用の鍵を設定します
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithTokenTTL は発行するトークンの有効期間を設定します
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New は空のサーバーを作成します
func New(opts ...Option) *Server {
	s := &Server{
		secret:     []byte("bookswap-fake-secret"),
		tokenTTL:   24 * time.Hour,
		logger:     zap.NewNop(),
		now:        time.Now,
		users:      make(map[int64]*user),
		items:      make(map[int64]*model.Item),
		categories: make(map[int64]*model.Category),
		uploads:    make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler はルーティング済みの gin エンジンを返します
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.faultMiddleware())

	r.GET("/uploads/:name", s.serveUpload)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
		auth.GET("/me", s.requireAuth(), s.me)

		items := api.Group("/items")
		items.GET("", s.listItems)
		// "/items/:id" と静的パスを同じ階層に並べないよう、GET はここで振り分けます
		items.GET("/:id", s.itemsGet)
		items.POST("", s.requireAuth(), s.createItem)
		items.POST("/upload", s.upload)
		items.PUT("/:id", s.requireAuth(), s.updateItem)
		items.DELETE("/:id", s.requireAuth(), s.deleteItem)

		cats := api.Group("/categories")
		cats.GET("", s.listCategories)
		cats.GET("/:id", s.getCategory)
		cats.POST("", s.requireAuth(), s.createCategory)
		cats.PUT("/:id", s.requireAuth(), s.updateCategory)
		cats.DELETE("/:id", s.requireAuth(), s.deleteCategory)

		admin := api.Group("/admin", s.requireAuth(), s.requireAdmin())
		admin.GET("/stats", s.adminStats)
		admin.GET("/users", s.adminUsers)
		admin.GET("/users/all", s.adminAllUsers)
	}
	return r
}

// InjectFault は method と path に一致する次のリクエストに指定の応答を返させます
func (s *Server) InjectFault(method, path string, status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{method: method, path: path, status: status, contentType: contentType, body: body})
}

func (s *Server) faultMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		var hit *fault
		for i, f := range s.faults {
			if f.method == c.Request.Method && f.path == c.Request.URL.Path {
				hit = &f
				s.faults = append(s.faults[:i], s.faults[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		if hit == nil {
			c.Next()
			return
		}
		ct := hit.contentType
		if ct == "" {
			ct = "text/plain; charset=utf-8"
		}
		c.Data(hit.status, ct, []byte(hit.body))
		c.Abort()
	}
}

// AddUser はユーザーを登録して射影を返します
func (s *Server) AddUser(fullName, email, password string, role model.Role) model.UserProjection {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.insertUserLocked(fullName, email, hash, role)
	return projection(u)
}

func (s *Server) insertUserLocked(fullName, email string, hash []byte, role model.Role) *user {
	s.nextUser++
	u := &user{
		id:           s.nextUser,
		fullName:     fullName,
		email:        strings.ToLower(email),
		passwordHash: hash,
		role:         role,
		createdAt:    s.now(),
	}
	s.users[u.id] = u
	return u
}

// AddCategory はカテゴリを登録します
func (s *Server) AddCategory(name, description string) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCat++
	cat := &model.Category{ID: s.nextCat, Name: name, Description: description, CreatedAt: model.Timestamp{Time: s.now()}}
	s.categories[cat.ID] = cat
	return *cat
}

// AddItem は sellerID の出品物を登録します
func (s *Server) AddItem(sellerID int64, in model.ItemInput) model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.insertItemLocked(sellerID, in)
	if err != nil {
		panic(err)
	}
	return *it
}

// ItemCount は登録済みの出品物の数です
func (s *Server) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Item は出品物を返します
func (s *Server) Item(id int64) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return model.Item{}, false
	}
	return *it, true
}

func projection(u *user) model.UserProjection {
	return model.UserProjection{ID: u.id, Email: u.email, FullName: u.fullName, Role: u.role}
}

// abortText は元のAPIと同じくプレーンテキストでエラーを返します
func abortText(c *gin.Context, status int, msg string) {
	c.Data(status, "text/plain; charset=utf-8", []byte(msg))
	c.Abort()
}
