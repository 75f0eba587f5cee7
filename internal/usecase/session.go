package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

// SessionStore は認証状態を保持する唯一のコンテキストです
// パッケージ変数にはせず、必要なコンポーネントへ明示的に渡します
type SessionStore struct {
	auth                 repository.AuthRepository
	store                repository.CredentialStore
	logger               *zap.Logger
	now                  func() time.Time
	logoutOnUnauthorized bool

	restoreOnce sync.Once
	ready       chan struct{}

	mu      sync.RWMutex
	session *model.Session
	subs    map[int]func(*model.Session)
	nextSub int
}

// SessionOption は SessionStore の任意設定です
type SessionOption func(*SessionStore)

func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *SessionStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLogoutOnUnauthorized はトークン付きリクエストが 401 を返したときに自動でログアウトするかを設定します
func WithLogoutOnUnauthorized(enabled bool) SessionOption {
	return func(s *SessionStore) { s.logoutOnUnauthorized = enabled }
}

// WithClock は現在時刻の取得方法を差し替えます
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore は新しいSessionStoreインスタンスを作成します
// Restore が完了するまで Loading は true です
func NewSessionStore(auth repository.AuthRepository, store repository.CredentialStore, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		auth:                 auth,
		store:                store,
		logger:               zap.NewNop(),
		now:                  time.Now,
		logoutOnUnauthorized: true,
		ready:                make(chan struct{}),
		subs:                 make(map[int]func(*model.Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore は保存された認証情報からセッションを復元します
// 失敗した場合は保存済みの情報を消去し、未ログイン状態で終わります（返すエラーは通知用です）
// 成否にかかわらず初期化バリアを解放します。2回目以降の呼び出しは何もしません
func (s *SessionStore) Restore(ctx context.Context) error {
	var err error
	s.restoreOnce.Do(func() {
		var sess *model.Session
		sess, err = s.restore(ctx)

		s.mu.Lock()
		s.session = sess
		s.mu.Unlock()
		// 購読者が Loading() == false を観測できるよう、通知の前にバリアを解放します
		close(s.ready)
		s.notify()
	})
	return err
}

func (s *SessionStore) restore(ctx context.Context) (*model.Session, error) {
	creds, err := s.store.Load(ctx)
	if errors.Is(err, repository.ErrNoCredentials) {
		return nil, nil
	}
	if err == nil {
		err = s.checkCredentials(creds)
	}
	if err != nil {
		s.logger.Warn("discarding stored session", zap.Error(err))
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.logger.Error("failed to clear stored session", zap.Error(clearErr))
		}
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	s.logger.Debug("session restored", zap.Int64("user_id", creds.User.ID))
	return s.sessionFrom(*creds), nil
}

// checkCredentials は保存された組が壊れていないか、トークンが期限切れでないかを確認します
// JWT として解釈できないトークンはそのまま受け入れ、判断をサーバーに委ねます
func (s *SessionStore) checkCredentials(c *model.Credentials) error {
	switch {
	case strings.TrimSpace(c.Token) == "":
		return errors.New("stored token is empty")
	case c.User.ID <= 0 || c.User.Email == "":
		return errors.New("stored user is incomplete")
	case c.User.Role != model.RoleUser && c.User.Role != model.RoleAdmin:
		return fmt.Errorf("stored user has unknown role %q", c.User.Role)
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(c.Token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.now()) {
		return fmt.Errorf("stored token expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return nil
}

// Ready は初期化バリアです。Restore が完了すると close されます
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

// Loading は Restore が完了していない間 true を返します
func (s *SessionStore) Loading() bool {
	select {
	case <-s.ready:
		return false
	default:
		return true
	}
}

// Login はログインし、認証情報を保存してからセッションを設定します
// 入力は空でないことだけを確認し、APIのエラーはそのまま返します
func (s *SessionStore) Login(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("Please enter your email and password")
	}
	resp, err := s.auth.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

// RegisterInput は新規登録フォームの入力です
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register は新規登録し、Login と同様にセッションを設定します
// パスワードの確認入力はAPIを呼ぶ前に照合します
func (s *SessionStore) Register(ctx context.Context, in RegisterInput) (*model.Session, error) {
	req := model.RegisterRequest{
		FullName:        strings.TrimSpace(in.FullName),
		Email:           strings.TrimSpace(in.Email),
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, invalid("Please fill in all fields")
	}
	if req.Password != req.ConfirmPassword {
		return nil, invalid("Passwords do not match")
	}
	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

// establish は認証情報を保存してからメモリ上のセッションを設定します
// 保存に失敗した場合はセッションを設定しません（保存内容とメモリを食い違わせないため）
func (s *SessionStore) establish(ctx context.Context, resp *model.AuthResponse) (*model.Session, error) {
	if resp == nil || strings.TrimSpace(resp.Token) == "" {
		return nil, errors.New("authentication response did not include a token")
	}
	creds := resp.Credentials()
	if err := s.store.Save(ctx, creds); err != nil {
		s.logger.Error("failed to persist session", zap.Error(err))
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	sess := s.sessionFrom(creds)
	s.set(sess)
	s.logger.Info("logged in", zap.Int64("user_id", sess.UserID), zap.String("role", string(sess.Role)))
	return s.Current(), nil
}

// Logout は保存済みの認証情報とメモリ上のセッションを消去します
// 失敗することはなく、何度呼んでも未ログイン状態になります
func (s *SessionStore) Logout() {
	if err := s.store.Clear(context.Background()); err != nil {
		s.logger.Error("failed to clear stored session", zap.Error(err))
	}
	s.mu.RLock()
	had := s.session != nil
	s.mu.RUnlock()
	if had {
		s.set(nil)
		s.logger.Info("logged out")
	}
}

// HandleUnauthorized はトークン付きリクエストが 401 を返したときに呼ばれます
func (s *SessionStore) HandleUnauthorized() {
	if !s.logoutOnUnauthorized || !s.IsAuthenticated() {
		return
	}
	s.logger.Warn("session rejected by server, logging out")
	s.Logout()
}

// Current は現在のセッションのコピーを返します。未ログインなら nil です
func (s *SessionStore) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// IsAuthenticated はセッションが存在するかどうかを返します
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// Token はAPIクライアントに渡すトークンです。未ログインなら空文字です
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Profile はサーバーから現在のユーザー情報を取得します
func (s *SessionStore) Profile(ctx context.Context) (*model.UserProfile, error) {
	if !s.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.auth.Me(ctx)
}

// Subscribe はセッションが変わるたびに呼ばれる関数を登録します
func (s *SessionStore) Subscribe(fn func(*model.Session)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *SessionStore) sessionFrom(c model.Credentials) *model.Session {
	return &model.Session{
		UserID:    c.User.ID,
		FullName:  c.User.FullName,
		Email:     c.User.Email,
		Role:      c.User.Role,
		Token:     c.Token,
		CreatedAt: s.now(),
	}
}

func (s *SessionStore) set(sess *model.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	s.notify()
}

// notify は購読者を登録順に関係なく呼び出します。ロックは保持しません
func (s *SessionStore) notify() {
	current := s.Current()
	s.mu.RLock()
	fns := make([]func(*model.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(current)
	}
}
