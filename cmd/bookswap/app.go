package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"jo3qma.com/bookswap_client/internal/config"
	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/handler"
	"jo3qma.com/bookswap_client/internal/infrastructure/api"
	"jo3qma.com/bookswap_client/internal/infrastructure/preview"
	"jo3qma.com/bookswap_client/internal/infrastructure/storage"
	"jo3qma.com/bookswap_client/internal/pkg/logger"
	"jo3qma.com/bookswap_client/internal/router"
	"jo3qma.com/bookswap_client/internal/usecase"
)

var (
	// errLoginRequired はログイン画面へリダイレクトされたことを表します（メッセージは表示済み）
	errLoginRequired = errors.New("login required")
	// errReported は画面に表示済みのエラーです。終了コードのためだけに返します
	errReported = errors.New("error already reported")
)

// app はコマンド実行に必要な依存関係をまとめたものです
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    storage.Store
	client   *api.Client
	sessions *usecase.SessionStore
	router   *router.Router
	previews *preview.Registry
	render   *handler.Renderer
	in       *bufio.Reader
	out      io.Writer
}

// newApp は依存関係を組み立て、保存済みのセッションを復元します
func newApp(ctx context.Context, configPath string, out io.Writer, in io.Reader) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	// Client はトークンの取得と 401 の通知を SessionStore に委ね、
	// SessionStore は Client を AuthRepository として使います
	var sessions *usecase.SessionStore
	client := api.NewClient(
		&http.Client{Timeout: cfg.Timeout()},
		cfg.API.BaseURL,
		api.TokenFunc(func() string { return sessions.Token() }),
		api.WithLogger(log.Named("api")),
		api.WithUnauthorizedHandler(func() { sessions.HandleUnauthorized() }),
	)
	sessions = usecase.NewSessionStore(client, store,
		usecase.WithSessionLogger(log.Named("session")),
		usecase.WithLogoutOnUnauthorized(cfg.Session.LogoutOnUnauthorized),
	)

	a := &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		client:   client,
		sessions: sessions,
		previews: preview.NewRegistry(cfg.Preview.Dir, cfg.Preview.MaxWidth, log.Named("preview")),
		render:   handler.NewRenderer(out, api.PlainText),
		in:       bufio.NewReader(in),
		out:      out,
	}
	a.router = router.New(sessions, log.Named("router"))

	if err := sessions.Restore(ctx); err != nil {
		log.Debug("session not restored", zap.Error(err))
	}
	return a, nil
}

// Close はリソースを解放します
func (a *app) Close() {
	a.router.Close()
	if err := a.previews.Close(); err != nil {
		a.log.Warn("failed to clean up previews", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close credential store", zap.Error(err))
	}
	_ = a.log.Sync()
}

// enter は画面へ遷移します。ログイン画面へリダイレクトされた場合は errLoginRequired を返します
func (a *app) enter(v router.View) error {
	got := a.router.Navigate(v)
	if got != v && got == router.ViewLogin {
		fmt.Fprintln(a.out, "Please log in to continue: bookswap login --email <email>")
		return errLoginRequired
	}
	return nil
}

// confirmer は端末で y/N の確認を取ります。assumeYes の場合は確認しません
func (a *app) confirmer(assumeYes bool) usecase.Confirmer {
	return usecase.ConfirmFunc(func(prompt string) bool {
		if assumeYes {
			return true
		}
		fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

// prompt は1行入力を読み取ります
func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// listingQuery は設定から一覧の初期クエリを作ります
func (a *app) listingQuery() model.Query {
	q := model.DefaultQuery(a.cfg.Listing.PageSize)
	if a.cfg.Listing.SortBy != "" {
		q.SortBy = a.cfg.Listing.SortBy
	}
	q.SortDir = model.ParseSortDir(a.cfg.Listing.SortDir)
	return q
}

// fail はユーザー向けのメッセージに変換したエラーを返します
func fail(err error) error {
	if err == nil || errors.Is(err, errLoginRequired) {
		return err
	}
	return errors.New(usecase.ErrorMessage(err))
}

// reported は表示済みのエラーを errReported に置き換えます
func reported(err error) error {
	if err == nil {
		return nil
	}
	return errReported
}
