// Package router は現在の画面と、セッション状態に応じたリダイレクトを管理します
package router

import (
	"sync"

	"go.uber.org/zap"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/pkg/logger"
)

// SessionSource はルーターが参照するセッション状態です
type SessionSource interface {
	Current() *model.Session
	Loading() bool
	Subscribe(fn func(*model.Session)) (cancel func())
}

// Router は画面遷移を管理します
// 遷移のたび、およびセッションが変わるたびに次の不変条件を適用します
//   - ログイン済みで Login にいるなら Home へ
//   - 未ログインで Login 以外にいるなら Login へ
type Router struct {
	sessions SessionSource
	logger   *zap.Logger

	mu        sync.Mutex
	current   View
	listeners map[int]func(View)
	nextID    int
	unsub     func()
}

// New は新しいRouterインスタンスを作成します。最初の画面は Login です
func New(sessions SessionSource, l *zap.Logger) *Router {
	r := &Router{
		sessions:  sessions,
		logger:    logger.OrNop(l),
		current:   ViewLogin,
		listeners: make(map[int]func(View)),
	}
	r.unsub = sessions.Subscribe(func(*model.Session) { r.reconcile() })
	r.reconcile()
	return r
}

// Navigate は v への遷移を要求し、不変条件を適用した後の画面を返します
// ViewLoading は指定できず、無視されます
func (r *Router) Navigate(v View) View {
	if v == ViewLoading {
		return r.Current()
	}
	r.mu.Lock()
	r.current = v
	r.mu.Unlock()
	return r.reconcile()
}

// Current は表示すべき画面を返します。セッション復元中は ViewLoading です
func (r *Router) Current() View {
	if r.sessions.Loading() {
		return ViewLoading
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnChange は画面が変わるたびに呼ばれる関数を登録します
func (r *Router) OnChange(fn func(View)) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// Close はセッションの購読を解除します
func (r *Router) Close() {
	if r.unsub != nil {
		r.unsub()
	}
}

// reconcile は不変条件を適用し、結果の画面を返します
func (r *Router) reconcile() View {
	if r.sessions.Loading() {
		return ViewLoading
	}
	authenticated := r.sessions.Current() != nil

	r.mu.Lock()
	before := r.current
	after := redirect(before, authenticated)
	r.current = after
	fns := make([]func(View), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	if after != before {
		r.logger.Debug("view redirected",
			zap.Stringer("from", before),
			zap.Stringer("to", after),
			zap.Bool("authenticated", authenticated))
	}
	for _, fn := range fns {
		fn(after)
	}
	return after
}

// redirect は画面ごとに遷移先を決めます
func redirect(v View, authenticated bool) View {
	switch v {
	case ViewLogin:
		return landing(authenticated)
	case ViewHome, ViewItems, ViewAddItem, ViewAdminAnalytics, ViewAdminItems:
		if !authenticated {
			return ViewLogin
		}
		return v
	case ViewLoading:
		return landing(authenticated)
	default:
		// 未知の値
		return landing(authenticated)
	}
}

// landing はログイン状態に応じた既定の画面です
func landing(authenticated bool) View {
	if authenticated {
		return ViewHome
	}
	return ViewLogin
}
