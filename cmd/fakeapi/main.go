package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/infrastructure/fakeapi"
	"jo3qma.com/bookswap_client/internal/pkg/logger"
)

// ローカル開発用のマーケットプレイスAPIです。データはメモリ上にのみ保持します
func main() {
	log, err := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	opts := []fakeapi.Option{fakeapi.WithLogger(log)}
	if secret := os.Getenv("FAKEAPI_SECRET"); secret != "" {
		opts = append(opts, fakeapi.WithSecret(secret))
	}
	api := fakeapi.New(opts...)
	if os.Getenv("FAKEAPI_NO_SEED") == "" {
		seed(api)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンの設定
	go func() {
		log.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// seed は動作確認用の初期データを登録します
func seed(api *fakeapi.Server) {
	admin := api.AddUser("Site Admin", "admin@bookswap.local", "admin123", model.RoleAdmin)
	user := api.AddUser("Demo Seller", "seller@bookswap.local", "seller123", model.RoleUser)

	textbooks := api.AddCategory("Textbooks", "Course books and study guides")
	fiction := api.AddCategory("Fiction", "Novels and short stories")
	api.AddCategory("Comics", "")

	api.AddItem(user.ID, model.ItemInput{
		Name:        "Engineering Mathematics",
		Price:       450,
		ImageURL:    "https://picsum.photos/seed/math/300/400",
		Condition:   model.ConditionVeryGood,
		Description: "<p>Some highlighting in chapter 3.</p>",
		CategoryID:  textbooks.ID,
	})
	api.AddItem(user.ID, model.ItemInput{
		Name:       "The Hobbit",
		Price:      199,
		ImageURL:   "https://picsum.photos/seed/hobbit/300/400",
		Condition:  model.ConditionGood,
		CategoryID: fiction.ID,
	})
	api.AddItem(admin.ID, model.ItemInput{
		Name:       "Data Structures in C",
		Price:      320.5,
		ImageURL:   "https://picsum.photos/seed/ds/300/400",
		Condition:  model.ConditionNew,
		CategoryID: textbooks.ID,
	})
}
