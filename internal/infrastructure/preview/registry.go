package preview

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
	"jo3qma.com/bookswap_client/internal/pkg/logger"
)

var _ repository.PreviewStore = (*Registry)(nil)

// URLScheme はプレビューハンドルのURLスキームです
const URLScheme = "preview://"

// Registry は選択されたローカル画像のサムネイルを作成し、ハンドルとして管理します
// ブラウザの URL.createObjectURL / revokeObjectURL に相当します
type Registry struct {
	dir      string
	maxWidth uint
	logger   *zap.Logger

	mu      sync.Mutex
	handles map[string]string // id -> サムネイルのパス
}

// NewRegistry は新しいRegistryインスタンスを作成します
func NewRegistry(dir string, maxWidth uint, l *zap.Logger) *Registry {
	return &Registry{
		dir:      dir,
		maxWidth: maxWidth,
		logger:   logger.OrNop(l),
		handles:  make(map[string]string),
	}
}

// Create は画像を読み込み、幅 maxWidth 以下のJPEGサムネイルを書き出します
func (r *Registry) Create(file model.LocalFile) (*model.Preview, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if r.maxWidth > 0 && uint(img.Bounds().Dx()) > r.maxWidth {
		img = resize.Resize(r.maxWidth, 0, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create preview dir: %w", err)
	}
	id := uuid.New().String()
	path := filepath.Join(r.dir, id+".jpg")

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview file: %w", err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		out.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write preview: %w", err)
	}

	r.mu.Lock()
	r.handles[id] = path
	r.mu.Unlock()

	r.logger.Debug("preview created", zap.String("preview_id", id))
	return &model.Preview{ID: id, URL: URLScheme + id, Path: path}, nil
}

// Release はハンドルを解放します。nil や解放済みのハンドルは無視します
func (r *Registry) Release(p *model.Preview) {
	if p == nil {
		return
	}
	r.mu.Lock()
	path, ok := r.handles[p.ID]
	delete(r.handles, p.ID)
	r.mu.Unlock()
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove preview", zap.String("preview_id", p.ID), zap.Error(err))
	}
}

// Outstanding は未解放のハンドル数です
func (r *Registry) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Close は未解放のハンドルをすべて解放します
func (r *Registry) Close() error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Release(&model.Preview{ID: id})
	}
	return nil
}
