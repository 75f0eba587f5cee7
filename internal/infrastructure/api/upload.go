package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

// uploadResponse は POST /items/upload のレスポンスです
type uploadResponse struct {
	URL string `json:"url"`
}

// UploadImage はファイルを multipart の "file" フィールドとして送信し、
// 保存先のURLだけを返します
// 返されたURLを出品データに差し込むのは呼び出し側の責務です
func (c *Client) UploadImage(ctx context.Context, file model.LocalFile) (string, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	name := file.Name
	if name == "" {
		name = filepath.Base(file.Path)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/items/upload", nil, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", &model.RemoteError{StatusCode: http.StatusOK, Message: "upload response did not include a url"}
	}
	return out.URL, nil
}
