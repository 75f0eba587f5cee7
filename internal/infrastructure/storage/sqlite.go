package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

var _ repository.CredentialStore = (*SQLiteStore)(nil)

const createCredentialsTable = `CREATE TABLE IF NOT EXISTS credentials (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	token      TEXT NOT NULL,
	user_json  TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore は認証情報を sqlite の1行として保存します
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore はデータベースを開き、テーブルを作成します
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// 書き込みの直列化は sqlite 側に任せず、接続を1本に絞ります
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createCredentialsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create credentials table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*model.Credentials, error) {
	var token, userJSON string
	err := s.db.QueryRowContext(ctx, `SELECT token, user_json FROM credentials WHERE id = 1`).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}

	creds := model.Credentials{Token: token}
	if err := json.Unmarshal([]byte(userJSON), &creds.User); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return &creds, nil
}

func (s *SQLiteStore) Save(ctx context.Context, creds model.Credentials) error {
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO credentials (id, token, user_json, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, user_json = excluded.user_json, updated_at = excluded.updated_at`,
		creds.Token, string(userJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
