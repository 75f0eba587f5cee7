package model

// LocalFile はユーザーが選択したローカルファイルです
type LocalFile struct {
	Path string
	Name string // 空の場合は Path のベース名を使います
}

// Preview はローカルファイルのプレビューハンドルです
// ブラウザの Object URL に相当し、使い終わったら必ず解放します
type Preview struct {
	ID   string
	URL  string // "preview://<id>" 形式
	Path string // サムネイルの実ファイル
}
