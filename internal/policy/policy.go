// Package policy はセッションから導出される権限判定をまとめます
// すべて純粋関数で、表示の可否（アフォーダンス）だけを決めます。最終的な認可はサーバーが行います
package policy

import "jo3qma.com/bookswap_client/internal/domain/model"

// IsAdmin は管理者かどうかを返します
func IsAdmin(s *model.Session) bool {
	return s.IsAdmin()
}

// CanSell は出品画面を使えるかどうかを返します
func CanSell(s *model.Session) bool {
	return s != nil
}

// CanDelete は item の削除操作を表示するかどうかを返します
// 管理者はすべての出品物、一般ユーザーは自分の出品物のみ削除できます
func CanDelete(s *model.Session, item model.Item) bool {
	if s == nil {
		return false
	}
	return s.IsAdmin() || item.SellerID == s.UserID
}

// DeleteLabel は削除ボタンの文言です
func DeleteLabel(s *model.Session) string {
	if s.IsAdmin() {
		return "Admin Delete"
	}
	return "Delete"
}

// DeleteConfirmation は削除前に表示する確認文です
func DeleteConfirmation(s *model.Session, item model.Item) string {
	if s.IsAdmin() {
		return `Delete "` + item.Name + `"? This action cannot be undone. (Admin Action)`
	}
	return "Delete this item? This action cannot be undone."
}

// NavEntry はナビゲーションの1項目です。ID は画面の識別子です
type NavEntry struct {
	ID    string
	Label string
}

// Navigation はセッションに応じたナビゲーション項目を表示順に返します
func Navigation(s *model.Session) []NavEntry {
	entries := []NavEntry{
		{ID: "home", Label: "Home"},
		{ID: "items", Label: "Browse Items"},
	}
	if CanSell(s) {
		entries = append(entries, NavEntry{ID: "add-item", Label: "Sell Item"})
	}
	if IsAdmin(s) {
		entries = append(entries,
			NavEntry{ID: "admin-analytics", Label: "Analytics"},
			NavEntry{ID: "admin-items", Label: "Manage Items"},
		)
	}
	if s == nil {
		entries = append(entries, NavEntry{ID: "login", Label: "Login"})
	}
	return entries
}
