package router

import (
	"fmt"
	"strings"
)

// View は画面の種類です。値は下の定数だけを取ります
type View int

const (
	// ViewLoading はセッション復元が終わるまでの一時的な画面です。遷移先には指定できません
	ViewLoading View = iota
	ViewHome
	ViewLogin
	ViewItems
	ViewAddItem
	ViewAdminAnalytics
	ViewAdminItems
)

// Views は遷移先として指定できる画面の一覧です
var Views = []View{ViewHome, ViewLogin, ViewItems, ViewAddItem, ViewAdminAnalytics, ViewAdminItems}

// String は画面の識別子を返します（policy.NavEntry.ID と同じ値です）
func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewHome:
		return "home"
	case ViewLogin:
		return "login"
	case ViewItems:
		return "items"
	case ViewAddItem:
		return "add-item"
	case ViewAdminAnalytics:
		return "admin-analytics"
	case ViewAdminItems:
		return "admin-items"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// ParseView は識別子から画面を返します。未知の識別子はエラーです
func ParseView(s string) (View, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, v := range Views {
		if v.String() == key {
			return v, nil
		}
	}
	return ViewLoading, fmt.Errorf("unknown view: %q", s)
}
