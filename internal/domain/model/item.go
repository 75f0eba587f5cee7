package model

import "strings"

// Item は出品物（リスティング）のドメインモデルです
// リモートAPIのJSON構造をそのまま写した、純粋なデータ構造を定義します
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"` // 価格（単位：INR）。常に 0 より大きい
	ImageURL     string    `json:"imageUrl"`
	Condition    Condition `json:"condition"`
	Description  string    `json:"description,omitempty"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
	CategoryID   int64     `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	SellerID     int64     `json:"sellerId"`
	SellerName   string    `json:"sellerName"`
	SellerEmail  string    `json:"sellerEmail,omitempty"` // 出品者の連絡先。非公開の場合は空
}

// ItemInput は出品物の作成リクエストです
type ItemInput struct {
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description,omitempty"`
	CategoryID  int64     `json:"categoryId"`
}

// ItemUpdate は出品物の更新リクエストです
// IsAvailable が nil の場合は販売状態を変更しません
type ItemUpdate struct {
	ItemInput
	IsAvailable *bool `json:"isAvailable,omitempty"`
}

// Condition は出品物の状態を表します
type Condition string

const (
	ConditionNew       Condition = "NEW"
	ConditionExcellent Condition = "EXCELLENT"
	ConditionVeryGood  Condition = "VERY_GOOD"
	ConditionGood      Condition = "GOOD"
	ConditionFair      Condition = "FAIR"
)

// Conditions はAPIが受け付ける状態の一覧です（表示順）
var Conditions = []Condition{
	ConditionNew,
	ConditionExcellent,
	ConditionVeryGood,
	ConditionGood,
	ConditionFair,
}

// ParseCondition は大文字小文字を区別せずに状態をパースします
func ParseCondition(s string) (Condition, bool) {
	c := Condition(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Valid は定義済みの状態かどうかを返します
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionExcellent, ConditionVeryGood, ConditionGood, ConditionFair:
		return true
	}
	return false
}

// Label は画面表示用の文字列を返します（"VERY_GOOD" -> "VERY GOOD"）
func (c Condition) Label() string {
	return strings.Replace(string(c), "_", " ", 1)
}
