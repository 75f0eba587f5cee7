package model

// SortDir はソート方向です
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ParseSortDir は "asc" 以外をすべて降順として扱います（APIと同じ解釈）
func ParseSortDir(s string) SortDir {
	if s == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

// Query は一覧画面のフィルタ・ソート・ページング状態です
// Category, Condition, SearchTerm が空、MinPrice/MaxPrice が nil の場合は条件を付けません
type Query struct {
	Category   string
	Condition  Condition
	MinPrice   *float64
	MaxPrice   *float64
	SearchTerm string
	SortBy     string
	SortDir    SortDir
	Page       int // 0 始まり
	Size       int
}

// DefaultQuery は最初の一覧表示で使うクエリを返します
func DefaultQuery(size int) Query {
	return Query{
		SortBy:  "createdAt",
		SortDir: SortDesc,
		Size:    size,
	}
}
