package handler

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/policy"
	"jo3qma.com/bookswap_client/internal/router"
	"jo3qma.com/bookswap_client/internal/usecase"
)

// Renderer はユースケースの状態を端末向けのテキストに変換します
// プレゼンテーション層とユースケース層の橋渡しのみを行い、状態は持ちません
type Renderer struct {
	out   io.Writer
	plain func(string) string
}

// NewRenderer は新しいRendererインスタンスを作成します
// plain は HTML を含む説明文をプレーンテキストに変換する関数です（nil の場合はそのまま表示）
func NewRenderer(out io.Writer, plain func(string) string) *Renderer {
	if plain == nil {
		plain = strings.TrimSpace
	}
	return &Renderer{out: out, plain: plain}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Navigation はナビゲーションを表示し、現在の画面に印を付けます
func (r *Renderer) Navigation(entries []policy.NavEntry, current router.View) {
	for _, e := range entries {
		mark := " "
		if e.ID == current.String() {
			mark = "*"
		}
		r.printf("%s %-16s %s\n", mark, e.ID, e.Label)
	}
}

// Session は現在のログイン状態を表示します
func (r *Renderer) Session(s *model.Session) {
	if s == nil {
		r.printf("Not logged in\n")
		return
	}
	r.printf("Logged in as %s <%s>\n", s.FullName, s.Email)
	if s.IsAdmin() {
		r.printf("Role: %s (Admin)\n", s.Role)
	} else {
		r.printf("Role: %s\n", s.Role)
	}
}

// Notice はメッセージを1行表示します。空文字の場合は何もしません
func (r *Renderer) Notice(msg string) {
	if msg != "" {
		r.printf("%s\n", msg)
	}
}

// Listing は一覧画面を表示します
func (r *Renderer) Listing(st usecase.ListingState, s *model.Session) {
	if st.Error != "" {
		r.printf("%s\n", st.Error)
	}
	if st.Placeholder {
		r.printf("Loading items...\n")
		return
	}
	if len(st.Items) == 0 {
		r.printf("No items found.\n")
		return
	}

	deleting := make(map[int64]bool, len(st.Deleting))
	for _, id := range st.Deleting {
		deleting[id] = true
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCONDITION\tCATEGORY\tSELLER\tACTION")
	for _, it := range st.Items {
		action := ""
		if policy.CanDelete(s, it) {
			action = policy.DeleteLabel(s)
			if deleting[it.ID] {
				action = "Deleting..."
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Name, FormatPrice(it.Price), it.Condition.Label(), it.CategoryName, it.SellerName, action)
	}
	_ = tw.Flush()

	if st.TotalPages > 0 {
		r.printf("Page %d of %d (%d items)\n", st.Page+1, st.TotalPages, st.TotalElements)
	}
}

// Item は出品物の詳細を表示します
// 出品者の連絡先が公開されている場合のみ表示します
func (r *Renderer) Item(it model.Item, s *model.Session) {
	r.printf("%s\n", it.Name)
	r.printf("  Price:     %s\n", FormatPrice(it.Price))
	r.printf("  Condition: %s\n", it.Condition.Label())
	r.printf("  Category:  %s\n", it.CategoryName)
	r.printf("  Seller:    %s\n", it.SellerName)
	if it.SellerEmail != "" {
		r.printf("  Contact:   %s\n", it.SellerEmail)
	}
	if !it.IsAvailable {
		r.printf("  Status:    Sold\n")
	}
	if it.ImageURL != "" {
		r.printf("  Image:     %s\n", it.ImageURL)
	}
	if !it.CreatedAt.IsZero() {
		r.printf("  Listed:    %s\n", FormatDate(it.CreatedAt))
	}
	if d := r.plain(it.Description); d != "" {
		r.printf("\n%s\n", d)
	}
	if policy.CanDelete(s, it) {
		r.printf("\n[%s]\n", policy.DeleteLabel(s))
	}
}

// Form は出品フォームの状態を表示します
func (r *Renderer) Form(st usecase.FormState) {
	if st.Success != "" {
		r.printf("%s\n", st.Success)
	}
	if st.Error != "" {
		r.printf("%s\n", st.Error)
	}
	if st.Preview != nil {
		r.printf("Preview: %s\n", st.Preview.Path)
	}
}

// Categories はカテゴリ一覧を表示します
func (r *Renderer) Categories(cats []model.Category) {
	if len(cats) == 0 {
		r.printf("No categories.\n")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, c := range cats {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	_ = tw.Flush()
}

// Analytics は管理統計を表示します
func (r *Renderer) Analytics(st usecase.AnalyticsState) {
	if st.Error != "" {
		r.printf("%s\n", st.Error)
	}
	if st.Loading {
		r.printf("Loading analytics...\n")
		return
	}
	if s := st.Stats; s != nil {
		r.printf("Total Users:       %d (%d active, %d admins)\n", s.TotalUsers, s.ActiveUsers, s.AdminUsers)
		r.printf("Total Items:       %d\n", s.TotalItems)
		r.printf("Total Categories:  %d\n", s.TotalCategories)
		r.printf("Total Items Value: %s\n", FormatPrice(s.TotalItemsValue))
	}
	if len(st.Users) == 0 {
		return
	}
	r.printf("\n")
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tJOINED\tITEMS\tVALUE")
	for _, u := range st.Users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			u.ID, u.FullName, u.Email, u.Role, FormatDate(u.CreatedAt), u.ItemCount, FormatPrice(u.TotalItemsValue))
	}
	_ = tw.Flush()
	if st.TotalPages > 0 {
		r.printf("Page %d of %d\n", st.Page+1, st.TotalPages)
	}
}

// Catalog は管理者向けの出品一覧を表示します
func (r *Renderer) Catalog(st usecase.CatalogState) {
	if st.Error != "" {
		r.printf("%s\n", st.Error)
	}
	if st.Loading {
		r.printf("Loading items...\n")
		return
	}
	if len(st.Items) == 0 {
		r.printf("No items found.\n")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSELLER\tCATEGORY")
	for _, it := range st.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", it.ID, it.Name, FormatPrice(it.Price), it.SellerName, it.CategoryName)
	}
	_ = tw.Flush()
}

// FormatPrice はインドルピー表記（"₹1,23,456.50"）に整形します
func FormatPrice(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	// 下3桁の後は2桁ごとに区切る
	var groups []string
	if len(intPart) > 3 {
		head := intPart[:len(intPart)-3]
		groups = append(groups, intPart[len(intPart)-3:])
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
	} else {
		groups = []string{intPart}
	}

	out := "₹" + strings.Join(groups, ",") + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDate は "2 Jan 2006" 形式に整形します。ゼロ値は空文字です
func FormatDate(t model.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}
