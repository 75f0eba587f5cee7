package handler

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/policy"
	"jo3qma.com/bookswap_client/internal/router"
	"jo3qma.com/bookswap_client/internal/usecase"
)

var (
	owner = &model.Session{UserID: 2, FullName: "Owner", Email: "o@example.com", Role: model.RoleUser}
	admin = &model.Session{UserID: 9, FullName: "Admin", Email: "a@example.com", Role: model.RoleAdmin}
)

func listingFixture() usecase.ListingState {
	return usecase.ListingState{
		Status: usecase.StatusLoaded,
		Items: []model.Item{
			{ID: 1, Name: "Calculus", Price: 1250, Condition: model.ConditionVeryGood, CategoryName: "Textbooks", SellerID: 2, SellerName: "Owner"},
			{ID: 2, Name: "Dune", Price: 300, Condition: model.ConditionGood, CategoryName: "Fiction", SellerID: 5, SellerName: "Other"},
		},
		Page:          1,
		TotalPages:    3,
		TotalElements: 26,
		Deleting:      []int64{1},
	}
}

func TestRenderer_Listing_showsDeleteOnlyWhenPermitted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewRenderer(&buf, nil).Listing(listingFixture(), owner)
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines got %d, want 4:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "Deleting...") {
		t.Errorf("own item in flight should show Deleting...: %q", lines[1])
	}
	if strings.Contains(lines[2], "Delete") {
		t.Errorf("other seller's item should have no delete action: %q", lines[2])
	}
	if !strings.Contains(lines[1], "VERY GOOD") || !strings.Contains(lines[1], "₹1,250.00") {
		t.Errorf("row formatting got %q", lines[1])
	}
	if lines[3] != "Page 2 of 3 (26 items)" {
		t.Errorf("footer got %q", lines[3])
	}
}

func TestRenderer_Listing_adminSeesAdminDelete(t *testing.T) {
	t.Parallel()

	st := listingFixture()
	st.Deleting = nil
	var buf bytes.Buffer
	NewRenderer(&buf, nil).Listing(st, admin)

	if got := strings.Count(buf.String(), "Admin Delete"); got != 2 {
		t.Errorf("Admin Delete count got %d, want 2", got)
	}
}

func TestRenderer_Listing_placeholderAndEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRenderer(&buf, nil)
	r.Listing(usecase.ListingState{Status: usecase.StatusLoading, Placeholder: true}, nil)
	r.Listing(usecase.ListingState{Status: usecase.StatusError, Error: "Failed to load items: boom"}, nil)

	want := "Loading items...\nFailed to load items: boom\nNo items found.\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderer_Item_contactAndDescription(t *testing.T) {
	t.Parallel()

	it := model.Item{
		ID: 3, Name: "Atlas", Price: 99.5, Condition: model.ConditionFair, IsAvailable: true,
		SellerName: "Other", SellerID: 5, SellerEmail: "seller@example.com",
		Description: "<p>Torn cover</p>",
		CreatedAt:   model.Timestamp{Time: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
	}
	var buf bytes.Buffer
	NewRenderer(&buf, func(s string) string { return strings.TrimSuffix(strings.TrimPrefix(s, "<p>"), "</p>") }).Item(it, owner)
	out := buf.String()

	for _, want := range []string{"Contact:   seller@example.com", "Listed:    15 Jan 2024", "\nTorn cover\n", "₹99.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[Delete]") {
		t.Error("delete action shown for another seller's item")
	}

	it.SellerEmail = ""
	buf.Reset()
	NewRenderer(&buf, nil).Item(it, admin)
	if strings.Contains(buf.String(), "Contact:") {
		t.Error("contact shown without a seller email")
	}
	if !strings.Contains(buf.String(), "[Admin Delete]") {
		t.Error("admin delete action missing")
	}
}

func TestRenderer_Navigation_marksCurrentView(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewRenderer(&buf, nil).Navigation(policy.Navigation(admin), router.ViewAdminItems)

	var marked []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.HasPrefix(line, "*") {
			marked = append(marked, line)
		}
	}
	if len(marked) != 1 || !strings.Contains(marked[0], "admin-items") {
		t.Errorf("marked got %q", marked)
	}
}

func TestRenderer_Analytics(t *testing.T) {
	t.Parallel()

	st := usecase.AnalyticsState{
		Stats:      &model.AdminStats{TotalUsers: 12, ActiveUsers: 10, AdminUsers: 1, TotalItems: 40, TotalCategories: 5, TotalItemsValue: 1234567},
		Users:      []model.UserAnalytics{{ID: 1, FullName: "A", Email: "a@x", Role: model.RoleUser, ItemCount: 3, TotalItemsValue: 450}},
		Page:       0,
		TotalPages: 2,
	}
	var buf bytes.Buffer
	NewRenderer(&buf, nil).Analytics(st)
	out := buf.String()
	for _, want := range []string{"Total Users:       12 (10 active, 1 admins)", "₹12,34,567.00", "₹450.00", "Page 1 of 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0.01:     "₹0.01",
		999:      "₹999.00",
		1000:     "₹1,000.00",
		123456.5: "₹1,23,456.50",
		12345678: "₹1,23,45,678.00",
		-1500.25: "-₹1,500.25",
	}
	for in, want := range cases {
		if got := FormatPrice(in); got != want {
			t.Errorf("FormatPrice(%v) got %q, want %q", in, got, want)
		}
	}
}
