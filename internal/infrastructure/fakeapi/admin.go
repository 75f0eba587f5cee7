package fakeapi

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

func (s *Server) adminStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.AdminStats{
		TotalUsers:      int64(len(s.users)),
		TotalItems:      int64(len(s.items)),
		TotalCategories: int64(len(s.categories)),
	}
	sellers := make(map[int64]bool)
	for _, it := range s.items {
		stats.TotalItemsValue += it.Price
		if it.IsAvailable {
			sellers[it.SellerID] = true
		}
	}
	stats.ActiveUsers = int64(len(sellers))
	for _, u := range s.users {
		if u.role == model.RoleAdmin {
			stats.AdminUsers++
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) adminUsers(c *gin.Context) {
	page, size, err := paging(c, 10)
	if err != nil {
		abortText(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, paginate(s.userAnalytics(), page, size))
}

func (s *Server) adminAllUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.userAnalytics())
}

// userAnalytics は登録の新しい順に並べたユーザーごとの集計です
func (s *Server) userAnalytics() []model.UserAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.UserAnalytics, 0, len(s.users))
	for _, u := range s.users {
		ua := model.UserAnalytics{
			ID:        u.id,
			FullName:  u.fullName,
			Email:     u.email,
			Role:      u.role,
			CreatedAt: model.Timestamp{Time: u.createdAt},
		}
		for _, it := range s.items {
			if it.SellerID == u.id {
				ua.ItemCount++
				ua.TotalItemsValue += it.Price
			}
		}
		out = append(out, ua)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
