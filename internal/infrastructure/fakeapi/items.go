package fakeapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

func (s *Server) insertItemLocked(sellerID int64, in model.ItemInput) (*model.Item, error) {
	seller, ok := s.users[sellerID]
	if !ok {
		return nil, fmt.Errorf("User not found with id: %d", sellerID)
	}
	cat, ok := s.categories[in.CategoryID]
	if !ok {
		return nil, fmt.Errorf("Category not found with id: %d", in.CategoryID)
	}
	if err := validateItem(in); err != nil {
		return nil, err
	}
	s.nextItem++
	now := model.Timestamp{Time: s.now()}
	it := &model.Item{
		ID:           s.nextItem,
		Name:         in.Name,
		Price:        in.Price,
		ImageURL:     in.ImageURL,
		Condition:    in.Condition,
		Description:  in.Description,
		IsAvailable:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		SellerID:     seller.id,
		SellerName:   seller.fullName,
		SellerEmail:  seller.email,
	}
	s.items[it.ID] = it
	return it, nil
}

func validateItem(in model.ItemInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return errors.New("Item name is required")
	case in.Price <= 0:
		return errors.New("Price must be greater than 0")
	case !in.Condition.Valid():
		return fmt.Errorf("Invalid condition: %s", in.Condition)
	case len(in.ImageURL) > 500:
		return errors.New("Image URL must not exceed 500 characters")
	}
	return nil
}

// itemsGet は /items/:id 配下の GET を振り分けます
func (s *Server) itemsGet(c *gin.Context) {
	switch c.Param("id") {
	case "search":
		s.searchItems(c)
	case "conditions":
		s.conditions(c)
	case "my-items":
		if s.requireAuth()(c); c.IsAborted() {
			return
		}
		s.myItems(c)
	default:
		s.getItem(c)
	}
}

func (s *Server) listItems(c *gin.Context) {
	s.mu.Lock()
	all := s.filterLocked(func(it *model.Item) bool { return true })
	s.mu.Unlock()
	s.respondPage(c, all, 12)
}

func (s *Server) searchItems(c *gin.Context) {
	category := c.Query("category")
	var cond model.Condition
	if raw := c.Query("condition"); raw != "" {
		parsed, ok := model.ParseCondition(raw)
		if !ok {
			abortText(c, http.StatusBadRequest, "Invalid condition: "+raw)
			return
		}
		cond = parsed
	}
	minPrice, okMin, err := optionalFloat(c, "minPrice")
	if err != nil {
		abortText(c, http.StatusBadRequest, err.Error())
		return
	}
	maxPrice, okMax, err := optionalFloat(c, "maxPrice")
	if err != nil {
		abortText(c, http.StatusBadRequest, err.Error())
		return
	}
	term := strings.ToLower(c.Query("searchTerm"))

	s.mu.Lock()
	matched := s.filterLocked(func(it *model.Item) bool {
		switch {
		case category != "" && it.CategoryName != category:
			return false
		case cond != "" && it.Condition != cond:
			return false
		case okMin && it.Price < minPrice:
			return false
		case okMax && it.Price > maxPrice:
			return false
		case term != "" && !strings.Contains(strings.ToLower(it.Name), term):
			return false
		}
		return true
	})
	s.mu.Unlock()
	s.respondPage(c, matched, 12)
}

func optionalFloat(c *gin.Context, key string) (float64, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("Invalid %s: %s", key, raw)
	}
	return v, true, nil
}

// filterLocked は販売中の出品物のうち keep を満たすものを返します
func (s *Server) filterLocked(keep func(*model.Item) bool) []model.Item {
	out := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		if it.IsAvailable && keep(it) {
			out = append(out, *it)
		}
	}
	return out
}

func (s *Server) respondPage(c *gin.Context, items []model.Item, defaultSize int) {
	page, size, err := paging(c, defaultSize)
	if err != nil {
		abortText(c, http.StatusBadRequest, err.Error())
		return
	}
	sortItems(items, c.DefaultQuery("sortBy", "createdAt"), c.DefaultQuery("sortDir", "desc"))
	c.JSON(http.StatusOK, paginate(items, page, size))
}

func paging(c *gin.Context, defaultSize int) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		return 0, 0, fmt.Errorf("Invalid page: %s", c.Query("page"))
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultSize)))
	if err != nil || size <= 0 {
		return 0, 0, fmt.Errorf("Invalid size: %s", c.Query("size"))
	}
	return page, size, nil
}

func sortItems(items []model.Item, sortBy, sortDir string) {
	less := func(a, b model.Item) bool {
		switch sortBy {
		case "price":
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt.Time) {
				return a.CreatedAt.Before(b.CreatedAt.Time)
			}
		}
		return a.ID < b.ID
	}
	desc := !strings.EqualFold(sortDir, "asc")
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// paginate は0始まりのページを切り出します
func paginate[T any](all []T, page, size int) model.Page[T] {
	total := len(all)
	totalPages := (total + size - 1) / size
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := make([]T, end-start)
	copy(content, all[start:end])
	return model.Page[T]{
		Content:          content,
		TotalElements:    int64(total),
		TotalPages:       totalPages,
		Size:             size,
		Number:           page,
		First:            page == 0,
		Last:             page >= totalPages-1,
		NumberOfElements: len(content),
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

func (s *Server) getItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	s.mu.Lock()
	it, found := s.items[id]
	var cp model.Item
	if found {
		cp = *it
	}
	s.mu.Unlock()
	if !found {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (s *Server) createItem(c *gin.Context) {
	var in model.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortText(c, http.StatusBadRequest, "Failed to create item: "+err.Error())
		return
	}
	u := currentUser(c)
	s.mu.Lock()
	it, err := s.insertItemLocked(u.id, in)
	var cp model.Item
	if err == nil {
		cp = *it
	}
	s.mu.Unlock()
	if err != nil {
		abortText(c, http.StatusBadRequest, "Failed to create item: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (s *Server) updateItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortText(c, http.StatusBadRequest, "Failed to update item: invalid id")
		return
	}
	var in model.ItemUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		abortText(c, http.StatusBadRequest, "Failed to update item: "+err.Error())
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	it, found := s.items[id]
	switch {
	case !found:
		abortText(c, http.StatusBadRequest, fmt.Sprintf("Failed to update item: Item not found with id: %d", id))
		return
	case it.SellerID != u.id:
		abortText(c, http.StatusBadRequest, "Failed to update item: You are not authorized to update this item")
		return
	}
	if err := validateItem(in.ItemInput); err != nil {
		abortText(c, http.StatusBadRequest, "Failed to update item: "+err.Error())
		return
	}
	cat, found := s.categories[in.CategoryID]
	if !found {
		abortText(c, http.StatusBadRequest, fmt.Sprintf("Failed to update item: Category not found with id: %d", in.CategoryID))
		return
	}
	it.Name = in.Name
	it.Price = in.Price
	it.ImageURL = in.ImageURL
	it.Condition = in.Condition
	it.Description = in.Description
	it.CategoryID = cat.ID
	it.CategoryName = cat.Name
	if in.IsAvailable != nil {
		it.IsAvailable = *in.IsAvailable
	}
	it.UpdatedAt = model.Timestamp{Time: s.now()}
	c.JSON(http.StatusOK, *it)
}

// deleteItem は管理者なら任意の、一般ユーザーなら自分の出品物を削除します
func (s *Server) deleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortText(c, http.StatusBadRequest, "Failed to delete item: invalid id")
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	it, found := s.items[id]
	switch {
	case !found:
		abortText(c, http.StatusBadRequest, fmt.Sprintf("Failed to delete item: Item not found with id: %d", id))
		return
	case u.role != model.RoleAdmin && it.SellerID != u.id:
		abortText(c, http.StatusBadRequest, "Failed to delete item: You are not authorized to delete this item")
		return
	}
	delete(s.items, id)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte("Item deleted successfully"))
}

func (s *Server) myItems(c *gin.Context) {
	u := currentUser(c)
	s.mu.Lock()
	mine := s.filterLocked(func(it *model.Item) bool { return it.SellerID == u.id })
	s.mu.Unlock()
	s.respondPage(c, mine, 12)
}

func (s *Server) conditions(c *gin.Context) {
	s.mu.Lock()
	seen := make(map[model.Condition]bool)
	for _, it := range s.items {
		if it.IsAvailable {
			seen[it.Condition] = true
		}
	}
	s.mu.Unlock()

	out := make([]string, 0, len(seen))
	for _, cond := range model.Conditions {
		if seen[cond] {
			out = append(out, string(cond))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Required part 'file' is not present."})
		return
	}
	if fh.Size == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "File is empty"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Upload failed: " + err.Error()})
		return
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Upload failed: " + err.Error()})
		return
	}

	name := uuid.New().String() + filepath.Ext(fh.Filename)
	s.mu.Lock()
	s.uploads[name] = b
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"url": "/uploads/" + name})
}

func (s *Server) serveUpload(c *gin.Context) {
	s.mu.Lock()
	b, ok := s.uploads[c.Param("name")]
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(b), b)
}
