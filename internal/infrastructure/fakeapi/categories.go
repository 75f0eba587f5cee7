package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	out := make([]model.Category, 0, len(s.categories))
	for _, cat := range s.categories {
		out = append(out, *cat)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) getCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	s.mu.Lock()
	cat, found := s.categories[id]
	var cp model.Category
	if found {
		cp = *cat
	}
	s.mu.Unlock()
	if !found {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (s *Server) createCategory(c *gin.Context) {
	var in model.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		abortText(c, http.StatusBadRequest, "Failed to create category: Category name is required")
		return
	}
	s.mu.Lock()
	for _, cat := range s.categories {
		if strings.EqualFold(cat.Name, in.Name) {
			s.mu.Unlock()
			abortText(c, http.StatusBadRequest, "Failed to create category: Category already exists with name: "+in.Name)
			return
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, s.AddCategory(in.Name, in.Description))
}

func (s *Server) updateCategory(c *gin.Context) {
	id, ok := pathID(c)
	var in model.CategoryInput
	if err := c.ShouldBindJSON(&in); !ok || err != nil || strings.TrimSpace(in.Name) == "" {
		abortText(c, http.StatusBadRequest, "Failed to update category: Category name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, found := s.categories[id]
	if !found {
		abortText(c, http.StatusBadRequest, fmt.Sprintf("Failed to update category: Category not found with id: %d", id))
		return
	}
	cat.Name = in.Name
	cat.Description = in.Description
	for _, it := range s.items {
		if it.CategoryID == id {
			it.CategoryName = in.Name
		}
	}
	c.JSON(http.StatusOK, *cat)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortText(c, http.StatusBadRequest, "Failed to delete category: invalid id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.categories[id]; !found {
		abortText(c, http.StatusBadRequest, fmt.Sprintf("Failed to delete category: Category not found with id: %d", id))
		return
	}
	for _, it := range s.items {
		if it.CategoryID == id {
			abortText(c, http.StatusBadRequest, "Failed to delete category: Category is still used by items")
			return
		}
	}
	delete(s.categories, id)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte("Category deleted successfully"))
}
