package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

const ctxUserKey = "fakeapi.user"

// claims はトークンのクレームです
type claims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken は userID のトークンを発行します
func (s *Server) IssueToken(userID int64) (string, error) {
	s.mu.Lock()
	u, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown user: %d", userID)
	}
	return s.signToken(u)
}

func (s *Server) signToken(u *user) (string, error) {
	now := s.now()
	c := claims{
		Email: u.email,
		Role:  u.role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (*user, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user no longer exists")
	}
	return u, nil
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Full authentication is required to access this resource"})
			return
		}
		u, err := s.parseToken(strings.TrimPrefix(h, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).role != model.RoleAdmin {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *user {
	v, _ := c.Get(ctxUserKey)
	u, _ := v.(*user)
	return u
}

func (s *Server) authResponse(u *user) (*model.AuthResponse, error) {
	token, err := s.signToken(u)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		Token:    token,
		Type:     "Bearer",
		UserID:   u.id,
		Email:    u.email,
		FullName: u.fullName,
		Role:     u.role,
	}, nil
}

func (s *Server) login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortText(c, http.StatusBadRequest, "Invalid credentials: "+err.Error())
		return
	}

	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if u.email == strings.ToLower(strings.TrimSpace(req.Email)) {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(req.Password)) != nil {
		abortText(c, http.StatusBadRequest, "Invalid credentials: Bad credentials")
		return
	}
	resp, err := s.authResponse(found)
	if err != nil {
		abortText(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortText(c, http.StatusBadRequest, "Registration failed: "+err.Error())
		return
	}
	if req.FullName == "" || req.Email == "" || len(req.Password) < 6 {
		abortText(c, http.StatusBadRequest, "Registration failed: full name, email and a password of at least 6 characters are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		abortText(c, http.StatusBadRequest, "Registration failed: Passwords do not match")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		abortText(c, http.StatusInternalServerError, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.mu.Lock()
	for _, u := range s.users {
		if u.email == email {
			s.mu.Unlock()
			abortText(c, http.StatusBadRequest, "Registration failed: User already exists with email: "+req.Email)
			return
		}
	}
	u := s.insertUserLocked(req.FullName, email, hash, model.RoleUser)
	s.mu.Unlock()

	resp, err := s.authResponse(u)
	if err != nil {
		abortText(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) me(c *gin.Context) {
	u := currentUser(c)
	c.JSON(http.StatusOK, model.UserProfile{
		ID:        u.id,
		FullName:  u.fullName,
		Email:     u.email,
		Role:      u.role,
		CreatedAt: model.Timestamp{Time: u.createdAt},
	})
}
