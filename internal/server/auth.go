package server

import (
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/foxzi/wadesk/internal/models"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HashPassword returns the bcrypt hash of a password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// handleLogin handles POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		s.sendError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, hash, err := s.users.GetByEmail(req.Email)
	if err != nil {
		s.internalError(w, r, "failed to load user", err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		s.metrics.LoginFailed()
		s.logger.Warn("login failed", "email", req.Email, "remote_addr", r.RemoteAddr)
		s.sendError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	s.sendAuth(w, r, http.StatusOK, user)
}

// handleRegister handles POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.sendError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < MinPasswordLength {
		s.sendError(w, http.StatusBadRequest, "password is too short")
		return
	}

	existing, _, err := s.users.GetByEmail(req.Email)
	if err != nil {
		s.internalError(w, r, "failed to load user", err)
		return
	}
	if existing != nil {
		s.sendError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.internalError(w, r, "failed to hash password", err)
		return
	}
	user := &models.User{Name: req.Name, Email: req.Email, Role: models.RoleAgent}
	if err := s.users.Create(user, hash); err != nil {
		s.internalError(w, r, "failed to create user", err)
		return
	}

	s.logger.Info("user registered", "id", user.ID, "email", user.Email)
	s.sendAuth(w, r, http.StatusCreated, user)
}

func (s *Server) sendAuth(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.internalError(w, r, "failed to issue token", err)
		return
	}
	s.sendJSON(w, status, models.AuthResult{User: *user, Token: token})
}

// currentUser loads the authenticated user, answering 401 when the token
// refers to a user that no longer exists
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := s.users.GetByID(userIDFrom(r.Context()))
	if err != nil {
		s.internalError(w, r, "failed to load user", err)
		return nil, false
	}
	if user == nil {
		s.sendError(w, http.StatusUnauthorized, "unknown user")
		return nil, false
	}
	return user, true
}

// handleGetMe handles GET /api/users/me
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.sendJSON(w, http.StatusOK, user)
}

// handleUpdateMe handles PUT /api/users/me
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var patch models.ProfileUpdate
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			s.sendError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		user.Name = name
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}

	if err := s.users.UpdateProfile(user); err != nil {
		s.internalError(w, r, "failed to update user", err)
		return
	}
	s.sendJSON(w, http.StatusOK, user)
}
