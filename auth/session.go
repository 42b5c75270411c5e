package auth

import (
	"chequeai/config"
	"chequeai/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionName = "token"
	userIdKey   = "id"
)

type Session struct {
	sessions.Session
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

// Options are applied to every session cookie
func Options() sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   config.SESSION_MAX_AGE,
		HttpOnly: true,
		Secure:   len(config.TLS_DOMAINS) > 0,
	}
}

func (s *Session) LoginUser(user *models.User) error {
	s.Clear()
	s.Set(userIdKey, user.ID)
	s.Options(Options())
	return s.Save()
}

func (s *Session) LogoutUser() error {
	s.Delete(userIdKey)
	s.Clear()
	opts := Options()
	opts.MaxAge = -1
	s.Options(opts)
	return s.Save()
}

// User returns the logged in user, or a user with ID 0
func (s *Session) User() (user models.User) {
	id, ok := s.Get(userIdKey).(uint64)
	if !ok || id == 0 {
		return
	}
	user, err := models.UserGet(id)
	if err != nil {
		user.ID = 0
	}
	return
}
