// internal/app/auth.go
package app

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionCookieName = "college_schedule_session"
	sessionScope      = "college-schedule-session-v1"
)

var (
	ErrAuthNotConfigured = errors.New("APP_PASSWORD and APP_SESSION_SECRET must be configured")
	ErrInvalidPassword   = errors.New("invalid password")
)

// Auth guards the write endpoints with a single shared password. Sessions
// are either a stateless HMAC of a fixed scope string or, when redis is
// configured, random tokens tracked by a SessionStore.
type Auth struct {
	password     string
	passwordHash []byte
	secret       string
	production   bool
	cookieSecure bool
	ttl          time.Duration
	sessions     *SessionStore
}

func NewAuth(config *Config) (*Auth, error) {
	a := &Auth{
		password:     config.Auth.Password,
		passwordHash: []byte(config.Auth.PasswordHash),
		secret:       config.Auth.SessionSecret,
		production:   config.Server.Production,
		cookieSecure: config.Auth.CookieSecure || config.Server.Production,
		ttl:          config.SessionTTL(),
	}

	if !a.Configured() {
		if a.production {
			logger.Error.Println("Auth is not configured, logins will be refused")
		} else {
			logger.Info.Println("Auth is not configured, every request is treated as signed in")
		}
	}

	if config.Auth.RedisURL == "" {
		return a, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.sessions = NewSessionStore(client, config.Auth.SessionKeyTemplate, a.ttl)
	return a, nil
}

func (a *Auth) Close() error {
	if a.sessions != nil {
		return a.sessions.Close()
	}
	return nil
}

// Configured reports whether both a password and a session secret are set.
func (a *Auth) Configured() bool {
	return (a.password != "" || len(a.passwordHash) > 0) && a.secret != ""
}

func safeEqual(a, b string) bool {
	ah := sha256.Sum256([]byte(a))
	bh := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ah[:], bh[:]) == 1
}

func (a *Auth) sessionValue() string {
	mac := hmac.New(sha256.New, []byte(a.secret))
	mac.Write([]byte(sessionScope))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *Auth) checkPassword(attempt string) bool {
	if len(a.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(attempt)) == nil
	}
	return safeEqual(attempt, a.password)
}

// SignIn returns the session value to store in the cookie.
func (a *Auth) SignIn(ctx context.Context, attempt string) (string, error) {
	if !a.Configured() {
		return "", ErrAuthNotConfigured
	}
	if !a.checkPassword(attempt) {
		return "", ErrInvalidPassword
	}

	if a.sessions != nil {
		info, err := a.sessions.Create(ctx)
		if err != nil {
			return "", err
		}
		return info.Token, nil
	}
	return a.sessionValue(), nil
}

func (a *Auth) SignOut(ctx context.Context, session string) error {
	if a.sessions != nil && session != "" {
		return a.sessions.Revoke(ctx, session)
	}
	return nil
}

// Authenticated checks a session value. Without configuration only
// non-production deployments let requests through.
func (a *Auth) Authenticated(ctx context.Context, session string) bool {
	if !a.Configured() {
		return !a.production
	}
	if session == "" {
		return false
	}

	if a.sessions != nil {
		if _, err := a.sessions.Touch(ctx, session); err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				logger.Error.Printf("Session lookup failed: %v", err)
			}
			return false
		}
		return true
	}
	return safeEqual(session, a.sessionValue())
}

func (a *Auth) SessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (a *Auth) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionFromRequest reads the session cookie, empty when absent.
func SessionFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
