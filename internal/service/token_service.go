package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/acadverify/acadverify-api/internal/models"
)

var (
	// ErrTokenMalformed indicates the token could not be parsed or its
	// signature did not verify.
	ErrTokenMalformed = errors.New("session token is malformed")
	// ErrTokenExpired indicates the token parsed correctly but is past its
	// expiry.
	ErrTokenExpired = errors.New("session token has expired")
)

// refreshWindow is how close to expiry a token must be before the middleware
// issues a replacement.
const refreshWindow = 30 * time.Minute

// SessionClaims is the payload carried inside every session token issued by
// this service. UniversityID is only set for university administrators.
type SessionClaims struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	UniversityID string `json:"university_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-signed session tokens layered on top
// of the external identity provider.
type TokenService interface {
	Issue(account *models.Account, universityID string) (string, time.Time, error)
	Verify(token string) (*SessionClaims, error)
	ShouldRefresh(claims *SessionClaims) bool
}

type tokenService struct {
	secret      []byte
	platformTTL time.Duration
	sessionTTL  time.Duration
	now         func() time.Time
}

// NewTokenService constructs a token service signing with the provided secret.
func NewTokenService(secret string, platformTTL, sessionTTL time.Duration) TokenService {
	if platformTTL <= 0 {
		platformTTL = 168 * time.Hour
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &tokenService{
		secret:      []byte(secret),
		platformTTL: platformTTL,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

func (s *tokenService) Issue(account *models.Account, universityID string) (string, time.Time, error) {
	if account == nil {
		return "", time.Time{}, ErrTokenMalformed
	}

	ttl := s.sessionTTL
	if account.Role == models.RolePlatformAdmin {
		ttl = s.platformTTL
	}

	issued := s.now()
	expiry := issued.Add(ttl)
	claims := SessionClaims{
		Email:        account.Email,
		Role:         account.Role,
		UniversityID: universityID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiry, nil
}

func (s *tokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// ShouldRefresh reports whether the token is close enough to expiry that a
// replacement should be issued alongside the response.
func (s *tokenService) ShouldRefresh(claims *SessionClaims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < refreshWindow
}
