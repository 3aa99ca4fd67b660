// Package token handles password hashes, the signed session cookie and the
// middleware that resolves a cookie back to an account.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"foodie/src/logger"
	"foodie/src/types"
)

const CookieName = "session"

// dummyHash is compared against when no account matches an email so that
// unknown emails cost as much as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate returns the first account registered with email whose hash
// matches password, or ErrAuthFailed.
func Authenticate(ctx context.Context, accounts types.AccountStore, email, password string) (*types.Account, error) {
	candidates, err := accounts.FindAccountsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, types.ErrAuthFailed
	}
	for i := range candidates {
		if CheckPassword(password, candidates[i].PasswordHash) {
			return &candidates[i], nil
		}
	}
	return nil, types.ErrAuthFailed
}

// Signer issues and verifies the cookie value: an HS256 token whose
// subject is the session token.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{key: []byte(secret), ttl: ttl, now: time.Now}
}

// SetClock replaces the time source, time.Now by default.
func (s *Signer) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Signer) Sign(sessionToken string) (string, time.Time, error) {
	expires := s.now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   sessionToken,
		IssuedAt:  s.now().Unix(),
		ExpiresAt: expires.Unix(),
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse returns the session token carried by a valid, unexpired value.
func (s *Signer) Parse(value string) (string, error) {
	return s.parse(value, false)
}

// ParseExpired is Parse without the expiry check. The signature is still
// verified, so only values this signer issued are accepted.
func (s *Signer) ParseExpired(value string) (string, error) {
	return s.parse(value, true)
}

func (s *Signer) parse(value string, allowExpired bool) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if !allowExpired || !errors.As(err, &ve) || ve.Errors != jwt.ValidationErrorExpired {
			return "", fmt.Errorf("%w: %v", types.ErrUnauthorized, err)
		}
	} else if !token.Valid {
		return "", fmt.Errorf("%w: invalid token", types.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no session", types.ErrUnauthorized)
	}
	if !allowExpired && !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return "", fmt.Errorf("%w: session expired", types.ErrUnauthorized)
	}
	return claims.Subject, nil
}

func (s *Signer) Cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionToken extracts the session token from the request cookie.
func (s *Signer) SessionToken(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", fmt.Errorf("%w: no session cookie", types.ErrUnauthorized)
	}
	return s.Parse(c.Value)
}

// TeardownToken extracts the session token for logout, accepting expired
// cookies so their server-side session can still be removed.
func (s *Signer) TeardownToken(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", fmt.Errorf("%w: no session cookie", types.ErrUnauthorized)
	}
	return s.ParseExpired(c.Value)
}

// Resolve maps a request to its account. Every failure is ErrUnauthorized,
// including a session whose account no longer exists.
func Resolve(r *http.Request, signer *Signer, sessions types.SessionStore, accounts types.AccountStore) (*types.Account, error) {
	sessionToken, err := signer.SessionToken(r)
	if err != nil {
		return nil, err
	}
	session, err := sessions.GetSession(r.Context(), sessionToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnauthorized, err)
	}
	account, err := accounts.GetAccount(r.Context(), session.AccountID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		logger.Warn("session %s bound to missing account %s", sessionToken, session.AccountID)
		_ = sessions.DeleteSession(r.Context(), sessionToken)
		return nil, fmt.Errorf("%w: account %s no longer exists", types.ErrUnauthorized, session.AccountID)
	}
	return account, nil
}

type contextKey struct{}

// AccountFrom returns the account stored by SessionMiddleware.
func AccountFrom(ctx context.Context) (*types.Account, bool) {
	a, ok := ctx.Value(contextKey{}).(*types.Account)
	return a, ok
}

func WithAccount(ctx context.Context, a *types.Account) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// SessionMiddleware rejects requests without a resolvable session and
// hands the account to next through the request context. onErr writes the
// rejection.
func SessionMiddleware(signer *Signer, sessions types.SessionStore, accounts types.AccountStore,
	onErr func(http.ResponseWriter, error), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := Resolve(r, signer, sessions, accounts)
		if err != nil {
			onErr(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}
