// Package session keeps per-browser state in a signed client-side cookie.
// The session travels as HS256 claims, so the server stores nothing; a
// tampered cookie fails verification and reads as an empty session.
package session

import (
	"log"
	"net/http"
	"time"

	"psjudge_frontend/internal/common/validate"
	"psjudge_frontend/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is fixed by jwtauth.TokenFromCookie.
const CookieName = "jwt"

type Session struct {
	Authorized bool
	UserID     int
	Username   string
	Roles      model.RoleSet
}

type Store struct {
	tokenAuth *jwtauth.JWTAuth
	ttl       time.Duration
}

func NewStore(secret []byte, ttl time.Duration) *Store {
	return &Store{
		tokenAuth: jwtauth.New("HS256", secret, nil),
		ttl:       ttl,
	}
}

// Verifier is the middleware that decodes the session cookie into the
// request context. It never rejects a request: a missing, expired or
// tampered cookie downgrades to an empty (unauthorized) session.
func (s *Store) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(s.tokenAuth, jwtauth.TokenFromCookie)
}

// FromRequest returns the session decoded by Verifier, or an empty session.
func (s *Store) FromRequest(r *http.Request) *Session {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return &Session{}
	}
	sess, err := sessionFromClaims(claims)
	if err != nil {
		log.Printf("WARN: discarding malformed session cookie: %v", err)
		return &Session{}
	}
	return sess
}

// Save signs the session and re-sets the cookie on the response.
func (s *Store) Save(w http.ResponseWriter, sess *Session) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"authorized": sess.Authorized,
		"user_id":    sess.UserID,
		"username":   sess.Username,
		"roles":      sess.Roles.Strings(),
		"exp":        now.Add(s.ttl).Unix(),
		"iat":        now.Unix(),
	}
	_, tokenString, err := s.tokenAuth.Encode(claims)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func sessionFromClaims(claims map[string]interface{}) (*Session, error) {
	sess := &Session{}

	authorized, ok := claims["authorized"].(bool)
	if !ok {
		// Cookie from before login, or from another app on this host.
		return &Session{}, nil
	}
	sess.Authorized = authorized

	var err error
	if sess.UserID, err = validate.Int(claims["user_id"]); err != nil {
		return nil, err
	}
	if sess.Username, err = validate.String(claims["username"]); err != nil {
		return nil, err
	}
	roles, err := validate.StringSlice(claims["roles"])
	if err != nil {
		return nil, err
	}
	if sess.Roles, err = model.RoleSetFromStrings(roles); err != nil {
		return nil, err
	}
	return sess, nil
}
