// Package auth implements login against a static credential table and
// stateless HS256 bearer tokens carrying the caller's permission scope.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// Permission scopes which stores a user may see.
type Permission string

const (
	PermissionAll Permission = "all"
	PermissionHR  Permission = "hr"
	PermissionMHP Permission = "mhp"
)

var (
	// ErrBadCredentials is returned for an unknown user or a wrong
	// password; callers must not be able to tell which.
	ErrBadCredentials = eris.New("auth: bad credentials")

	// ErrInvalidToken covers every verification failure: malformed,
	// tampered, wrong algorithm, expired. No partial trust.
	ErrInvalidToken = eris.New("auth: invalid token")
)

// Credential is one entry of the static user table.
type Credential struct {
	Password   string
	Permission Permission
}

// Claims is the signed claim set embedded in a token.
type Claims struct {
	Username   string     `json:"username"`
	Permission Permission `json:"permission"`
	jwt.RegisteredClaims
}

// Gate issues and verifies tokens. The user table and secret are fixed
// at construction and never mutated, so a Gate is safe for concurrent
// use.
type Gate struct {
	users  map[string]Credential
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewGate builds a Gate over an immutable credential table. The table
// is copied so later mutation of the argument cannot leak in.
func NewGate(users map[string]Credential, secret string, ttl time.Duration) *Gate {
	copied := make(map[string]Credential, len(users))
	for name, c := range users {
		copied[name] = c
	}
	return &Gate{
		users:  copied,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login checks the credentials against the user table and returns a
// signed token plus the user's permission. Passwords are compared flat;
// this is an internal dashboard behind the office network, not a public
// identity system.
func (g *Gate) Login(username, password string) (token string, perm Permission, err error) {
	cred, ok := g.users[username]
	if !ok || cred.Password != password {
		return "", "", ErrBadCredentials
	}

	now := g.now()
	claims := Claims{
		Username:   username,
		Permission: cred.Permission,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", "", eris.Wrap(err, "auth: sign token")
	}
	return signed, cred.Permission, nil
}

// Verify parses and validates a token string. Every failure mode
// collapses to ErrInvalidToken; malformed input never panics.
func (g *Gate) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return g.now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
