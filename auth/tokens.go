// tokens.go - Issues and verifies the signed bearer tokens handed out at login

package auth

import (
	"errors"
	"time"

	"go-jobmarket-backend/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed validity of a login token.
const TokenTTL = 24 * time.Hour

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the identity carried by a token: {userId, role, iat, exp}.
type Claims struct {
	UserID uint        `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens with one process-wide secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// Issue returns a signed token for the user, expiring TokenTTL after issuance.
func (t *Tokens) Issue(u *models.User) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("auth: empty signing secret")
	}
	now := t.now()
	c := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Verify checks signature, algorithm and expiry and returns the claims.
// Tokens without an expiry or with an unknown role are rejected.
func (t *Tokens) Verify(tokenString string) (*Claims, error) {
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid || c.UserID == 0 || !c.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return &c, nil
}
