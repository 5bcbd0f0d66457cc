// Package jwt emite y verifica los tokens de sesión (HS256).
//
// Verify solo valida firma y estructura; expiración y revocación se
// chequean aparte (ver session.Service.Authorize) para poder distinguir
// token inválido, vencido y revocado.
package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultShortTTL = 10 * time.Minute
	DefaultLongTTL  = 30 * 24 * time.Hour

	minKeyBytes = 32
)

var (
	ErrConfig       = errors.New("jwt: signing key must decode to at least 32 bytes")
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// Claims es la identidad embebida en el token.
// sub = username; uid/email/role son claims privadas.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwtv5.RegisteredClaims
}

// Username es el subject del token.
func (c *Claims) Username() string { return c.Subject }

// Codec firma y verifica tokens con una clave simétrica.
type Codec struct {
	key      []byte
	shortTTL time.Duration
	longTTL  time.Duration
	now      func() time.Time
}

type Option func(*Codec)

func WithTTL(short, long time.Duration) Option {
	return func(c *Codec) {
		if short > 0 {
			c.shortTTL = short
		}
		if long > 0 {
			c.longTTL = long
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec recibe la clave cruda; ErrConfig si tiene menos de 32 bytes.
func NewCodec(key []byte, opts ...Option) (*Codec, error) {
	if len(key) < minKeyBytes {
		return nil, ErrConfig
	}
	c := &Codec{
		key:      append([]byte(nil), key...),
		shortTTL: DefaultShortTTL,
		longTTL:  DefaultLongTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// NewCodecBase64 decodifica la clave configurada (base64 estándar).
func NewCodecBase64(encoded string, opts ...Option) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return NewCodec(key, opts...)
}

// Issue firma claims con exp = now + longTTL si rememberMe, si no shortTTL.
// Sobrescribe iat/exp/jti de claims.
func (c *Codec) Issue(claims Claims, rememberMe bool) (string, error) {
	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	ttl := c.shortTTL
	if rememberMe {
		ttl = c.longTTL
	}
	now := c.now()
	claims.IssuedAt = jwtv5.NewNumericDate(now)
	claims.ExpiresAt = jwtv5.NewNumericDate(now.Add(ttl))
	claims.ID = uuid.NewString()

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, &claims)
	return tk.SignedString(c.key)
}

// Verify recalcula la firma y valida la estructura. No mira exp.
func (c *Codec) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	tk, err := jwtv5.ParseWithClaims(token, claims,
		func(*jwtv5.Token) (any, error) { return c.key, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithoutClaimsValidation(),
		jwtv5.WithStrictDecoding(),
	)
	if err != nil || !tk.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsExpired compara exp contra el reloj del codec.
func (c *Codec) IsExpired(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !c.now().Before(claims.ExpiresAt.Time)
}

// Remaining es el tiempo hasta exp (0 si ya venció).
func (c *Codec) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	d := claims.ExpiresAt.Sub(c.now())
	if d < 0 {
		return 0
	}
	return d
}
