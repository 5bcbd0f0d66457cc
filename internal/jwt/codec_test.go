package jwt

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte(strings.Repeat("s", 32))

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCodec(t *testing.T) (*Codec, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c, err := NewCodec(testKey, WithClock(clk.now))
	require.NoError(t, err)
	return c, clk
}

func aliceClaims() Claims {
	return Claims{
		UserID:           7,
		Email:            "alice@x.io",
		Role:             "USER",
		RegisteredClaims: jwtv5.RegisteredClaims{Subject: "alice"},
	}
}

func TestNewCodec_ShortKey(t *testing.T) {
	_, err := NewCodec([]byte("too-short"))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewCodecBase64(base64.StdEncoding.EncodeToString(make([]byte, 31)))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewCodecBase64("%%%not-base64")
	assert.ErrorIs(t, err, ErrConfig)

	c, err := NewCodecBase64(base64.StdEncoding.EncodeToString(testKey))
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	c, clk := newTestCodec(t)

	tok, err := c.Issue(aliceClaims(), false)
	require.NoError(t, err)

	got, err := c.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username())
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "alice@x.io", got.Email)
	assert.Equal(t, "USER", got.Role)
	assert.Equal(t, clk.t.Unix(), got.IssuedAt.Unix())
	assert.Equal(t, clk.t.Add(DefaultShortTTL).Unix(), got.ExpiresAt.Unix())
	assert.NotEmpty(t, got.ID)
}

func TestIssue_RememberMeUsesLongTTL(t *testing.T) {
	c, clk := newTestCodec(t)

	tok, err := c.Issue(aliceClaims(), true)
	require.NoError(t, err)

	got, err := c.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, clk.t.Add(DefaultLongTTL).Unix(), got.ExpiresAt.Unix())
}

func TestIssue_TokensAreDistinct(t *testing.T) {
	c, _ := newTestCodec(t)
	a, err := c.Issue(aliceClaims(), false)
	require.NoError(t, err)
	b, err := c.Issue(aliceClaims(), false)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssue_EmptySubject(t *testing.T) {
	c, _ := newTestCodec(t)
	_, err := c.Issue(Claims{Role: "USER"}, false)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsMutation(t *testing.T) {
	c, _ := newTestCodec(t)
	tok, err := c.Issue(aliceClaims(), false)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	// payload alterado: role ADMIN con la firma original
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"role":"USER"`, `"role":"ADMIN"`, 1)
	require.NotEqual(t, string(payload), forged)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))
	_, err = c.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)

	// cada byte del token alterado
	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := c.Verify(string(b))
		assert.Error(t, err, "byte %d", i)
	}

	// el último char de la firma lleva bits de relleno: ninguna variante pasa
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := len(tok) - 1
	for _, ch := range []byte(alphabet) {
		if ch == tok[last] {
			continue
		}
		b := []byte(tok)
		b[last] = ch
		_, err := c.Verify(string(b))
		assert.ErrorIs(t, err, ErrInvalidToken, "last char %q", ch)
	}
}

func TestVerify_RejectsOtherKeyAndGarbage(t *testing.T) {
	c, _ := newTestCodec(t)
	other, err := NewCodec([]byte(strings.Repeat("o", 32)))
	require.NoError(t, err)

	tok, err := other.Issue(aliceClaims(), false)
	require.NoError(t, err)
	_, err = c.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	for _, s := range []string{"", "abc", "a.b.c", "Bearer x"} {
		_, err := c.Verify(s)
		assert.ErrorIs(t, err, ErrInvalidToken, s)
	}
}

func TestVerify_RejectsOtherAlgorithm(t *testing.T) {
	c, _ := newTestCodec(t)
	claims := aliceClaims()
	claims.IssuedAt = jwtv5.NewNumericDate(time.Now())
	claims.ExpiresAt = jwtv5.NewNumericDate(time.Now().Add(time.Hour))
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, &claims)
	s, err := tk.SignedString(testKey)
	require.NoError(t, err)

	_, err = c.Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiredIsStillDecodable(t *testing.T) {
	c, clk := newTestCodec(t)
	tok, err := c.Issue(aliceClaims(), false)
	require.NoError(t, err)

	clk.t = clk.t.Add(DefaultShortTTL + time.Minute)

	got, err := c.Verify(tok)
	require.NoError(t, err)
	assert.True(t, c.IsExpired(got))
}

func TestIsExpired_Monotonic(t *testing.T) {
	c, clk := newTestCodec(t)
	tok, err := c.Issue(aliceClaims(), false)
	require.NoError(t, err)
	got, err := c.Verify(tok)
	require.NoError(t, err)

	assert.False(t, c.IsExpired(got))
	assert.Equal(t, DefaultShortTTL, c.Remaining(got))

	clk.t = clk.t.Add(DefaultShortTTL)
	assert.True(t, c.IsExpired(got))
	clk.t = clk.t.Add(time.Hour)
	assert.True(t, c.IsExpired(got))
	assert.Zero(t, c.Remaining(got))
}
