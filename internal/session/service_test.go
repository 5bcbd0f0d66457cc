package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dropDatabas3/imageguard/internal/cache"
	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	jwtx "github.com/dropDatabas3/imageguard/internal/jwt"
	"github.com/dropDatabas3/imageguard/internal/security/password"
	"github.com/dropDatabas3/imageguard/internal/store/memory"
	"github.com/dropDatabas3/imageguard/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	users repository.UserRepository
	codec *jwtx.Codec
	now   time.Time
	mu    sync.Mutex
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	codec, err := jwtx.NewCodec([]byte(strings.Repeat("k", 32)), jwtx.WithClock(f.clock))
	require.NoError(t, err)
	f.codec = codec
	f.users = memory.New().Users()
	f.svc = NewService(Deps{
		Users:       f.users,
		Codec:       codec,
		Revocations: NewRegistry(cache.NewMemory("")),
		ResetCode:   "0000",
		Hash:        password.Fast,
	})
	return f
}

func TestSignUp_CreatesUserAndShortToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.SignUp(ctx, "alice", "a@x.io", "password")
	require.NoError(t, err)

	claims, err := f.codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, jwtx.DefaultShortTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	u, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, repository.RoleUser, u.Role)
	assert.NotEqual(t, "password", u.PasswordHash)
	assert.True(t, password.Verify("password", u.PasswordHash))
	assert.Equal(t, u.ID, claims.UserID)
}

func TestSignUp_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "alice", "a@x.io", "password")
	require.NoError(t, err)

	_, err = f.svc.SignUp(ctx, "alice", "other@x.io", "password")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = f.svc.SignUp(ctx, "bobby", "a@x.io", "password")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = f.users.FindByUsername(ctx, "bobby")
	assert.True(t, repository.IsNotFound(err), "no write on duplicate")
}

func TestSignUp_PolicyViolation(t *testing.T) {
	f := newFixture(t)
	f.svc.deps.Policy = &password.Policy{MinLength: 10, RequireDigit: true}

	_, err := f.svc.SignUp(context.Background(), "alice", "a@x.io", "short")
	var ve validation.Errors
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve["password"], "demasiado corta")
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "alice", "a@x.io", "password")
	require.NoError(t, err)

	tok, err := f.svc.SignIn(ctx, "alice", "password", true)
	require.NoError(t, err)
	claims, err := f.codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, jwtx.DefaultLongTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	_, errWrong := f.svc.SignIn(ctx, "alice", "wrong-pass", false)
	_, errMissing := f.svc.SignIn(ctx, "nobody", "password", false)
	assert.ErrorIs(t, errWrong, ErrAuthentication)
	assert.ErrorIs(t, errMissing, ErrAuthentication)
	assert.Equal(t, errWrong.Error(), errMissing.Error())
}

func TestSignIn_UpgradesLegacyHash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	legacy, err := password.Hash(password.Params{Memory: 2048, Time: 1, Parallelism: 1, KeyLen: 32}, "password")
	require.NoError(t, err)
	require.NoError(t, f.users.Save(ctx, &repository.User{Username: "old", Email: "o@x.io", PasswordHash: legacy, Role: repository.RoleUser}))

	_, err = f.svc.SignIn(ctx, "old", "password", false)
	require.NoError(t, err)

	u, err := f.users.FindByUsername(ctx, "old")
	require.NoError(t, err)
	assert.False(t, password.NeedsRehash(password.Fast, u.PasswordHash))
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "alice", "a@x.io", "password")
	require.NoError(t, err)

	_, err = f.svc.ResetPassword(ctx, "alice", "newpass123", "1234", "")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.svc.ResetPassword(ctx, "nobody", "newpass123", "0000", "")
	assert.ErrorIs(t, err, ErrNotFound)

	tok, err := f.svc.ResetPassword(ctx, "alice", "newpass123", "0000", "")
	require.NoError(t, err)
	claims, err := f.codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, jwtx.DefaultLongTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	_, err = f.svc.SignIn(ctx, "alice", "password", false)
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = f.svc.SignIn(ctx, "alice", "newpass123", false)
	assert.NoError(t, err)
}

func TestResetPassword_RevokeFailureKeepsPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, err := f.svc.SignUp(ctx, "alice", "a@x.io", "password")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	store, err := cache.NewRedis(ctx, cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer store.Close()
	f.svc.deps.Revocations = NewRegistry(store)
	mr.Close()

	_, err = f.svc.ResetPassword(ctx, "alice", "newpass123", "0000", tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCode)

	_, err = f.svc.SignIn(ctx, "alice", "password", false)
	assert.NoError(t, err)
	_, err = f.svc.SignIn(ctx, "alice", "newpass123", false)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthorize_FailureModes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, err := f.svc.SignUp(ctx, "alice", "a@x.io", "password")
	require.NoError(t, err)

	id, err := f.svc.Authorize(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "a@x.io", id.Email)
	assert.False(t, id.IsAdmin())

	_, err = f.svc.Authorize(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	f.advance(jwtx.DefaultShortTTL + time.Second)
	_, err = f.svc.Authorize(ctx, tok)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// revocado gana sobre vencido
	f.svc.Logout(ctx, tok)
	_, err = f.svc.Authorize(ctx, tok)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

// Escenario completo: alta, logout, login y reset con revocación del token
// que acompañó al request.
func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.SignUp(ctx, "alice", "a@x.io", "password")
	require.NoError(t, err)
	_, err = f.svc.Authorize(ctx, a)
	require.NoError(t, err)

	f.svc.Logout(ctx, a)
	_, err = f.svc.Authorize(ctx, a)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	b, err := f.svc.SignIn(ctx, "alice", "password", false)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	_, err = f.svc.Authorize(ctx, b)
	require.NoError(t, err)

	// código inválido: el token presentado sigue vivo
	_, err = f.svc.ResetPassword(ctx, "alice", "newpass123", "9999", b)
	require.ErrorIs(t, err, ErrInvalidCode)
	_, err = f.svc.Authorize(ctx, b)
	require.NoError(t, err)

	c, err := f.svc.ResetPassword(ctx, "alice", "newpass123", "0000", b)
	require.NoError(t, err)

	_, err = f.svc.Authorize(ctx, b)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = f.svc.Authorize(ctx, c)
	assert.NoError(t, err)
}

func TestLogout_EmptyTokenIsNoop(t *testing.T) {
	f := newFixture(t)
	f.svc.Logout(context.Background(), "")
}

func TestRegistry_ConcurrentRevoke(t *testing.T) {
	r := NewRegistry(cache.NewMemory(""))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Revoke(ctx, "tok")
			_, _ = r.IsRevoked(ctx, "tok")
		}()
	}
	wg.Wait()

	ok, err := r.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = r.IsRevoked(ctx, "other")
	assert.False(t, ok)
}

func TestRegistry_RedisWithSweep(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	store, err := cache.NewRedis(ctx, cache.Config{Addr: mr.Addr(), Prefix: "ig"})
	require.NoError(t, err)
	defer store.Close()

	r := NewRegistry(store, WithSweep(func(string) time.Duration { return time.Minute }))
	require.NoError(t, r.Revoke(ctx, "tok"))
	require.NoError(t, r.Revoke(ctx, "tok"))

	ok, err := r.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	// el token en claro no aparece en las claves
	for _, k := range mr.Keys() {
		assert.NotContains(t, k, "tok")
	}

	mr.FastForward(2 * time.Minute)
	ok, err = r.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_SweepSkipsExpiredTokens(t *testing.T) {
	r := NewRegistry(cache.NewMemory(""), WithSweep(func(string) time.Duration { return 0 }))
	require.NoError(t, r.Revoke(context.Background(), "old"))
	ok, _ := r.IsRevoked(context.Background(), "old")
	assert.False(t, ok)
}
