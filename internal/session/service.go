// Package session orquesta alta, login, reset de password y logout, y
// expone el gate de autorización que usan todas las rutas protegidas.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	jwtx "github.com/dropDatabas3/imageguard/internal/jwt"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/dropDatabas3/imageguard/internal/security/password"
	tokens "github.com/dropDatabas3/imageguard/internal/security/token"
	"github.com/dropDatabas3/imageguard/internal/validation"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrAlreadyExists  = errors.New("user already exists")
	ErrAuthentication = errors.New("invalid username or password")
	ErrNotFound       = errors.New("user not found")
	ErrInvalidCode    = errors.New("invalid confirmation code")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenRevoked   = errors.New("token revoked")
)

// Identity es lo que el gate entrega a la lógica de negocio.
type Identity struct {
	UserID   int64
	Username string
	Email    string
	Role     repository.Role
	Token    string
}

func (i Identity) IsAdmin() bool { return i.Role == repository.RoleAdmin }

type Deps struct {
	Users       repository.UserRepository
	Codec       *jwtx.Codec
	Revocations *Registry
	// ResetCode es el código fijo que confirma un reset de password.
	ResetCode string
	Hash      password.Params
	Policy    *password.Policy // nil = sin política extra
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Hash == (password.Params{}) {
		deps.Hash = password.Default
	}
	return &Service{deps: deps}
}

// SignUp crea un usuario USER y devuelve un token corto.
func (s *Service) SignUp(ctx context.Context, username, email, rawPassword string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session"),
		logger.Op("SignUp"),
	)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := s.checkPolicy(rawPassword); err != nil {
		return "", err
	}

	// Paso 1: unicidad antes de cualquier escritura
	exists, err := s.deps.Users.ExistsByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("exists by username: %w", err)
	}
	if !exists {
		exists, err = s.deps.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("exists by email: %w", err)
		}
	}
	if exists {
		log.Debug("duplicate user", logger.Username(username))
		return "", ErrAlreadyExists
	}

	// Paso 2: hash
	hash, err := password.Hash(s.deps.Hash, rawPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	// Paso 3: persistir
	u := &repository.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         repository.RoleUser,
	}
	if err := s.deps.Users.Save(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", ErrAlreadyExists
		}
		return "", fmt.Errorf("save user: %w", err)
	}

	log.Info("user registered", logger.UserID(u.ID), logger.Username(u.Username), logger.Email(u.Email))

	// Paso 4: token
	return s.issue(u, false)
}

// SignIn no distingue usuario inexistente de password incorrecta.
func (s *Service) SignIn(ctx context.Context, username, rawPassword string, rememberMe bool) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session"),
		logger.Op("SignIn"),
	)

	u, err := s.deps.Users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("user not found")
			return "", ErrAuthentication
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if !password.Verify(rawPassword, u.PasswordHash) {
		log.Debug("password check failed", logger.UserID(u.ID))
		return "", ErrAuthentication
	}

	// Hashes legacy (bcrypt) o con parámetros viejos se actualizan en el login.
	if password.NeedsRehash(s.deps.Hash, u.PasswordHash) {
		if h, err := password.Hash(s.deps.Hash, rawPassword); err == nil {
			u.PasswordHash = h
			if err := s.deps.Users.Save(ctx, u); err != nil {
				log.Warn("rehash save failed", logger.UserID(u.ID), logger.Err(err))
			}
		}
	}

	return s.issue(u, rememberMe)
}

// ResetPassword valida el código, revoca presented (el bearer del request)
// y recién entonces persiste el hash nuevo y emite un token largo.
// Si la revocación falla la password no cambia.
func (s *Service) ResetPassword(ctx context.Context, username, newPassword, code, presented string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session"),
		logger.Op("ResetPassword"),
	)

	// Paso 1: código de confirmación
	if s.deps.ResetCode == "" || code != s.deps.ResetCode {
		log.Debug("invalid confirmation code")
		return "", ErrInvalidCode
	}

	if err := s.checkPolicy(newPassword); err != nil {
		return "", err
	}

	// Paso 2: usuario
	u, err := s.deps.Users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	hash, err := password.Hash(s.deps.Hash, newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	// Paso 3: revocar antes de escribir
	if err := s.deps.Revocations.Revoke(ctx, presented); err != nil {
		log.Error("reset aborted: revoke failed, password unchanged",
			logger.UserID(u.ID),
			logger.String("token_fp", tokens.Fingerprint(presented)),
			logger.Err(err),
		)
		return "", fmt.Errorf("revoke presented token: %w", err)
	}

	// Paso 4: persistir
	u.PasswordHash = hash
	if err := s.deps.Users.Save(ctx, u); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}

	log.Info("password reset", logger.UserID(u.ID))

	// Paso 5: token nuevo (rememberMe)
	return s.issue(u, true)
}

// Logout revoca el token si vino uno. Siempre tiene éxito para el caller;
// un fallo del backend se loguea.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.deps.Revocations.Revoke(ctx, token); err != nil {
		logger.From(ctx).Error("logout revoke failed",
			logger.Component("session"),
			logger.Op("Logout"),
			logger.String("token_fp", tokens.Fingerprint(token)),
			logger.Err(err),
		)
	}
}

// Authorize: firma -> revocado -> vencido -> identidad.
func (s *Service) Authorize(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.deps.Codec.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.deps.Revocations.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	if s.deps.Codec.IsExpired(claims) {
		return nil, ErrTokenExpired
	}
	return &Identity{
		UserID:   claims.UserID,
		Username: claims.Username(),
		Email:    claims.Email,
		Role:     repository.Role(claims.Role),
		Token:    token,
	}, nil
}

func (s *Service) issue(u *repository.User, rememberMe bool) (string, error) {
	tok, err := s.deps.Codec.Issue(jwtx.Claims{
		UserID:           u.ID,
		Email:            u.Email,
		Role:             string(u.Role),
		RegisteredClaims: jwtv5.RegisteredClaims{Subject: u.Username},
	}, rememberMe)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

func (s *Service) checkPolicy(pw string) error {
	if s.deps.Policy == nil {
		return nil
	}
	if ok, reasons := s.deps.Policy.Validate(pw); !ok {
		return validation.Errors{"password": password.Describe(reasons)}
	}
	return nil
}
