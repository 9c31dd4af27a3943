package service

import (
	"context"
	"errors"
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/repository"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidRole          = errors.New("role must be member or trainer")
)

// RegisterInput carries a registration request. UID is optional: the
// sign-in callback retries with the externally issued uid, and a repeat
// call with a known uid must not create a second row.
type RegisterInput struct {
	UID       string
	Email     string
	Password  string
	Role      domain.Role
	FirstName *string
	LastName  *string
}

// AuthService issues and verifies platform credentials.
type AuthService interface {
	// Register creates a member or trainer. The bool reports whether a
	// row was created (false when the uid already existed).
	Register(ctx context.Context, in RegisterInput) (domain.CurrentUser, bool, error)
	Login(ctx context.Context, email, password string) (token string, user domain.CurrentUser, err error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new user registration, idempotently on uid.
func (s *authService) Register(ctx context.Context, in RegisterInput) (domain.CurrentUser, bool, error) {
	if in.Email == "" || in.Password == "" {
		return domain.CurrentUser{}, false, errors.New("email and password cannot be empty")
	}
	if in.Role != domain.RoleMember && in.Role != domain.RoleTrainer {
		return domain.CurrentUser{}, false, ErrInvalidRole
	}

	// Re-registration callback with a known uid returns the existing row.
	if in.UID != "" {
		existing, err := s.lookupByUID(ctx, in.UID, in.Role)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.CurrentUser{}, false, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.CurrentUser{}, false, ErrHashingFailed
	}

	uid := in.UID
	if uid == "" {
		uid = uuid.NewString()
	}

	switch in.Role {
	case domain.RoleMember:
		member := &domain.Member{
			UID:          uid,
			Email:        in.Email,
			PasswordHash: string(hashed),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
		}
		if err := s.userRepo.CreateMember(ctx, member); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return domain.CurrentUser{}, false, ErrUserAlreadyExists
			}
			return domain.CurrentUser{}, false, err
		}
		member.PasswordHash = ""
		return domain.CurrentUser{Role: domain.RoleMember, Member: member}, true, nil
	default:
		trainer := &domain.Trainer{
			UID:          uid,
			Email:        in.Email,
			PasswordHash: string(hashed),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
		}
		if err := s.userRepo.CreateTrainer(ctx, trainer); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return domain.CurrentUser{}, false, ErrUserAlreadyExists
			}
			return domain.CurrentUser{}, false, err
		}
		trainer.PasswordHash = ""
		return domain.CurrentUser{Role: domain.RoleTrainer, Trainer: trainer}, true, nil
	}
}

// Login handles user authentication and JWT generation. Members and
// trainers live in separate tables, so the email is tried against both.
func (s *authService) Login(ctx context.Context, email, password string) (string, domain.CurrentUser, error) {
	if email == "" || password == "" {
		return "", domain.CurrentUser{}, errors.New("email and password cannot be empty")
	}

	var user domain.CurrentUser
	var hash string

	member, err := s.userRepo.GetMemberByEmail(ctx, email)
	switch {
	case err == nil:
		user = domain.CurrentUser{Role: domain.RoleMember, Member: member}
		hash = member.PasswordHash
	case errors.Is(err, repository.ErrNotFound):
		trainer, terr := s.userRepo.GetTrainerByEmail(ctx, email)
		if terr != nil {
			if errors.Is(terr, repository.ErrNotFound) {
				return "", domain.CurrentUser{}, ErrAuthenticationFailed
			}
			return "", domain.CurrentUser{}, terr
		}
		user = domain.CurrentUser{Role: domain.RoleTrainer, Trainer: trainer}
		hash = trainer.PasswordHash
	default:
		return "", domain.CurrentUser{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", domain.CurrentUser{}, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", domain.CurrentUser{}, ErrTokenGeneration
	}

	if user.Member != nil {
		user.Member.PasswordHash = ""
	}
	if user.Trainer != nil {
		user.Trainer.PasswordHash = ""
	}
	return token, user, nil
}

func (s *authService) lookupByUID(ctx context.Context, uid string, role domain.Role) (domain.CurrentUser, error) {
	if role == domain.RoleTrainer {
		trainer, err := s.userRepo.GetTrainerByUID(ctx, uid)
		if err != nil {
			return domain.CurrentUser{}, err
		}
		trainer.PasswordHash = ""
		return domain.CurrentUser{Role: domain.RoleTrainer, Trainer: trainer}, nil
	}
	member, err := s.userRepo.GetMemberByUID(ctx, uid)
	if err != nil {
		return domain.CurrentUser{}, err
	}
	member.PasswordHash = ""
	return domain.CurrentUser{Role: domain.RoleMember, Member: member}, nil
}

// --- JWT Helper ---

// Claims defines the structure of the JWT payload shared by all three
// services.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user domain.CurrentUser) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &Claims{
		UserID: user.UID(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "fitcoach",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
