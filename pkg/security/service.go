package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/auth"
	"github.com/tendant/simple-org/pkg/crypto"
	"github.com/tendant/simple-org/pkg/notification"
	"github.com/tendant/simple-org/pkg/sessions"
	"github.com/tendant/simple-org/pkg/user"
)

const verificationExpiry = 24 * time.Hour

// SignupDTO carries the self-registration request
type SignupDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// LoginResult is the successful login response shape
type LoginResult struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
	Token string `json:"token"`
}

// Service implements authentication flows over the user store: credential
// login with session issuance, self-registration with verification email,
// email verification and signout.
type Service struct {
	users    user.Repository
	crypto   *crypto.Service
	tokens   *auth.TokenService
	sessions *sessions.Service
	emails   notification.EmailSender
	baseURL  string
}

// NewService creates a new security service
func NewService(users user.Repository, cryptoService *crypto.Service, tokens *auth.TokenService,
	sessionService *sessions.Service, emails notification.EmailSender, baseURL string) *Service {
	return &Service{
		users:    users,
		crypto:   cryptoService,
		tokens:   tokens,
		sessions: sessionService,
		emails:   emails,
		baseURL:  baseURL,
	}
}

// Login verifies the credential, issues a token and records the session.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password, ipAddress, userAgent string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, apierror.Validation("Login validation failed", map[string]apierror.FieldError{
			"email": {Message: "email and password are required"},
		}).WithSource("security")
	}

	entity, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return LoginResult{}, apierror.Unauthorized("Invalid email or password").WithSource("security")
		}
		return LoginResult{}, err
	}

	stored, err := s.crypto.Decrypt(entity.Password)
	if err != nil || stored != password {
		return LoginResult{}, apierror.Unauthorized("Invalid email or password").WithSource("security")
	}

	identity := auth.Identity{
		ID:    entity.ID.String(),
		Email: entity.Email,
		Name:  entity.Name.String,
		Role:  entity.Role,
	}
	token, jti, expiresAt, err := s.tokens.IssueToken(identity)
	if err != nil {
		return LoginResult{}, apierror.Internal("Failed to issue token").WrapErr(err).WithSource("security")
	}

	_, err = s.sessions.CreateSession(ctx, sessions.CreateSessionRequest{
		UserID:    entity.ID,
		JTI:       jti,
		ExpiresAt: expiresAt,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Email: entity.Email,
		Name:  entity.Name.String,
		Role:  entity.Role,
		Phone: entity.Phone.String,
		Token: token,
	}, nil
}

// CheckEmail reports whether an email is already registered
func (s *Service) CheckEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Signup registers a new user with the default role. The verification email
// is best-effort: a failed send is logged and never fails the signup.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (user.UserDTO, error) {
	fields := map[string]apierror.FieldError{}
	if dto.Email == "" {
		fields["email"] = apierror.FieldError{Message: "required"}
	}
	if dto.Password == "" {
		fields["password"] = apierror.FieldError{Message: "required"}
	}
	if len(fields) > 0 {
		return user.UserDTO{}, apierror.Validation("Signup validation failed", fields).WithSource("security")
	}

	exists, err := s.CheckEmail(ctx, dto.Email)
	if err != nil {
		return user.UserDTO{}, err
	}
	if exists {
		return user.UserDTO{}, apierror.BadRequest("User already exists", nil).WithSource("security")
	}

	encrypted, err := s.crypto.Encrypt(dto.Password)
	if err != nil {
		return user.UserDTO{}, apierror.Internal("Failed to encrypt credential").WrapErr(err).WithSource("security")
	}

	entity := user.FromDTO(user.UserDTO{
		Email: dto.Email,
		Role:  user.RoleUser,
	})
	entity.Password = encrypted
	if dto.Name != "" {
		entity.Name.String = dto.Name
		entity.Name.Valid = true
	}
	if dto.Phone != "" {
		entity.Phone.String = dto.Phone
		entity.Phone.Valid = true
	}

	created, err := s.users.Create(ctx, entity)
	if err != nil {
		return user.UserDTO{}, err
	}
	if created == nil {
		return user.UserDTO{}, apierror.Internal("Failed to create user").WithSource("security")
	}

	s.sendVerificationEmail(created.Email, created.Name.String)

	return user.ToDTO(*created), nil
}

// Verify confirms an email-verification token and marks the user verified
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	email, err := s.parseVerificationToken(token)
	if err != nil {
		return "", apierror.BadRequest("Invalid or expired verification token", nil).WrapErr(err).WithSource("security")
	}
	if err := s.users.SetEmailVerified(ctx, email); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", apierror.NotFound(email, "User").WithSource("security")
		}
		return "", err
	}
	return "Email verified successfully", nil
}

// Signout revokes the session behind the presented token
func (s *Service) Signout(ctx context.Context, jti string) error {
	if err := s.sessions.RevokeSession(ctx, jti); err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			return apierror.Unauthorized("No active session").WithSource("security")
		}
		return err
	}
	return nil
}

type verificationClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *Service) issueVerificationToken(email string) (string, error) {
	now := time.Now().UTC()
	claims := verificationClaims{
		Email:   email,
		Purpose: "email_verification",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(verificationExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.tokens.Issuer,
			Subject:   email,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.tokens.Secret))
}

func (s *Service) parseVerificationToken(token string) (string, error) {
	claims := &verificationClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.tokens.Secret), nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Purpose != "email_verification" || claims.Email == "" {
		return "", errors.New("not an email verification token")
	}
	return claims.Email, nil
}

func (s *Service) sendVerificationEmail(email, name string) {
	token, err := s.issueVerificationToken(email)
	if err != nil {
		slog.Error("Failed to issue verification token", "err", err, "email", email)
		return
	}
	link := fmt.Sprintf("%s/security/verify?token=%s", s.baseURL, token)
	err = s.emails.SendEmail(notification.Email{
		To:      email,
		Subject: "Verify your email",
		Html: fmt.Sprintf("<p>Hi %s,</p><p>Please verify your email by clicking <a href=%q>this link</a>.</p>",
			name, link),
		Text: fmt.Sprintf("Hi %s, please verify your email: %s", name, link),
	})
	if err != nil {
		slog.Error("Failed to send verification email", "err", err, "email", email)
	}
}
