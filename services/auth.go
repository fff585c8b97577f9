package services

import (
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

// AuthService owns registration, login, password flows and the fiber
// auth middleware. Registration is invite-only.
type AuthService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	jwtSvc   *JWTService
	emailSvc *EmailService
}

const AUTH_SVC = "auth_svc"

const bcryptCost = 12

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.emailSvc = svc.Service(EMAIL_SVC).(*EmailService)
	return nil
}

// ==================== REGISTRATION ====================

// Register creates an account from a pending invite. The invite fixes the
// email and the role; it is consumed on success.
func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	invite, err := svc.sqlSvc.Invites().GetInvite(req.Email, req.InviteToken)
	if err != nil {
		return nil, shared.ErrForbidden("Invalid or unknown invite")
	}
	if invite.Used {
		return nil, shared.ErrForbidden("Invite has already been used")
	}
	if invite.Expired(time.Now()) {
		return nil, shared.ErrForbidden("Invite has expired")
	}

	if available, err := svc.sqlSvc.Users().IsEmailAvailable(req.Email); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	} else if !available {
		return nil, shared.ErrConflict("Email is already registered")
	}

	if available, err := svc.sqlSvc.Users().IsUsernameAvailable(req.Username); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	} else if !available {
		return nil, shared.ErrConflict("Username is already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	// The account and the consumed invite commit together, so a failure
	// never leaves the invite reusable next to a created user.
	var user *model.User
	err = svc.sqlSvc.Transaction(func(tx *PostgresService) error {
		created, err := tx.Users().CreateUser(req, string(hashed), invite.Role)
		if err != nil {
			return err
		}
		user = created

		return tx.Invites().MarkInviteUsed(invite.ID)
	})
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	log.WithFields(log.Fields{"user_id": user.ID, "role": user.Role}).Info("User registered")

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// ==================== LOGIN ====================

func (svc *AuthService) Login(req dto.LoginRequest, ip string) (*dto.LoginResponse, error) {
	user, err := svc.sqlSvc.Users().GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		// Same failure mode for unknown account and bad password.
		return nil, shared.NewAppError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewAppError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	if !user.IsActive {
		return nil, shared.ErrForbidden("Account is deactivated")
	}

	token, err := svc.jwtSvc.ToJWT(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	if err := svc.sqlSvc.Users().UpdateLastLogin(user.ID, ip); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(svc.jwtSvc.AccessTokenDuration.Seconds()),
		User:        UserToResponse(user),
	}, nil
}

// ==================== PASSWORD FLOWS ====================

// ForgotPassword always reports success so the endpoint cannot be used to
// probe which addresses exist.
func (svc *AuthService) ForgotPassword(req dto.ForgotPasswordRequest) error {
	user, err := svc.sqlSvc.Users().GetUserByEmail(req.Email)
	if err != nil {
		return nil
	}

	token := uuid.New().String()
	expiresAt := time.Now().Add(time.Hour)

	if err := svc.sqlSvc.Invites().CreatePasswordResetToken(user.Email, token, expiresAt); err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	go func() {
		if err := svc.emailSvc.SendPasswordResetEmail(user.Email, user.DisplayName(), token); err != nil {
			log.WithError(err).WithField("email", user.Email).Error("Failed to send password reset email")
		}
	}()

	return nil
}

func (svc *AuthService) ResetPassword(req dto.ResetPasswordRequest) error {
	resetToken, err := svc.sqlSvc.Invites().GetPasswordResetToken(req.Email, req.Token)
	if err != nil {
		return shared.ErrForbidden("Invalid or expired reset token")
	}
	if time.Now().After(resetToken.ExpiresAt) {
		return shared.ErrForbidden("Invalid or expired reset token")
	}

	user, err := svc.sqlSvc.Users().GetUserByEmail(req.Email)
	if err != nil {
		return shared.ErrForbidden("Invalid or expired reset token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return err
	}

	if err := svc.sqlSvc.Users().UpdateUserPassword(user.ID, string(hashed)); err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	return svc.sqlSvc.Invites().InvalidatePasswordResetToken(resetToken.ID)
}

func (svc *AuthService) ChangePassword(userID string, req dto.ChangePasswordRequest) error {
	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return shared.ErrForbidden("Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return err
	}

	return svc.sqlSvc.Users().UpdateUserPassword(userID, string(hashed))
}

// ==================== MIDDLEWARE ====================

// RequiredAuth rejects requests without a valid bearer token and stores the
// caller's id and role in locals.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := svc.authenticate(c)
		if err != nil {
			return shared.ResponseUnauthorized(c)
		}

		c.Locals(shared.UserID, userID)
		c.Locals(shared.UserRole, role)
		return c.Next()
	}
}

// RequireRole layers on RequiredAuth: the caller's role level must be at
// least minRole's level.
func (svc *AuthService) RequireRole(minRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(shared.UserRole).(string)
		if shared.RoleLevel(role) < shared.RoleLevel(minRole) {
			return shared.ResponseForbidden(c)
		}
		return c.Next()
	}
}

// OptionalAuth stores identity when a valid token is present and lets the
// request through either way. Guest game joins use this.
func (svc *AuthService) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := svc.authenticate(c)
		if err == nil {
			c.Locals(shared.UserID, userID)
			c.Locals(shared.UserRole, role)
		}
		return c.Next()
	}
}

func (svc *AuthService) authenticate(c *fiber.Ctx) (string, string, error) {
	authHeader := c.Get("Authorization")
	token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return "", "", err
	}

	userID, role, err := svc.jwtSvc.VerifyJWTToken(token)
	if err != nil {
		return "", "", err
	}

	// The token carries the role it was minted with; re-check against the
	// stored user so deactivation and role changes take effect immediately.
	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return "", "", err
	}
	if !user.IsActive {
		return "", "", shared.ErrForbidden("Account is deactivated")
	}
	if !strings.EqualFold(user.Role, role) {
		role = user.Role
	}

	return userID, role, nil
}

// UserToResponse maps the stored user onto the public shape.
func UserToResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
		IsActive:  user.IsActive,
		JoinedAt:  user.CreatedAt,
		LastLogin: user.LastLoginAt,
	}
}
