package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

const testPassword = "SecurePass123!"

func newTestAuthService(sql *PostgresService) *AuthService {
	return &AuthService{
		sqlSvc:   sql,
		jwtSvc:   &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "test-secret"},
		emailSvc: &EmailService{},
	}
}

// seedUser creates an account directly, bypassing the invite flow. The
// password is always testPassword.
func seedUser(t *testing.T, sql *PostgresService, email, username, role string) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := sql.Users().CreateUser(dto.RegisterRequest{
		Email:    email,
		Username: username,
	}, string(hashed), role)
	require.NoError(t, err)
	return user
}

func seedInvite(t *testing.T, sql *PostgresService, email, role, token string) *model.InviteToken {
	t.Helper()

	invite, err := sql.Invites().CreateInvite(email, role, "admin-1", token, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return invite
}

func TestRegisterConsumesInvite(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestAuthService(sql)

	seedInvite(t, sql, "newbie@example.com", shared.RoleTeacher, "tok-1")

	resp, err := svc.Register(dto.RegisterRequest{
		Email:       "newbie@example.com",
		Username:    "newbie",
		Password:    testPassword,
		InviteToken: "tok-1",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.RoleTeacher, resp.Role, "role comes from the invite")
	assert.NotEmpty(t, resp.UserID)

	// The invite is single-use.
	_, err = svc.Register(dto.RegisterRequest{
		Email:       "newbie@example.com",
		Username:    "newbie2",
		Password:    testPassword,
		InviteToken: "tok-1",
	})
	assertAppError(t, err, 403)
}

func TestRegisterRejectsBadInvites(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestAuthService(sql)

	_, err := svc.Register(dto.RegisterRequest{
		Email:       "nobody@example.com",
		Username:    "nobody",
		Password:    testPassword,
		InviteToken: "never-issued",
	})
	assertAppError(t, err, 403)

	_, err = sql.Invites().CreateInvite("slow@example.com", shared.RoleStudent, "admin-1", "tok-old", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = svc.Register(dto.RegisterRequest{
		Email:       "slow@example.com",
		Username:    "slow",
		Password:    testPassword,
		InviteToken: "tok-old",
	})
	assertAppError(t, err, 403)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestAuthService(sql)

	seedUser(t, sql, "first@example.com", "shared", shared.RoleStudent)
	seedInvite(t, sql, "second@example.com", shared.RoleStudent, "tok-1")

	_, err := svc.Register(dto.RegisterRequest{
		Email:       "second@example.com",
		Username:    "shared",
		Password:    testPassword,
		InviteToken: "tok-1",
	})
	assertAppError(t, err, 409)
}

func TestLoginByEmailOrUsername(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestAuthService(sql)

	user := seedUser(t, sql, "alice@example.com", "alice", shared.RoleStudent)

	resp, err := svc.Login(dto.LoginRequest{EmailOrUsername: "alice@example.com", Password: testPassword}, "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.EqualValues(t, time.Hour.Seconds(), resp.ExpiresIn)

	resp, err = svc.Login(dto.LoginRequest{EmailOrUsername: "alice", Password: testPassword}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestAuthService(sql)

	seedUser(t, sql, "alice@example.com", "alice", shared.RoleStudent)

	_, badPassword := svc.Login(dto.LoginRequest{EmailOrUsername: "alice", Password: "WrongPass123!"}, "")
	_, unknownUser := svc.Login(dto.LoginRequest{EmailOrUsername: "mallory", Password: testPassword}, "")

	// Unknown account and wrong password are indistinguishable.
	assertAppError(t, badPassword, 401)
	assertAppError(t, unknownUser, 401)
	assert.Equal(t, badPassword.Error(), unknownUser.Error())
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestAuthService(sql)

	user := seedUser(t, sql, "alice@example.com", "alice", shared.RoleStudent)
	require.NoError(t, sql.Users().AdminDeactivateUser(user.ID))

	_, err := svc.Login(dto.LoginRequest{EmailOrUsername: "alice", Password: testPassword}, "")
	assertAppError(t, err, 403)
}

func TestChangePassword(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestAuthService(sql)

	user := seedUser(t, sql, "alice@example.com", "alice", shared.RoleStudent)

	err := svc.ChangePassword(user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "WrongPass123!",
		NewPassword:     "FreshPass456!",
	})
	assertAppError(t, err, 403)

	require.NoError(t, svc.ChangePassword(user.ID, dto.ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "FreshPass456!",
	}))

	_, err = svc.Login(dto.LoginRequest{EmailOrUsername: "alice", Password: testPassword}, "")
	assertAppError(t, err, 401)

	_, err = svc.Login(dto.LoginRequest{EmailOrUsername: "alice", Password: "FreshPass456!"}, "")
	require.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestAuthService(sql)

	seedUser(t, sql, "alice@example.com", "alice", shared.RoleStudent)

	// Unknown addresses still report success.
	require.NoError(t, svc.ForgotPassword(dto.ForgotPasswordRequest{Email: "nobody@example.com"}))

	require.NoError(t, svc.ForgotPassword(dto.ForgotPasswordRequest{Email: "alice@example.com"}))

	var reset model.PasswordResetToken
	require.NoError(t, sql.db.Where("email = ?", "alice@example.com").First(&reset).Error)

	require.NoError(t, svc.ResetPassword(dto.ResetPasswordRequest{
		Email:       "alice@example.com",
		Token:       reset.Token,
		NewPassword: "FreshPass456!",
	}))

	_, err := svc.Login(dto.LoginRequest{EmailOrUsername: "alice", Password: "FreshPass456!"}, "")
	require.NoError(t, err)

	// The token is invalidated on use.
	err = svc.ResetPassword(dto.ResetPasswordRequest{
		Email:       "alice@example.com",
		Token:       reset.Token,
		NewPassword: "AnotherPass789!",
	})
	assertAppError(t, err, 403)
}
