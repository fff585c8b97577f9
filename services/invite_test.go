package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

func newTestInviteService(sql *PostgresService) *InviteService {
	return &InviteService{sqlSvc: sql, emailSvc: &EmailService{}}
}

func TestCanInvite(t *testing.T) {
	svc := newTestInviteService(nil)

	cases := []struct {
		inviter string
		target  string
		want    bool
	}{
		{shared.RoleAdmin, shared.RoleAdmin, true},
		{shared.RoleAdmin, shared.RoleTeacher, true},
		{shared.RoleAdmin, shared.RoleStudent, true},
		{shared.RoleTeacher, shared.RoleStudent, true},
		{shared.RoleTeacher, shared.RoleTeacher, false},
		{shared.RoleTeacher, shared.RoleAdmin, false},
		{shared.RoleStudent, shared.RoleStudent, false},
		{shared.RoleAdmin, "superuser", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, svc.CanInvite(tc.inviter, tc.target),
			"%s inviting %s", tc.inviter, tc.target)
	}
}

func TestCreateInvite(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestInviteService(sql)

	resp, err := svc.CreateInvite("teacher-1", shared.RoleTeacher, dto.CreateInviteRequest{
		Email: "new.student@example.com",
		Role:  shared.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.student@example.com", resp.Invite.Email)
	assert.Equal(t, shared.RoleStudent, resp.Invite.Role)
	assert.False(t, resp.Invite.Used)
	assert.Contains(t, resp.InviteURL, "/register?email=")

	// A second invite for the same address is rejected while one is pending.
	_, err = svc.CreateInvite("teacher-1", shared.RoleTeacher, dto.CreateInviteRequest{
		Email: "new.student@example.com",
		Role:  shared.RoleStudent,
	})
	assertAppError(t, err, 409)
}

func TestCreateInviteRejectsRegisteredEmail(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestInviteService(sql)

	user := seedUser(t, sql, "taken@example.com", "taken", shared.RoleStudent)

	_, err := svc.CreateInvite("admin-1", shared.RoleAdmin, dto.CreateInviteRequest{
		Email: user.Email,
		Role:  shared.RoleStudent,
	})
	assertAppError(t, err, 409)
}

func TestCreateInviteEnforcesRoleLadder(t *testing.T) {
	svc := newTestInviteService(newTestSQL(t))

	_, err := svc.CreateInvite("teacher-1", shared.RoleTeacher, dto.CreateInviteRequest{
		Email: "peer@example.com",
		Role:  shared.RoleTeacher,
	})
	assertAppError(t, err, 403)
}

func TestValidateInvite(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestInviteService(sql)

	invite, err := sql.Invites().CreateInvite("pending@example.com", shared.RoleTeacher, "admin-1", "tok-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	resp := svc.ValidateInvite(dto.ValidateInviteRequest{Email: "pending@example.com", Token: "tok-1"})
	assert.True(t, resp.Valid)
	assert.Equal(t, shared.RoleTeacher, resp.Role)

	resp = svc.ValidateInvite(dto.ValidateInviteRequest{Email: "pending@example.com", Token: "wrong"})
	assert.False(t, resp.Valid)
	assert.Empty(t, resp.Role)

	require.NoError(t, sql.Invites().MarkInviteUsed(invite.ID))
	resp = svc.ValidateInvite(dto.ValidateInviteRequest{Email: "pending@example.com", Token: "tok-1"})
	assert.False(t, resp.Valid)

	_, err = sql.Invites().CreateInvite("late@example.com", shared.RoleStudent, "admin-1", "tok-2", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	resp = svc.ValidateInvite(dto.ValidateInviteRequest{Email: "late@example.com", Token: "tok-2"})
	assert.False(t, resp.Valid)
}

func TestListInvitesScopesByCaller(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestInviteService(sql)

	expires := time.Now().Add(time.Hour)
	_, err := sql.Invites().CreateInvite("a@example.com", shared.RoleStudent, "teacher-1", "t1", expires)
	require.NoError(t, err)
	_, err = sql.Invites().CreateInvite("b@example.com", shared.RoleStudent, "teacher-2", "t2", expires)
	require.NoError(t, err)

	mine, total, err := svc.ListInvites("teacher-1", shared.RoleTeacher, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, "a@example.com", mine[0].Email)

	all, total, err := svc.ListInvites("admin-1", shared.RoleAdmin, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestRevokeInvite(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestInviteService(sql)

	invite, err := sql.Invites().CreateInvite("a@example.com", shared.RoleStudent, "teacher-1", "t1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	err = svc.RevokeInvite("teacher-2", shared.RoleTeacher, invite.ID)
	assertAppError(t, err, 403)

	// Admins may revoke anyone's invite.
	require.NoError(t, svc.RevokeInvite("admin-1", shared.RoleAdmin, invite.ID))

	used, err := sql.Invites().CreateInvite("b@example.com", shared.RoleStudent, "teacher-1", "t2", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, sql.Invites().MarkInviteUsed(used.ID))

	err = svc.RevokeInvite("teacher-1", shared.RoleTeacher, used.ID)
	assertAppError(t, err, 422)
}
