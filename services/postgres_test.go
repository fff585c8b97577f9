package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

func TestHandleErrorReturnsAppErrors(t *testing.T) {
	sql := &PostgresService{}

	assert.NoError(t, sql.HandleError(nil))

	err := sql.HandleError(gorm.ErrRecordNotFound)
	assertAppError(t, err, 404)

	err = sql.HandleError(gorm.ErrDuplicatedKey)
	assertAppError(t, err, 409)

	err = sql.HandleError(errors.New(`duplicate key value violates unique constraint "idx_users_email"`))
	assertAppError(t, err, 409)

	err = sql.HandleError(errors.New("something else entirely"))
	assertAppError(t, err, 500)
}

func TestUnknownGameCodeMapsToNotFound(t *testing.T) {
	sql := newTestSQL(t)

	_, err := newTestProgressService(sql).GetLeaderboard("NOCODE")
	assertAppError(t, err, 404)

	_, err = newTestGameService(sql).GetGameResponse("NOCODE")
	assertAppError(t, err, 404)
}

func TestTransactionRollsBackAcrossRepositories(t *testing.T) {
	sql := newTestSQL(t)

	sentinel := errors.New("abort")
	err := sql.Transaction(func(tx *PostgresService) error {
		if _, err := tx.Users().CreateUser(dto.RegisterRequest{
			Email:    "rollback@example.com",
			Username: "rollback",
		}, "hash", shared.RoleStudent); err != nil {
			return err
		}
		if _, err := tx.Invites().CreateInvite("pending@example.com", shared.RoleStudent, "admin-1", "tok", time.Now().Add(time.Hour)); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = sql.Users().GetUserByEmail("rollback@example.com")
	assert.Error(t, err)

	pending, err := sql.Invites().HasPendingInvite("pending@example.com")
	require.NoError(t, err)
	assert.False(t, pending)
}
