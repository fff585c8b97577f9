package repositories

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uandi-projects/game-platform/model"
)

// InviteRepository handles invite and password reset token persistence.
type InviteRepository struct {
	BaseRepository
}

func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ==================== INVITE TOKENS ====================

func (ds *InviteRepository) CreateInvite(email, role, createdBy, token string, expiresAt time.Time) (*model.InviteToken, error) {
	invite := &model.InviteToken{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(email),
		Token:     token,
		Role:      role,
		CreatedBy: createdBy,
		ExpiresAt: expiresAt,
		Used:      false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := ds.db.Create(invite).Error; err != nil {
		return nil, err
	}
	return invite, nil
}

func (ds *InviteRepository) GetInvite(email, token string) (*model.InviteToken, error) {
	var invite model.InviteToken
	err := ds.db.Where("email = ? AND token = ?", strings.ToLower(email), token).First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (ds *InviteRepository) GetInviteByID(inviteID string) (*model.InviteToken, error) {
	var invite model.InviteToken
	if err := ds.db.Where("id = ?", inviteID).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// HasPendingInvite reports whether an unused, unexpired invite already
// exists for the address.
func (ds *InviteRepository) HasPendingInvite(email string) (bool, error) {
	var count int64
	err := ds.db.Model(&model.InviteToken{}).
		Where("email = ? AND used = ? AND expires_at > ?", strings.ToLower(email), false, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ds *InviteRepository) MarkInviteUsed(inviteID string) error {
	return ds.db.Model(&model.InviteToken{}).Where("id = ?", inviteID).Updates(map[string]interface{}{
		"used":       true,
		"updated_at": time.Now(),
	}).Error
}

func (ds *InviteRepository) ListInvites(createdBy string, page, limit int) ([]model.InviteToken, int64, error) {
	var invites []model.InviteToken
	var total int64

	query := ds.db.Model(&model.InviteToken{})
	if createdBy != "" {
		query = query.Where("created_by = ?", createdBy)
	}

	query.Count(&total)

	err := query.Order("created_at DESC").
		Scopes(Paginate(page, limit)).
		Find(&invites).Error
	if err != nil {
		return nil, 0, err
	}

	return invites, total, nil
}

func (ds *InviteRepository) DeleteInvite(inviteID string) error {
	return ds.db.Where("id = ?", inviteID).Delete(&model.InviteToken{}).Error
}

// ==================== PASSWORD RESET TOKENS ====================

func (ds *InviteRepository) CreatePasswordResetToken(email, token string, expiresAt time.Time) error {
	resetToken := &model.PasswordResetToken{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(email),
		Token:     token,
		ExpiresAt: expiresAt,
		Used:      false,
		CreatedAt: time.Now(),
	}

	return ds.db.Create(resetToken).Error
}

func (ds *InviteRepository) GetPasswordResetToken(email, token string) (*model.PasswordResetToken, error) {
	var resetToken model.PasswordResetToken
	err := ds.db.Where("email = ? AND token = ? AND used = ?", strings.ToLower(email), token, false).
		First(&resetToken).Error
	if err != nil {
		return nil, err
	}
	return &resetToken, nil
}

func (ds *InviteRepository) InvalidatePasswordResetToken(tokenID string) error {
	return ds.db.Model(&model.PasswordResetToken{}).Where("id = ?", tokenID).Update("used", true).Error
}

// ==================== CLEANUP ====================

func (ds *InviteRepository) CleanupExpiredTokens() error {
	now := time.Now()

	if err := ds.db.Where("expires_at < ?", now).Delete(&model.PasswordResetToken{}).Error; err != nil {
		return err
	}

	// Expired invites stay visible for 30 days so admins can re-issue them.
	return ds.db.Where("expires_at < ?", now.Add(-30*24*time.Hour)).Delete(&model.InviteToken{}).Error
}
