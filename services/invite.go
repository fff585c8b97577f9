package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

// InviteService issues and validates registration invites. Who may invite
// whom follows the role ladder: admins invite any role, teachers invite
// students only.
type InviteService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	emailSvc *EmailService
}

const INVITE_SVC = "invite_svc"

const inviteTTL = 7 * 24 * time.Hour

func (svc InviteService) Id() string {
	return INVITE_SVC
}

func (svc *InviteService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *InviteService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.emailSvc = svc.Service(EMAIL_SVC).(*EmailService)
	return nil
}

// CanInvite reports whether inviterRole may issue an invite for targetRole.
func (svc *InviteService) CanInvite(inviterRole, targetRole string) bool {
	if !shared.IsValidRole(targetRole) {
		return false
	}
	switch inviterRole {
	case shared.RoleAdmin:
		return true
	case shared.RoleTeacher:
		return targetRole == shared.RoleStudent
	default:
		return false
	}
}

func (svc *InviteService) CreateInvite(inviterID, inviterRole string, req dto.CreateInviteRequest) (*dto.CreateInviteResponse, error) {
	if !svc.CanInvite(inviterRole, req.Role) {
		return nil, shared.ErrForbidden(fmt.Sprintf("A %s cannot invite a %s", inviterRole, req.Role))
	}

	if available, err := svc.sqlSvc.Users().IsEmailAvailable(req.Email); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	} else if !available {
		return nil, shared.ErrConflict("A user with this email already exists")
	}

	if pending, err := svc.sqlSvc.Invites().HasPendingInvite(req.Email); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	} else if pending {
		return nil, shared.ErrConflict("An invite for this email is already pending")
	}

	token := uuid.New().String()
	invite, err := svc.sqlSvc.Invites().CreateInvite(req.Email, req.Role, inviterID, token, time.Now().Add(inviteTTL))
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	inviteURL := fmt.Sprintf("%s/register?email=%s&token=%s",
		svc.emailSvc.BaseURL(), url.QueryEscape(invite.Email), token)

	inviter, err := svc.sqlSvc.Users().GetUser(inviterID)
	inviterName := "An administrator"
	if err == nil {
		inviterName = inviter.DisplayName()
	}

	go func() {
		if err := svc.emailSvc.SendInviteEmail(invite.Email, inviterName, invite.Role, inviteURL); err != nil {
			log.WithError(err).WithField("email", invite.Email).Error("Failed to send invite email")
		}
	}()

	log.WithFields(log.Fields{"inviter": inviterID, "email": invite.Email, "role": invite.Role}).Info("Invite created")

	return &dto.CreateInviteResponse{
		Invite:    inviteToResponse(invite),
		InviteURL: inviteURL,
	}, nil
}

// ValidateInvite is the pre-registration check the signup form calls.
func (svc *InviteService) ValidateInvite(req dto.ValidateInviteRequest) *dto.ValidateInviteResponse {
	invite, err := svc.sqlSvc.Invites().GetInvite(req.Email, req.Token)
	if err != nil || invite.Used || invite.Expired(time.Now()) {
		return &dto.ValidateInviteResponse{Valid: false}
	}

	return &dto.ValidateInviteResponse{Valid: true, Role: invite.Role}
}

// ListInvites scopes the result by caller: admins see every invite,
// teachers only the ones they issued.
func (svc *InviteService) ListInvites(callerID, callerRole string, page, limit int) ([]dto.InviteResponse, int64, error) {
	createdBy := callerID
	if callerRole == shared.RoleAdmin {
		createdBy = ""
	}

	invites, total, err := svc.sqlSvc.Invites().ListInvites(createdBy, page, limit)
	if err != nil {
		return nil, 0, svc.sqlSvc.HandleError(err)
	}

	out := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		out = append(out, inviteToResponse(&invites[i]))
	}

	return out, total, nil
}

func (svc *InviteService) RevokeInvite(callerID, callerRole, inviteID string) error {
	invite, err := svc.sqlSvc.Invites().GetInviteByID(inviteID)
	if err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	if callerRole != shared.RoleAdmin && invite.CreatedBy != callerID {
		return shared.ErrForbidden("You can only revoke invites you created")
	}
	if invite.Used {
		return shared.ErrUnprocessable("Invite has already been used")
	}

	return svc.sqlSvc.Invites().DeleteInvite(inviteID)
}

func inviteToResponse(invite *model.InviteToken) dto.InviteResponse {
	return dto.InviteResponse{
		ID:        invite.ID,
		Email:     invite.Email,
		Role:      invite.Role,
		ExpiresAt: invite.ExpiresAt,
		Used:      invite.Used,
		CreatedAt: invite.CreatedAt,
	}
}
