package services

import (
	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

// UserService covers profile reads and writes plus admin user management.
type UserService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const USER_SVC = "user_svc"

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// ==================== PROFILE ====================

func (svc *UserService) GetProfile(userID string) (*dto.UserResponse, error) {
	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	resp := UserToResponse(user)
	return &resp, nil
}

func (svc *UserService) UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Username != "" {
		user, err := svc.sqlSvc.Users().GetUser(userID)
		if err != nil {
			return nil, svc.sqlSvc.HandleError(err)
		}
		if user.Username != req.Username {
			available, err := svc.sqlSvc.Users().IsUsernameAvailable(req.Username)
			if err != nil {
				return nil, svc.sqlSvc.HandleError(err)
			}
			if !available {
				return nil, shared.ErrConflict("Username is already taken")
			}
			updates["username"] = req.Username
		}
	}

	if len(updates) > 0 {
		if err := svc.sqlSvc.Users().UpdateUserProfile(userID, updates); err != nil {
			return nil, svc.sqlSvc.HandleError(err)
		}
	}

	return svc.GetProfile(userID)
}

func (svc *UserService) SetAvatarURL(userID, url string) error {
	return svc.sqlSvc.Users().UpdateUserProfile(userID, map[string]interface{}{
		"avatar_url": url,
	})
}

// ==================== ADMIN ====================

func (svc *UserService) AdminListUsers(req dto.AdminUserListRequest) (*dto.AdminUserListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := svc.sqlSvc.Users().AdminGetUsers(page, limit, req.Search)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	resp := &dto.AdminUserListResponse{
		Users: make([]dto.UserResponse, 0, len(users)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range users {
		resp.Users = append(resp.Users, UserToResponse(&users[i]))
	}

	return resp, nil
}

// AdminUpdateUser applies partial updates. An admin cannot strip the last
// active admin of its role or deactivate it.
func (svc *UserService) AdminUpdateUser(actorID, userID string, req dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	demotes := req.Role != nil && *req.Role != shared.RoleAdmin && user.Role == shared.RoleAdmin
	deactivates := req.IsActive != nil && !*req.IsActive && user.IsActive

	if user.Role == shared.RoleAdmin && (demotes || deactivates) {
		count, err := svc.sqlSvc.Users().CountAdmins()
		if err != nil {
			return nil, svc.sqlSvc.HandleError(err)
		}
		if count <= 1 {
			return nil, shared.ErrUnprocessable("Cannot remove the last active admin")
		}
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Role != nil {
		if !shared.IsValidRole(*req.Role) {
			return nil, shared.ErrBadRequest("Unknown role")
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := svc.sqlSvc.Users().AdminUpdateUser(userID, updates); err != nil {
			return nil, svc.sqlSvc.HandleError(err)
		}
		log.WithFields(log.Fields{"actor": actorID, "user_id": userID}).Info("Admin updated user")
	}

	return svc.GetProfile(userID)
}

func (svc *UserService) AdminDeactivateUser(actorID, userID string) error {
	if actorID == userID {
		return shared.ErrUnprocessable("Cannot deactivate your own account")
	}

	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	if user.Role == shared.RoleAdmin {
		count, err := svc.sqlSvc.Users().CountAdmins()
		if err != nil {
			return svc.sqlSvc.HandleError(err)
		}
		if count <= 1 {
			return shared.ErrUnprocessable("Cannot remove the last active admin")
		}
	}

	if err := svc.sqlSvc.Users().AdminDeactivateUser(userID); err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	log.WithFields(log.Fields{"actor": actorID, "user_id": userID}).Info("Admin deactivated user")
	return nil
}
