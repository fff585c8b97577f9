package handlers

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest, clientIP string) (*dto.LoginResponse, error)
	ForgotPassword(req dto.ForgotPasswordRequest) error
	ResetPassword(req dto.ResetPasswordRequest) error
	ChangePassword(userID string, req dto.ChangePasswordRequest) error
	RequiredAuth() fiber.Handler
	RequireRole(minRole string) fiber.Handler
	OptionalAuth() fiber.Handler
}

type UserServiceInterface interface {
	GetProfile(userID string) (*dto.UserResponse, error)
	UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	AdminListUsers(req dto.AdminUserListRequest) (*dto.AdminUserListResponse, error)
	AdminUpdateUser(actorID, userID string, req dto.AdminUpdateUserRequest) (*dto.UserResponse, error)
	AdminDeactivateUser(actorID, userID string) error
}

type InviteServiceInterface interface {
	CreateInvite(inviterID, inviterRole string, req dto.CreateInviteRequest) (*dto.CreateInviteResponse, error)
	ValidateInvite(req dto.ValidateInviteRequest) *dto.ValidateInviteResponse
	ListInvites(callerID, callerRole string, page, limit int) ([]dto.InviteResponse, int64, error)
	RevokeInvite(callerID, callerRole, inviteID string) error
}

type GameServiceInterface interface {
	Catalog(role string) []dto.GameKind
	CreateGame(creatorID, creatorRole string, req dto.CreateGameRequest) (*dto.CreateGameResponse, error)
	GetGameResponse(code string) (*dto.GameInstanceResponse, error)
	JoinGame(code, userID string) (*model.GameInstance, error)
	JoinGameAsGuest(code string, req dto.JoinGuestRequest) (*model.GameInstance, string, error)
	StartGame(code, userID string) (*model.GameInstance, error)
	Questions(code string) (*dto.GameQuestionsResponse, error)
	Participants(code string) (*dto.GameParticipantsResponse, error)
	ListMyGames(userID string, page, limit int) ([]dto.GameInstanceResponse, int64, error)
}

type ProgressServiceInterface interface {
	UpdateProgress(gameCode, participantID string, req dto.UpdateProgressRequest) (*dto.ProgressResponse, error)
	GetProgress(gameCode, participantID string) (*dto.ProgressResponse, error)
	SubmitAnswer(gameCode, participantID string, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	CompleteGame(gameCode, participantID string) (*dto.CompleteGameResponse, error)
	ExitGame(gameCode, participantID string) error
	GetLeaderboard(gameCode string) (*dto.LeaderboardResponse, error)
	GetResults(gameCode string) (*dto.LeaderboardResponse, error)
}

type AIServiceInterface interface {
	Enabled() bool
	GenerateQuestions(ctx context.Context, prompt string, difficulty, count int, language string) ([]model.GameQuestion, error)
}

type MediaServiceInterface interface {
	UploadAvatar(userID string, fileHeader *multipart.FileHeader) (*dto.AvatarResponse, error)
	GetAvatar(userID string) (*dto.AvatarResponse, error)
	DeleteAvatar(userID string) error
}
