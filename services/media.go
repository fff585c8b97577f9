package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/alphabatem/common/context"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

type MediaService struct {
	context.DefaultService

	minioSvc *MinIOService
	userSvc  *UserService
}

const MEDIA_SVC = "media_svc"

const maxAvatarSize = 5 << 20 // 5MB

var avatarContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	return nil
}

// ==================== AVATAR UPLOAD ====================

func (svc *MediaService) UploadAvatar(userID string, fileHeader *multipart.FileHeader) (*dto.AvatarResponse, error) {
	if fileHeader.Size > maxAvatarSize {
		return nil, shared.ErrUnprocessable("Avatar must be smaller than 5MB")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := avatarContentTypes[contentType]
	if !ok {
		return nil, shared.ErrUnprocessable("Avatar must be a JPEG, PNG or WebP image")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, shared.ErrBadRequest("Unable to read uploaded file")
	}
	defer file.Close()

	objectName := fmt.Sprintf("avatars/%s%s", userID, ext)

	// One object per user, so a re-upload replaces the previous avatar.
	svc.removeStaleAvatars(userID, objectName)

	if _, err := svc.minioSvc.UploadFile(objectName, file, fileHeader.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	url, err := svc.AvatarURL(objectName)
	if err != nil {
		return nil, err
	}

	if err := svc.userSvc.SetAvatarURL(userID, objectName); err != nil {
		return nil, err
	}

	return &dto.AvatarResponse{AvatarURL: url}, nil
}

func (svc *MediaService) GetAvatar(userID string) (*dto.AvatarResponse, error) {
	profile, err := svc.userSvc.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if profile.AvatarURL == "" {
		return nil, shared.ErrNotFound("User has no avatar")
	}

	url, err := svc.AvatarURL(profile.AvatarURL)
	if err != nil {
		return nil, err
	}

	return &dto.AvatarResponse{AvatarURL: url}, nil
}

func (svc *MediaService) DeleteAvatar(userID string) error {
	profile, err := svc.userSvc.GetProfile(userID)
	if err != nil {
		return err
	}
	if profile.AvatarURL == "" {
		return nil
	}

	if err := svc.minioSvc.DeleteFile(profile.AvatarURL); err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}

	return svc.userSvc.SetAvatarURL(userID, "")
}

// AvatarURL resolves a stored object name into a time-limited download URL.
func (svc *MediaService) AvatarURL(objectName string) (string, error) {
	return svc.minioSvc.GetFileURL(objectName, 24*time.Hour)
}

func (svc *MediaService) removeStaleAvatars(userID, keep string) {
	objects, err := svc.minioSvc.ListFiles("avatars/" + userID)
	if err != nil {
		return
	}

	for _, obj := range objects {
		if obj.Key == keep {
			continue
		}
		// Guard against prefix collisions between user IDs.
		base := strings.TrimSuffix(filepath.Base(obj.Key), filepath.Ext(obj.Key))
		if base != userID {
			continue
		}
		_ = svc.minioSvc.DeleteFile(obj.Key)
	}
}
