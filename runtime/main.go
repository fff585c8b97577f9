package main

import (
	"github.com/uandi-projects/game-platform/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using system environment")
	}

	ctx, err := context.NewCtx(
		&services.SqliteService{},
		&services.PostgresService{},
		&services.RedisService{},
		&services.MinIOService{},

		&services.JWTService{},
		&services.EmailService{},
		&services.RateLimitService{},

		&services.AuthService{},
		&services.UserService{},
		&services.InviteService{},
		&services.MediaService{},
		&services.AIService{},
		&services.GameService{},
		&services.ProgressService{},

		&services.MonitoringService{},
		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
		return
	}

	if err := ctx.Run(); err != nil {
		log.Fatal().Err(err).Msg("Service context exited")
	}
}
