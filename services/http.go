package services

import (
	gocontext "context"
	"fmt"
	"os"
	"strconv"

	docs "github.com/uandi-projects/game-platform/docs"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
	log "github.com/sirupsen/logrus"

	"github.com/uandi-projects/game-platform/services/handlers"
	"github.com/uandi-projects/game-platform/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthService
	userSvc       *UserService
	inviteSvc     *InviteService
	gameSvc       *GameService
	progressSvc   *ProgressService
	aiSvc         *AIService
	mediaSvc      *MediaService
	rateLimitSvc  *RateLimitService
	redisSvc      *RedisService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.inviteSvc = svc.Service(INVITE_SVC).(*InviteService)
	svc.gameSvc = svc.Service(GAME_SVC).(*GameService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.aiSvc = svc.Service(AI_SVC).(*AIService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	docs.SwaggerInfo.BasePath = ""

	app := fiber.New(fiber.Config{
		JSONEncoder:  shared.JSONEncoder,
		JSONDecoder:  shared.JSONDecoder,
		ErrorHandler: svc.handleError,
		BodyLimit:    8 << 20,
	})

	app.Use(recover.New())
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("CORS_ALLOW_ORIGINS"),
		AllowCredentials: false,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	svc.registerRoutes(app)

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	userHandler := handlers.NewUserHandler(svc.userSvc, svc.mediaSvc)
	inviteHandler := handlers.NewInviteHandler(svc.inviteSvc)
	gameHandler := handlers.NewGameHandler(svc.gameSvc, svc.aiSvc)
	progressHandler := handlers.NewProgressHandler(svc.progressSvc)
	adminHandler := handlers.NewAdminHandler(svc.userSvc)

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	// auth
	v1.Post("/register", svc.rateLimitSvc.UserBasedRateLimit("register"), authHandler.Register)
	v1.Post("/login", svc.rateLimitSvc.UserBasedRateLimit("login"), authHandler.Login)
	v1.Post("/forgot_password", svc.rateLimitSvc.UserBasedRateLimit("forgot_password"), authHandler.ForgotPassword)
	v1.Post("/reset_password", svc.rateLimitSvc.UserBasedRateLimit("reset_password"), authHandler.ResetPassword)
	v1.Post("/change_password", svc.authSvc.RequiredAuth(), svc.rateLimitSvc.UserBasedRateLimit("change_password"), authHandler.ChangePassword)

	// users
	users := v1.Group("/users", svc.authSvc.RequiredAuth())
	users.Get("/me", userHandler.GetProfile)
	users.Put("/me", svc.rateLimitSvc.UserBasedRateLimit("profile_update"), userHandler.UpdateProfile)
	users.Post("/me/avatar", userHandler.UploadAvatar)
	users.Get("/me/avatar", userHandler.GetAvatar)
	users.Delete("/me/avatar", userHandler.DeleteAvatar)

	// invites
	v1.Post("/invites/validate", svc.rateLimitSvc.IPRateLimit(), inviteHandler.ValidateInvite)
	invites := v1.Group("/invites", svc.authSvc.RequiredAuth(), svc.authSvc.RequireRole(shared.RoleTeacher))
	invites.Post("/", svc.rateLimitSvc.UserBasedRateLimit("invite_create"), inviteHandler.CreateInvite)
	invites.Get("/", inviteHandler.ListInvites)
	invites.Delete("/:id", inviteHandler.RevokeInvite)

	// games
	v1.Post("/quizzes/preview", svc.authSvc.RequiredAuth(), svc.authSvc.RequireRole(shared.RoleTeacher), svc.rateLimitSvc.UserBasedRateLimit("ai_generate"), gameHandler.PreviewQuiz)

	games := v1.Group("/games")
	games.Get("/kinds", svc.authSvc.RequiredAuth(), gameHandler.Catalog)
	games.Post("/", svc.authSvc.RequiredAuth(), svc.rateLimitSvc.UserBasedRateLimit("game_create"), gameHandler.CreateGame)
	games.Get("/", svc.authSvc.RequiredAuth(), gameHandler.ListMyGames)
	games.Get("/:code", gameHandler.GetGame)
	games.Post("/:code/join", svc.authSvc.RequiredAuth(), gameHandler.JoinGame)
	games.Post("/:code/guests", svc.rateLimitSvc.RateLimit("guest_join", 10, "15m"), gameHandler.JoinGameAsGuest)
	games.Post("/:code/start", svc.authSvc.RequiredAuth(), gameHandler.StartGame)
	games.Get("/:code/questions", gameHandler.Questions)
	games.Get("/:code/participants", gameHandler.Participants)

	// progress and ranking
	games.Put("/:code/participants/:participantId/progress", svc.authSvc.OptionalAuth(), progressHandler.UpdateProgress)
	games.Get("/:code/participants/:participantId/progress", svc.authSvc.OptionalAuth(), progressHandler.GetProgress)
	games.Post("/:code/participants/:participantId/answers", svc.authSvc.OptionalAuth(), progressHandler.SubmitAnswer)
	games.Post("/:code/participants/:participantId/complete", svc.authSvc.OptionalAuth(), progressHandler.CompleteGame)
	games.Delete("/:code/participants/:participantId", svc.authSvc.OptionalAuth(), progressHandler.ExitGame)
	games.Get("/:code/leaderboard", progressHandler.GetLeaderboard)
	games.Get("/:code/results", progressHandler.GetResults)

	// live leaderboard stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/games/:code/leaderboard", websocket.New(svc.leaderboardStream))

	// admin
	admin := v1.Group("/admin", svc.authSvc.RequiredAuth(), svc.authSvc.RequireRole(shared.RoleAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeactivateUser)
	admin.Get("/rate_limits/stats", svc.rateLimitSvc.GetRateLimitStats())
	admin.Post("/rate_limits/cleanup", svc.rateLimitSvc.CleanupRateLimits())
	admin.Delete("/rate_limits/:identifier/:endpointType", svc.rateLimitSvc.RemoveRateLimit())
	admin.Put("/rate_limits/config/:endpointType", svc.rateLimitSvc.UpdateConfig())

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})
}

// leaderboardStream replays the cached leaderboard to a new subscriber and
// then forwards every update published for the game until the client
// disconnects.
func (svc *HttpService) leaderboardStream(conn *websocket.Conn) {
	code := conn.Params("code")
	defer conn.Close()

	if board, ok := svc.progressSvc.CachedLeaderboard(code); ok {
		if err := conn.WriteJSON(board); err != nil {
			return
		}
	} else if board, err := svc.progressSvc.GetLeaderboard(code); err == nil {
		if err := conn.WriteJSON(board); err != nil {
			return
		}
	}

	ctx, cancel := gocontext.WithCancel(gocontext.Background())
	defer cancel()

	sub := svc.redisSvc.Subscribe(ctx, LeaderboardChannel(code))
	if sub == nil {
		return
	}
	defer sub.Close()

	// Drain client frames so close messages are noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		}
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")
	return shared.ResponseOK(c, "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("unhandled request error")
	return shared.ResponseInternalError(c, err)
}
