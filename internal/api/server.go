package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/inventory-api/docs"
	v1 "github.com/vietanh2810/inventory-api/internal/api/handler/v1"
	"github.com/vietanh2810/inventory-api/internal/api/middleware"
	"github.com/vietanh2810/inventory-api/internal/config"
	"github.com/vietanh2810/inventory-api/internal/pkg/jwthelper"
	"github.com/vietanh2810/inventory-api/internal/repository"
	"github.com/vietanh2810/inventory-api/internal/repository/dao"
	"github.com/vietanh2810/inventory-api/internal/service"
)

const basePath = "/api/v1"

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	issuer  *jwthelper.Issuer
	limiter middleware.Counter
}

type handlers struct {
	auth   *v1.AuthHandler
	user   *v1.UserHandler
	item   *v1.ItemHandler
	health *v1.HealthHandler
}

// NewServer builds the router. rdb may be nil, in which case the token
// endpoint is rate limited in memory.
func NewServer(conf *config.AppConfig, db *gorm.DB, rdb *redis.Client) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		issuer: jwthelper.NewIssuer([]byte(conf.API.JWTSigningKey), conf.API.AccessTokenTTL, conf.API.RefreshTokenTTL),
	}
	if rdb != nil {
		s.limiter = middleware.NewRedisCounter(rdb)
	} else {
		s.limiter = middleware.NewMemoryCounter()
	}

	s.MountMiddlewares()

	h, err := s.initHandlers(db)
	if err != nil {
		return nil, err
	}
	s.MountHandlers(h)

	return s, nil
}

func (s *Server) initHandlers(db *gorm.DB) (handlers, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return handlers{}, fmt.Errorf("db.DB -> %w", err)
	}

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	itemRepo := repository.NewItemRepository(
		dao.NewItemDAO(db, s.Config.Postgres.LockTimeout),
		dao.NewChangeLogDAO(db),
	)

	authSvc := service.NewAuthService(userRepo)
	userSvc := service.NewUserService(userRepo)
	itemSvc := service.NewItemService(itemRepo)
	querySvc := service.NewQueryService(itemRepo)

	return handlers{
		auth:   v1.NewAuthHandler(s.issuer, authSvc, userSvc),
		user:   v1.NewUserHandler(authSvc, userSvc),
		item:   v1.NewItemHandler(itemSvc, querySvc, userSvc),
		health: v1.NewHealthHandler(sqlDB),
	}, nil
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.AccessLog())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	rl := s.Config.RateLimit

	public := s.Router.Group(basePath)
	{
		public.POST("/token/", middleware.RateLimit(s.limiter, "token", rl.LoginAttempts, rl.Window), h.auth.HandleToken)
		public.POST("/token/refresh/", h.auth.HandleRefresh)
		public.POST("/users/", h.user.HandleCreateUser)
	}

	users := s.Router.Group(basePath, middleware.NewAuthenticator(s.issuer).VerifyJWT())
	{
		users.GET("/users/", h.user.HandleListUsers)
		users.GET("/users/:userID/", h.user.HandleGetUser)
		users.PUT("/users/:userID/", h.user.HandleUpdateUser)
		users.PATCH("/users/:userID/", h.user.HandleUpdateUser)
		users.DELETE("/users/:userID/", h.user.HandleDeleteUser)
	}

	items := s.Router.Group(basePath, middleware.NewAuthenticator(s.issuer).VerifyJWT())
	{
		items.GET("/items/", h.item.HandleListItems)
		items.POST("/items/", h.item.HandleCreateItem)
		items.GET("/items/quantity/", h.item.HandleListQuantities)
		items.GET("/items/:itemID/", h.item.HandleGetItem)
		items.PUT("/items/:itemID/", h.item.HandleUpdateItem)
		items.PATCH("/items/:itemID/", h.item.HandleUpdateItem)
		items.DELETE("/items/:itemID/", h.item.HandleDeleteItem)
		items.GET("/items/:itemID/quantity/", h.item.HandleGetQuantity)
		items.GET("/items/:itemID/changes/", h.item.HandleListChanges)
	}

	s.Router.GET("/", h.health.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Inventory API"
	docs.SwaggerInfo.Description = "Multi-tenant inventory tracking with a quantity change log."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
