package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/policy"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	subticketRepo := repository.NewSubticketRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Single policy engine shared by every handler. Board edits are open
	// to members; board deletion stays owner-only.
	engine := policy.NewEngine()

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	boardHandler := handler.NewBoardHandler(boardRepo, membershipRepo, userRepo, engine)
	memberHandler := handler.NewMemberHandler(boardRepo, userRepo, membershipRepo, engine)
	ticketHandler := handler.NewTicketHandler(ticketRepo, boardRepo, membershipRepo, engine)
	subticketHandler := handler.NewSubticketHandler(subticketRepo, ticketRepo, membershipRepo, engine)
	commentHandler := handler.NewCommentHandler(commentRepo, ticketRepo, membershipRepo, engine)

	// Public routes
	r.POST("/api/auth/registration", userHandler.Register)
	r.POST("/api/auth/login", userHandler.Login)

	// Protected routes - require authentication
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		api.GET("/auth/profile", userHandler.Profile)
		api.GET("/auth/email-check", userHandler.EmailCheck)
		api.GET("/users", userHandler.List)
		api.GET("/users/me", userHandler.Profile)

		// Board routes
		api.POST("/boards", boardHandler.Create)
		api.GET("/boards", boardHandler.GetAll)
		api.GET("/boards/:id", boardHandler.GetByID)
		api.PATCH("/boards/:id", boardHandler.Update)
		api.DELETE("/boards/:id", boardHandler.Delete)

		// Board member routes
		api.GET("/boards/:id/members", memberHandler.List)
		api.POST("/boards/:id/members", memberHandler.Add)
		api.DELETE("/boards/:id/members/:user_id", memberHandler.Remove)

		// Ticket routes. The fixed paths must be registered before the
		// :id routes so gin does not treat them as ticket IDs.
		api.GET("/tasks/assigned-to-me", ticketHandler.AssignedToMe)
		api.GET("/tasks/reviewing", ticketHandler.Reviewing)
		api.POST("/tasks", ticketHandler.Create)
		api.GET("/tasks", ticketHandler.GetAll)
		api.GET("/tasks/:id", ticketHandler.GetByID)
		api.PATCH("/tasks/:id", ticketHandler.Update)
		api.DELETE("/tasks/:id", ticketHandler.Delete)

		// Subticket routes
		api.GET("/tasks/:id/subtasks", subticketHandler.ListForTicket)
		api.POST("/tasks/:id/subtasks", subticketHandler.CreateForTicket)
		api.PATCH("/subtasks/:id", subticketHandler.Update)
		api.DELETE("/subtasks/:id", subticketHandler.Delete)

		// Comment routes
		api.GET("/tasks/:id/comments", commentHandler.ListForTicket)
		api.POST("/tasks/:id/comments", commentHandler.CreateForTicket)
		api.DELETE("/tasks/:id/comments/:comment_id", commentHandler.DeleteNested)
		api.POST("/comments", commentHandler.Create)
		api.GET("/comments/:id", commentHandler.GetByID)
		api.DELETE("/comments/:id", commentHandler.Delete)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
