package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lurdinha/internal/cache"
	"lurdinha/internal/config"
	"lurdinha/internal/repository"
	"lurdinha/internal/service"
	"lurdinha/internal/transport/rest"
	"lurdinha/internal/transport/ws"
	"lurdinha/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", err)
	}

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("failed to ping MongoDB", err)
	}
	logger.Info("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureRoomIndexes(ctx, db); err != nil {
		logger.Fatal("failed to ensure room indexes", err)
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("failed to ping Redis", err)
	}
	logger.Info("connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub()

	// Repositories
	roomRepo := repository.NewRoomRepo(db)
	userRepo := repository.NewUserRepo(db)
	groupRepo := repository.NewGroupRepo(db)
	quizRepo := repository.NewQuizRepo(db)

	// Caches
	codeCache := cache.NewCodeCache(rdb, cfg.RoomCodeTTL)
	voteCache := cache.NewVoteCache(rdb)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	roomSvc := service.NewRoomService(roomRepo, codeCache, cfg.NoMajorityPenalizes)
	groupSvc := service.NewGroupService(groupRepo)
	quizSvc := service.NewQuizService(quizRepo, groupRepo, voteCache)

	roomSvc.SetBroadcaster(wsHub)
	defer roomSvc.Close()

	router := rest.NewRouter(&rest.Container{
		AuthService:  authSvc,
		RoomService:  roomSvc,
		GroupService: groupSvc,
		QuizService:  quizSvc,
		WSHub:        wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", err)
	}

	logger.Info("server exited")
}
