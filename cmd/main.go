package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"UpDownRiver/config"
	"UpDownRiver/internal/auth"
	"UpDownRiver/internal/game/manager"
	"UpDownRiver/internal/game/table"
	"UpDownRiver/internal/matchmaker"
	"UpDownRiver/internal/middleware"
	"UpDownRiver/internal/storage"
	"UpDownRiver/internal/utils"
	"UpDownRiver/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := "config/config.yaml"
	if p := os.Getenv("UDR_CONFIG"); p != "" {
		cfgPath = p
	}
	if err := config.Load(cfgPath); err != nil {
		utils.Log.Fatal("config load failed", "path", cfgPath, "err", err)
	}
	utils.Init(config.C.Log.Level)
	logger := utils.Log

	if config.C.JWT.Secret == "" {
		logger.Fatal("jwt.secret must be set")
	}

	//-------------------------------------------------------
	// 1. 初始化 Redis
	//-------------------------------------------------------
	rdb, err := storage.NewRedis(context.Background(),
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	)
	if err != nil {
		logger.Fatal("redis init failed", "err", err)
	}

	//-------------------------------------------------------
	// 2. 初始化 Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 3. 初始化 Hub 和 GameManager
	//-------------------------------------------------------
	hub := websocket.NewHub()
	gameMgr := manager.NewGameManager(hub,
		manager.WithSeed(config.C.Game.Seed),
		manager.WithFollowSuit(config.C.Game.FollowSuit),
	)
	hub.OnIncoming = gameMgr.HandlePlayerMessage
	go hub.Run()

	//-------------------------------------------------------
	// 4. 初始化匹配系统 Matchmaker
	//-------------------------------------------------------
	repo := matchmaker.NewRedisRepo(rdb)
	svc := matchmaker.NewService(repo, time.Duration(config.C.Match.PlayerTTL)*time.Second, hub, config.C.Match.Pool)

	// 成桌回调：让 GameManager 接手
	svc.OnTableReady = func(t *table.Table) {
		if err := gameMgr.StartTable(t); err != nil {
			logger.Error("start table failed", "table", t.ID, "err", err)
			if err := svc.Release(context.Background(), t); err != nil {
				logger.Error("release table failed", "table", t.ID, "err", err)
			}
		}
	}
	// 对局结束：释放座位
	gameMgr.OnTableClosed = func(t *table.Table) {
		if err := svc.Release(context.Background(), t); err != nil {
			logger.Error("release table failed", "table", t.ID, "err", err)
		}
	}

	//-------------------------------------------------------
	// 5. 登录
	//-------------------------------------------------------
	secret := []byte(config.C.JWT.Secret)
	authHandler := auth.NewHandler(secret, auth.NewNonceStore(5*time.Minute), time.Duration(config.C.JWT.TTL)*time.Second)
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/nonce", authHandler.Nonce)
		authGroup.POST("/nonce", authHandler.Nonce)
		authGroup.POST("/login", authHandler.Login)
	}

	//-------------------------------------------------------
	// 6. 需要 JWT 的路由
	//-------------------------------------------------------
	protected := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		protected.GET("/ws", websocket.ServeWS(hub))

		mh := matchmaker.NewHandler(svc)
		protected.POST("/match/join", mh.Join)
		protected.POST("/match/cancel", mh.Cancel)

		protected.GET("/games/:id", func(c *gin.Context) {
			v, ok := gameMgr.View(c.Param("id"))
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "no such game"})
				return
			}
			c.JSON(http.StatusOK, v)
		})
	}

	//-------------------------------------------------------
	// 7. 启动服务器
	//-------------------------------------------------------
	logger.Info("server running", "port", config.C.Server.Port)
	if err := r.Run(config.C.Server.Port); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}
