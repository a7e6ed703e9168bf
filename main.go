package main

import (
	"net/http"

	global "Alvin/global"
	"Alvin/logger"
	mid "Alvin/middleware"
	midsec "Alvin/middleware/security"
	"Alvin/module/project/store"
	"Alvin/module/user"
	userstore "Alvin/module/user/store"
	"Alvin/service/collab"
	"Alvin/service/collab/handlers"
	"Alvin/service/mgo"
	"Alvin/service/storage"
	storedis "Alvin/service/storage/redis"
	"Alvin/tools/security"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := global.LoadConfig()
	global.ConfigIds(cfg)

	if err := mgo.Init(mgo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase}); err != nil {
		logger.Errorf("mongo init failed: %v", err)
		return
	}

	// the presence mirror is optional; without Redis the gateway runs on
	// in-process state alone
	var mirror collab.PresenceMirror
	if cfg.RedisAddr != "" {
		if err := storedis.InitRedis(storedis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}); err != nil {
			logger.Errorf("redis init failed: %v", err)
			return
		}
		mirror = storage.NewRoomMirror(storedis.GetRedis())
	}

	jwtOpts := security.DefaultOptions(cfg.JWTSecret)
	users := userstore.NewUserStore()
	authn := user.NewTokenAuthenticator(jwtOpts, users)
	authz := store.NewAccessStore()

	srv := collab.NewServer(collab.Conf{
		AuthTimeout:   cfg.AuthTimeout,
		UnauthTTL:     cfg.UnauthTTL,
		TypingTTL:     cfg.TypingTTL,
		SendQueueSize: cfg.SendQueueSize,
		FanoutWorkers: cfg.FanoutWorkers,
		FanoutQueue:   cfg.FanoutQueue,
	}, authn, authz, mirror)
	defer srv.Close()

	handlers.RegisterAll(srv)

	r := gin.New()
	r.Use(gin.Recovery())

	sec := midsec.DefaultOptions(jwtOpts)

	r.GET("/collab", srv.HandleWS)
	mid.POST(r, "/login", user.HandlerLogin(jwtOpts, users), mid.RouteOpt{IsAuth: false}, sec)
	mid.POST(r, "/check", user.HandlerCheck(users), mid.RouteOpt{IsAuth: true}, sec)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Infof("[HTTP] Listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Errorf("HTTP server failed: %v", err)
	}
}
