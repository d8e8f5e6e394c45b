package main

import (
	"github.com/wfunc/xoserver/api"
	"github.com/wfunc/xoserver/config"
	"github.com/wfunc/xoserver/logger"
	"github.com/wfunc/xoserver/monitor"
	"github.com/wfunc/xoserver/persistence"
	"github.com/wfunc/xoserver/server"
	"github.com/wfunc/xoserver/services"
)

func main() {
	logger.Init()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	pg := cfg.Database.Postgres
	if err := persistence.EnsureDatabase(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName); err != nil {
		logger.Log.Fatalf("Failed to bootstrap database: %v", err)
	}

	db, err := persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	authService := services.NewAuthService(db, cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	friendService := services.NewFriendService(db)

	mon := monitor.NewMonitor("xoserver")
	mon.StartServer(cfg.Server.MonitorAddress)

	// Account API runs beside the game server on its own address.
	apiHandler := api.NewHandler(authService, friendService)
	go func() {
		logger.Log.Infof("Account API listening on %s", cfg.Server.APIAddress)
		if err := apiHandler.Router().Run(cfg.Server.APIAddress); err != nil {
			logger.Log.Fatalf("Account API failed: %v", err)
		}
	}()

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, cfg.Server.RPCAddress, authService, friendService, mon)

	// New friend requests reach authenticated sockets immediately.
	friendService.SetNotifier(gameServer)

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
