package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/server"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		panic(err)
	}
	if err := logger.Init(true); err != nil {
		panic(err)
	}

	app := iris.New()
	server.RegisterAdminRoutes(app, cfg)

	addr := cfg.AdminServer.Addr()
	zap.L().Info("admin server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr), iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		zap.L().Fatal("failed to run admin server", zap.Error(err))
	}
}
