package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lnkz/internal/config"
	"github.com/fsdevblog/lnkz/internal/controllers/middlewares"
)

type RouterParams struct {
	LinkService LinkShortener
	PingService ConnectionChecker
	AppConf     config.Config
	Logger      *logrus.Logger
}

func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeadersMiddleware())
	r.Use(middlewares.GzipMiddleware())

	linksController := NewLinksController(params.LinkService)
	r.NoRoute(linksController.NotFound)

	if params.PingService != nil {
		pingController := NewPingController(params.PingService)
		r.GET("/ping", pingController.Ping)
	}

	r.GET("/:slug", linksController.Redirect)

	visitor := middlewares.VisitorCookieMiddleware([]byte(params.AppConf.VisitorJWTSecret), params.Logger)
	r.POST("/shorten", visitor, linksController.Shorten)

	api := r.Group("/api")
	api.POST("/shorten", visitor, linksController.Shorten)
	return r
}
