package http

import (
	"GrainHero/internal/config"
	handler "GrainHero/internal/modules/gateway/interface/http"
	"GrainHero/pkg/metrics"
	"GrainHero/pkg/ssl"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var GE *gin.Engine

// Setup builds the gin engine with the middleware chain and every route.
func Setup(conf *config.Config, h handler.Handlers) *gin.Engine {
	GE = gin.New()
	GE.Use(gin.Logger(), gin.Recovery())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	GE.Use(metrics.Middleware(conf.MainConfig.AppName))
	if conf.TlsConfig.Enabled {
		GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	auth, inboxAuth := handler.DefaultAuth()
	handler.Register(GE, h, auth, inboxAuth)
	return GE
}
