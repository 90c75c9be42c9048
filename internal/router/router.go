package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/internal/api"
	"github.com/pageza/smartplate/internal/middleware"
	"github.com/pageza/smartplate/internal/web"
)

// Config collects what the router mounts
type Config struct {
	// TrustedProxies may set X-Forwarded-For; the page handlers forward the
	// browser's address to the API through the loopback interface.
	TrustedProxies []string
	API            api.Deps
	Pages          *web.Handler
	Sessions       *middleware.SessionManager
}

// SetupRouter configures the application routes
func SetupRouter(log logrus.FieldLogger, cfg Config) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, errors.Wrap(err, "invalid trusted proxies")
	}
	router.Use(middleware.RequestLogger(log), gin.Recovery())
	router.SetHTMLTemplate(web.MustTemplates())

	// JSON API routes
	api.RegisterRoutes(router, cfg.API)

	// Page routes carry the session cookie
	pages := router.Group("/")
	pages.Use(cfg.Sessions.Middleware())
	cfg.Pages.RegisterRoutes(pages)

	return router, nil
}
