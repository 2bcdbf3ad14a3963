package bootstrap

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sitecrew-app/sitecrew-backend/internal/session"
	staffhttp "github.com/sitecrew-app/sitecrew-backend/internal/staff/http"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	Verifier  session.TokenVerifier
	Broker    *session.Broker
	Provision *service.ProvisionService
	Profiles  *service.ProfileService
	Roster    *service.RosterService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: dep.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": dep.ServiceName,
			"version": dep.Version,
		})
	})

	api := r.Group("/api/v1")
	api.Use(session.Middleware(dep.Verifier, dep.Broker))

	h := staffhttp.New(dep.Provision, dep.Profiles, dep.Roster, dep.Broker)
	h.Register(api)

	return r
}
