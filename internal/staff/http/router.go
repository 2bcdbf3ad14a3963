package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/staff", RateLimit(rate.Limit(1), 5), h.AddStaff)
	rg.GET("/profile", h.GetProfile)
	rg.PUT("/profile", h.UpdateProfile)
	rg.GET("/roster", h.GetRoster)
	rg.POST("/session/signout", h.SignOut)
}
