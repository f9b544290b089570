package api

import "github.com/gin-gonic/gin"

// NewRouter wires middleware and the public endpoints.
func NewRouter(app App, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware(corsOrigin))

	r.POST("/analyze", PostAnalyze(app))
	r.GET("/history", GetHistory(app))
	r.DELETE("/clear-history", DeleteHistory(app))
	r.GET("/usernames", GetUsernames(app))

	return r
}
