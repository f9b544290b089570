package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yourname/studyhabits/internal"
	"github.com/yourname/studyhabits/internal/service"
)

var errUsernameRequired = errors.New("username query parameter missing")

func PostAnalyze(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.AnalyzeRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if err := service.ValidateAnalyzeRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		result, err := service.AnalyzeSession(c.Request.Context(), app.Sessions(), app.Predictor(), app.Coach(), app.Logger(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to analyze session")
			return
		}

		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func GetHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Query("username")
		if username == "" {
			HandleError(c, app.Logger(), errUsernameRequired, 400, "Username is required")
			return
		}

		window, err := internal.ParseWindow(c.DefaultQuery("range", "week"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid range")
			return
		}

		sessions, err := app.Sessions().ListSessions(c.Request.Context(), username, window)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch history")
			return
		}

		HandleSuccess(c, app.Logger(), sessions, map[string]any{
			"username": username,
			"count":    len(sessions),
		})
	}
}

func DeleteHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Query("username")
		if username == "" {
			HandleError(c, app.Logger(), errUsernameRequired, 400, "Username is required")
			return
		}

		window, err := internal.ParseWindow(c.DefaultQuery("range", "all"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid range")
			return
		}

		deleted, err := app.Sessions().ClearSessions(c.Request.Context(), username, window)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to clear history")
			return
		}

		HandleSuccess(c, app.Logger(), nil, map[string]any{
			"username":      username,
			"deleted_count": deleted,
			"range":         string(window),
		})
	}
}

func GetUsernames(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		usernames, err := app.Sessions().DistinctUsernames(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch usernames")
			return
		}

		HandleSuccess(c, app.Logger(), usernames, nil)
	}
}
