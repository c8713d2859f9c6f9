package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal/service"
	"github.com/jvincentbasto/my-space/pkg/middleware"
)

// UserFetch returns the logged in user
func UserFetch(c *gin.Context) {
	u := middleware.User(c)
	if u == nil {
		respond.Error(c, service.ErrUnauthenticated)
		return
	}

	c.JSON(http.StatusOK, u)
}
