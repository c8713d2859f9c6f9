package file

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
	"github.com/jvincentbasto/my-space/pkg/middleware"
)

func FileUsage(c *gin.Context, d *internal.Deps) {
	usage, err := d.Files.TotalSpaceUsed(c.Request.Context(), middleware.User(c))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

// Dashboard returns the latest files and the usage summary together
func Dashboard(c *gin.Context, d *internal.Deps) {
	dash, err := d.Files.Dashboard(c.Request.Context(), middleware.User(c))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}
