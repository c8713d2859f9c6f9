package file

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
	"github.com/jvincentbasto/my-space/internal/service"
	"github.com/jvincentbasto/my-space/pkg/middleware"
)

type renameBody struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type shareBody struct {
	Emails []string `json:"emails"`
	Path   string   `json:"path"`
}

func execute(c *gin.Context, d *internal.Deps, path string, a service.Action) {
	f, err := d.Files.Execute(c.Request.Context(), middleware.User(c), c.Param("id"), path, a)
	if err != nil {
		respond.Error(c, err)
		return
	}

	if f == nil {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}

	c.JSON(http.StatusOK, f)
}

// FileRename sets a new base name, the extension can't be changed
func FileRename(c *gin.Context, d *internal.Deps) {
	var data renameBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	execute(c, d, data.Path, service.Rename{Name: data.Name})
}

// FileShare replaces the list of emails the file is shared with
func FileShare(c *gin.Context, d *internal.Deps) {
	var data shareBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if data.Emails == nil {
		respond.BadRequest(c, "Emails field is required, send an empty list to stop sharing")
		return
	}

	execute(c, d, data.Path, service.Share{Emails: data.Emails})
}

func FileDelete(c *gin.Context, d *internal.Deps) {
	execute(c, d, c.Query("path"), service.Delete{})
}
