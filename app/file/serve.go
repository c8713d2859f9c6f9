package file

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
	"github.com/jvincentbasto/my-space/pkg/middleware"
)

func serveObject(c *gin.Context, d *internal.Deps, disposition string) {
	f, obj, err := d.Files.Open(c.Request.Context(), middleware.User(c), c.Param("bucket"), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	defer obj.Body.Close()

	ct := obj.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, obj.Size, ct, obj.Body, map[string]string{
		"Content-Disposition":    mime.FormatMediaType(disposition, map[string]string{"filename": f.Name}),
		"X-Content-Type-Options": "nosniff",
	})
}

// FileView streams an object inline
func FileView(c *gin.Context, d *internal.Deps) {
	serveObject(c, d, "inline")
}

// FileDownload streams an object as an attachment
func FileDownload(c *gin.Context, d *internal.Deps) {
	serveObject(c, d, "attachment")
}
