package file

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
	"github.com/jvincentbasto/my-space/internal/service"
	"github.com/jvincentbasto/my-space/pkg/middleware"
	"github.com/jvincentbasto/my-space/pkg/validators"
	"go.uber.org/zap"
)

func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	fh, err := c.FormFile("file")
	if err != nil {
		respond.BadRequest(c, "No file provided")
		return
	}

	code, f, contentType, err := validators.FileValidator(fh, d.Config.MaxUploadBytes())
	if err != nil {
		if code == http.StatusInternalServerError {
			respond.Error(c, err)
			return
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	file, err := d.Files.Upload(c.Request.Context(), middleware.User(c), &service.UploadInput{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: contentType,
		Body:        f,
		Path:        c.PostForm("path"),
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	zap.L().Debug("File uploaded", zap.String("fileID", file.ID), zap.String("requestID", requestID))

	c.JSON(http.StatusCreated, file)
}
