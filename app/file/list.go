package file

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
	"github.com/jvincentbasto/my-space/internal/query"
	"github.com/jvincentbasto/my-space/pkg/filetype"
	"github.com/jvincentbasto/my-space/pkg/middleware"
)

const maxListLimit = 100

// listRequest reads the search, sort and limit query parameters shared by
// the listing endpoints
func listRequest(c *gin.Context) (query.Request, bool) {
	r := query.Request{
		SearchText: strings.TrimSpace(c.Query("query")),
		Sort:       c.Query("sort"),
	}

	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 || n > maxListLimit {
			respond.BadRequest(c, "Limit must be a number between 1 and 100")
			return r, false
		}

		r.Limit = n
	}

	return r, true
}

// FileList lists the files the user owns or that are shared with them,
// optionally filtered by ?type=image,video
func FileList(c *gin.Context, d *internal.Deps) {
	r, ok := listRequest(c)
	if !ok {
		return
	}

	if types := c.Query("type"); types != "" {
		for _, t := range strings.Split(types, ",") {
			ft := filetype.Type(strings.TrimSpace(t))
			if !filetype.Valid(ft) {
				respond.BadRequest(c, "Unknown file type "+strconv.Quote(t))
				return
			}

			r.Types = append(r.Types, ft)
		}
	}

	files, err := d.Files.GetFiles(c.Request.Context(), middleware.User(c), r)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// FileCategory lists the files of a category page (documents, images, media,
// others)
func FileCategory(c *gin.Context, d *internal.Deps) {
	r, ok := listRequest(c)
	if !ok {
		return
	}

	r.Types = filetype.TypesForCategory(c.Param("category"))

	files, err := d.Files.GetFiles(c.Request.Context(), middleware.User(c), r)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}
