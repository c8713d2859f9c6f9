package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
)

type loginBody struct {
	Email string `json:"email"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if data.Email == "" {
		respond.BadRequest(c, "Email field can't be empty")
		return
	}

	res, err := d.Users.Login(c.Request.Context(), data.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}

	if res.Error != "" {
		c.JSON(http.StatusNotFound, gin.H{
			"accountId": nil,
			"error":     res.Error,
			"requestID": c.GetString("requestID"),
		})
		return
	}

	c.JSON(http.StatusOK, res)
}
