package user

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
)

type registerBody struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

const maxFullNameLength = 100

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	data.FullName = strings.TrimSpace(data.FullName)

	if data.FullName == "" {
		respond.BadRequest(c, "Full name field can't be empty")
		return
	}

	if len(data.FullName) > maxFullNameLength {
		respond.BadRequest(c, "Full name is too long")
		return
	}

	if data.Email == "" {
		respond.BadRequest(c, "Email field can't be empty")
		return
	}

	accountID, err := d.Users.Signup(c.Request.Context(), data.FullName, data.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accountId": accountID,
	})
}
