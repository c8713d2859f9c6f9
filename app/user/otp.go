package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
)

type otpBody struct {
	Email string `json:"email"`
}

// UserSendOTP mails a passcode to any address and returns the account handle
// the passcode belongs to
func UserSendOTP(c *gin.Context, d *internal.Deps) {
	var data otpBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if data.Email == "" {
		respond.BadRequest(c, "Email field can't be empty")
		return
	}

	accountID, err := d.Users.SendEmailOTP(c.Request.Context(), data.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accountId": accountID,
	})
}
