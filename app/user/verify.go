package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/respond"
	"github.com/jvincentbasto/my-space/internal"
)

type verifyBody struct {
	AccountID string `json:"accountId"`
	OTP       string `json:"otp"`
}

// UserVerify exchanges a passcode for a session. The cookie is only written
// when the exchange succeeds.
func UserVerify(c *gin.Context, d *internal.Deps) {
	var data verifyBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if data.AccountID == "" || data.OTP == "" {
		respond.BadRequest(c, "Account ID and passcode are required")
		return
	}

	secret, err := d.Users.VerifySecret(c.Request.Context(), data.AccountID, data.OTP)
	if err != nil {
		respond.Error(c, err)
		return
	}

	cfg := d.Config.Session

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cfg.CookieName, secret, int(cfg.TTL.Seconds()), "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{
		"accountId": data.AccountID,
	})
}
