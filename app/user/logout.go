package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/internal"
)

// LoginPath is where clients land after logging out
const LoginPath = "/login"

// UserLogout always clears the cookie and redirects, even if the session
// could not be deleted
func UserLogout(c *gin.Context, d *internal.Deps) {
	name := d.Config.Session.CookieName

	if secret, err := c.Cookie(name); err == nil {
		d.Users.Logout(c.Request.Context(), secret)
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, "", -1, "/", "", true, true)
	c.Redirect(http.StatusSeeOther, LoginPath)
}
