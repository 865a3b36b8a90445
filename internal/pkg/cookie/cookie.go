package cookie

import (
	"github.com/gin-gonic/gin"
)

// AccessTokenCookieName lets browser clients send the requester token as a cookie
// instead of an Authorization header.
const AccessTokenCookieName = "access_token"

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}
