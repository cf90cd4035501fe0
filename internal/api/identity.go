package api

import (
	"artify/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	anonCookieName   = "artify_anon"
	anonCookieMaxAge = 180 * 24 * 60 * 60
)

// resolveIdentity 解析请求身份：有效的 Bearer Token 解析为认证用户，
// 否则读取匿名 cookie，没有 cookie 时签发一个新的。同一 cookie 在会话内
// 始终解析为同一匿名标识，并发闸门与额度账本都依赖这一点。
func (h *HTTPHandler) resolveIdentity(c *gin.Context) entity.Identity {
	if tokenString := bearerToken(c); tokenString != "" {
		claims, err := h.authManager.ParseToken(tokenString)
		if err == nil && claims.UserID > 0 {
			return entity.Identity{UserID: claims.UserID}
		}
		logrus.WithError(err).Debug("identity_token_rejected")
	}

	if anonID, err := c.Cookie(anonCookieName); err == nil && anonID != "" {
		return entity.Identity{AnonID: anonID}
	}

	anonID := entity.NewAnonID()
	c.SetCookie(anonCookieName, anonID, anonCookieMaxAge, "/", "", false, true)
	return entity.Identity{AnonID: anonID}
}
