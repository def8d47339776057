package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"social-app/internal/service"
)

const authUserKey = "auth_user_id"

// AuthMiddleware valida el token de sesión y guarda la identidad del
// llamador en el contexto. Sin token redirige a /login; un token vencido
// además instruye al cliente a limpiar la sesión cacheada; un token
// inválido responde 401. Toda falla corta el handler siguiente.
func AuthMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "auth not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		// El cliente original manda el token pelado; también se acepta Bearer.
		token := header
		if strings.HasPrefix(strings.ToLower(header), "bearer ") {
			token = strings.TrimSpace(header[len("Bearer "):])
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				c.Header("Clear-Site-Data", `"storage"`)
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authUserKey, userID)
		c.Next()
	}
}

// AuthUserID obtiene la identidad del llamador desde el contexto.
func AuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
