package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haven-community/haven/models"
	"github.com/haven-community/haven/stores"
	"github.com/haven-community/haven/utils"
)

// TokenCookie is the session cookie name.
const TokenCookie = "token"

const (
	// ContextUserIDKey stores the authenticated user id in the Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserNameKey stores the display name.
	ContextUserNameKey = "user_name"
	// ContextUserRoleKey stores the role.
	ContextUserRoleKey = "user_role"
)

// AuthRequired resolves the session cookie to a user identity. A token is
// valid iff its signature verifies, it is unexpired, and the user it names
// still exists; every token problem is the same 401, with no hint which
// check failed. A store outage is a plain 500, not a 401. Reads bypass
// this middleware entirely.
func AuthRequired(users *stores.UserStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := sessionToken(ctx)
		if token == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseSession(token)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "unauthorized")
			ctx.Abort()
			return
		}

		user, err := users.FindByID(ctx.Request.Context(), claims.UserID)
		if errors.Is(err, stores.ErrNotFound) {
			// The token names an account that no longer exists.
			utils.Error(ctx, http.StatusUnauthorized, 40103, "unauthorized")
			ctx.Abort()
			return
		}
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50010, "internal server error")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUserNameKey, user.Name)
		ctx.Set(ContextUserRoleKey, user.Role)
		ctx.Next()
	}
}

// sessionToken pulls the token from the cookie, with an Authorization
// bearer fallback for non-browser clients.
func sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := ctx.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentUser returns the authenticated identity set by AuthRequired.
func CurrentUser(ctx *gin.Context) (id uint, name, role string, ok bool) {
	idVal, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		return 0, "", "", false
	}
	id, ok = idVal.(uint)
	if !ok {
		return 0, "", "", false
	}
	name = ctx.GetString(ContextUserNameKey)
	role = ctx.GetString(ContextUserRoleKey)
	return id, name, role, true
}

// IsAdmin reports whether the authenticated user carries the admin role.
func IsAdmin(ctx *gin.Context) bool {
	return ctx.GetString(ContextUserRoleKey) == models.RoleAdmin
}
