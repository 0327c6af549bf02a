package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kasilami/kasilami/utils"
)

// APIKeyHeader carries the public key on plain requests.
const APIKeyHeader = "apikey"

// APIKeyRequired rejects requests that do not present the public API key in
// the apikey header, an Authorization bearer, or (for WebSocket upgrades,
// which cannot set headers from a browser) the apikey query parameter.
func APIKeyRequired(key string) gin.HandlerFunc {
	want := []byte(key)
	return func(ctx *gin.Context) {
		got := presentedKey(ctx)
		if got == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "api key missing")
			ctx.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid api key")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func presentedKey(ctx *gin.Context) string {
	if v := strings.TrimSpace(ctx.GetHeader(APIKeyHeader)); v != "" {
		return v
	}
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if ctx.IsWebsocket() {
		return strings.TrimSpace(ctx.Query(APIKeyHeader))
	}
	return ""
}
