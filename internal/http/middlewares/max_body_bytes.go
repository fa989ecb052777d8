package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies. Oversized form posts fail to parse and
// surface as validation errors in the handlers.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if max > 0 && ctx.Request.Body != nil && ctx.Request.Body != http.NoBody {
			if ctx.Request.ContentLength > max {
				ctx.AbortWithStatus(http.StatusRequestEntityTooLarge)
				return
			}
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)
		}

		ctx.Next()
	}
}
