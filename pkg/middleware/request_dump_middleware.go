package middleware

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"

	"coursehub-backend/utilities"
)

// RequestDumpMiddleware logs full request details. Enabled by the
// REQUEST_DUMP config attribute; development only.
func RequestDumpMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		utilities.Info(
			"[Request]\n"+
				"\tMethod: %s\n"+
				"\tURL: %s\n"+
				"\tParams: %v\n"+
				"\tBody: %s",
			c.Request.Method,
			c.Request.URL.String(),
			c.Params,
			string(bodyBytes),
		)

		c.Next()
	}
}
