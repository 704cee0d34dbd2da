package middleware

import (
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware seeds the request context with a request id and the
// acting user. Without an X-User-ID header the request runs as the system
// user, matching scheduled billing runs.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx = types.SetRequestID(ctx, requestID)

	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		userID = types.DefaultUserID
	}
	ctx = types.SetUserID(ctx, userID)

	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
