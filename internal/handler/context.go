package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/scheduling-api/internal/model"
)

const callerKey = "caller"

// SetCaller stores the authenticated caller on the request.
func SetCaller(c *gin.Context, caller model.Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the authenticated caller. ok is false when the route
// is unauthenticated.
func CallerFrom(c *gin.Context) (model.Caller, bool) {
	v, exists := c.Get(callerKey)
	if !exists {
		return model.Caller{}, false
	}
	caller, ok := v.(model.Caller)
	return caller, ok
}
