package middleware

import (
	midsec "Alvin/middleware/security"

	"github.com/gin-gonic/gin"
)

type RouteOpt struct {
	IsAuth bool
}

// POST registers a POST route, guarded when the route demands auth.
func POST(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt, sec *midsec.Options) {
	if opt.IsAuth {
		r.POST(path, midsec.Middleware(sec), handler)
	} else {
		r.POST(path, handler)
	}
}

// GET registers a GET route, guarded when the route demands auth.
func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt, sec *midsec.Options) {
	if opt.IsAuth {
		r.GET(path, midsec.Middleware(sec), handler)
	} else {
		r.GET(path, handler)
	}
}
