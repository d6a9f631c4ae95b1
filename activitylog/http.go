package activitylog

import (
	"github.com/cdfmlr/crud/router"
	"github.com/gin-gonic/gin"

	"audiolib/model"
)

func registerRoutes(r gin.IRouter) {
	// basic CRUDs: the frontend Logs page only reads, but the generated
	// routes also let an operator prune old entries.
	router.Crud[model.ActivityLog](r, "/logs")
}
