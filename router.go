package main

import (
	"github.com/cdfmlr/crud/router"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"audiolib/searchstore"
)

func MakeRouter(store *searchstore.Store, ctrl *analyzeController) (*gin.Engine, gin.IRouter) {
	r := router.NewRouter()
	r.Use(cors.Default()) // open CORS, the frontend runs on its own port

	api := r.Group("/api")

	// document store pass-throughs: items, search, stats, recommend...
	store.RegisterRoutes(api)

	// the analyze pipeline
	ctrl.registerRoutes(api)

	return r, api
}
