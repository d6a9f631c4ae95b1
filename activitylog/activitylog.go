// Package activitylog persists the activity feed (analyses, saves,
// deletions) and exposes CRUD routes for it.
package activitylog

import (
	"context"

	"github.com/cdfmlr/crud/log"
	"github.com/cdfmlr/crud/orm"
	"github.com/cdfmlr/crud/service"
	"github.com/gin-gonic/gin"

	"github.com/glebarez/sqlite" // pure go sqlite driver
	"gorm.io/gorm"

	"audiolib/model"
)

var logger = log.ZoneLogger("audiolib/activitylog")

// Start the activitylog module.
//
// There should be only one activitylog module in a program, started
// before any request handlers that Record.
func Start(dbDSN string, router gin.IRouter) error {
	if err := connectDB(dbDSN); err != nil {
		return err
	}

	orm.RegisterModel(&model.ActivityLog{})

	registerRoutes(router)
	return nil
}

func connectDB(dsn string) error {
	var err error
	orm.DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: log.Logger4Gorm,
	})
	return err
}

// Record appends one activity entry. Failures are logged, never
// propagated: the activity feed must not fail a request.
func Record(ctx context.Context, level, event, fileName, docID, detail string) {
	entry := &model.ActivityLog{
		Level:    level,
		Event:    event,
		FileName: fileName,
		DocID:    docID,
		Detail:   detail,
	}

	if err := service.Create(ctx, entry, service.IfNotExist()); err != nil {
		logger.WithContext(ctx).
			WithField("event", event).
			WithError(err).
			Error("Record: failed to save activity entry")
	}
}
