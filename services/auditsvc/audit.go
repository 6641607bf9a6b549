// Package auditsvc appends rows to the system log.
package auditsvc

import (
	"coursemanager/models"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// nowFunc is swapped in tests
var nowFunc = time.Now

// Log records an action. userID is nil for actions taken by the system itself.
func Log(db *gorm.DB, userID *uint, action, detail string) error {
	entry := models.SystemLog{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		Timestamp: nowFunc().UTC(),
	}
	return errors.Wrap(db.Create(&entry).Error, "write system log")
}

// By is a convenience for Log with a known actor id.
func By(db *gorm.DB, userID uint, action, detail string) error {
	return Log(db, &userID, action, detail)
}
