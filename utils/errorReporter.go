package utils

import (
	"coursemanager/config"
	"log"

	"github.com/rollbar/rollbar-go"
)

var reporterEnabled bool

// InitErrorReporter configures Rollbar. Without a token reporting stays off.
func InitErrorReporter(cfg *config.Config) {
	if cfg.RollbarToken == "" {
		log.Println("[ROLLBAR] ROLLBAR_TOKEN not set, error reporting disabled")
		rollbar.SetEnabled(false)
		return
	}
	rollbar.SetToken(cfg.RollbarToken)
	rollbar.SetEnvironment(cfg.AppEnv)
	rollbar.SetEnabled(true)
	reporterEnabled = true
}

// ReportError forwards an unexpected error with request or job context
func ReportError(err error, extras map[string]interface{}) {
	if !reporterEnabled || err == nil {
		return
	}
	rollbar.Error(err, extras)
}

// CloseErrorReporter flushes queued reports before shutdown
func CloseErrorReporter() {
	if reporterEnabled {
		rollbar.Close()
	}
}
