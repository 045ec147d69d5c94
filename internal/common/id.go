package common

import (
	"github.com/google/uuid"
)

// NewRecordID generates a unique analysis record ID with the "rec_" prefix
// Format: rec_<uuid>
func NewRecordID() string {
	return "rec_" + uuid.New().String()
}

// NewAlertID generates a unique alert ID with the "alert_" prefix
// Format: alert_<uuid>
func NewAlertID() string {
	return "alert_" + uuid.New().String()
}
