package utils

import (
	"path/filepath"

	"github.com/google/uuid"
)

// GenerateFileName builds the stored name for an upload:
// "<meetingId>_<uuidv4><original extension>". The 128-bit random id makes
// collisions negligible; uniqueness is not verified before write.
func GenerateFileName(meetingID, originalName string) string {
	return meetingID + "_" + uuid.New().String() + filepath.Ext(originalName)
}
