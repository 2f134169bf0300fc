package detect

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// generateRunID creates a unique, time-ordered run ID.
func generateRunID(timestamp time.Time, videoPath string) string {
	ts := timestamp.UTC().Format("20060102T150405Z")

	input := fmt.Sprintf("%s|%d", videoPath, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3])

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}

// generateFindingID creates a unique ID for one finding within a run.
func generateFindingID(runID string, ordinal int) string {
	return fmt.Sprintf("finding-%s-%04d", runID, ordinal)
}
