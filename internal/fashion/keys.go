package fashion

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Blob key prefixes. These are wire-compatible with earlier deployments and
// must not change.
const (
	UploadPrefix        = "fashion-uploads/"
	ResultsPrefix       = "fashion-results/"
	VisualizationPrefix = "fashion-visualizations/"
	FavoritesPrefix     = "fashion-favorites/"

	// SessionScanPrefix is the broad prefix scanned by delete-session; session
	// blobs from every category live under it.
	SessionScanPrefix = "fashion-"
)

// NewSessionID mints the derived session identifier "{userId}-{epochMillis}".
// Ownership is re-derived from the string itself, never stored.
func NewSessionID(userID string, now time.Time) string {
	return userID + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// SessionOwnedBy reports whether sessionID belongs to userID. A plain prefix
// match is what earlier deployments enforced; keep it bit-compatible.
func SessionOwnedBy(sessionID, userID string) bool {
	if sessionID == "" || userID == "" {
		return false
	}
	return strings.HasPrefix(sessionID, userID)
}

func UploadKey(sessionID string) string {
	return UploadPrefix + sessionID + ".jpg"
}

func ResultsKey(userID, sessionID string) string {
	return ResultsPrefix + userID + "/" + sessionID + ".json"
}

func UserResultsPrefix(userID string) string {
	return ResultsPrefix + userID + "/"
}

// VisualizationKey uses the 1-based display ordinal as file suffix.
func VisualizationKey(sessionID string, index int) string {
	return fmt.Sprintf("%s%s/outfit-%d.jpg", VisualizationPrefix, sessionID, index+1)
}

func FavoritesKey(userID string) string {
	return FavoritesPrefix + userID + "/favorites.json"
}

// SessionIDFromResultsKey recovers the session ID from a results blob key
// listed under UserResultsPrefix(userID).
func SessionIDFromResultsKey(key, userID string) string {
	rest := strings.TrimPrefix(key, UserResultsPrefix(userID))
	return strings.TrimSuffix(rest, ".json")
}
