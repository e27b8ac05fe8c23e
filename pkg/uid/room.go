package uid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRoomID builds a room identifier from the creation time and a random
// suffix, e.g. room_1718000000000_3f9a1c2e.
func NewRoomID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("room_%d_%s", now.UnixMilli(), suffix)
}

// NewConnectionID returns a random identifier for a websocket connection.
func NewConnectionID() string {
	return uuid.NewString()
}
