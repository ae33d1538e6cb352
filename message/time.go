package message

import (
	"fmt"
	"math"
	"time"
)

// FarcasterEpoch is the zero point of message timestamps (2021-01-01T00:00:00Z).
var FarcasterEpoch = time.Unix(1609459200, 0).UTC()

// ToFarcasterTime converts t to whole seconds since FarcasterEpoch.
func ToFarcasterTime(t time.Time) (uint32, error) {
	if t.Before(FarcasterEpoch) {
		return 0, newError(KindValidation, "MSG-TIME-001", "time is before the farcaster epoch")
	}
	secs := int64(t.Sub(FarcasterEpoch) / time.Second)
	if secs > math.MaxUint32 {
		return 0, newError(KindValidation, "MSG-TIME-002", fmt.Sprintf("time %s overflows a farcaster timestamp", t.UTC().Format(time.RFC3339)))
	}
	return uint32(secs), nil
}

// FromFarcasterTime is the inverse of ToFarcasterTime.
func FromFarcasterTime(ts uint32) time.Time {
	return FarcasterEpoch.Add(time.Duration(ts) * time.Second)
}
