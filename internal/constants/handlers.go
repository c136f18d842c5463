// Package constants provides shared constants used across the codebase.
package constants

import "time"

// HTTP constants
const (
	// MaxFrameRequestSize caps kiosk request bodies carrying a base64 frame
	MaxFrameRequestSize = 10 << 20

	// MaxJSONRequestSize caps admin request bodies
	MaxJSONRequestSize = 1 << 20

	// StatsCacheTTL is how long a computed daily stats response is served from cache
	StatsCacheTTL = time.Minute
)

// Live feed constants
const (
	// EventChannelBuffer is the buffer size of each live feed client channel
	EventChannelBuffer = 100

	// LiveWriteWait is the time allowed to write a message to a live feed client
	LiveWriteWait = 10 * time.Second

	// LivePingInterval is how often live feed clients are pinged
	LivePingInterval = 30 * time.Second
)
