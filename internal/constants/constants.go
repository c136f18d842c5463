// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Registry constants
const (
	// FirstWorkerID is the id given to the first registered worker
	FirstWorkerID = 1001

	// DefaultWorkerName is shown when a worker record has no name
	DefaultWorkerName = "Worker"
)

// Attendance constants
const (
	// ManualConfirmation is stored as the missing-items text of manual uploads
	ManualConfirmation = "Manual Override Confirmed"

	// AdminOverrideFormat is stored as the missing-items text of admin overrides
	AdminOverrideFormat = "Marked %s by Admin"

	// FrameContentType is the content type of uploaded frames
	FrameContentType = "image/jpeg"
)

// Timeouts for external collaborators
const (
	// DefaultVisionTimeout bounds a single classification call
	DefaultVisionTimeout = 30 * time.Second

	// DefaultStorageTimeout bounds a single object store call
	DefaultStorageTimeout = 15 * time.Second

	// DefaultMaxImageSize is the maximum dimension (width or height) sent to the classifier
	DefaultMaxImageSize = 1024
)
