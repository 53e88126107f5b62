package authcore

import "github.com/veriport/authcore/internal"

// NewDeviceID returns a long-lived opaque device identifier for correlation
// and fraud signals. It carries no authentication weight on its own.
func NewDeviceID() string {
	return internal.NewDeviceID()
}
