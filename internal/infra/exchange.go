package infra

import "context"

// Exchange is the capability interface for an exchange user-data backend.
// Each exchange is a variant behind this interface, not a subclass: Start
// brings up the feed (and whatever key/session plumbing it needs) and Stop
// tears it down.
type Exchange interface {
	Start(ctx context.Context) error
	Stop()
}
