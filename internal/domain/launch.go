package domain

import "time"

// PendingLaunch is the durable record of a game that should start once the
// host is running as the target account. At most one exists at a time; a
// new switch overwrites it and resume consumes it exactly once.
type PendingLaunch struct {
	AppID         AppID
	TargetSteamID SteamID
	CreatedAt     time.Time
}
