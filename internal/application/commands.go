package application

import "github.com/nikitaclicks/decky-multi-user/internal/domain"

type SwitchCommand struct {
	TargetID domain.SteamID
	// AccountName overrides the login name from the roster entry; normally
	// left empty.
	AccountName string
	// LaunchApp, when set, queues this app to start after the switch.
	LaunchApp domain.AppID
	// NoRestart records the intent and rewrites the config without
	// restarting the client; the switch then takes effect on the next
	// manual restart.
	NoRestart bool
}

type SwitchAck struct {
	Target        domain.Account
	LaunchQueued  bool
	RestartIssued bool
}
