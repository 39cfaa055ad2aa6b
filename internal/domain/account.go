package domain

import "strconv"

// SteamID is a 64-bit Steam identity rendered as a decimal string, the
// unique account key across every file this tool touches.
type SteamID string

// AppID is a Steam application id as it appears in manifests and launch
// URLs.
type AppID string

// Account is one entry from the host's login roster.
type Account struct {
	SteamID     SteamID
	AccountName string
	PersonaName string
	MostRecent  bool
	Timestamp   int64
}

// steamIDBase is the offset between a 32-bit account id (the name of a
// userdata directory) and the 64-bit SteamID used everywhere else.
const steamIDBase = 76561197960265728

// SteamIDFromAccountID converts a 32-bit account id to a 64-bit SteamID.
func SteamIDFromAccountID(accountID uint32) SteamID {
	return SteamID(strconv.FormatUint(uint64(accountID)+steamIDBase, 10))
}

// AccountID converts the 64-bit SteamID to its 32-bit account id, reporting
// false for strings that are not valid individual-account ids.
func (id SteamID) AccountID() (uint32, bool) {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil || n < steamIDBase || n-steamIDBase > 1<<32-1 {
		return 0, false
	}
	return uint32(n - steamIDBase), true
}

// Valid reports whether the id is a plausible 64-bit SteamID.
func (id SteamID) Valid() bool {
	_, ok := id.AccountID()
	return ok
}
