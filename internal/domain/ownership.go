package domain

// OwnershipRecord captures what an app manifest says about who owns and who
// installed a game. Either id may be empty when the manifest omits the
// field.
type OwnershipRecord struct {
	AppID       AppID
	LastOwner   SteamID
	InstalledBy SteamID
}
