package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

// resolveSteamID accepts either a full 64-bit steamid or the bare 32-bit
// account number userdata directories are named after, and returns the
// 64-bit form every config file uses.
func resolveSteamID(raw string) (domain.SteamID, error) {
	requested := strings.TrimSpace(raw)
	if requested == "" {
		return "", fmt.Errorf("steamid must not be empty")
	}

	n, err := strconv.ParseUint(requested, 10, 64)
	if err != nil {
		return "", fmt.Errorf("steamid %q is not numeric", raw)
	}

	if id := domain.SteamID(requested); id.Valid() {
		return id, nil
	}

	if n > math.MaxUint32 {
		return "", fmt.Errorf("steamid %q is out of range", raw)
	}

	return domain.SteamIDFromAccountID(uint32(n)), nil
}
