package main

import (
	"os"

	"github.com/nikitaclicks/decky-multi-user/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
