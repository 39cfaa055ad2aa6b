package domain

import "errors"

var (
	ErrUnknownAccount  = errors.New("unknown account")
	ErrNoLoginAccounts = errors.New("no login accounts")
)
