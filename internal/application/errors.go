package application

// Switch stages, in execution order.
const (
	OpValidate     = "validate"
	OpRecordIntent = "record-intent"
	OpMarkRecent   = "mark-recent"
	OpAutoLogin    = "auto-login"
	OpRestart      = "restart"
)

// SwitchError reports which stage of a switch failed. Everything before the
// failed stage is committed; nothing after it was attempted. errors.Is and
// errors.As see through it to the underlying cause.
type SwitchError struct {
	Op  string
	Err error
}

func (e *SwitchError) Error() string {
	return "switch " + e.Op + ": " + e.Err.Error()
}

func (e *SwitchError) Unwrap() error {
	return e.Err
}
