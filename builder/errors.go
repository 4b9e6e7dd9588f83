package builder

import "errors"

var (
	ErrNoPendingPlan   = errors.New("no pending server build plan")
	ErrScaffoldRole    = errors.New("bot role setup failed")
	ErrScaffoldChannel = errors.New("bot channel setup failed")
)
