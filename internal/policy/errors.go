package policy

import "errors"

var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidProtocol   = errors.New("invalid protocol number")
	ErrInvalidPort       = errors.New("invalid port number")
	ErrEmptyInterface    = errors.New("interface name cannot be empty")
	ErrOrdering          = errors.New("stop before start")
	ErrNoWeekday         = errors.New("no day of the week selected")
	ErrAbstractTimeRange = errors.New("time range must be either absolute or periodic")
	ErrNotSupported      = errors.New("not supported")
)
