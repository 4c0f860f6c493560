package market

import "errors"

var (
	ErrNotFound            = errors.New("market: not found")
	ErrForbidden           = errors.New("market: forbidden")
	ErrInvalidInput        = errors.New("market: invalid input")
	ErrProfileExists       = errors.New("market: profile already exists")
	ErrBriefNotOpen        = errors.New("market: brief is not open")
	ErrBriefFull           = errors.New("market: brief is full")
	ErrAlreadyApplied      = errors.New("market: creator already applied to this brief")
	ErrAlreadyDecided      = errors.New("market: application already decided")
	ErrInvalidTransition   = errors.New("market: invalid status transition")
	ErrInsufficientCredits = errors.New("market: insufficient campaign credits")
)
