package launchpad

import "errors"

// Trade-path errors. All are returned before any state is mutated.
var (
	ErrUnknownAsset     = errors.New("launchpad: unknown asset")
	ErrInvalidAmount    = errors.New("launchpad: invalid amount")
	ErrDeadlineExceeded = errors.New("launchpad: deadline exceeded")
	ErrSlippageExceeded = errors.New("launchpad: slippage exceeded")
	ErrAlreadyGraduated = errors.New("launchpad: asset already graduated")
	// ErrExcessCapExceeded rejects a buy whose net amount would push the
	// collected reserves past threshold+excessCap. The whole trade fails, it
	// is never partially filled.
	ErrExcessCapExceeded   = errors.New("launchpad: buy exceeds graduation excess cap")
	ErrInsufficientBalance = errors.New("launchpad: insufficient token balance")
)

// Admin/issuance errors.
var (
	ErrInvalidConfig        = errors.New("launchpad: invalid asset config")
	ErrFeeOutOfRange        = errors.New("launchpad: fee basis points out of range")
	ErrZeroThreshold        = errors.New("launchpad: graduation threshold must be positive")
	ErrUnknownCurve         = errors.New("launchpad: curve not registered")
	ErrUnknownStrategy      = errors.New("launchpad: strategy not registered")
	ErrPairNotAllowed       = errors.New("launchpad: curve/strategy pair not whitelisted")
	ErrAlreadyRegistered    = errors.New("launchpad: already registered")
	ErrInsufficientTreasury = errors.New("launchpad: insufficient treasury balance")
)
