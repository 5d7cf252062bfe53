package asset

import "errors"

var (
	// ErrInvalidBalance is returned for empty bundles, zero amounts, duplicate
	// entries, or bundles holding more than MaxAssets entries.
	ErrInvalidBalance = errors.New("invalid balance")

	// ErrRoyaltyCapExceeded is returned when the summed royalty rate of a
	// settlement side exceeds the configured cap.
	ErrRoyaltyCapExceeded = errors.New("royalty cap exceeded")
)
