package data

import "errors"

// Shared sentinel errors for data-layer repositories. Auth-facing
// repositories return the ports sentinels instead so adapters stay
// decoupled from this package.
var (
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrInventoryItemNotFound = errors.New("inventory item not found")
)
