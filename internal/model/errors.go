package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports malformed configuration such as a non-positive window.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInsufficientData reports fewer observations than a computation needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInsufficientOverlap reports a correlation pair with fewer than two common rows.
	ErrInsufficientOverlap = errors.New("insufficient overlap")
	// ErrMissingAssetData reports an asset without any usable observation.
	ErrMissingAssetData = errors.New("missing asset data")
)

// MissingAssetError names the asset that had no usable observations.
type MissingAssetError struct {
	AssetID string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("asset %q: %v", e.AssetID, ErrMissingAssetData)
}

func (e *MissingAssetError) Unwrap() error { return ErrMissingAssetData }
