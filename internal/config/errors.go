package config

import "errors"

// Sentinel kinds returned by Load and Validate.
var (
	ErrInvalidConfig = errors.New("invalid auctioneer config")
	ErrLoadConfig    = errors.New("load auctioneer config")
)
