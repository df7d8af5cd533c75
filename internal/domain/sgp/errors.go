package sgp

import "errors"

// Sentinel kinds for calibration and conversion errors.
var (
	// ErrCalibration means no season produced a usable denominator for a
	// category. It is fatal for the run.
	ErrCalibration      = errors.New("sgp calibration failed")
	ErrNoStandings      = errors.New("no usable historical standings")
	ErrInvalidStandings = errors.New("invalid standings table")
)
