package mathutil

import "math"

// LogZero represents log(0), used as negative infinity in log-domain arithmetic.
const LogZero = -1e30

// LogOne represents log(1). Adding it to a log probability leaves it unchanged.
const LogOne = 0.0

// LinearToLog converts a linear probability to the natural log domain.
// Non-positive values map to LogZero.
func LinearToLog(p float64) float64 {
	if p <= 0 {
		return LogZero
	}
	return math.Log(p)
}

// Log10ToLn converts a base-10 log value (as stored in ARPA files) to natural log.
func Log10ToLn(v float64) float64 {
	return v * math.Ln10
}

// IsLogZero reports whether v is at or below the LogZero floor.
func IsLogZero(v float64) bool {
	return v <= LogZero+1
}
