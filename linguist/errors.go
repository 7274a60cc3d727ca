package linguist

import "errors"

var (
	// ErrMissingContext is returned when the acoustic model cannot supply
	// the HMM for a (base, left, right, position) request.
	ErrMissingContext = errors.New("missing context-dependent model")

	// ErrMalformedPronunciation is returned for a word without
	// pronunciations or a pronunciation without units.
	ErrMalformedPronunciation = errors.New("malformed pronunciation")

	// ErrUnknownWord is returned when a required word cannot be resolved
	// by the dictionary.
	ErrUnknownWord = errors.New("unknown word")

	// ErrNoEntryPoint is returned when a pronunciation starts with a unit
	// that has no entry point.
	ErrNoEntryPoint = errors.New("no entry point")
)
