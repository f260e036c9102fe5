package voice

import (
	"errors"
	"fmt"
)

// Error taxonomy for the extraction pipeline. Input-quality errors mean the
// user should re-record; conversion errors are fatal for the request and only
// a different file can fix them.

// ShortDurationError reports a recording below the minimum analyzable length.
type ShortDurationError struct {
	Duration float64
}

func (e *ShortDurationError) Error() string {
	return fmt.Sprintf("audio too short (%.1fs): minimum 3 seconds required", e.Duration)
}

// InsufficientVoicingError reports that pitch tracking found too few voiced
// frames to measure perturbation reliably.
type InsufficientVoicingError struct {
	VoicedFrames int
}

func (e *InsufficientVoicingError) Error() string {
	return fmt.Sprintf("insufficient voiced segments (%d voiced frames): speak clearly and avoid background noise", e.VoicedFrames)
}

// ConversionError reports that neither the ffmpeg path nor the native reader
// could decode the input.
type ConversionError struct {
	Cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert audio to WAV: %v", e.Cause)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// IsInputQualityError reports whether the error is recoverable by the end
// user re-recording (as opposed to a conversion or internal failure).
func IsInputQualityError(err error) bool {
	var short *ShortDurationError
	var voicing *InsufficientVoicingError
	return errors.As(err, &short) || errors.As(err, &voicing)
}
