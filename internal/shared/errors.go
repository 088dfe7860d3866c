package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog errors
	ErrSongNotFound  = fmt.Errorf("song not found")
	ErrMissingTab    = fmt.Errorf("tab file not found")
	ErrInvalidTab    = fmt.Errorf("invalid tab manifest")
	ErrDuplicateSong = fmt.Errorf("song already exists")

	// Player errors
	ErrEngineUnavailable = fmt.Errorf("playback engine unavailable")
	ErrLoadTimeout       = fmt.Errorf("score loading timed out")
	ErrInvalidDataURI    = fmt.Errorf("invalid tab data URI")
	ErrAudioUnavailable  = fmt.Errorf("audio output unavailable")
	ErrSessionClosed     = fmt.Errorf("playback session closed")
	ErrNoScore           = fmt.Errorf("no score loaded")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
