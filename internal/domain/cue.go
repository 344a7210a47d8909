package domain

type CueKind string

const (
	CueWarning CueKind = "warning"
	CueExpiry  CueKind = "expiry"
)

// CueFor maps a timer event to the audio cue it triggers. Speaker rollovers are silent.
func CueFor(event TimerEvent) (CueKind, bool) {
	switch event {
	case EventWarning:
		return CueWarning, true
	case EventExpired:
		return CueExpiry, true
	default:
		return "", false
	}
}
