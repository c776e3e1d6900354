package walkcover

// Verdict is outcome of classifying single candidate segment
type Verdict uint16

const (
	VERDICT_WALK = Verdict(iota + 1)
	VERDICT_DISCARDED
	VERDICT_UNDEFINED = Verdict(0)
)

func (iotaIdx Verdict) String() string {
	return [...]string{"undefined", "walk", "discarded"}[iotaIdx]
}

// DiscardReason explains why candidate segment has not been accepted as walk
type DiscardReason uint16

const (
	DISCARD_NONE = DiscardReason(iota + 1)
	DISCARD_STATIONARY
	DISCARD_TOO_SHORT
	DISCARD_TOO_FAST
	DISCARD_TOO_SLOW
	DISCARD_TOO_SINUOUS
	DISCARD_UNDEFINED = DiscardReason(0)
)

func (iotaIdx DiscardReason) String() string {
	return [...]string{"undefined", "none", "stationary", "too_short", "transit_speed", "too_slow", "too_sinuous"}[iotaIdx]
}
