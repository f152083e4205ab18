package zone

import "fmt"

// Activity is an integer enum of typical occupant activities.
type Activity int

const (
	ActivityUnknown Activity = iota
	ActivityReclining
	ActivitySeated
	ActivitySedentary
	ActivityStanding
	ActivityWalking
	// ActivityCustom marks a metabolic rate set directly.
	ActivityCustom
)

func (a Activity) Valid() bool {
	return a >= ActivityReclining && a <= ActivityCustom
}

func (a Activity) String() string {
	switch a {
	case ActivityReclining:
		return "reclining"
	case ActivitySeated:
		return "seated"
	case ActivitySedentary:
		return "sedentary"
	case ActivityStanding:
		return "standing"
	case ActivityWalking:
		return "walking"
	case ActivityCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// MetabolicRate returns the metabolic rate in met of the activity (ISO 7730
// table B.1), or 0 for custom and unknown activities.
func (a Activity) MetabolicRate() float64 {
	switch a {
	case ActivityReclining:
		return 0.8
	case ActivitySeated:
		return 1.0
	case ActivitySedentary:
		return 1.2
	case ActivityStanding:
		return 1.6
	case ActivityWalking:
		return 1.9
	default:
		return 0
	}
}

func ParseActivity(s string) (Activity, error) {
	switch s {
	case "reclining":
		return ActivityReclining, nil
	case "seated":
		return ActivitySeated, nil
	case "sedentary":
		return ActivitySedentary, nil
	case "standing":
		return ActivityStanding, nil
	case "walking":
		return ActivityWalking, nil
	case "custom":
		return ActivityCustom, nil
	default:
		return ActivityUnknown, fmt.Errorf("invalid activity: %q", s)
	}
}
