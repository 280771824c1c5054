package scoring

import "strings"

// Beacon priority weights. Disease boosts stack; the total is capped.
const (
	priorityBase       = 50
	priorityEbolaBoost = 30
	priorityMERSBoost  = 40
	priorityRegionBoost = 20 // Saudi Arabia or Yemen
	priorityCaseBoost  = 10  // case count above threshold
	priorityCaseThreshold = 50
	priorityCap        = 100
)

// BeaconPriority scores a parsed beacon event 0-100.
func BeaconPriority(disease, country string, cases int) int {
	score := priorityBase

	d := strings.ToLower(disease)
	if strings.Contains(d, "ebola") {
		score += priorityEbolaBoost
	}
	if strings.Contains(d, "mers") {
		score += priorityMERSBoost
	}

	c := strings.ToLower(country)
	if strings.Contains(c, "saudi") || strings.Contains(c, "yemen") {
		score += priorityRegionBoost
	}

	if cases > priorityCaseThreshold {
		score += priorityCaseBoost
	}

	if score > priorityCap {
		score = priorityCap
	}
	return score
}
