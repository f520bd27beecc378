package leaderboard

import "github.com/MikeSquared-Agency/Aegis/internal/store"

// FrontierPoint is a safeguard's position in detection space.
type FrontierPoint struct {
	Safeguard               string  `json:"safeguard"`
	DetectionAdversarial    float64 `json:"detection_adversarial"`
	DetectionNonAdversarial float64 `json:"detection_non_adversarial"`
	FalsePositiveRate       float64 `json:"false_positive_rate"` // lower is better
}

// Frontier returns the safeguards no other safeguard dominates, in catalog
// order. O(n^2), catalogs are small.
func Frontier(catalog []store.Safeguard) []FrontierPoint {
	points := make([]FrontierPoint, len(catalog))
	for i, sg := range catalog {
		points[i] = FrontierPoint{
			Safeguard:               sg.Name,
			DetectionAdversarial:    sg.DetectionAdversarial,
			DetectionNonAdversarial: sg.DetectionNonAdversarial,
			FalsePositiveRate:       sg.FalsePositiveRate,
		}
	}

	frontier := make([]FrontierPoint, 0, len(points))
	for i := range points {
		dominated := false
		for j := range points {
			if i != j && dominates(points[j], points[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, points[i])
		}
	}
	return frontier
}

// dominates reports whether a is at least as good as b everywhere and
// strictly better somewhere.
func dominates(a, b FrontierPoint) bool {
	if a.DetectionAdversarial < b.DetectionAdversarial ||
		a.DetectionNonAdversarial < b.DetectionNonAdversarial ||
		a.FalsePositiveRate > b.FalsePositiveRate {
		return false
	}
	return a.DetectionAdversarial > b.DetectionAdversarial ||
		a.DetectionNonAdversarial > b.DetectionNonAdversarial ||
		a.FalsePositiveRate < b.FalsePositiveRate
}
