package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/ghi-core/backend/internal/storage/models"
)

// Relevance weights. The four components are independent, summed, and
// capped at 100; each constant is the ceiling of its component.
const (
	accountScoreTier1 = 40
	accountScoreTier2 = 25
	accountScoreTier3 = 10

	keywordScoreCriticalAndGCC = 30 // critical keyword AND a GCC location term
	keywordScoreSingle         = 20 // exactly one of the two conditions
	keywordScoreAny            = 10 // matched something, neither condition

	engagementScoreCap    = 20
	engagementLogMultiple = 4

	recencyScoreFresh = 10 // age <= 1h
	recencyScoreRecent = 7 // age <= 6h
	recencyScoreDay    = 5 // age <= 24h
	recencyScoreStale  = 2
)

// Critical subset of the watch list: terms that on their own indicate a
// high-signal post.
var criticalKeywords = []string{
	"outbreak", "emergency", "deaths", "alert", "H5N1", "MERS", "cholera",
	"تفشي", "وباء", "وفيات",
}

// GCC location terms, used both for keyword-level matches and for the raw
// substring fallback against content and the declared location field.
var gccLocations = []string{
	"Saudi Arabia", "UAE", "Qatar", "Kuwait", "Bahrain", "Oman", "GCC",
	"السعودية", "الخليج",
}

// PostInput is the slice of a social post the scorer reads. It is plain
// data so the function stays pure and unit-testable with a fixed now.
type PostInput struct {
	Content    string
	Location   string
	Engagement models.Engagement
	PostedAt   time.Time
}

// Relevance combines account tier, keyword matches, engagement volume, and
// recency into a bounded 0-100 score rounded to two decimals.
func Relevance(post PostInput, tier int, matchedKeywords []string, now time.Time) float64 {
	accountScore := accountScoreTier3
	switch tier {
	case TierOfficial:
		accountScore = accountScoreTier1
	case TierExpert:
		accountScore = accountScoreTier2
	}

	keywordScore := keywordComponent(post, matchedKeywords)
	engagementScore := engagementComponent(post.Engagement)
	recencyScore := recencyComponent(post.PostedAt, now)

	total := float64(accountScore+keywordScore+recencyScore) + engagementScore
	if total > 100 {
		total = 100
	}
	return math.Round(total*100) / 100
}

func keywordComponent(post PostInput, matched []string) int {
	hasCritical := containsAny(matched, criticalKeywords)

	hasGCC := containsAny(matched, gccLocations)
	if !hasGCC {
		// Fallback: the location terms may appear verbatim even when the
		// keyword-level match missed them.
		for _, loc := range gccLocations {
			if strings.Contains(post.Content, loc) || strings.Contains(post.Location, loc) {
				hasGCC = true
				break
			}
		}
	}

	switch {
	case hasCritical && hasGCC:
		return keywordScoreCriticalAndGCC
	case hasCritical || hasGCC:
		return keywordScoreSingle
	case len(matched) > 0:
		return keywordScoreAny
	default:
		return 0
	}
}

func engagementComponent(e models.Engagement) float64 {
	// +1 inside the log keeps zero engagement out of the domain error.
	total := float64(e.Likes + 2*e.Reposts + e.Replies)
	score := math.Log10(total+1) * engagementLogMultiple
	return math.Min(engagementScoreCap, score)
}

func recencyComponent(postedAt, now time.Time) int {
	age := now.Sub(postedAt)
	switch {
	case age <= time.Hour:
		return recencyScoreFresh
	case age <= 6*time.Hour:
		return recencyScoreRecent
	case age <= 24*time.Hour:
		return recencyScoreDay
	default:
		return recencyScoreStale
	}
}

func containsAny(haystack, needles []string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if strings.EqualFold(h, n) {
				return true
			}
		}
	}
	return false
}
