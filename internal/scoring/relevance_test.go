package scoring

import (
	"testing"
	"time"

	"github.com/ghi-core/backend/internal/storage/models"
)

var scoringNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func TestRelevanceTier1CriticalGCC(t *testing.T) {
	// Tier-1 handle, critical keyword + GCC location, near-zero engagement,
	// posted 30 minutes ago: 40 + 30 + ~0 + 10.
	post := PostInput{
		Content:  "Health alert: outbreak reported in Saudi Arabia",
		PostedAt: scoringNow.Add(-30 * time.Minute),
	}
	matched := Detect(post.Content)

	score := Relevance(post, TierOfficial, matched, scoringNow)
	if score < 80 || score > 84 {
		t.Errorf("expected score in [80,84], got %.2f", score)
	}
}

func TestRelevanceBounded(t *testing.T) {
	cases := []struct {
		name string
		post PostInput
		tier int
	}{
		{
			name: "maximal",
			post: PostInput{
				Content:    "outbreak deaths emergency MERS Saudi Arabia",
				Location:   "Riyadh, Saudi Arabia",
				Engagement: models.Engagement{Likes: 1_000_000, Reposts: 1_000_000, Replies: 1_000_000},
				PostedAt:   scoringNow.Add(-time.Minute),
			},
			tier: TierOfficial,
		},
		{
			name: "minimal",
			post: PostInput{
				Content:  "no relevant terms",
				PostedAt: scoringNow.Add(-48 * time.Hour),
			},
			tier: TierUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score := Relevance(tc.post, tc.tier, Detect(tc.post.Content), scoringNow)
			if score < 0 || score > 100 {
				t.Errorf("score out of bounds: %.2f", score)
			}
		})
	}
}

func TestRelevanceLocationFallback(t *testing.T) {
	// GCC term appears only in the declared location field, not as a
	// keyword match: 10 (tier3) + 20 (single condition) + 0 + 10.
	post := PostInput{
		Content:  "hospitals receiving many patients",
		Location: "Jeddah, Saudi Arabia",
		PostedAt: scoringNow.Add(-10 * time.Minute),
	}

	score := Relevance(post, TierUnknown, nil, scoringNow)
	if score != 40 {
		t.Errorf("expected 40, got %.2f", score)
	}
}

func TestRelevanceZeroEngagementSafe(t *testing.T) {
	post := PostInput{Content: "quiet post", PostedAt: scoringNow}

	score := Relevance(post, TierUnknown, nil, scoringNow)
	// 10 (tier3) + 0 (keywords) + 0 (engagement, log10(1)=0) + 10 (fresh).
	if score != 20 {
		t.Errorf("expected 20, got %.2f", score)
	}
}

func TestRecencyBuckets(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want int
	}{
		{30 * time.Minute, recencyScoreFresh},
		{3 * time.Hour, recencyScoreRecent},
		{12 * time.Hour, recencyScoreDay},
		{48 * time.Hour, recencyScoreStale},
	}

	for _, tc := range cases {
		got := recencyComponent(scoringNow.Add(-tc.age), scoringNow)
		if got != tc.want {
			t.Errorf("age %v: expected %d, got %d", tc.age, tc.want, got)
		}
	}
}

func TestEngagementCapped(t *testing.T) {
	e := models.Engagement{Likes: 10_000_000, Reposts: 10_000_000, Replies: 10_000_000}
	if got := engagementComponent(e); got != engagementScoreCap {
		t.Errorf("expected cap %d, got %.2f", engagementScoreCap, got)
	}
}

func TestDirectoryTiers(t *testing.T) {
	d := NewDirectory()

	if got := d.PriorityOf("@WHO"); got != TierOfficial {
		t.Errorf("expected tier 1 for @WHO, got %d", got)
	}
	if got := d.PriorityOf("@BogochIsaac"); got != TierExpert {
		t.Errorf("expected tier 2 for @BogochIsaac, got %d", got)
	}
	if got := d.PriorityOf("@nobody_in_particular"); got != TierUnknown {
		t.Errorf("expected tier 3 default, got %d", got)
	}
}

func TestDirectoryOverrides(t *testing.T) {
	d := NewDirectory()
	d.ApplyOverrides([]models.MonitoredAccount{
		{Handle: "@regional_desk", Priority: 1, IsActive: true},
		{Handle: "@WHO", Priority: 2, IsActive: true},
		{Handle: "@inactive", Priority: 1, IsActive: false},
	})

	if got := d.PriorityOf("@regional_desk"); got != TierOfficial {
		t.Errorf("override not applied: got %d", got)
	}
	if got := d.PriorityOf("@who"); got != TierExpert {
		t.Errorf("expected persisted row to demote @WHO, got %d", got)
	}
	if got := d.PriorityOf("@inactive"); got != TierUnknown {
		t.Errorf("inactive override should be ignored, got %d", got)
	}
}

func TestBeaconPriority(t *testing.T) {
	cases := []struct {
		name    string
		disease string
		country string
		cases_  int
		want    int
	}{
		{"baseline", "Measles", "France", 10, 50},
		{"mers in saudi", "MERS", "Saudi Arabia", 15, 100}, // 50+40+20 capped
		{"ebola", "Ebola", "DRC", 10, 80},
		{"yemen large", "Cholera", "Yemen", 127, 80}, // 50+20+10
		{"boosts stack and cap", "Ebola-MERS coinfection", "Saudi Arabia", 100, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BeaconPriority(tc.disease, tc.country, tc.cases_); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
