package scoring

import (
	"strings"

	"github.com/ghi-core/backend/internal/storage/models"
)

// Account priority tiers. Tier 1 is official health authorities, tier 2 is
// known experts and influencers, tier 3 anything unrecognized.
const (
	TierOfficial = 1
	TierExpert   = 2
	TierUnknown  = 3
)

var defaultTier1 = []string{"@WHO", "@WHOEMRO", "@SaudiMOH", "@KSACDC", "@CDCgov", "@ProMED_mail"}
var defaultTier2 = []string{"@BogochIsaac", "@SaudiNews50", "@Eyaaaad", "@CollinRugg", "@ECDC_EU"}

// Directory maps a source handle to its priority tier. The built-in tiers
// can be overridden by persisted MonitoredAccount rows; unrecognized
// handles always fall back to tier 3.
type Directory struct {
	tiers map[string]int
}

func NewDirectory() *Directory {
	d := &Directory{tiers: make(map[string]int)}
	for _, h := range defaultTier1 {
		d.tiers[strings.ToLower(h)] = TierOfficial
	}
	for _, h := range defaultTier2 {
		d.tiers[strings.ToLower(h)] = TierExpert
	}
	return d
}

// ApplyOverrides layers persisted reference rows over the built-in tiers.
func (d *Directory) ApplyOverrides(accounts []models.MonitoredAccount) {
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		tier := a.Priority
		if tier < TierOfficial || tier > TierUnknown {
			tier = TierUnknown
		}
		d.tiers[strings.ToLower(a.Handle)] = tier
	}
}

// PriorityOf returns the tier for a handle, defaulting to TierUnknown.
func (d *Directory) PriorityOf(handle string) int {
	if tier, ok := d.tiers[strings.ToLower(handle)]; ok {
		return tier
	}
	return TierUnknown
}
