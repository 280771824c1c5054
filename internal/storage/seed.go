package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghi-core/backend/internal/storage/models"
)

// SeedReferenceData upserts the monitored-account tiers and the bilingual
// listener keyword list so a fresh deployment starts with the same
// reference data the scorers assume. Upserts keep reseeding idempotent.
func SeedReferenceData(ctx context.Context, store Store) error {
	accounts := []models.MonitoredAccount{
		{Handle: "@WHO", Name: "World Health Organization", AccountType: "official", Region: "Global", Priority: 1},
		{Handle: "@WHOEMRO", Name: "WHO Eastern Mediterranean", AccountType: "official", Region: "EMRO", Priority: 1},
		{Handle: "@SaudiMOH", Name: "Saudi Ministry of Health", AccountType: "official", Region: "Saudi Arabia", Priority: 1},
		{Handle: "@KSACDC", Name: "Saudi CDC", AccountType: "official", Region: "Saudi Arabia", Priority: 1},
		{Handle: "@CDCgov", Name: "US CDC", AccountType: "official", Region: "USA", Priority: 1},
		{Handle: "@ProMED_mail", Name: "ProMED", AccountType: "official", Region: "Global", Priority: 1},
		{Handle: "@BogochIsaac", Name: "Isaac Bogoch", AccountType: "expert", Region: "Global", Priority: 2},
		{Handle: "@SaudiNews50", Name: "Saudi News 50", AccountType: "media", Region: "Saudi Arabia", Priority: 2},
		{Handle: "@Eyaaaad", Name: "Eyad Qurabi", AccountType: "influencer", Region: "Saudi Arabia", Priority: 2},
		{Handle: "@CollinRugg", Name: "Collin Rugg", AccountType: "influencer", Region: "USA", Priority: 2},
		{Handle: "@ECDC_EU", Name: "European CDC", AccountType: "expert", Region: "EU", Priority: 2},
	}

	for i := range accounts {
		a := accounts[i]
		a.ID = uuid.NewString()
		a.Platform = "twitter"
		a.IsActive = true
		if err := store.UpsertMonitoredAccount(ctx, &a); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", a.Handle, err)
		}
	}

	keywords := []models.ListenerKeyword{
		{Keyword: "outbreak", Category: "severity", Language: "en", Priority: 1},
		{Keyword: "epidemic", Category: "severity", Language: "en", Priority: 1},
		{Keyword: "pandemic", Category: "severity", Language: "en", Priority: 1},
		{Keyword: "emergency", Category: "severity", Language: "en", Priority: 1},
		{Keyword: "alert", Category: "severity", Language: "en", Priority: 2},
		{Keyword: "deaths", Category: "severity", Language: "en", Priority: 1},
		{Keyword: "cases", Category: "severity", Language: "en", Priority: 2},
		{Keyword: "H5N1", Category: "disease", Language: "en", Priority: 1},
		{Keyword: "MERS", Category: "disease", Language: "en", Priority: 1},
		{Keyword: "cholera", Category: "disease", Language: "en", Priority: 1},
		{Keyword: "dengue", Category: "disease", Language: "en", Priority: 2},
		{Keyword: "measles", Category: "disease", Language: "en", Priority: 2},
		{Keyword: "Saudi Arabia", Category: "location", Language: "en", Priority: 1},
		{Keyword: "GCC", Category: "location", Language: "en", Priority: 1},
		{Keyword: "Yemen", Category: "location", Language: "en", Priority: 2},
		{Keyword: "Hajj", Category: "location", Language: "en", Priority: 1},
		{Keyword: "تفشي", Category: "severity", Language: "ar", Priority: 1},
		{Keyword: "وباء", Category: "severity", Language: "ar", Priority: 1},
		{Keyword: "جائحة", Category: "severity", Language: "ar", Priority: 1},
		{Keyword: "وفيات", Category: "severity", Language: "ar", Priority: 1},
		{Keyword: "حالات", Category: "severity", Language: "ar", Priority: 2},
		{Keyword: "السعودية", Category: "location", Language: "ar", Priority: 1},
		{Keyword: "طوارئ", Category: "severity", Language: "ar", Priority: 1},
		{Keyword: "تنبيه", Category: "severity", Language: "ar", Priority: 2},
	}

	for i := range keywords {
		k := keywords[i]
		k.ID = uuid.NewString()
		k.IsActive = true
		if err := store.UpsertListenerKeyword(ctx, &k); err != nil {
			return fmt.Errorf("failed to seed keyword %q: %w", k.Keyword, err)
		}
	}

	return nil
}
