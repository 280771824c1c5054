package social

import (
	"context"
	"time"

	"github.com/ghi-core/backend/internal/storage/models"
)

// MockSource emits a fixed set of posts with timestamps relative to its
// clock. It stands in for the platform API in development and tests; stable
// post ids keep repeated polls idempotent.
type MockSource struct {
	now func() time.Time
}

func NewMockSource() *MockSource {
	return &MockSource{now: time.Now}
}

// WithClock fixes the source's clock. Test hook.
func (m *MockSource) WithClock(now func() time.Time) *MockSource {
	m.now = now
	return m
}

func (m *MockSource) NextBatch(ctx context.Context) ([]Candidate, error) {
	now := m.now()

	return []Candidate{
		{
			PostID:       "mock_1",
			Platform:     "twitter",
			Author:       "Saudi Ministry of Health",
			AuthorHandle: "@SaudiMOH",
			Content:      "⚠️ تنبيه صحي: تسجيل 15 حالة إصابة بإنفلونزا الطيور (H5N1) في المنطقة الشرقية. الوضع تحت المراقبة المستمرة. جميع الإجراءات الوقائية مفعلة.",
			Language:     "ar",
			Location:     "Riyadh, Saudi Arabia",
			Hashtags:     []string{"صحة", "إنفلونزا_الطيور", "الصحة_العامة"},
			Mentions:     []string{"@KSACDC"},
			URLs:         []string{"https://moh.gov.sa/avian-flu-alert"},
			Engagement:   models.Engagement{Likes: 1247, Reposts: 892, Replies: 234},
			PostedAt:     now.Add(-2 * time.Hour),
		},
		{
			PostID:       "mock_2",
			Platform:     "twitter",
			Author:       "WHO EMRO",
			AuthorHandle: "@WHOEMRO",
			Content:      "WHO Eastern Mediterranean Regional Office monitoring cholera outbreak in Yemen (127 confirmed cases, 8 deaths). Enhanced surveillance advised for neighboring GCC states due to risk of cross-border transmission. Full report: [link]",
			Language:     "en",
			Location:     "Cairo, Egypt",
			Hashtags:     []string{"cholera", "Yemen", "PublicHealth", "EMRO"},
			Mentions:     []string{"@WHO", "@UNYemen"},
			URLs:         []string{"https://who.int/emro/cholera-yemen-2026"},
			Engagement:   models.Engagement{Likes: 2341, Reposts: 1567, Replies: 445},
			PostedAt:     now.Add(-5 * time.Hour),
		},
		{
			PostID:       "mock_3",
			Platform:     "twitter",
			Author:       "Isaac Bogoch",
			AuthorHandle: "@BogochIsaac",
			Content:      "Concerning trend: MERS-CoV cases increasing in Saudi Arabia this Hajj season. Genomic sequencing reveals new variant with enhanced transmissibility. Healthcare facilities on high alert. Thread 🧵",
			Language:     "en",
			Location:     "Toronto, Canada",
			Hashtags:     []string{"MERS", "SaudiArabia", "Hajj2026", "InfectiousDiseases"},
			Mentions:     []string{"@SaudiMOH", "@WHO"},
			URLs:         []string{},
			Engagement:   models.Engagement{Likes: 4532, Reposts: 2891, Replies: 1023},
			PostedAt:     now.Add(-8 * time.Hour),
		},
		{
			PostID:       "mock_4",
			Platform:     "twitter",
			Author:       "Eyad Qurabi",
			AuthorHandle: "@Eyaaaad",
			Content:      "🚨 Breaking: Reports of dengue fever outbreak in Jeddah. Local hospitals receiving unusually high number of cases. Ministry of Health yet to release official statement. Stay vigilant. #السعودية #صحة",
			Language:     "en",
			Location:     "Jeddah, Saudi Arabia",
			Hashtags:     []string{"السعودية", "صحة", "DengueFever", "Jeddah"},
			Mentions:     []string{"@SaudiMOH"},
			URLs:         []string{},
			Engagement:   models.Engagement{Likes: 892, Reposts: 445, Replies: 178},
			PostedAt:     now.Add(-3 * time.Hour),
		},
		{
			PostID:       "mock_5",
			Platform:     "twitter",
			Author:       "Saudi News 50",
			AuthorHandle: "@SaudiNews50",
			Content:      "عاجل | وزارة الصحة تطلق حملة تطعيم طارئة ضد الحصبة في منطقة مكة المكرمة بعد تسجيل 23 حالة خلال الأسبوع الماضي. الحملة تستهدف 50000 شخص.",
			Language:     "ar",
			Location:     "Mecca, Saudi Arabia",
			Hashtags:     []string{"عاجل", "السعودية", "تطعيم", "الحصبة"},
			Mentions:     []string{"@SaudiMOH"},
			URLs:         []string{"https://saudinews50.com/measles-campaign"},
			Engagement:   models.Engagement{Likes: 1567, Reposts: 934, Replies: 289},
			PostedAt:     now.Add(-1 * time.Hour),
		},
		{
			PostID:       "mock_6",
			Platform:     "twitter",
			Author:       "CDC",
			AuthorHandle: "@CDCgov",
			Content:      "CDC monitoring avian influenza A(H5N1) activity globally. Recent detections in poultry farms across Middle East region. Risk to general public remains low but vigilance advised for those with occupational exposure.",
			Language:     "en",
			Location:     "Atlanta, USA",
			Hashtags:     []string{"H5N1", "AvianFlu", "PublicHealth"},
			Mentions:     []string{"@WHO"},
			URLs:         []string{"https://cdc.gov/h5n1-update"},
			Engagement:   models.Engagement{Likes: 3421, Reposts: 2134, Replies: 567},
			PostedAt:     now.Add(-12 * time.Hour),
		},
		{
			PostID:       "mock_7",
			Platform:     "twitter",
			Author:       "Collin Rugg",
			AuthorHandle: "@CollinRugg",
			Content:      "BREAKING: New respiratory illness spreading rapidly in East Asia. Hospitals overwhelmed. WHO calling emergency meeting. This could be serious. 🚨",
			Language:     "en",
			Location:     "United States",
			Hashtags:     []string{"Breaking", "WHO", "HealthAlert"},
			Mentions:     []string{"@WHO"},
			URLs:         []string{},
			Engagement:   models.Engagement{Likes: 8934, Reposts: 5621, Replies: 2341},
			PostedAt:     now.Add(-6 * time.Hour),
		},
		{
			PostID:       "mock_8",
			Platform:     "twitter",
			Author:       "ProMED",
			AuthorHandle: "@ProMED_mail",
			Content:      "PRO/AH/EDR> Cholera - Yemen (03): (multiple provinces) WHO, spread, RFI\nA cholera outbreak continues in Yemen with 127 confirmed cases and 8 deaths reported. Geographic spread raises regional concerns.",
			Language:     "en",
			Location:     "Global",
			Hashtags:     []string{"ProMED", "Cholera", "Yemen", "OutbreakAlert"},
			Mentions:     []string{"@WHO", "@WHOEMRO"},
			URLs:         []string{"https://promedmail.org/cholera-yemen-03"},
			Engagement:   models.Engagement{Likes: 1892, Reposts: 1234, Replies: 345},
			PostedAt:     now.Add(-4 * time.Hour),
		},
	}, nil
}
