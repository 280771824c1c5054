package scoring

import "testing"

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestDetectEnglish(t *testing.T) {
	matched := Detect("Reports of an outbreak near Riyadh, Saudi Arabia with 12 deaths")

	for _, want := range []string{"outbreak", "Saudi Arabia", "deaths"} {
		if !contains(matched, want) {
			t.Errorf("expected %q in matches, got %v", want, matched)
		}
	}
}

func TestDetectCaseInsensitive(t *testing.T) {
	matched := Detect("OUTBREAK confirmed, mers suspected")

	if !contains(matched, "outbreak") {
		t.Errorf("expected case-insensitive match for outbreak, got %v", matched)
	}
	if !contains(matched, "MERS") {
		t.Errorf("expected case-insensitive match for MERS, got %v", matched)
	}
}

func TestDetectArabic(t *testing.T) {
	matched := Detect("تنبيه صحي: تفشي وباء في السعودية")

	for _, want := range []string{"تفشي", "وباء", "السعودية", "تنبيه"} {
		if !contains(matched, want) {
			t.Errorf("expected %q in matches, got %v", want, matched)
		}
	}
}

func TestDetectNoMatch(t *testing.T) {
	if matched := Detect("nothing to see here"); len(matched) != 0 {
		t.Errorf("expected no matches, got %v", matched)
	}
}

func TestDetectDistinct(t *testing.T) {
	matched := Detect("outbreak outbreak outbreak")

	count := 0
	for _, m := range matched {
		if m == "outbreak" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected a single distinct match, got %d", count)
	}
}
