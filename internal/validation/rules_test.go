package validation

import (
	"strings"
	"testing"

	"github.com/dku-library/ticket-chat/internal/domain"
)

func TestValidEmail(t *testing.T) {
	rules := NewRules("dukekunshan.edu.cn")

	valid := []string{
		"a@dukekunshan.edu.cn",
		"First.Last@dukekunshan.edu.cn",
		"user_name%tag+x@DUKEKUNSHAN.EDU.CN",
		"  padded@dukekunshan.edu.cn  ",
	}
	for _, email := range valid {
		if !rules.ValidEmail(email) {
			t.Fatalf("expected %q to be valid", email)
		}
	}

	invalid := []string{
		"",
		"a@gmail.com",
		"a@sub.dukekunshan.edu.cn",
		"a@dukekunshanXedu.cn",
		"no-at-sign.dukekunshan.edu.cn",
		"bad char@dukekunshan.edu.cn",
	}
	for _, email := range invalid {
		if rules.ValidEmail(email) {
			t.Fatalf("expected %q to be invalid", email)
		}
	}
}

func TestTitleBoundsCountCodePoints(t *testing.T) {
	// Each of these characters is multiple bytes in UTF-8; bounds must be
	// enforced on code points, not encoded length.
	if ValidTitle(strings.Repeat("图", 4)) {
		t.Fatalf("4 code points should be rejected")
	}
	if !ValidTitle(strings.Repeat("图", 5)) {
		t.Fatalf("5 code points should be accepted")
	}
	if !ValidTitle(strings.Repeat("图", 120)) {
		t.Fatalf("120 code points should be accepted")
	}
	if ValidTitle(strings.Repeat("图", 121)) {
		t.Fatalf("121 code points should be rejected")
	}
	if ValidTitle("   hi   ") {
		t.Fatalf("length must be measured after trimming")
	}
}

func TestDescriptionBound(t *testing.T) {
	if ValidDescription(strings.Repeat("ü", 14)) {
		t.Fatalf("14 code points should be rejected")
	}
	if !ValidDescription(strings.Repeat("ü", 15)) {
		t.Fatalf("15 code points should be accepted")
	}
}

func TestPickOneCanonicalizes(t *testing.T) {
	cases := map[string]string{
		"Summon":   "Summon",
		"SUMMON":   "Summon",
		" summon ": "Summon",
		"atom":     "AtoM",
		"rfid":     "RFID",
	}
	for input, want := range cases {
		got, ok := PickOne(input, domain.AllowedSystems)
		if !ok || got != want {
			t.Fatalf("PickOne(%q) = %q, %v; want %q", input, got, ok, want)
		}
	}

	for _, input := range []string{"", "Summons", "Alma2", "medium"} {
		if got, ok := PickOne(input, domain.AllowedSystems); ok {
			t.Fatalf("PickOne(%q) unexpectedly matched %q", input, got)
		}
	}
}

func TestValidateDraftAggregatesErrors(t *testing.T) {
	rules := NewRules("dukekunshan.edu.cn")

	errs := rules.ValidateDraft(domain.TicketDraft{})
	if len(errs) != 6 {
		t.Fatalf("empty draft should fail all six checks, got %d: %v", len(errs), errs)
	}

	draft := domain.TicketDraft{
		Email:       "a@dukekunshan.edu.cn",
		Title:       "Summon page broken",
		System:      "FaxMachine",
		Description: "steps, expected result, actual result",
		Urgency:     "Medium",
		Impact:      "Medium",
	}
	errs = rules.ValidateDraft(draft)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if !strings.Contains(errs[0], "System must be one of") {
		t.Fatalf("unexpected error message: %s", errs[0])
	}

	draft.System = "Summon"
	if errs := rules.ValidateDraft(draft); len(errs) != 0 {
		t.Fatalf("valid draft should pass, got %v", errs)
	}
}
