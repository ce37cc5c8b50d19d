package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dku-library/ticket-chat/internal/domain"
)

// Field length bounds, counted in Unicode code points.
const (
	TitleMinChars = 5
	TitleMaxChars = 120
	DescMinChars  = 15
)

// Rules bundles the pure field predicates. The institutional email domain
// is fixed per deployment, so it is bound at construction.
type Rules struct {
	emailDomain string
	emailRe     *regexp.Regexp
}

// NewRules builds validators for the given institutional email domain.
func NewRules(emailDomain string) *Rules {
	pattern := `(?i)^[A-Za-z0-9._%+-]+@` + regexp.QuoteMeta(emailDomain) + `$`
	return &Rules{
		emailDomain: emailDomain,
		emailRe:     regexp.MustCompile(pattern),
	}
}

// EmailDomain returns the configured institutional domain.
func (r *Rules) EmailDomain() string {
	return r.emailDomain
}

// ValidEmail reports whether the input is an institutional address.
func (r *Rules) ValidEmail(email string) bool {
	return r.emailRe.MatchString(strings.TrimSpace(email))
}

// CountChars counts Unicode code points, so multi-byte input is measured
// the way users perceive it.
func CountChars(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidTitle reports whether the trimmed title length is within bounds.
func ValidTitle(title string) bool {
	n := CountChars(strings.TrimSpace(title))
	return n >= TitleMinChars && n <= TitleMaxChars
}

// ValidDescription reports whether the trimmed description is long enough.
func ValidDescription(desc string) bool {
	return CountChars(strings.TrimSpace(desc)) >= DescMinChars
}

// PickOne matches trimmed input case-insensitively against a canonical
// list and returns the canonical spelling.
func PickOne(input string, allowed []string) (string, bool) {
	v := strings.TrimSpace(input)
	for _, canonical := range allowed {
		if strings.EqualFold(v, canonical) {
			return canonical, true
		}
	}
	return "", false
}

// ValidateDraft re-checks every field of a draft and returns the full list
// of error messages. Run at confirmation time even though each field was
// checked when entered: fields may have been populated out of order or
// tampered with between turns.
func (r *Rules) ValidateDraft(p domain.TicketDraft) []string {
	var errs []string

	if p.Email == "" || !r.ValidEmail(p.Email) {
		errs = append(errs, fmt.Sprintf("Email is required and must be @%s", r.emailDomain))
	}
	if p.Title == "" || !ValidTitle(p.Title) {
		errs = append(errs, fmt.Sprintf("Title is required and must be %d–%d characters", TitleMinChars, TitleMaxChars))
	}
	if _, ok := PickOne(p.System, domain.AllowedSystems); !ok {
		errs = append(errs, fmt.Sprintf("System must be one of: %s", strings.Join(domain.AllowedSystems, " / ")))
	}
	if p.Description == "" || !ValidDescription(p.Description) {
		errs = append(errs, fmt.Sprintf("Description is required and must be at least %d characters", DescMinChars))
	}
	if _, ok := PickOne(p.Urgency, domain.AllowedLevels); !ok {
		errs = append(errs, fmt.Sprintf("Urgency must be one of: %s", strings.Join(domain.AllowedLevels, " / ")))
	}
	if _, ok := PickOne(p.Impact, domain.AllowedLevels); !ok {
		errs = append(errs, fmt.Sprintf("Impact must be one of: %s", strings.Join(domain.AllowedLevels, " / ")))
	}
	return errs
}
