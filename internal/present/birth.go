package present

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Birth is what ParseBirth recovers from the free-text extra field.
type Birth struct {
	DOB    string   `json:"dob,omitempty"`
	Extras []string `json:"extras"`
}

var monthNumbers = map[string]int{
	"gennaio": 1, "febbraio": 2, "marzo": 3, "aprile": 4, "maggio": 5, "giugno": 6,
	"luglio": 7, "agosto": 8, "settembre": 9, "ottobre": 10, "novembre": 11, "dicembre": 12,
	"gen": 1, "feb": 2, "mar": 3, "apr": 4, "mag": 5, "giu": 6,
	"lug": 7, "ago": 8, "set": 9, "ott": 10, "nov": 11, "dic": 12,
}

var (
	dayFirstDate  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	yearFirstDate = regexp.MustCompile(`\b((?:19|20)\d{2})[/-](\d{1,2})[/-](\d{1,2})\b`)
	anyNumDate    = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{4})|(19|20)\d{2}[/-]\d{1,2}[/-]\d{1,2}`)
	textualDate   = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` +
		`gennaio|febbraio|marzo|aprile|maggio|giugno|luglio|agosto|settembre|ottobre|novembre|dicembre|` +
		`gen|feb|mar|apr|mag|giu|lug|ago|set|ott|nov|dic)\s+(\d{4})\b`)
)

// ParseBirth splits the colon-separated extra field into tokens and pulls
// out a date of birth, formatted dd/mm/yyyy, when one can be recognised.
// Tokens that hold a numeric date are dropped from Extras once a DOB is
// found.
func ParseBirth(extra string) Birth {
	if extra == "" {
		return Birth{Extras: []string{}}
	}

	var tokens []string
	for _, t := range strings.Split(extra, ":") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}

	joined := strings.Join(tokens, " ")
	dob := numericDate(joined)
	if dob == "" {
		dob = textDate(joined)
	}

	extras := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if dob != "" && (strings.Contains(t, dob) || anyNumDate.MatchString(t)) {
			continue
		}
		extras = append(extras, t)
	}
	return Birth{DOB: dob, Extras: extras}
}

func numericDate(s string) string {
	if m := dayFirstDate.FindStringSubmatch(s); m != nil {
		d, mo, y := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if validDate(d, mo, y) {
			return formatDate(d, mo, y)
		}
	}
	if m := yearFirstDate.FindStringSubmatch(s); m != nil {
		y, mo, d := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if validDate(d, mo, y) {
			return formatDate(d, mo, y)
		}
	}
	return ""
}

func textDate(s string) string {
	m := textualDate.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	d, y := atoi(m[1]), atoi(m[3])
	mo := monthNumbers[strings.ToLower(m[2])]
	if !validDate(d, mo, y) {
		return ""
	}
	return formatDate(d, mo, y)
}

func validDate(d, m, y int) bool {
	return y >= 1900 && y <= 2025 && d >= 1 && d <= 31 && m >= 1 && m <= 12
}

func formatDate(d, m, y int) string {
	return fmt.Sprintf("%02d/%02d/%d", d, m, y)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
