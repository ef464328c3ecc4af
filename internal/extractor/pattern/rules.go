package pattern

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"

	"voxform/internal/validator"
)

// name stops before a following email/phone clause, a conjunction or punctuation.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bmy name is ([a-z\s]+?)(?:\s+email|\s+phone|\s+and\s|\s+i\s|\s*[,.;!?]|$)`),
	regexp.MustCompile(`\bi'm ([a-z\s]+?)(?:\s+email|\s+phone|\s+and\s|\s+my\s|\s*[,.;!?]|$)`),
	regexp.MustCompile(`\bi am ([a-z\s]+?)(?:\s+email|\s+phone|\s+and\s|\s+my\s|\s*[,.;!?]|$)`),
	regexp.MustCompile(`\bname\s*:\s*([a-z\s]+?)(?:\s+email|\s+phone|\s*[,.;!?]|$)`),
	regexp.MustCompile(`\bmy name is ([a-z\s]+)`),
}

func findName(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return validator.TitleCase(v), true
		}
	}
	return "", false
}

var (
	spokenDotRe    = regexp.MustCompile(`\s+dot\s+`)
	spokenAdRe     = regexp.MustCompile(`\b([a-z0-9._%+\-]+)\s+ad\s+([a-z][a-z0-9\-]*\.com)\b`)
	standardMailRe = regexp.MustCompile(`\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	spokenMailRe   = regexp.MustCompile(`\b([a-z0-9._%+\-]+)\s+at\s+([a-z][a-z0-9.\-]*)`)
)

// Words that precede "at" in ordinary speech ("I live at", "email at").
var fillerLocalParts = map[string]bool{
	"is": true, "live": true, "me": true, "am": true, "be": true, "at": true,
	"email": true, "are": true, "was": true,
}

var knownMailDomains = []string{
	"gmail.com", "yahoo.com", "outlook.com", "hotmail.com", "icloud.com", "aol.com", "protonmail.com",
}

const domainSimilarity = 0.9

func findEmail(text string) (string, bool) {
	s := strings.ToLower(text)
	s = spokenDotRe.ReplaceAllString(s, ".")
	s = spokenAdRe.ReplaceAllString(s, "$1@$2")

	if m := standardMailRe.FindString(s); m != "" {
		local, domain, _ := strings.Cut(m, "@")
		return local + "@" + correctDomain(domain), true
	}

	for _, m := range spokenMailRe.FindAllStringSubmatch(s, -1) {
		local, domain := m[1], strings.TrimRight(m[2], ".-")
		if fillerLocalParts[local] || domain == "" {
			continue
		}
		if !strings.Contains(domain, ".") {
			domain += ".com"
		}
		return local + "@" + correctDomain(domain), true
	}
	return "", false
}

// correctDomain snaps near-misses of well-known mail providers ("gmial.com") to the real domain.
func correctDomain(domain string) string {
	best, bestScore := domain, 0.0
	for _, known := range knownMailDomains {
		if domain == known {
			return domain
		}
		if score := matchr.JaroWinkler(domain, known, false); score > bestScore {
			best, bestScore = known, score
		}
	}
	if bestScore >= domainSimilarity {
		return best
	}
	return domain
}

var (
	digitWordRe = regexp.MustCompile(`\b(zero|oh|one|two|three|four|five|six|seven|eight|nine)\b`)
	digitRunRe  = regexp.MustCompile(`\b\d(?:\s+\d\b)+`)
	nonDigitRe  = regexp.MustCompile(`\D`)
)

var digitWords = map[string]string{
	"zero": "0", "oh": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[\-.]?\d{3}[\-.]?\d{4}\b`),
	regexp.MustCompile(`\bphone\s+(\d{9,10})\b`),
	regexp.MustCompile(`\b\d{10}\b`),
	regexp.MustCompile(`\b\d{9}\b`),
	regexp.MustCompile(`\b\d{3}\s*\d{3}\s*\d{4}\b`),
}

func findPhone(text string) (string, bool) {
	s := digitWordRe.ReplaceAllStringFunc(strings.ToLower(text), func(w string) string {
		return digitWords[w]
	})
	// "five five five ..." becomes "5 5 5 ..." which is then joined.
	s = digitRunRe.ReplaceAllStringFunc(s, func(run string) string {
		return nonDigitRe.ReplaceAllString(run, "")
	})

	for _, re := range phonePatterns {
		m := re.FindString(s)
		if m == "" {
			continue
		}
		digits := nonDigitRe.ReplaceAllString(m, "")
		switch len(digits) {
		case 10, 9:
			return digits[:3] + "-" + digits[3:6] + "-" + digits[6:], true
		}
	}
	return "", false
}

var (
	numberWordRe = regexp.MustCompile(`\b(zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|to|too|for|won|ate)\b`)
	spaceRe      = regexp.MustCompile(`\s+`)
	clauseCutRe  = regexp.MustCompile(`(?:\s*,)?\s+(?:and\s+)?(?:my\s+)?(?:phone|email|e-mail|name)\b`)
	emailLikeRe  = regexp.MustCompile(`^[a-z\-]+\s*@|^[a-z\-]+\s+at\s+[a-z]`)
)

var numberWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10", "eleven": "11",
	"twelve": "12", "to": "2", "too": "2", "for": "4", "won": "1", "ate": "8",
}

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:my\s+)?\baddress(?:\s+is)?[:\s]+(\d+[^.]*?)(?:\.|$)`),
	regexp.MustCompile(`(?:^|\.)\s*address[:\s]+([^.]+)`),
	regexp.MustCompile(`\blive at\s+(\d+[^.]+?)(?:\.|$)`),
	regexp.MustCompile(`\bi live at\s+([^.]+?)(?:\.|$)`),
	regexp.MustCompile(`\baddresses\s+(\d+[^.]*?)(?:\.|$)`),
}

func findAddress(text string) (string, bool) {
	s := numberWordRe.ReplaceAllStringFunc(strings.ToLower(text), func(w string) string {
		return numberWords[w]
	})
	s = spaceRe.ReplaceAllString(s, " ")

	for _, re := range addressPatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		v := m[1]
		if loc := clauseCutRe.FindStringIndex(v); loc != nil && loc[0] > 0 {
			v = v[:loc[0]]
		}
		v = strings.Trim(v, " ,;")
		if v == "" || emailLikeRe.MatchString(v) {
			continue
		}
		return validator.TitleCase(v), true
	}
	return "", false
}
