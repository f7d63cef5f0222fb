package query

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// venueNoise strips venue-type phrases so the remaining text is a place or
// street name. Applied in order.
var venueNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:Judo klub|Velika dvorana|Mala dvorana|Multifunkcionalna dvorana|Hrvačka dvorana|ŠC BAZENI|SPINUT|VELIKA DVORANA|Mala sportska)[\s\-]*`),
	regexp.MustCompile(`(?i)[\s\-]*(?:futsal|košarkaški|sport)[\s/]*(?:teren|dvorana)?[\s\-]*`),
	regexp.MustCompile(`(?i)[\s\-]*(?:ispod tribine|u sklopu teretane)\.?`),
	regexp.MustCompile(`(?i)[\s\-]*(?:Meet point|PK MARULIANUS|VK Gusar)[\s:]*`),
	regexp.MustCompile(`\([^)]*\)`),
}

// knownSplitPlaces are neighbourhoods the provider resolves on their own.
var knownSplitPlaces = []string{"Split", "Pujanke", "Spinut", "Poljud", "Žnjan", "Kampus"}

var genericWords = map[string]bool{
	"dvorana": true, "teren": true, "kampus": true, "split": true,
	"dvorane": true, "škola": true, "dom": true, "ispred": true,
}

// campusHalls are segments that only ever mean the student campus halls.
var campusHalls = map[string]bool{
	"velika dvorana":                         true,
	"mala dvorana":                           true,
	"velika dvorana - kampus":                true,
	"velika dvorana - studentski dom kampus": true,
}

var (
	dashSeparator    = regexp.MustCompile(`\s+-\s+`)
	cviteMention     = regexp.MustCompile(`\b[Cc]vite Fiskovića(?:[^\p{L}]|$)`)
	cviteAddress     = regexp.MustCompile(`(?i)(Cvite Fiskovića\s*\d*)`)
	dormName         = regexp.MustCompile(`(?i)studentskog doma\s+([^,\-]+)`)
	mediterraneanRd  = regexp.MustCompile(`(?i)([IVX]+\.?\s*)?Osmih?\s*mediteranskih\s+igara\s*(\d+)`)
	plancicevaStreet = regexp.MustCompile(`(?i)Plančićeva\s+(?:ul\.?\s*)?(\d+)`)
)

const (
	campusDorm    = "Studentski dom Kampus, Split"
	campusStreet  = "Cvite Fiskovića 3, Split"
	stadiumStreet = "Osmih mediteranskih igara 21, Split"
	promenade     = "Šetalište Pape Ivana Pavla II, Split"
)

// venueCandidates applies the venue rules' own filter: the head must be at
// least MinCandidateLen runes and not numeric, and the country is appended
// when missing.
type venueCandidates struct {
	country string
	*candidates
}

func (v *venueCandidates) add(q string) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinCandidateLen {
		return
	}
	if isNumeric(q) {
		return
	}
	if !strings.HasSuffix(q, v.country) {
		q += ", " + v.country
	}
	v.candidates.add(q)
}

func (v *venueCandidates) addInSplit(q string) {
	if strings.Contains(q, ", Split") {
		v.add(q)
		return
	}
	v.add(q + ", Split")
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return strings.TrimRight(words[len(words)-1], ".,")
}

// VenueFallbacks extracts geocodable pieces from an event venue description,
// which typically mixes hall names, club names and street addresses. The
// result always ends with the city-level query.
func VenueFallbacks(location, countryCode string) []string {
	loc := CollapseSpace(location)
	if loc == "" {
		return nil
	}
	country := "Croatia"
	if cc, ok := CountryCode(countryCode); ok {
		if name, known := countryNames[cc]; known {
			country = name
		}
	}
	loc = strings.TrimSpace(strings.TrimSuffix(loc, ", "+country))

	v := &venueCandidates{country: country, candidates: newCandidates("")}

	for _, part := range dashSeparator.Split(loc, 3) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) < 3 {
			continue
		}
		lower := strings.ToLower(part)
		if campusHalls[lower] || strings.HasPrefix(lower, "velika dvorana") || strings.HasPrefix(lower, "mala dvorana") {
			v.add(campusDorm)
			v.add(campusStreet)
			continue
		}
		v.addInSplit(part)
		if w := lastWord(part); isKnownPlace(w) || (isLetters(w) && !genericWords[strings.ToLower(w)]) {
			v.addInSplit(w)
		}
	}

	commaParts := strings.Split(loc, ",")
	for i := range commaParts {
		commaParts[i] = strings.TrimSpace(commaParts[i])
	}
	for i := range commaParts {
		suffix := strings.Join(commaParts[len(commaParts)-1-i:], ", ")
		if utf8.RuneCountInString(suffix) > 2 {
			v.addInSplit(suffix)
		}
	}

	cleaned := loc
	for _, re := range venueNoise {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned != "" && cleaned != loc && utf8.RuneCountInString(cleaned) > 3 {
		v.addInSplit(cleaned)
		if w := lastWord(cleaned); !genericWords[strings.ToLower(w)] && !isDigits(w) {
			v.addInSplit(w)
		}
	}

	for _, place := range knownSplitPlaces {
		if place != "Split" && strings.Contains(loc, place) {
			v.addInSplit(place)
		}
	}

	if cviteMention.MatchString(loc) {
		if m := cviteAddress.FindStringSubmatch(loc); m != nil {
			v.add(strings.TrimSpace(m[1]) + ", Split")
		}
		v.add(campusStreet)
	}

	if strings.Contains(strings.ToLower(loc), "studentskog doma") {
		if m := dormName.FindStringSubmatch(loc); m != nil {
			v.add("Studentski dom " + strings.TrimSpace(m[1]) + ", Split")
		}
	}

	if strings.Contains(loc, "Osmih mediteranskih") || strings.Contains(strings.ToLower(loc), "mediteranskih igara") {
		if m := mediterraneanRd.FindStringSubmatch(loc); m != nil {
			v.add("Osmih mediteranskih igara " + m[2] + ", Split")
		}
		v.add(stadiumStreet)
	}

	if m := plancicevaStreet.FindStringSubmatch(loc); m != nil {
		v.add("Plančićeva " + m[1] + ", Split")
	}

	if strings.Contains(loc, "Šetalište") || strings.Contains(loc, "Pape") {
		v.add(promenade)
	}

	v.add("Split, " + country)

	out := v.list[:0]
	selfDup := "Split, Split, " + country
	for _, q := range v.list {
		if q != selfDup {
			out = append(out, q)
		}
	}
	return out
}

func isKnownPlace(w string) bool {
	for _, p := range knownSplitPlaces {
		if w == p {
			return true
		}
	}
	return false
}
