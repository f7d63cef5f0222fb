package query

import "sort"

// CampusSplit is the canonical query for the University of Split student
// campus; venue descriptions of its halls all resolve here.
const CampusSplit = "Cvite Fiskovića 3, Split, Croatia"

// corrections rewrites canonical queries that the provider resolves wrongly
// or not at all. Keys are also purged from the cache on load, so adding an
// entry here invalidates anything previously cached under the old key.
var corrections = map[string]string{
	"Velika dvorana, Croatia":                                              CampusSplit,
	"Velika dvorana - studentski dom KAMPUS, Croatia":                      CampusSplit,
	"Velika dvorana - KAMPUS Studentski dom dr. Franje Tuđmana 3, Croatia": CampusSplit,
	"Studentski dom dr. Franje Tuđmana 3, Croatia":                         CampusSplit,
	"Studentski dom Kampus, Split, Croatia":                                CampusSplit,
	"Multifunkcionalna dvorana Kampus (ispod tribine). Studentski dom dr. Franjo Tuđman Cvite Fiskovića 3, Croatia":                CampusSplit,
	"Multifunkcionalna dvorana Kampus (ispod tribine). Studentski dom dr. Franjo Tuđman Cvite Fiskovića 3, Split, Croatia":         CampusSplit,
	"Kampus . Studentski dom dr. Franjo Tuđman Cvite Fiskovića 3, Croatia":                                                         CampusSplit,
	"Kampus . Studentski dom dr. Franjo Tuđman Cvite Fiskovića 3, Split, Croatia":                                                  CampusSplit,
	"Multifunkcionalna dvorana Kampus (ispod tribine). Studentski dom Kampus dr. Franje Tuđmana Cvite Fiskovića 3, Croatia":        CampusSplit,
	"Multifunkcionalna dvorana Kampus (ispod tribine). Studentski dom Kampus dr. Franje Tuđmana Cvite Fiskovića 3, Split, Croatia": CampusSplit,
	"Kampus . Studentski dom Kampus dr. Franje Tuđmana Cvite Fiskovića 3, Croatia":                                                 CampusSplit,
	"Kampus . Studentski dom Kampus dr. Franje Tuđmana Cvite Fiskovića 3, Split, Croatia":                                          CampusSplit,
	"SPINUT FUTSAL TEREN, Split, Croatia": "SPINUT FUTSAL TEREN, Croatia",
	"Spinut futsal teren, Split, Croatia": "Spinut futsal teren, Croatia",
}

// Correct substitutes a known-bad canonical query with its replacement.
func Correct(q string) string {
	if fixed, ok := corrections[q]; ok {
		return fixed
	}
	return q
}

// IsPurgeKey reports whether q is a known-bad key that must not stay cached.
func IsPurgeKey(q string) bool {
	_, ok := corrections[q]
	return ok
}

// PurgeKeys returns the known-bad keys in sorted order.
func PurgeKeys() []string {
	keys := make([]string, 0, len(corrections))
	for k := range corrections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
