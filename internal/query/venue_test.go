package query

import (
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestVenueFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     []string
	}{
		{
			name:     "unknown court",
			location: "Neki Teren",
			want: []string{
				"Neki Teren, Split, Croatia",
				"Split, Croatia",
			},
		},
		{
			name:     "campus hall with dash",
			location: "Velika dvorana - Kampus",
			want: []string{
				"Studentski dom Kampus, Split, Croatia",
				"Cvite Fiskovića 3, Split, Croatia",
				"Kampus, Split, Croatia",
				"Velika dvorana - Kampus, Split, Croatia",
				"Split, Croatia",
			},
		},
		{
			name:     "stadium street",
			location: "Dvorana Gripe, Osmih mediteranskih igara 2",
			want: []string{
				"Dvorana Gripe, Osmih mediteranskih igara 2, Split, Croatia",
				"Osmih mediteranskih igara 2, Split, Croatia",
				"Osmih mediteranskih igara 21, Split, Croatia",
				"Split, Croatia",
			},
		},
		{
			name:     "futsal prefix stripped to nothing",
			location: "SPINUT futsal teren",
			want: []string{
				"SPINUT futsal teren, Split, Croatia",
				"Split, Croatia",
			},
		},
		{
			name:     "city duplicated with itself excluded",
			location: "Split",
			want:     []string{"Split, Croatia"},
		},
		{
			name:     "country suffix trimmed",
			location: "Poljud, Croatia",
			want: []string{
				"Poljud, Split, Croatia",
				"Split, Croatia",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, VenueFallbacks(tt.location, "HR")); diff != "" {
				t.Errorf("VenueFallbacks(%q) mismatch (-want +got):\n%s", tt.location, diff)
			}
		})
	}
}

func TestVenueFallbacks_Rules(t *testing.T) {
	got := VenueFallbacks("Dvorana u sklopu studentskog doma Bruno Bušić - Cvite Fiskovića 5", "HR")
	assert.Contains(t, got, "Studentski dom Bruno Bušić, Split, Croatia")
	assert.Contains(t, got, "Cvite Fiskovića 5, Split, Croatia")
	assert.Contains(t, got, CampusSplit)

	got = VenueFallbacks("Teretana, Plančićeva ul. 7", "HR")
	assert.Contains(t, got, "Plančićeva 7, Split, Croatia")

	got = VenueFallbacks("Meet point: Šetalište", "HR")
	assert.Contains(t, got, "Šetalište Pape Ivana Pavla II, Split, Croatia")

	got = VenueFallbacks("Bazen (ispod tribine) Poljud", "HR")
	assert.Contains(t, got, "Bazen Poljud, Split, Croatia")
	assert.Contains(t, got, "Poljud, Split, Croatia")
}

func TestVenueFallbacks_Invariants(t *testing.T) {
	locations := []string{
		"Velika dvorana - studentski dom KAMPUS",
		"Multifunkcionalna dvorana Kampus (ispod tribine). Studentski dom dr. Franjo Tuđman Cvite Fiskovića 3",
		"ŠC BAZENI Poljud - Osmih mediteranskih igara 5",
		"Judo klub Split - Pujanke",
		"12",
		"Žnjan plaža",
	}
	for _, loc := range locations {
		got := VenueFallbacks(loc, "HR")
		if assert.NotEmpty(t, got, loc) {
			assert.Equal(t, "Split, Croatia", got[len(got)-1], loc)
		}
		seen := map[string]bool{}
		for _, c := range got {
			assert.False(t, seen[c], "duplicate %q for %q", c, loc)
			seen[c] = true
			assert.NotEqual(t, "Split, Split, Croatia", c)
			assert.GreaterOrEqual(t, utf8.RuneCountInString(c), MinCandidateLen)
		}
	}
}

func TestVenueFallbacks_Empty(t *testing.T) {
	assert.Nil(t, VenueFallbacks(" \n ", "HR"))
}
