package entity

import "strings"

// CourtComplex is a building housing several courtrooms. Slug is used in file names.
type CourtComplex struct {
	Name string
	Slug string
}

var courts = []CourtComplex{
	{Name: "Patiala House Court Complex", Slug: "patiala-house"},
	{Name: "Tis Hazari Court", Slug: "tis-hazari"},
	{Name: "Karkardooma Court", Slug: "karkardooma"},
	{Name: "Delhi High Court", Slug: "dhc"},
	{Name: "Special CBI Courts", Slug: "cbi-courts"},
}

// Courts returns the supported court complexes in display order.
func Courts() []CourtComplex {
	out := make([]CourtComplex, len(courts))
	copy(out, courts)

	return out
}

func FindCourt(name string) (CourtComplex, bool) {
	name = strings.TrimSpace(name)
	for _, c := range courts {
		if c.Name == name {
			return c, true
		}
	}

	return CourtComplex{}, false
}
