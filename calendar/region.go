package calendar

import (
	"fmt"
	"strings"
)

// Region is a German federal state. It is only a lookup key for holiday rules.
type Region string

const (
	BadenWuerttemberg     Region = "BW"
	Bavaria               Region = "BY"
	Berlin                Region = "BE"
	Brandenburg           Region = "BB"
	Bremen                Region = "HB"
	Hamburg               Region = "HH"
	Hesse                 Region = "HE"
	MecklenburgVorpommern Region = "MV"
	LowerSaxony           Region = "NI"
	NorthRhineWestphalia  Region = "NW"
	RhinelandPalatinate   Region = "RP"
	Saarland              Region = "SL"
	Saxony                Region = "SN"
	SaxonyAnhalt          Region = "ST"
	SchleswigHolstein     Region = "SH"
	Thuringia             Region = "TH"
)

var regionNames = map[Region]string{
	BadenWuerttemberg:     "Baden-Württemberg",
	Bavaria:               "Bayern",
	Berlin:                "Berlin",
	Brandenburg:           "Brandenburg",
	Bremen:                "Bremen",
	Hamburg:               "Hamburg",
	Hesse:                 "Hessen",
	MecklenburgVorpommern: "Mecklenburg-Vorpommern",
	LowerSaxony:           "Niedersachsen",
	NorthRhineWestphalia:  "Nordrhein-Westfalen",
	RhinelandPalatinate:   "Rheinland-Pfalz",
	Saarland:              "Saarland",
	Saxony:                "Sachsen",
	SaxonyAnhalt:          "Sachsen-Anhalt",
	SchleswigHolstein:     "Schleswig-Holstein",
	Thuringia:             "Thüringen",
}

// Regions lists all sixteen regions in a stable order.
func Regions() []Region {
	return []Region{
		BadenWuerttemberg, Bavaria, Berlin, Brandenburg,
		Bremen, Hamburg, Hesse, MecklenburgVorpommern,
		LowerSaxony, NorthRhineWestphalia, RhinelandPalatinate, Saarland,
		Saxony, SaxonyAnhalt, SchleswigHolstein, Thuringia,
	}
}

func (r Region) Valid() bool { _, ok := regionNames[r]; return ok }

// Name returns the German state name, or the raw code for unknown regions.
func (r Region) Name() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return string(r)
}

func (r Region) String() string { return string(r) }

// ParseRegion accepts a region code ("BY") or a state name ("Bayern"),
// case-insensitively.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	if r := Region(strings.ToUpper(s)); r.Valid() {
		return r, nil
	}
	for r, name := range regionNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

func (r *Region) UnmarshalText(b []byte) error {
	parsed, err := ParseRegion(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
