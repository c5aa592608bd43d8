package tools

import (
	"math"
	"math/rand"
	"strings"
)

type knownArea struct {
	name string
	lat  float64
	lon  float64
}

// bangaloreAreas lists well-known neighborhoods with approximate center
// coordinates. The simulated fleet operates in Bangalore only. Order
// matters for partial matching: longer names come before their short
// aliases so "hsr layout" is not swallowed by "hsr".
var bangaloreAreas = []knownArea{
	{"koramangala", 12.9352, 77.6245},
	{"indiranagar", 12.9784, 77.6408},
	{"whitefield", 12.9698, 77.7500},
	{"jayanagar", 12.9250, 77.5897},
	{"electronic city", 12.8456, 77.6603},
	{"hsr layout", 12.9116, 77.6389},
	{"hsr", 12.9116, 77.6389},
	{"marathahalli", 12.9591, 77.6971},
	{"btm layout", 12.9166, 77.6101},
	{"btm", 12.9166, 77.6101},
	{"mg road", 12.9758, 77.6045},
	{"brigade road", 12.9716, 77.6077},
	{"ulsoor", 12.9830, 77.6200},
	{"cubbon park", 12.9763, 77.5929},
	{"majestic", 12.9767, 77.5713},
	{"bangalore central", 12.9716, 77.5946},
	{"bangalore", 12.9716, 77.5946},
	{"bengaluru", 12.9716, 77.5946},
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// lookupArea resolves a spoken neighborhood name to coordinates. Exact
// matches win, then partial matches either way, then the city center as
// a last resort. A small jitter keeps repeated lookups from landing on
// the exact same point.
func lookupArea(name string) (lat, lon float64, matched string) {
	key := strings.ToLower(strings.TrimSpace(name))

	var found *knownArea
	for i := range bangaloreAreas {
		if bangaloreAreas[i].name == key {
			found = &bangaloreAreas[i]
			break
		}
	}
	if found == nil && key != "" {
		for i := range bangaloreAreas {
			a := &bangaloreAreas[i]
			if strings.Contains(key, a.name) || strings.Contains(a.name, key) {
				found = a
				break
			}
		}
	}
	if found != nil {
		matched = found.name
	} else {
		found = &bangaloreAreas[len(bangaloreAreas)-3] // bangalore central
		matched = "bangalore central (approximate)"
	}

	lat = round6(found.lat + (rand.Float64()-0.5)*0.005)
	lon = round6(found.lon + (rand.Float64()-0.5)*0.005)
	return lat, lon, matched
}
