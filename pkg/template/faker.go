package template

import (
	"fmt"
	mathrand "math/rand/v2"
	"strings"
)

var (
	fakeFirstNames = []string{"Ada", "Grace", "Alan", "Barbara", "Edsger", "Frances", "Donald", "Margaret", "Ken", "Radia"}
	fakeLastNames  = []string{"Lovelace", "Hopper", "Turing", "Liskov", "Dijkstra", "Allen", "Knuth", "Hamilton", "Thompson", "Perlman"}
	fakeCities     = []string{"London", "Paris", "Berlin", "Madrid", "Lisbon", "Dublin", "Oslo", "Vienna", "Prague", "Warsaw"}
	fakeCountries  = []string{"United Kingdom", "France", "Germany", "Spain", "Portugal", "Ireland", "Norway", "Austria", "Czechia", "Poland"}
	fakeCompanies  = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Stark", "Wayne", "Tyrell", "Cyberdyne", "Soylent"}
	fakeWords      = []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"}
	fakeDomains    = []string{"example.com", "example.org", "example.net"}
)

func pick(rng *mathrand.Rand, list []string) string {
	return list[rngIntN(rng, len(list))]
}

// fake returns a plausible value for kind, or "" for an unknown kind.
func fake(rng *mathrand.Rand, kind string) string {
	switch strings.ToLower(kind) {
	case "firstname":
		return pick(rng, fakeFirstNames)
	case "lastname":
		return pick(rng, fakeLastNames)
	case "name":
		return pick(rng, fakeFirstNames) + " " + pick(rng, fakeLastNames)
	case "email":
		return strings.ToLower(pick(rng, fakeFirstNames)+"."+pick(rng, fakeLastNames)) + "@" + pick(rng, fakeDomains)
	case "city":
		return pick(rng, fakeCities)
	case "country":
		return pick(rng, fakeCountries)
	case "company":
		return pick(rng, fakeCompanies)
	case "word":
		return pick(rng, fakeWords)
	case "phone":
		return fmt.Sprintf("+1-555-%03d-%04d", rngIntN(rng, 1000), rngIntN(rng, 10000))
	case "ipv4":
		return fmt.Sprintf("%d.%d.%d.%d", 1+rngIntN(rng, 254), rngIntN(rng, 256), rngIntN(rng, 256), 1+rngIntN(rng, 254))
	default:
		return ""
	}
}
