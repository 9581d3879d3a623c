package candidate

import (
	"math"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
)

// Weights combine the affinity components. They are normalized by their sum,
// so the affinity stays in [0, 1].
type Weights struct {
	Tag    float64
	Rating float64
	Flags  float64
}

// DefaultWeights favor interest overlap, then rating, then catalog flags.
var DefaultWeights = Weights{Tag: 0.5, Rating: 0.3, Flags: 0.2}

// LocalBiasWeights up-weight verified and hidden-gem flags for the
// local-biased variant.
var LocalBiasWeights = Weights{Tag: 0.35, Rating: 0.25, Flags: 0.4}

// neutralTagScore is used when the traveler gave no interests.
const neutralTagScore = 0.5

// saturatingMatches is the number of matched interest terms that earns a
// full tag score.
const saturatingMatches = 3

// personaTerms expands persona ids into catalog tags.
var personaTerms = map[string][]string{
	"foodie":         {"food", "street-food", "local-cuisine", "seafood", "cafe", "cooking"},
	"adventurer":     {"adventure", "hiking", "nature", "views"},
	"culture-buff":   {"culture", "history", "museum", "temple", "architecture"},
	"beach-lover":    {"beach", "relax", "nature"},
	"photographer":   {"photogenic", "views", "sunset", "sunrise", "viewpoint"},
	"night-owl":      {"night", "nightlife", "cocktails"},
	"wellness":       {"spa", "relax", "wellness", "quiet", "spiritual"},
	"family":         {"family", "amusement", "theme-park"},
	"shopper":        {"shopping", "market", "craft"},
	"local-explorer": {"local", "village", "craft", "hidden-gem"},
}

// localSignals mark a traveler who prefers local picks over popular ones.
var localSignals = map[string]bool{
	"local":               true,
	"local-explorer":      true,
	"hidden-gem":          true,
	"hidden-gems":         true,
	"authentic":           true,
	"off-the-beaten-path": true,
}

// InterestTerms returns the terms a location is matched against: personas
// expanded to tags, plus interests and liked vibes.
func InterestTerms(prefs itinerary.Preferences) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, p := range prefs.Personas {
		terms[p] = struct{}{}
		for _, t := range personaTerms[p] {
			terms[t] = struct{}{}
		}
	}
	for _, t := range prefs.Interests {
		terms[t] = struct{}{}
	}
	for _, t := range prefs.LikedVibes {
		terms[t] = struct{}{}
	}
	return terms
}

// HasLocalSignal reports whether the preferences ask for local picks.
func HasLocalSignal(prefs itinerary.Preferences) bool {
	for term := range InterestTerms(prefs) {
		if localSignals[term] {
			return true
		}
	}
	return false
}

// Affinity scores how well a location fits the preferences, in [0, 1].
// Preferences are expected to be normalized with WithDefaults.
func Affinity(loc *catalog.Location, prefs itinerary.Preferences, w Weights) float64 {
	return affinity(loc, InterestTerms(prefs), prefs.DislikedVibes, HasLocalSignal(prefs), w)
}

func affinity(loc *catalog.Location, terms map[string]struct{}, disliked []string, local bool, w Weights) float64 {
	tokens := loc.Tokens()

	tag := neutralTagScore
	if len(terms) > 0 {
		matched := 0
		for term := range terms {
			if _, ok := tokens[term]; ok {
				matched++
			}
		}
		tag = math.Min(1, float64(matched)/float64(min(len(terms), saturatingMatches)))
	}
	if len(disliked) > 0 {
		hit := 0
		for _, d := range disliked {
			if _, ok := tokens[d]; ok {
				hit++
			}
		}
		tag -= float64(hit) / float64(len(disliked))
	}
	tag = clamp01(tag)

	rating := clamp01(loc.Rating / 5)

	flags := 0.0
	if loc.Verified {
		flags += 0.5
	}
	if local {
		if loc.HiddenGem {
			flags += 0.5
		}
	} else if loc.Popular {
		flags += 0.5
	}

	total := w.Tag + w.Rating + w.Flags
	if total <= 0 {
		return 0
	}
	return clamp01((w.Tag*tag + w.Rating*rating + w.Flags*flags) / total)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
