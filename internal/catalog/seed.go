package catalog

import (
	"time"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/geo"
)

// Seed returns the bundled demo catalog for Da Nang and Hoi An.
// It is used by local development servers and tests.
func Seed() []*Location {
	h := func(openH, openM, closeH, closeM int) OpeningHours {
		return Daily(geo.At(openH, openM), geo.At(closeH, closeM))
	}

	return []*Location{
		// Da Nang
		{
			ID: "dad-dragon-bridge", Name: "Dragon Bridge", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0612, Lon: 108.2272}, Category: "landmark",
			Tags:      []string{"architecture", "photogenic", "night", "sightseeing"},
			PriceTier: 1, Rating: 4.6, AvgDurationMins: 45, Hours: AlwaysOpen(),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-my-khe-beach", Name: "My Khe Beach", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0544, Lon: 108.2478}, Category: "beach",
			Tags:      []string{"beach", "nature", "sunrise", "photogenic", "relax"},
			PriceTier: 1, Rating: 4.7, AvgDurationMins: 120, Hours: AlwaysOpen(),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-marble-mountains", Name: "Marble Mountains", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0037, Lon: 108.2636}, Category: "nature",
			Tags:      []string{"hiking", "culture", "temple", "photogenic", "adventure"},
			PriceTier: 2, Rating: 4.6, AvgDurationMins: 150, Hours: h(7, 0, 17, 30),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-linh-ung-pagoda", Name: "Linh Ung Pagoda, Son Tra", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.1002, Lon: 108.2778}, Category: "culture",
			Tags:      []string{"temple", "culture", "viewpoint", "photogenic", "spiritual"},
			PriceTier: 1, Rating: 4.7, AvgDurationMins: 90, Hours: h(6, 0, 21, 0),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-han-market", Name: "Han Market", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0681, Lon: 108.2242}, Category: "market",
			Tags:      []string{"market", "food", "shopping", "local"},
			PriceTier: 1, Rating: 4.2, AvgDurationMins: 60, Hours: h(6, 0, 19, 0),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-cham-museum", Name: "Museum of Cham Sculpture", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0603, Lon: 108.2236}, Category: "museum",
			Tags:      []string{"museum", "history", "culture", "art"},
			PriceTier: 2, Rating: 4.5, AvgDurationMins: 90, Hours: h(7, 30, 17, 0),
			Verified: true,
		},
		{
			ID: "dad-cathedral", Name: "Da Nang Cathedral", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0669, Lon: 108.2232}, Category: "culture",
			Tags:      []string{"architecture", "history", "photogenic"},
			PriceTier: 1, Rating: 4.4, AvgDurationMins: 30, Hours: h(8, 0, 17, 0).ClosedOn(time.Sunday),
			Popular: true,
		},
		{
			ID: "dad-con-market", Name: "Con Market", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0678, Lon: 108.2140}, Category: "market",
			Tags:      []string{"market", "street-food", "food", "local"},
			PriceTier: 1, Rating: 4.3, AvgDurationMins: 60, Hours: h(6, 0, 20, 0),
		},
		{
			ID: "dad-ba-na-hills", Name: "Ba Na Hills", City: "Da Nang",
			Point: geo.Coordinate{Lat: 15.9977, Lon: 107.9880}, Category: "attraction",
			Tags:      []string{"theme-park", "views", "photogenic", "family"},
			PriceTier: 4, Rating: 4.5, AvgDurationMins: 300, Hours: h(7, 0, 22, 0),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-asia-park", Name: "Sun World Asia Park", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0386, Lon: 108.2260}, Category: "attraction",
			Tags:      []string{"amusement", "night", "family"},
			PriceTier: 3, Rating: 4.2, AvgDurationMins: 150, Hours: h(15, 0, 22, 30),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-city-museum", Name: "Museum of Da Nang", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0766, Lon: 108.2214}, Category: "museum",
			Tags:      []string{"museum", "history", "culture"},
			PriceTier: 1, Rating: 4.3, AvgDurationMins: 75, Hours: h(8, 0, 17, 0).ClosedOn(time.Monday),
			Verified: true,
		},
		{
			ID: "dad-fine-arts-museum", Name: "Da Nang Fine Arts Museum", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0649, Lon: 108.2205}, Category: "museum",
			Tags:      []string{"museum", "art", "culture", "quiet"},
			PriceTier: 1, Rating: 4.1, AvgDurationMins: 60, Hours: h(8, 0, 17, 0),
			Verified: true, HiddenGem: true,
		},
		{
			ID: "dad-hai-van-pass", Name: "Hai Van Pass", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.1938, Lon: 108.1316}, Category: "viewpoint",
			Tags:      []string{"views", "hiking", "sunset", "photogenic", "adventure"},
			PriceTier: 2, Rating: 4.8, AvgDurationMins: 180, Hours: AlwaysOpen(),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-nam-o-village", Name: "Nam O Fish Sauce Village", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.1163, Lon: 108.1285}, Category: "culture",
			Tags:      []string{"local", "craft", "culture", "village"},
			PriceTier: 1, Rating: 4.0, AvgDurationMins: 60, Hours: h(7, 0, 17, 0),
			Verified: true, HiddenGem: true,
		},
		{
			ID: "dad-helio-night-market", Name: "Helio Night Market", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0380, Lon: 108.2249}, Category: "market",
			Tags:      []string{"night", "street-food", "food", "shopping"},
			PriceTier: 1, Rating: 4.2, AvgDurationMins: 90, Hours: h(17, 0, 23, 0),
			Popular: true,
		},
		{
			ID: "dad-bach-dang-riverside", Name: "Bach Dang Riverside Walk", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0700, Lon: 108.2245}, Category: "park",
			Tags:      []string{"walking", "views", "sunset", "photogenic"},
			PriceTier: 1, Rating: 4.3, AvgDurationMins: 45, Hours: AlwaysOpen(),
			Verified: true,
		},
		{
			ID: "dad-madame-lan", Name: "Madame Lan Restaurant", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0739, Lon: 108.2236}, Category: "restaurant",
			Tags:      []string{"food", "local-cuisine", "family"},
			PriceTier: 2, Rating: 4.4, AvgDurationMins: 75, Hours: h(6, 30, 22, 0),
			Verified: true, Popular: true,
		},
		{
			ID: "dad-be-man-seafood", Name: "Be Man Seafood", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0717, Lon: 108.2462}, Category: "restaurant",
			Tags:      []string{"food", "seafood", "local"},
			PriceTier: 2, Rating: 4.5, AvgDurationMins: 90, Hours: h(10, 0, 23, 0),
			Popular: true,
		},
		{
			ID: "dad-top-bar", Name: "The Top Bar", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0727, Lon: 108.2452}, Category: "nightlife",
			Tags:      []string{"cocktails", "views", "sunset", "photogenic"},
			PriceTier: 3, Rating: 4.5, AvgDurationMins: 90, Hours: h(17, 0, 24, 0),
			Verified: true,
		},
		{
			ID: "dad-cong-caphe", Name: "Cong Caphe Bach Dang", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0690, Lon: 108.2238}, Category: "cafe",
			Tags:      []string{"coffee", "cafe", "local"},
			PriceTier: 1, Rating: 4.4, AvgDurationMins: 45, Hours: h(7, 0, 23, 0),
			Popular: true,
		},
		{
			ID: "dad-43-factory", Name: "43 Factory Coffee Roaster", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0510, Lon: 108.2450}, Category: "cafe",
			Tags:      []string{"coffee", "cafe", "specialty"},
			PriceTier: 2, Rating: 4.7, AvgDurationMins: 60, Hours: h(7, 0, 22, 0),
			Verified: true, HiddenGem: true,
		},
		{
			ID: "dad-non-nuoc-beach", Name: "Non Nuoc Beach", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0000, Lon: 108.2700}, Category: "beach",
			Tags:      []string{"beach", "nature", "quiet", "relax"},
			PriceTier: 1, Rating: 4.5, AvgDurationMins: 120, Hours: AlwaysOpen(),
			Verified: true, HiddenGem: true,
		},
		{
			ID: "dad-sky36", Name: "Sky36 Bar", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0775, Lon: 108.2231}, Category: "nightlife",
			Tags:      []string{"nightlife", "views", "photogenic"},
			PriceTier: 4, Rating: 4.3, AvgDurationMins: 90, Hours: h(18, 0, 24, 0),
			Popular: true,
		},
		{
			ID: "dad-stone-village", Name: "Non Nuoc Stone Carving Village", City: "Da Nang",
			Point: geo.Coordinate{Lat: 15.9990, Lon: 108.2640}, Category: "shopping",
			Tags:      []string{"craft", "local", "shopping", "village"},
			PriceTier: 2, Rating: 4.0, AvgDurationMins: 45, Hours: h(7, 0, 18, 0),
			Verified: true, HiddenGem: true,
		},
		{
			ID: "dad-love-lock-bridge", Name: "Love Lock Bridge", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0620, Lon: 108.2290}, Category: "landmark",
			Tags:      []string{"photogenic", "romantic", "night"},
			PriceTier: 1, Rating: 4.2, AvgDurationMins: 20, Hours: AlwaysOpen(),
		},
		{
			ID: "dad-phap-lam-pagoda", Name: "Phap Lam Pagoda", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0560, Lon: 108.2150}, Category: "culture",
			Tags:      []string{"temple", "culture", "quiet", "spiritual"},
			PriceTier: 1, Rating: 4.4, AvgDurationMins: 40, Hours: h(6, 0, 20, 0),
			Verified: true, HiddenGem: true,
		},
		{
			ID: "dad-herbal-spa", Name: "Herbal Spa Da Nang", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0560, Lon: 108.2460}, Category: "wellness",
			Tags:      []string{"spa", "relax", "wellness"},
			PriceTier: 3, Rating: 4.6, AvgDurationMins: 90, Hours: h(9, 0, 22, 0),
			Verified: true,
		},
		{
			ID: "dad-cooking-class", Name: "Da Nang Home Cooking Class", City: "Da Nang",
			Point: geo.Coordinate{Lat: 16.0590, Lon: 108.2400}, Category: "activity",
			Tags:      []string{"food", "cooking", "local", "class"},
			PriceTier: 3, Rating: 4.8, AvgDurationMins: 180, Hours: h(8, 0, 20, 0),
			Verified: true,
		},

		// Hoi An
		{
			ID: "hoi-ancient-town", Name: "Hoi An Ancient Town", City: "Hoi An",
			Point: geo.Coordinate{Lat: 15.8772, Lon: 108.3279}, Category: "culture",
			Tags:      []string{"history", "architecture", "photogenic", "night"},
			PriceTier: 2, Rating: 4.8, AvgDurationMins: 180, Hours: AlwaysOpen(),
			Verified: true, Popular: true,
		},
		{
			ID: "hoi-an-bang-beach", Name: "An Bang Beach", City: "Hoi An",
			Point: geo.Coordinate{Lat: 15.9137, Lon: 108.3410}, Category: "beach",
			Tags:      []string{"beach", "relax", "nature"},
			PriceTier: 1, Rating: 4.5, AvgDurationMins: 120, Hours: AlwaysOpen(),
			Verified: true,
		},
		{
			ID: "hoi-tra-que-village", Name: "Tra Que Vegetable Village", City: "Hoi An",
			Point: geo.Coordinate{Lat: 15.9040, Lon: 108.3330}, Category: "culture",
			Tags:      []string{"local", "village", "farming", "cooking"},
			PriceTier: 2, Rating: 4.4, AvgDurationMins: 120, Hours: h(7, 0, 17, 0),
			Verified: true, HiddenGem: true,
		},
	}
}
