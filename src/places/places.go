// Package places turns raw directory entries into the restaurant records
// served to clients: distance conversion, field projection, exclusion and
// rating order.
package places

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"foodie/src/types"
)

const (
	metersPerMile = 1609.34
	milesPerMeter = 0.000621371

	// MaxRadiusMiles is the largest distance whose radius in meters fits in
	// an int32.
	MaxRadiusMiles = math.MaxInt32 * milesPerMeter

	// PriceNotAvailable replaces the price tier of entries that have none.
	PriceNotAvailable = "Not Available"
)

// MetersToMiles converts a directory distance to miles.
func MetersToMiles(meters float64) float64 {
	return meters / metersPerMile
}

// MilesToMeters converts a caller supplied distance to meters.
func MilesToMeters(miles float64) float64 {
	return miles / milesPerMeter
}

// RadiusMeters is the outbound search radius for a distance in miles,
// truncated to whole meters.
func RadiusMeters(miles float64) int {
	return int(MilesToMeters(miles))
}

// FormatDistance renders a distance in meters as miles with two decimals.
func FormatDistance(meters float64) string {
	return fmt.Sprintf("%0.2f", MetersToMiles(meters))
}

// Normalize projects every entry, drops the one whose id equals excludeID
// (when set) and orders the result by rating, highest first. Entries with
// equal rating keep their input order. Any entry missing a required field
// fails the whole batch.
func Normalize(entries []types.Business, excludeID string) ([]types.Restaurant, error) {
	restaurants := make([]types.Restaurant, 0, len(entries))
	for i, b := range entries {
		if b.ID == nil {
			return nil, fmt.Errorf("%w: entry %d: missing id", types.ErrMalformedResponse, i)
		}
		if excludeID != "" && *b.ID == excludeID {
			continue
		}
		r, err := project(b)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		restaurants = append(restaurants, r)
	}

	sort.SliceStable(restaurants, func(i, j int) bool {
		return restaurants[i].Rating > restaurants[j].Rating
	})
	return restaurants, nil
}

func project(b types.Business) (types.Restaurant, error) {
	if err := requireFields(b, true); err != nil {
		return types.Restaurant{}, err
	}
	return types.Restaurant{
		YelpID:   *b.ID,
		Name:     *b.Name,
		Rating:   *b.Rating,
		Address:  joinAddress(b.Location),
		Phone:    *b.DisplayPhone,
		Distance: FormatDistance(*b.Distance),
		Price:    priceTier(b.Price),
		YelpURL:  *b.URL,
	}, nil
}

// ToFavorite projects a directory detail entry into a storable favorite.
func ToFavorite(b types.Business) (types.Favorite, error) {
	if err := requireFields(b, false); err != nil {
		return types.Favorite{}, err
	}
	return types.Favorite{
		ID:      *b.ID,
		Name:    *b.Name,
		Rating:  *b.Rating,
		Address: joinAddress(b.Location),
		Phone:   *b.DisplayPhone,
		Price:   priceTier(b.Price),
		YelpURL: *b.URL,
	}, nil
}

// CategoryAliases joins the category aliases of b with commas, the form the
// directory search expects.
func CategoryAliases(b types.Business) string {
	aliases := make([]string, 0, len(b.Categories))
	for _, c := range b.Categories {
		aliases = append(aliases, c.Alias)
	}
	return strings.Join(aliases, ",")
}

func requireFields(b types.Business, withDistance bool) error {
	var missing []string
	if b.ID == nil {
		missing = append(missing, "id")
	}
	if b.Name == nil {
		missing = append(missing, "name")
	}
	if b.Rating == nil {
		missing = append(missing, "rating")
	}
	if b.Location == nil || b.Location.DisplayAddress == nil {
		missing = append(missing, "location.display_address")
	}
	if b.DisplayPhone == nil {
		missing = append(missing, "display_phone")
	}
	if withDistance && b.Distance == nil {
		missing = append(missing, "distance")
	}
	if b.URL == nil {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", types.ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return nil
}

func joinAddress(loc *types.Location) string {
	return strings.Join(loc.DisplayAddress, " ")
}

func priceTier(price *string) string {
	if price == nil {
		return PriceNotAvailable
	}
	return *price
}
