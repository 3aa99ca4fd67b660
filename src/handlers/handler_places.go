package handlers

import (
	"fmt"
	"net/http"

	"foodie/src/logger"
	"foodie/src/places"
	"foodie/src/types"
)

type Restaurants struct {
	Restaurants []types.Restaurant `json:"restaurants"`
}

// HandleSearchAPI lists restaurants with reservations available for the
// requested location, distance, time, date and party size.
func HandleSearchAPI(w http.ResponseWriter, r *http.Request, dir types.Directory) {
	p, err := readParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := p.require("location", "max_distance", "reservation_time", "reservation_date", "num_people"); err != nil {
		WriteError(w, err)
		return
	}
	miles, err := p.miles("max_distance")
	if err != nil {
		WriteError(w, err)
		return
	}
	people, err := p.positiveInt("num_people")
	if err != nil {
		WriteError(w, err)
		return
	}

	query := types.SearchQuery{
		Location:          p["location"],
		RadiusMeters:      places.RadiusMeters(miles),
		ReservationTime:   p["reservation_time"],
		ReservationDate:   p["reservation_date"],
		ReservationCovers: people,
	}
	logger.Debug("search %q within %d m for %d", query.Location, query.RadiusMeters, people)

	entries, err := dir.Search(r.Context(), query)
	if err != nil {
		WriteError(w, err)
		return
	}
	restaurants, err := places.Normalize(entries, "")
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Restaurants{Restaurants: restaurants})
}

// HandleRecommendAPI finds restaurants sharing the categories of the
// reference restaurant near a location. The reference itself is never
// recommended.
func HandleRecommendAPI(w http.ResponseWriter, r *http.Request, dir types.Directory) {
	p, err := readParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := p.require("yelp_restaurant_id", "location", "max_distance"); err != nil {
		WriteError(w, err)
		return
	}
	miles, err := p.miles("max_distance")
	if err != nil {
		WriteError(w, err)
		return
	}
	referenceID := p["yelp_restaurant_id"]

	reference, err := dir.Business(r.Context(), referenceID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if reference.Categories == nil {
		WriteError(w, fmt.Errorf("%w: business %s has no categories", types.ErrMalformedResponse, referenceID))
		return
	}

	query := types.SearchQuery{
		Location:     p["location"],
		RadiusMeters: places.RadiusMeters(miles),
		Categories:   places.CategoryAliases(*reference),
	}
	logger.Debug("recommend near %q for %s in %q", query.Location, referenceID, query.Categories)

	entries, err := dir.Search(r.Context(), query)
	if err != nil {
		WriteError(w, err)
		return
	}
	restaurants, err := places.Normalize(entries, referenceID)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Restaurants{Restaurants: restaurants})
}
