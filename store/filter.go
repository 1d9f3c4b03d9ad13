package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"regexp"
	"roombuddy/domain"
)

// HostelFilter translates hostel search parameters into a find predicate.
// Absent parameters add nothing.
func HostelFilter(params *domain.HostelSearchParams) bson.M {
	filter := bson.M{}

	if price := rangeFilter(params.MinPrice, params.MaxPrice); price != nil {
		filter["price"] = price
	}
	if params.Type != "" {
		filter["type"] = params.Type
	}
	if params.Gender != "" {
		filter["gender"] = params.Gender
	}
	if params.City != "" {
		filter["address.city"] = contains(params.City)
	}
	if len(params.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": params.Amenities}
	}
	if params.Vacancies != nil {
		filter["vacancies"] = bson.M{"$gte": *params.Vacancies}
	}
	if params.Keyword != "" {
		filter["$or"] = keywordFilter(params.Keyword, "name", "description")
	}
	if params.Near.IsSet() {
		filter["location"] = withinFilter(params.Near)
	}
	return filter
}

// RoommateFilter translates roommate search parameters into a find
// predicate. Only active profiles are ever matched.
func RoommateFilter(params *domain.RoommateSearchParams) bson.M {
	filter := bson.M{"isActive": true}

	if age := rangeFilter(params.MinAge, params.MaxAge); age != nil {
		filter["age"] = age
	}
	if params.Gender != "" {
		filter["gender"] = params.Gender
	}
	if params.Occupation != "" {
		filter["occupation"] = params.Occupation
	}
	// budgets overlap when neither range ends before the other starts
	if params.MinBudget != nil {
		filter["budget.max"] = bson.M{"$gte": *params.MinBudget}
	}
	if params.MaxBudget != nil {
		filter["budget.min"] = bson.M{"$lte": *params.MaxBudget}
	}
	if params.City != "" {
		filter["preferredLocation.city"] = contains(params.City)
	}
	if len(params.Areas) > 0 {
		filter["preferredLocation.areas"] = bson.M{"$in": params.Areas}
	}
	if params.MoveInDate != nil {
		filter["moveInDate"] = bson.M{"$lte": *params.MoveInDate}
	}
	if params.StayDuration != "" {
		filter["stayDuration"] = params.StayDuration
	}
	flags := []struct {
		field string
		value *bool
	}{
		{"lifestyle.smoking", params.Smoking},
		{"lifestyle.drinking", params.Drinking},
		{"lifestyle.pets", params.Pets},
		{"lifestyle.earlyRiser", params.EarlyRiser},
		{"lifestyle.nightOwl", params.NightOwl},
	}
	for _, flag := range flags {
		if flag.value != nil {
			filter[flag.field] = *flag.value
		}
	}
	if params.Keyword != "" {
		filter["$or"] = keywordFilter(params.Keyword, "name", "bio")
	}
	if params.Near.IsSet() {
		filter["location"] = withinFilter(params.Near)
	}
	return filter
}

func rangeFilter[T int | float64](min, max *T) bson.M {
	if min == nil && max == nil {
		return nil
	}
	bounds := bson.M{}
	if min != nil {
		bounds["$gte"] = *min
	}
	if max != nil {
		bounds["$lte"] = *max
	}
	return bounds
}

// contains matches value as a literal, case-insensitive substring.
func contains(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func keywordFilter(keyword string, fields ...string) bson.A {
	or := bson.A{}
	for _, field := range fields {
		or = append(or, bson.M{field: contains(keyword)})
	}
	return or
}

func withinFilter(near domain.GeoQuery) bson.M {
	return bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": bson.A{
				bson.A{*near.Lng, *near.Lat},
				near.RadiusRadians(),
			},
		},
	}
}
