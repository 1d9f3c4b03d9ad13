package domain

const (
	PointType = "Point"

	// EarthRadiusKm converts a distance in kilometres to radians for $centerSphere.
	EarthRadiusKm = 6378.1
)

// GeoPoint is a GeoJSON point, coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates" validate:"lnglat"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: PointType, Coordinates: []float64{lng, lat}}
}

func (point *GeoPoint) normalize() {
	point.Type = PointType
}

// GeoQuery is the optional radius part of a search. It applies only when
// all three values are present.
type GeoQuery struct {
	Lat         *float64 `query:"lat"`
	Lng         *float64 `query:"lng"`
	MaxDistance *float64 `query:"maxDistance"`
}

func (query GeoQuery) IsSet() bool {
	return query.Lat != nil && query.Lng != nil && query.MaxDistance != nil
}

// RadiusRadians is the search radius as an angle on the earth's surface.
func (query GeoQuery) RadiusRadians() float64 {
	return *query.MaxDistance / EarthRadiusKm
}
