package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	HostelTypeHostel    = "hostel"
	HostelTypePG        = "pg"
	HostelTypeApartment = "apartment"

	HostelGenderMale   = "male"
	HostelGenderFemale = "female"
	HostelGenderCoed   = "coed"
)

type Address struct {
	Street  string `bson:"street" json:"street" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state" json:"state" validate:"required"`
	ZipCode string `bson:"zipCode" json:"zipCode" validate:"required"`
	Country string `bson:"country" json:"country" validate:"required"`
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Hostel struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Owner        primitive.ObjectID `bson:"owner" json:"owner"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Address      Address            `bson:"address" json:"address"`
	Location     GeoPoint           `bson:"location" json:"location"`
	Price        float64            `bson:"price" json:"price"`
	Images       []string           `bson:"images" json:"images"`
	Type         string             `bson:"type" json:"type"`
	Gender       string             `bson:"gender" json:"gender"`
	Amenities    []string           `bson:"amenities" json:"amenities"`
	Rules        []string           `bson:"rules" json:"rules"`
	Vacancies    int                `bson:"vacancies" json:"vacancies"`
	ContactPhone string             `bson:"contactPhone" json:"contactPhone"`
	ContactEmail string             `bson:"contactEmail" json:"contactEmail"`
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	Rating       float64            `bson:"rating" json:"rating"`
	NumReviews   int                `bson:"numReviews" json:"numReviews"`
	IsVerified   bool               `bson:"isVerified" json:"isVerified"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasReviewFrom reports whether userID already reviewed the hostel.
func (hostel *Hostel) HasReviewFrom(userID primitive.ObjectID) bool {
	for _, review := range hostel.Reviews {
		if review.User == userID {
			return true
		}
	}
	return false
}

// AddReview appends review and recomputes the aggregates. The store performs
// the same transition atomically; this is the in-memory form of it.
func (hostel *Hostel) AddReview(review Review) {
	hostel.Reviews = append(hostel.Reviews, review)
	hostel.NumReviews = len(hostel.Reviews)
	sum := 0
	for _, r := range hostel.Reviews {
		sum += r.Rating
	}
	hostel.Rating = float64(sum) / float64(hostel.NumReviews)
}

// HostelView is a hostel with its owner reference populated.
type HostelView struct {
	*Hostel
	Owner *UserSummary `json:"owner"`
}

type HostelRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Address      Address  `json:"address"`
	Location     GeoPoint `json:"location"`
	Price        float64  `json:"price" validate:"gte=0"`
	Images       []string `json:"images"`
	Type         string   `json:"type" validate:"required,oneof=hostel pg apartment"`
	Gender       string   `json:"gender" validate:"required,oneof=male female coed"`
	Amenities    []string `json:"amenities"`
	Rules        []string `json:"rules"`
	Vacancies    int      `json:"vacancies" validate:"gte=0"`
	ContactPhone string   `json:"contactPhone" validate:"required"`
	ContactEmail string   `json:"contactEmail" validate:"required,email"`
}

func (req *HostelRequest) ToHostel(owner primitive.ObjectID) *Hostel {
	hostel := &Hostel{Owner: owner, Reviews: []Review{}}
	req.Apply(hostel)
	return hostel
}

// Apply writes the request fields onto hostel. Reviews and aggregates are
// left untouched.
func (req *HostelRequest) Apply(hostel *Hostel) {
	hostel.Name = req.Name
	hostel.Description = req.Description
	hostel.Address = req.Address
	hostel.Location = req.Location
	hostel.Location.normalize()
	hostel.Price = req.Price
	hostel.Images = nonNil(req.Images)
	hostel.Type = req.Type
	hostel.Gender = req.Gender
	hostel.Amenities = nonNil(req.Amenities)
	hostel.Rules = nonNil(req.Rules)
	hostel.Vacancies = req.Vacancies
	hostel.ContactPhone = req.ContactPhone
	hostel.ContactEmail = req.ContactEmail
}

// HostelUpdate is a partial hostel update. Nil fields keep the stored value.
type HostelUpdate struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Address      *Address  `json:"address"`
	Location     *GeoPoint `json:"location"`
	Price        *float64  `json:"price"`
	Images       []string  `json:"images"`
	Type         *string   `json:"type"`
	Gender       *string   `json:"gender"`
	Amenities    []string  `json:"amenities"`
	Rules        []string  `json:"rules"`
	Vacancies    *int      `json:"vacancies"`
	ContactPhone *string   `json:"contactPhone"`
	ContactEmail *string   `json:"contactEmail"`
}

// Merge returns the full request that results from applying update to
// hostel, so the merged state can be validated before it is written.
func (update *HostelUpdate) Merge(hostel *Hostel) *HostelRequest {
	req := &HostelRequest{
		Name:         pick(update.Name, hostel.Name),
		Description:  pick(update.Description, hostel.Description),
		Address:      pick(update.Address, hostel.Address),
		Location:     pick(update.Location, hostel.Location),
		Price:        pick(update.Price, hostel.Price),
		Images:       hostel.Images,
		Type:         pick(update.Type, hostel.Type),
		Gender:       pick(update.Gender, hostel.Gender),
		Amenities:    hostel.Amenities,
		Rules:        hostel.Rules,
		Vacancies:    pick(update.Vacancies, hostel.Vacancies),
		ContactPhone: pick(update.ContactPhone, hostel.ContactPhone),
		ContactEmail: pick(update.ContactEmail, hostel.ContactEmail),
	}
	if update.Images != nil {
		req.Images = update.Images
	}
	if update.Amenities != nil {
		req.Amenities = update.Amenities
	}
	if update.Rules != nil {
		req.Rules = update.Rules
	}
	return req
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

func (req *ReviewRequest) ToReview(author *User, now time.Time) Review {
	return Review{
		ID:        primitive.NewObjectID(),
		User:      author.ID,
		Name:      author.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type HostelSearchParams struct {
	MinPrice  *float64 `query:"minPrice"`
	MaxPrice  *float64 `query:"maxPrice"`
	Type      string   `query:"type"`
	Gender    string   `query:"gender"`
	City      string   `query:"city"`
	Amenities []string `query:"amenities"`
	Vacancies *int     `query:"vacancies"`
	Keyword   string   `query:"keyword"`
	Near      GeoQuery `query:",squash"`
	Page      int      `query:"-"`
}

type HostelPage struct {
	Hostels    []*HostelView `json:"hostels"`
	Page       int           `json:"page"`
	Pages      int           `json:"pages"`
	TotalCount int64         `json:"totalCount"`
}

func pick[T any](value *T, fallback T) T {
	if value != nil {
		return *value
	}
	return fallback
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
