package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContactEmail = "email"
	ContactPhone = "phone"
	ContactBoth  = "both"
)

// StayDurations are the accepted stayDuration values.
var StayDurations = []string{
	"less than 3 months",
	"3-6 months",
	"6-12 months",
	"more than 12 months",
}

type Budget struct {
	Min float64 `bson:"min" json:"min" validate:"gte=0"`
	Max float64 `bson:"max" json:"max" validate:"gtefield=Min"`
}

type PreferredLocation struct {
	City  string   `bson:"city" json:"city" validate:"required"`
	Areas []string `bson:"areas" json:"areas"`
}

type Lifestyle struct {
	Smoking    bool `bson:"smoking" json:"smoking"`
	Drinking   bool `bson:"drinking" json:"drinking"`
	Pets       bool `bson:"pets" json:"pets"`
	Cooking    bool `bson:"cooking" json:"cooking"`
	EarlyRiser bool `bson:"earlyRiser" json:"earlyRiser"`
	NightOwl   bool `bson:"nightOwl" json:"nightOwl"`
}

type Roommate struct {
	ID                primitive.ObjectID `bson:"_id" json:"_id"`
	User              primitive.ObjectID `bson:"user" json:"user"`
	Name              string             `bson:"name" json:"name"`
	Age               int                `bson:"age" json:"age"`
	Gender            string             `bson:"gender" json:"gender"`
	Occupation        string             `bson:"occupation" json:"occupation"`
	Budget            Budget             `bson:"budget" json:"budget"`
	Location          GeoPoint           `bson:"location" json:"location"`
	PreferredLocation PreferredLocation  `bson:"preferredLocation" json:"preferredLocation"`
	MoveInDate        time.Time          `bson:"moveInDate" json:"moveInDate"`
	StayDuration      string             `bson:"stayDuration" json:"stayDuration"`
	Lifestyle         Lifestyle          `bson:"lifestyle" json:"lifestyle"`
	Bio               string             `bson:"bio" json:"bio"`
	ProfileImage      string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	ContactPreference string             `bson:"contactPreference" json:"contactPreference"`
	Phone             string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RoommateView is a roommate profile with its user reference populated.
type RoommateView struct {
	*Roommate
	User *UserSummary `json:"user"`
}

// Redact strips contact details the viewer is not entitled to. Anonymous
// viewers see neither phone nor e-mail; signed in viewers see what the
// profile's contact preference allows. Owners always see everything.
func (view *RoommateView) Redact(viewer *User) {
	if viewer != nil && viewer.ID == view.Roommate.User {
		return
	}
	showEmail, showPhone := false, false
	if viewer != nil {
		preference := view.ContactPreference
		showEmail = preference == ContactEmail || preference == ContactBoth
		showPhone = preference == ContactPhone || preference == ContactBoth
	}
	if !showPhone && view.Phone != "" {
		profile := *view.Roommate
		profile.Phone = ""
		view.Roommate = &profile
	}
	if !showEmail && view.User != nil {
		summary := *view.User
		summary.Email = ""
		view.User = &summary
	}
}

type RoommateRequest struct {
	Name              string            `json:"name" validate:"required"`
	Age               int               `json:"age" validate:"required,gt=0,lt=120"`
	Gender            string            `json:"gender" validate:"required,oneof=male female other"`
	Occupation        string            `json:"occupation" validate:"required,oneof=student working other"`
	Budget            Budget            `json:"budget"`
	Location          GeoPoint          `json:"location"`
	PreferredLocation PreferredLocation `json:"preferredLocation"`
	MoveInDate        string            `json:"moveInDate" validate:"required,date"`
	StayDuration      string            `json:"stayDuration" validate:"required,stayduration"`
	Lifestyle         Lifestyle         `json:"lifestyle"`
	Bio               string            `json:"bio" validate:"required"`
	ProfileImage      string            `json:"profileImage"`
	ContactPreference string            `json:"contactPreference" validate:"required,oneof=email phone both"`
	Phone             string            `json:"phone"`
	IsActive          *bool             `json:"isActive"`
}

// ToRoommate builds a new active profile owned by user. The request must
// have been validated.
func (req *RoommateRequest) ToRoommate(user primitive.ObjectID) *Roommate {
	roommate := &Roommate{User: user, IsActive: true}
	req.Apply(roommate)
	return roommate
}

func (req *RoommateRequest) Apply(roommate *Roommate) {
	roommate.Name = req.Name
	roommate.Age = req.Age
	roommate.Gender = req.Gender
	roommate.Occupation = req.Occupation
	roommate.Budget = req.Budget
	roommate.Location = req.Location
	roommate.Location.normalize()
	roommate.PreferredLocation = req.PreferredLocation
	roommate.PreferredLocation.Areas = nonNil(roommate.PreferredLocation.Areas)
	if date, err := ParseDate(req.MoveInDate); err == nil {
		roommate.MoveInDate = date
	}
	roommate.StayDuration = req.StayDuration
	roommate.Lifestyle = req.Lifestyle
	roommate.Bio = req.Bio
	roommate.ProfileImage = req.ProfileImage
	roommate.ContactPreference = req.ContactPreference
	roommate.Phone = req.Phone
	if req.IsActive != nil {
		roommate.IsActive = *req.IsActive
	}
}

// RoommateUpdate is a partial profile update. Nil fields keep the stored value.
type RoommateUpdate struct {
	Name              *string            `json:"name"`
	Age               *int               `json:"age"`
	Gender            *string            `json:"gender"`
	Occupation        *string            `json:"occupation"`
	Budget            *Budget            `json:"budget"`
	Location          *GeoPoint          `json:"location"`
	PreferredLocation *PreferredLocation `json:"preferredLocation"`
	MoveInDate        *string            `json:"moveInDate"`
	StayDuration      *string            `json:"stayDuration"`
	Lifestyle         *Lifestyle         `json:"lifestyle"`
	Bio               *string            `json:"bio"`
	ProfileImage      *string            `json:"profileImage"`
	ContactPreference *string            `json:"contactPreference"`
	Phone             *string            `json:"phone"`
	IsActive          *bool              `json:"isActive"`
}

func (update *RoommateUpdate) Merge(roommate *Roommate) *RoommateRequest {
	isActive := pick(update.IsActive, roommate.IsActive)
	return &RoommateRequest{
		Name:              pick(update.Name, roommate.Name),
		Age:               pick(update.Age, roommate.Age),
		Gender:            pick(update.Gender, roommate.Gender),
		Occupation:        pick(update.Occupation, roommate.Occupation),
		Budget:            pick(update.Budget, roommate.Budget),
		Location:          pick(update.Location, roommate.Location),
		PreferredLocation: pick(update.PreferredLocation, roommate.PreferredLocation),
		MoveInDate:        pick(update.MoveInDate, roommate.MoveInDate.Format(time.RFC3339)),
		StayDuration:      pick(update.StayDuration, roommate.StayDuration),
		Lifestyle:         pick(update.Lifestyle, roommate.Lifestyle),
		Bio:               pick(update.Bio, roommate.Bio),
		ProfileImage:      pick(update.ProfileImage, roommate.ProfileImage),
		ContactPreference: pick(update.ContactPreference, roommate.ContactPreference),
		Phone:             pick(update.Phone, roommate.Phone),
		IsActive:          &isActive,
	}
}

type RoommateSearchParams struct {
	MinAge       *int       `query:"minAge"`
	MaxAge       *int       `query:"maxAge"`
	Gender       string     `query:"gender"`
	Occupation   string     `query:"occupation"`
	MinBudget    *float64   `query:"minBudget"`
	MaxBudget    *float64   `query:"maxBudget"`
	City         string     `query:"city"`
	Areas        []string   `query:"areas"`
	MoveInDate   *time.Time `query:"moveInDate"`
	StayDuration string     `query:"stayDuration"`
	Smoking      *bool      `query:"smoking"`
	Drinking     *bool      `query:"drinking"`
	Pets         *bool      `query:"pets"`
	EarlyRiser   *bool      `query:"earlyRiser"`
	NightOwl     *bool      `query:"nightOwl"`
	Keyword      string     `query:"keyword"`
	Near         GeoQuery   `query:",squash"`
	Page         int        `query:"-"`
}

// LifestyleFlags lists the tri-state query keys. Only the literal values
// "true" and "false" are meaningful for them.
var LifestyleFlags = []string{"smoking", "drinking", "pets", "earlyRiser", "nightOwl"}

type RoommatePage struct {
	Roommates  []*RoommateView `json:"roommates"`
	Page       int             `json:"page"`
	Pages      int             `json:"pages"`
	TotalCount int64           `json:"totalCount"`
}
