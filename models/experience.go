package models

import "time"

// Experience is a bookable offering owned by a merchant. Price and the
// participant bounds feed booking amount defaults.
type Experience struct {
	ExperienceID    string    `bson:"experienceid" json:"experienceId"`
	Title           string    `bson:"title" json:"title"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Image           string    `bson:"image,omitempty" json:"image,omitempty"`
	Thumbnail       string    `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Duration        int       `bson:"duration" json:"duration"` // minutes
	Category        string    `bson:"category" json:"category"`
	Area            string    `bson:"area" json:"area"`
	MeetingPoint    string    `bson:"meetingpoint" json:"meetingPoint"`
	Price           float64   `bson:"price" json:"price"`
	Rating          float64   `bson:"rating" json:"rating"`
	ReviewCount     int       `bson:"reviewcount" json:"reviewCount"`
	Highlights      []string  `bson:"highlights,omitempty" json:"highlights,omitempty"`
	Included        []string  `bson:"included,omitempty" json:"included,omitempty"`
	NotIncluded     []string  `bson:"notincluded,omitempty" json:"notIncluded,omitempty"`
	MinParticipants int       `bson:"minparticipants" json:"minParticipants"`
	MaxParticipants int       `bson:"maxparticipants" json:"maxParticipants"`
	MerchantID      string    `bson:"merchantid" json:"merchantId"`
	IsActive        bool      `bson:"isactive" json:"isActive"`
	CreatedAt       time.Time `bson:"createdat" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedat" json:"updatedAt"`
}

var ExperienceCategories = []string{
	"Temple", "Nature", "Culture", "Food", "Adventure", "Riverfront", "Wellness", "Other",
}
