package models

import "time"

type ItineraryStop struct {
	ExperienceID string `bson:"experienceid" json:"experienceId"`
	Day          int    `bson:"day" json:"day"`
	Note         string `bson:"note,omitempty" json:"note,omitempty"`
}

type Itinerary struct {
	ItineraryID string          `bson:"itineraryid" json:"itineraryId"`
	Title       string          `bson:"title" json:"title"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	Difficulty  string          `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // Easy, Moderate, Hard
	Days        int             `bson:"days" json:"days"`
	Stops       []ItineraryStop `bson:"stops,omitempty" json:"stops,omitempty"`
	CreatedAt   time.Time       `bson:"createdat" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedat" json:"updatedAt"`
}
