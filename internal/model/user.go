package model

import "time"

// User is a persisted guest profile.
type User struct {
	UID       string    `json:"uid" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	PhotoURL  string    `json:"photoUrl" bson:"photoUrl"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
