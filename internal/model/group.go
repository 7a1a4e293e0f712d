package model

import "time"

// GroupMember mirrors the player shape without game state.
type GroupMember struct {
	UID      string `json:"uid" bson:"uid"`
	Name     string `json:"name" bson:"name"`
	PhotoURL string `json:"photoUrl" bson:"photoUrl"`
}

// Group is a social circle players share quizzes in.
type Group struct {
	ID          string        `json:"id" bson:"_id"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description" bson:"description"`
	OwnerID     string        `json:"ownerId" bson:"ownerId"`
	Members     []GroupMember `json:"members" bson:"members"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}

// HasMember reports whether uid already belongs to the group.
func (g *Group) HasMember(uid string) bool {
	for _, m := range g.Members {
		if m.UID == uid {
			return true
		}
	}
	return false
}
