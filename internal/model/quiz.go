package model

import "time"

// Quiz is a poll shared within a group. Votes maps uid to the chosen option
// index; a re-vote overwrites the previous choice.
type Quiz struct {
	ID        string         `json:"id" bson:"_id"`
	GroupID   string         `json:"groupId" bson:"groupId"`
	Question  string         `json:"question" bson:"question"`
	Options   []string       `json:"options" bson:"options"`
	Votes     map[string]int `json:"votes" bson:"votes"`
	CreatedBy string         `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
}

// QuizResult is one option with its vote count.
type QuizResult struct {
	Option string `json:"option"`
	Index  int    `json:"index"`
	Votes  int    `json:"votes"`
}
