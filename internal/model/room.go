package model

import "time"

type RoomStatus string

const (
	RoomWaiting      RoomStatus = "waiting"
	RoomPlaying      RoomStatus = "playing"
	RoomRoundResults RoomStatus = "round_results"
	RoomFinished     RoomStatus = "finished"
)

// RoomSettings are fixed at game start.
type RoomSettings struct {
	TimePerRoundSec int    `json:"timePerRoundSec" bson:"timePerRoundSec"`
	TotalRounds     int    `json:"totalRounds" bson:"totalRounds"`
	Theme           string `json:"theme" bson:"theme"`
	// PenalizeOnNoMajority flips the tie rule: when every submitted answer
	// is distinct, penalize everyone who answered instead of nobody.
	PenalizeOnNoMajority bool `json:"penalizeOnNoMajority" bson:"penalizeOnNoMajority"`
}

// Player is one participant inside a room document. Score is a penalty
// counter: the player with the lowest score wins the game.
type Player struct {
	UID      string `json:"uid" bson:"uid"`
	Name     string `json:"name" bson:"name"`
	PhotoURL string `json:"photoUrl" bson:"photoUrl"`
	Score    int    `json:"score" bson:"score"`
	IsReady  bool   `json:"isReady" bson:"isReady"`
}

// RoundResults is nil while a round is being played and written exactly once
// when the round resolves.
type RoundResults struct {
	MajorityAnswers []string          `json:"majorityAnswers" bson:"majorityAnswers"`
	LurdinhaVictims []string          `json:"lurdinhaVictims" bson:"lurdinhaVictims"`
	AllAnswers      map[string]string `json:"allAnswers" bson:"allAnswers"`
}

// RoundData holds the state of the current round.
type RoundData struct {
	Question  string            `json:"question" bson:"question"`
	StartTime time.Time         `json:"startTime" bson:"startTime"`
	Answers   map[string]string `json:"answers" bson:"answers"`
	Results   *RoundResults     `json:"results" bson:"results"`
}

// Room is one game session, keyed by a 5-digit numeric code.
type Room struct {
	Code           string       `json:"code" bson:"code"`
	HostID         string       `json:"hostId" bson:"hostId"`
	Status         RoomStatus   `json:"status" bson:"status"`
	Settings       RoomSettings `json:"settings" bson:"settings"`
	CurrentRound   int          `json:"currentRound" bson:"currentRound"`
	Players        []Player     `json:"players" bson:"players"`
	QuestionsQueue []string     `json:"questionsQueue" bson:"questionsQueue"`
	RoundData      RoundData    `json:"roundData" bson:"roundData"`
	CreatedAt      time.Time    `json:"createdAt" bson:"createdAt"`
}

// HasPlayer reports whether uid is already in the player list.
func (r *Room) HasPlayer(uid string) bool {
	for _, p := range r.Players {
		if p.UID == uid {
			return true
		}
	}
	return false
}

// AllAnswered reports whether every player has an answer in the current round.
func (r *Room) AllAnswered() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if _, ok := r.RoundData.Answers[p.UID]; !ok {
			return false
		}
	}
	return true
}

// IsLastRound reports whether the current round is the final one.
func (r *Room) IsLastRound() bool {
	return r.CurrentRound >= r.Settings.TotalRounds
}
