package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"lurdinha/internal/cache"
	"lurdinha/internal/model"
	"lurdinha/internal/repository"
	"lurdinha/pkg/apperr"
	"lurdinha/pkg/logger"
)

// WebSocket message types pushed to room subscribers.
const (
	MsgRoomSnapshot = "room_snapshot"
	MsgGameStarted  = "game_started"
	MsgRoundStarted = "round_started"
	MsgRoundResults = "round_results"
	MsgGameFinished = "game_finished"
)

const codeGenAttempts = 32

// RoomService owns the room lifecycle: waiting -> playing <-> round_results
// -> finished. Round resolution runs server-side on a per-room timer (or
// early, once every player has answered); conditional repository updates
// make resolution at-most-once per round.
type RoomService struct {
	roomRepo    repository.RoomRepo
	codeCache   cache.CodeCache
	broadcaster Broadcaster

	// Default tie rule for rooms that don't set one explicitly.
	noMajorityPenalizes bool

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewRoomService(roomRepo repository.RoomRepo, codeCache cache.CodeCache, noMajorityPenalizes bool) *RoomService {
	return &RoomService{
		roomRepo:            roomRepo,
		codeCache:           codeCache,
		noMajorityPenalizes: noMajorityPenalizes,
		timers:              make(map[string]*time.Timer),
	}
}

// SetBroadcaster sets the broadcaster for room events.
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom persists a new waiting room with the creator as host and sole
// player, and returns it. The 5-digit code is drawn uniformly from
// [10000, 99999]; collisions regenerate, bounded by codeGenAttempts.
func (s *RoomService) CreateRoom(ctx context.Context, creator model.Player, settings model.RoomSettings) (*model.Room, error) {
	if creator.UID == "" {
		return nil, apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}
	if settings.TimePerRoundSec <= 0 {
		settings.TimePerRoundSec = 30
	}
	if settings.TotalRounds <= 0 {
		settings.TotalRounds = 5
	}
	if !settings.PenalizeOnNoMajority {
		settings.PenalizeOnNoMajority = s.noMajorityPenalizes
	}

	creator.Score = 0
	room := &model.Room{
		HostID:       creator.UID,
		Status:       model.RoomWaiting,
		Settings:     settings,
		CurrentRound: 0,
		Players:      []model.Player{creator},
		RoundData:    model.RoundData{Answers: map[string]string{}},
		CreatedAt:    time.Now(),
	}

	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to generate room code")
		}

		reserved, err := s.codeCache.Reserve(ctx, code)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to reserve room code")
		}
		if !reserved {
			continue
		}

		// The reservation can outlive a Redis flush; probe the store too.
		exists, err := s.roomRepo.Exists(ctx, code)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to probe room code")
		}
		if exists {
			continue
		}

		room.Code = code
		if err := s.roomRepo.Create(ctx, room); err != nil {
			if apperr.Is(err, apperr.CodeAlreadyExists) {
				continue
			}
			return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to create room")
		}
		return room, nil
	}

	return nil, apperr.New(apperr.CodePersistence, "failed to allocate a free room code")
}

// GetRoom returns the current room snapshot.
func (s *RoomService) GetRoom(ctx context.Context, code string) (*model.Room, error) {
	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to load room")
	}
	if room == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "room %s not found", code)
	}
	return room, nil
}

// JoinRoom appends the joiner to a waiting room. Joining twice with the same
// uid is a no-op that returns the current snapshot.
func (s *RoomService) JoinRoom(ctx context.Context, code string, joiner model.Player) (*model.Room, error) {
	if joiner.UID == "" {
		return nil, apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}

	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status != model.RoomWaiting {
		return nil, apperr.Newf(apperr.CodeAlreadyStarted, "room %s has already started", code)
	}
	if room.HasPlayer(joiner.UID) {
		return room, nil
	}

	joiner.Score = 0
	added, err := s.roomRepo.AddPlayer(ctx, code, joiner)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to join room")
	}
	if !added {
		// Lost a race: either the game started or the uid joined from
		// another connection. Re-read and let the snapshot decide.
		room, err = s.GetRoom(ctx, code)
		if err != nil {
			return nil, err
		}
		if room.Status != model.RoomWaiting && !room.HasPlayer(joiner.UID) {
			return nil, apperr.Newf(apperr.CodeAlreadyStarted, "room %s has already started", code)
		}
		return room, nil
	}

	room, err = s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	s.broadcastSnapshot(room)
	return room, nil
}

// StartGame is host-only: it draws the question queue, moves the room into
// round 1 and arms the round timer.
func (s *RoomService) StartGame(ctx context.Context, code, actor string, totalRounds int, theme string) (*model.Room, error) {
	if actor == "" {
		return nil, apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}
	if totalRounds <= 0 {
		return nil, apperr.New(apperr.CodeValidation, "totalRounds must be positive")
	}

	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.HostID != actor {
		return nil, apperr.New(apperr.CodeForbidden, "only the host can start the game")
	}
	if room.Status != model.RoomWaiting {
		return nil, apperr.Newf(apperr.CodeAlreadyStarted, "room %s has already started", code)
	}

	queue := BuildQuestionQueue(theme, totalRounds)
	err = s.roomRepo.SetFields(ctx, code, map[string]interface{}{
		"settings.totalRounds": totalRounds,
		"settings.theme":       theme,
		"questionsQueue":       queue,
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to store question queue")
	}

	data := model.RoundData{
		Question:  queue[0],
		StartTime: time.Now(),
		Answers:   map[string]string{},
	}
	started, err := s.roomRepo.BeginRound(ctx, code, model.RoomWaiting, 1, data)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to start game")
	}
	if !started {
		return nil, apperr.Newf(apperr.CodeAlreadyStarted, "room %s has already started", code)
	}

	s.armRoundTimer(code, 1, time.Duration(room.Settings.TimePerRoundSec)*time.Second)

	room, err = s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	s.broadcast(room, MsgGameStarted)
	return room, nil
}

// SubmitAnswer records one player's answer for the current round via a
// dot-path field write; submitting twice overwrites the previous text. Once
// every player has answered, the round resolves early.
func (s *RoomService) SubmitAnswer(ctx context.Context, code, uid, text string) error {
	if uid == "" {
		return apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}
	if NormalizeAnswer(text) == "" {
		return apperr.New(apperr.CodeValidation, "answer must not be empty")
	}

	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if room.Status != model.RoomPlaying {
		return apperr.Newf(apperr.CodeValidation, "room %s is not accepting answers", code)
	}
	if !room.HasPlayer(uid) {
		return apperr.New(apperr.CodeForbidden, "not a player in this room")
	}

	field := fmt.Sprintf("roundData.answers.%s", uid)
	if err := s.roomRepo.SetFields(ctx, code, map[string]interface{}{field: text}); err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return err
		}
		return apperr.Wrap(err, apperr.CodePersistence, "failed to submit answer")
	}

	room, err = s.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	s.broadcastSnapshot(room)

	if room.Status == model.RoomPlaying && room.AllAnswered() {
		return s.CalculateRoundResults(ctx, code)
	}
	return nil
}

// CalculateRoundResults resolves the current round: tallies answers, assigns
// penalties and writes status, players and results in one conditional
// update. Calling it on an already-resolved round is a no-op.
func (s *RoomService) CalculateRoundResults(ctx context.Context, code string) error {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if room.Status != model.RoomPlaying {
		return nil
	}

	res := ResolveRound(room.RoundData.Answers, room.Players, room.Settings.PenalizeOnNoMajority)
	results := &model.RoundResults{
		MajorityAnswers: res.MajorityAnswers,
		LurdinhaVictims: res.LurdinhaVictims,
		AllAnswers:      room.RoundData.Answers,
	}

	completed, err := s.roomRepo.CompleteRound(ctx, code, res.Players, results)
	if err != nil {
		return apperr.Wrap(err, apperr.CodePersistence, "failed to write round results")
	}
	if !completed {
		// Another path (timer vs. last answer) resolved it first.
		return nil
	}

	s.cancelRoundTimer(code)

	room, err = s.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	s.broadcast(room, MsgRoundResults)
	return nil
}

// NextRound is host-only: it either finishes the game after the last round
// or re-reads the room and starts the next queued question. The re-read
// matters: the caller's snapshot may be stale.
func (s *RoomService) NextRound(ctx context.Context, code, actor string) (*model.Room, error) {
	if actor == "" {
		return nil, apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}

	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.HostID != actor {
		return nil, apperr.New(apperr.CodeForbidden, "only the host can advance rounds")
	}
	if room.Status != model.RoomRoundResults {
		return nil, apperr.Newf(apperr.CodeValidation, "room %s has no round to advance", code)
	}

	if room.IsLastRound() {
		err := s.roomRepo.SetFields(ctx, code, map[string]interface{}{"status": model.RoomFinished})
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to finish game")
		}
		s.cancelRoundTimer(code)

		room, err = s.GetRoom(ctx, code)
		if err != nil {
			return nil, err
		}
		s.broadcast(room, MsgGameFinished)
		return room, nil
	}

	next := room.CurrentRound + 1
	if next > len(room.QuestionsQueue) {
		return nil, apperr.Newf(apperr.CodePersistence, "question queue exhausted for room %s", code)
	}
	data := model.RoundData{
		Question:  room.QuestionsQueue[next-1],
		StartTime: time.Now(),
		Answers:   map[string]string{},
	}

	started, err := s.roomRepo.BeginRound(ctx, code, model.RoomRoundResults, next, data)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to start next round")
	}
	if !started {
		// Someone advanced the round between our read and the write.
		return s.GetRoom(ctx, code)
	}

	s.armRoundTimer(code, next, time.Duration(room.Settings.TimePerRoundSec)*time.Second)

	room, err = s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	s.broadcast(room, MsgRoundStarted)
	return room, nil
}

// Close stops all round timers. Called on shutdown.
func (s *RoomService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code, t := range s.timers {
		t.Stop()
		delete(s.timers, code)
	}
}

func (s *RoomService) armRoundTimer(code string, round int, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[code]; ok {
		t.Stop()
	}
	s.timers[code] = time.AfterFunc(d, func() {
		s.onRoundTimeout(code, round)
	})
}

func (s *RoomService) cancelRoundTimer(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[code]; ok {
		t.Stop()
		delete(s.timers, code)
	}
}

func (s *RoomService) onRoundTimeout(code string, round int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil || room == nil {
		logger.Warn("round timer fired for unreadable room", "code", code, "error", err)
		return
	}
	// A stale timer from an earlier round must not touch the current one.
	if room.Status != model.RoomPlaying || room.CurrentRound != round {
		return
	}

	if err := s.CalculateRoundResults(ctx, code); err != nil {
		logger.Error("failed to resolve round on timeout", "code", code, "round", round, "error", err)
	}
}

func (s *RoomService) broadcastSnapshot(room *model.Room) {
	s.broadcast(room, MsgRoomSnapshot)
}

func (s *RoomService) broadcast(room *model.Room, msgType string) {
	if s.broadcaster == nil || room == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(room.Code, msgType, room)
}

// generateRoomCode draws a 5-digit code uniformly from [10000, 99999].
func generateRoomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 10000+n.Int64()), nil
}
