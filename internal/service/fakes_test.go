package service

import (
	"context"
	"strings"
	"sync"

	"lurdinha/internal/model"
	"lurdinha/pkg/apperr"
)

// fakeRoomRepo is an in-memory RoomRepo with the same conditional-update
// semantics as the Mongo implementation.
type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Room

	// existsScript, when non-empty, overrides Exists one call at a time.
	existsScript []bool
	existsCalls  int
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*model.Room)}
}

func copyRoom(r *model.Room) *model.Room {
	cp := *r
	cp.Players = append([]model.Player(nil), r.Players...)
	cp.QuestionsQueue = append([]string(nil), r.QuestionsQueue...)
	cp.RoundData.Answers = make(map[string]string, len(r.RoundData.Answers))
	for k, v := range r.RoundData.Answers {
		cp.RoundData.Answers[k] = v
	}
	if r.RoundData.Results != nil {
		res := *r.RoundData.Results
		cp.RoundData.Results = &res
	}
	return &cp
}

func (f *fakeRoomRepo) Create(_ context.Context, room *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[room.Code]; ok {
		return apperr.Newf(apperr.CodeAlreadyExists, "room %s already exists", room.Code)
	}
	f.rooms[room.Code] = copyRoom(room)
	return nil
}

func (f *fakeRoomRepo) GetByCode(_ context.Context, code string) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[code]
	if !ok {
		return nil, nil
	}
	return copyRoom(room), nil
}

func (f *fakeRoomRepo) Exists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	if len(f.existsScript) > 0 {
		res := f.existsScript[0]
		f.existsScript = f.existsScript[1:]
		return res, nil
	}
	_, ok := f.rooms[code]
	return ok, nil
}

func (f *fakeRoomRepo) SetFields(_ context.Context, code string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[code]
	if !ok {
		return apperr.Newf(apperr.CodeNotFound, "room %s not found", code)
	}
	for k, v := range fields {
		switch {
		case k == "status":
			room.Status = v.(model.RoomStatus)
		case k == "settings.totalRounds":
			room.Settings.TotalRounds = v.(int)
		case k == "settings.theme":
			room.Settings.Theme = v.(string)
		case k == "questionsQueue":
			room.QuestionsQueue = append([]string(nil), v.([]string)...)
		case strings.HasPrefix(k, "roundData.answers."):
			uid := strings.TrimPrefix(k, "roundData.answers.")
			if room.RoundData.Answers == nil {
				room.RoundData.Answers = map[string]string{}
			}
			room.RoundData.Answers[uid] = v.(string)
		default:
			panic("fakeRoomRepo: unsupported field " + k)
		}
	}
	return nil
}

func (f *fakeRoomRepo) AddPlayer(_ context.Context, code string, player model.Player) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[code]
	if !ok || room.Status != model.RoomWaiting || room.HasPlayer(player.UID) {
		return false, nil
	}
	room.Players = append(room.Players, player)
	return true, nil
}

func (f *fakeRoomRepo) BeginRound(_ context.Context, code string, fromStatus model.RoomStatus, round int, data model.RoundData) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[code]
	if !ok || room.Status != fromStatus {
		return false, nil
	}
	room.Status = model.RoomPlaying
	room.CurrentRound = round
	room.RoundData = data
	if room.RoundData.Answers == nil {
		room.RoundData.Answers = map[string]string{}
	}
	return true, nil
}

func (f *fakeRoomRepo) CompleteRound(_ context.Context, code string, players []model.Player, results *model.RoundResults) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[code]
	if !ok || room.Status != model.RoomPlaying {
		return false, nil
	}
	room.Status = model.RoomRoundResults
	room.Players = append([]model.Player(nil), players...)
	room.RoundData.Results = results
	return true, nil
}

func (f *fakeRoomRepo) Delete(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, code)
	return nil
}

// fakeCodeCache reserves codes in memory. denials forces the first N
// Reserve calls to report a collision.
type fakeCodeCache struct {
	mu       sync.Mutex
	reserved map[string]bool
	denials  int
	calls    int
}

func newFakeCodeCache() *fakeCodeCache {
	return &fakeCodeCache{reserved: make(map[string]bool)}
}

func (f *fakeCodeCache) Reserve(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.denials > 0 {
		f.denials--
		return false, nil
	}
	if f.reserved[code] {
		return false, nil
	}
	f.reserved[code] = true
	return true, nil
}

func (f *fakeCodeCache) Release(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reserved, code)
	return nil
}

func (f *fakeCodeCache) Exists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reserved[code], nil
}

// fakeBroadcaster records broadcast events in order.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeBroadcaster) BroadcastToRoom(roomCode string, msgType string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msgType)
}

func (f *fakeBroadcaster) DisconnectRoom(string) {}

func (f *fakeBroadcaster) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// fakeUserRepo is an in-memory UserRepo.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.UID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByUID(_ context.Context, uid string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[uid]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}
