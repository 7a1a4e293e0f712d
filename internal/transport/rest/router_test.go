package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lurdinha/internal/model"
	"lurdinha/internal/service"
	"lurdinha/internal/transport/ws"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (r *memUserRepo) Upsert(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users == nil {
		r.users = map[string]*model.User{}
	}
	u := *user
	r.users[user.UID] = &u
	return nil
}

func (r *memUserRepo) GetByUID(_ context.Context, uid string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[uid]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func copyRoom(room *model.Room) *model.Room {
	c := *room
	c.Players = append([]model.Player(nil), room.Players...)
	c.QuestionsQueue = append([]string(nil), room.QuestionsQueue...)
	c.RoundData.Answers = make(map[string]string, len(room.RoundData.Answers))
	for k, v := range room.RoundData.Answers {
		c.RoundData.Answers[k] = v
	}
	if room.RoundData.Results != nil {
		res := *room.RoundData.Results
		c.RoundData.Results = &res
	}
	return &c
}

func (r *memRoomRepo) Create(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms == nil {
		r.rooms = map[string]*model.Room{}
	}
	r.rooms[room.Code] = copyRoom(room)
	return nil
}

func (r *memRoomRepo) GetByCode(_ context.Context, code string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[code]; ok {
		return copyRoom(room), nil
	}
	return nil, nil
}

func (r *memRoomRepo) Exists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[code]
	return ok, nil
}

func (r *memRoomRepo) SetFields(_ context.Context, code string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[code]
	for key, value := range fields {
		switch {
		case key == "status":
			room.Status = value.(model.RoomStatus)
		case key == "settings.totalRounds":
			room.Settings.TotalRounds = value.(int)
		case key == "settings.theme":
			room.Settings.Theme = value.(string)
		case key == "questionsQueue":
			room.QuestionsQueue = append([]string(nil), value.([]string)...)
		case strings.HasPrefix(key, "roundData.answers."):
			uid := strings.TrimPrefix(key, "roundData.answers.")
			if room.RoundData.Answers == nil {
				room.RoundData.Answers = map[string]string{}
			}
			room.RoundData.Answers[uid] = value.(string)
		}
	}
	return nil
}

func (r *memRoomRepo) AddPlayer(_ context.Context, code string, player model.Player) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[code]
	if room.Status != model.RoomWaiting || room.HasPlayer(player.UID) {
		return false, nil
	}
	room.Players = append(room.Players, player)
	return true, nil
}

func (r *memRoomRepo) BeginRound(_ context.Context, code string, fromStatus model.RoomStatus, round int, data model.RoundData) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[code]
	if room.Status != fromStatus {
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

func (r *memRoomRepo) CompleteRound(_ context.Context, code string, players []model.Player, results *model.RoundResults) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[code]
	if room.Status != model.RoomPlaying {
		return false, nil
	}
	room.Status = model.RoomRoundResults
	room.Players = append([]model.Player(nil), players...)
	room.RoundData.Results = results
	return true, nil
}

func (r *memRoomRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
	return nil
}

type memCodeCache struct {
	mu       sync.Mutex
	reserved map[string]bool
}

func (c *memCodeCache) Reserve(_ context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reserved == nil {
		c.reserved = map[string]bool{}
	}
	if c.reserved[code] {
		return false, nil
	}
	c.reserved[code] = true
	return true, nil
}

func (c *memCodeCache) Release(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reserved, code)
	return nil
}

func (c *memCodeCache) Exists(_ context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reserved[code], nil
}

type memGroupRepo struct {
	mu     sync.Mutex
	groups map[string]*model.Group
}

func (r *memGroupRepo) Create(_ context.Context, group *model.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groups == nil {
		r.groups = map[string]*model.Group{}
	}
	g := *group
	g.Members = append([]model.GroupMember(nil), group.Members...)
	r.groups[group.ID] = &g
	return nil
}

func (r *memGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groups[id]; ok {
		cp := *g
		cp.Members = append([]model.GroupMember(nil), g.Members...)
		return &cp, nil
	}
	return nil, nil
}

func (r *memGroupRepo) AddMember(_ context.Context, id string, member model.GroupMember) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.groups[id]
	if g.HasMember(member.UID) {
		return false, nil
	}
	g.Members = append(g.Members, member)
	return true, nil
}

func (r *memGroupRepo) ListByMember(_ context.Context, uid string) ([]*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Group
	for _, g := range r.groups {
		if g.HasMember(uid) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memQuizRepo struct {
	mu      sync.Mutex
	quizzes map[string]*model.Quiz
}

func (r *memQuizRepo) Create(_ context.Context, quiz *model.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.quizzes == nil {
		r.quizzes = map[string]*model.Quiz{}
	}
	q := *quiz
	r.quizzes[quiz.ID] = &q
	return nil
}

func (r *memQuizRepo) GetByID(_ context.Context, id string) (*model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.quizzes[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (r *memQuizRepo) SetVote(_ context.Context, id, uid string, option int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.quizzes[id]
	if q.Votes == nil {
		q.Votes = map[string]int{}
	}
	q.Votes[uid] = option
	return nil
}

func (r *memQuizRepo) ListByGroup(_ context.Context, groupID string) ([]*model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Quiz
	for _, q := range r.quizzes {
		if q.GroupID == groupID {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memVoteCache struct {
	mu      sync.Mutex
	tallies map[string]map[int]int
}

func (c *memVoteCache) Record(_ context.Context, quizID string, option int, prev *int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tallies == nil {
		c.tallies = map[string]map[int]int{}
	}
	if c.tallies[quizID] == nil {
		c.tallies[quizID] = map[int]int{}
	}
	if prev != nil && *prev != option {
		c.tallies[quizID][*prev]--
	}
	if prev == nil || *prev != option {
		c.tallies[quizID][option]++
	}
	return nil
}

func (c *memVoteCache) Tally(_ context.Context, quizID string) (map[int]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[int]int{}
	for opt, n := range c.tallies[quizID] {
		out[opt] = n
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	authSvc := service.NewAuthService(&memUserRepo{}, "test-secret")
	roomSvc := service.NewRoomService(&memRoomRepo{}, &memCodeCache{}, false)
	t.Cleanup(roomSvc.Close)
	groupRepo := &memGroupRepo{}
	groupSvc := service.NewGroupService(groupRepo)
	quizSvc := service.NewQuizService(&memQuizRepo{}, groupRepo, &memVoteCache{})

	router := NewRouter(&Container{
		AuthService:  authSvc,
		RoomService:  roomSvc,
		GroupService: groupSvc,
		QuizService:  quizSvc,
		WSHub:        ws.NewHub(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func guestLogin(t *testing.T, srv *httptest.Server, name string) model.GuestLoginResponse {
	t.Helper()
	resp, body := doJSON(t, "POST", srv.URL+"/v1/auth/guest", "", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var login model.GuestLoginResponse
	require.NoError(t, json.Unmarshal(body, &login))
	return login
}

func TestGuestLoginAndMe(t *testing.T) {
	srv := newTestServer(t)

	login := guestLogin(t, srv, "Ana")
	assert.NotEmpty(t, login.UID)
	assert.NotEmpty(t, login.Token)

	resp, body := doJSON(t, "GET", srv.URL+"/v1/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user model.User
	require.NoError(t, json.Unmarshal(body, &user))
	assert.Equal(t, login.UID, user.UID)
	assert.Equal(t, "Ana", user.Name)
}

func TestAuthedRoutesRejectMissingToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "POST", srv.URL+"/v1/rooms", "", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, "GET", srv.URL+"/v1/rooms/12345", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoomFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	host := guestLogin(t, srv, "Ana")
	guest := guestLogin(t, srv, "Bruno")

	// Host creates a room.
	resp, body := doJSON(t, "POST", srv.URL+"/v1/rooms", host.Token, map[string]interface{}{
		"settings": map[string]interface{}{"timePerRoundSec": 30},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var room model.Room
	require.NoError(t, json.Unmarshal(body, &room))
	require.Regexp(t, `^\d{5}$`, room.Code)
	assert.Equal(t, host.UID, room.HostID)
	assert.Equal(t, model.RoomWaiting, room.Status)
	require.Len(t, room.Players, 1)

	// Guest joins.
	resp, body = doJSON(t, "POST", srv.URL+"/v1/rooms/"+room.Code+"/join", guest.Token, map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &room))
	assert.Len(t, room.Players, 2)

	// Only the host can start.
	resp, _ = doJSON(t, "POST", srv.URL+"/v1/rooms/"+room.Code+"/start", guest.Token, map[string]interface{}{
		"totalRounds": 3, "theme": "comida",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = doJSON(t, "POST", srv.URL+"/v1/rooms/"+room.Code+"/start", host.Token, map[string]interface{}{
		"totalRounds": 3, "theme": "comida",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &room))
	assert.Equal(t, model.RoomPlaying, room.Status)
	assert.Equal(t, 1, room.CurrentRound)
	assert.NotEmpty(t, room.RoundData.Question)

	// Both answer; the round resolves once everyone has answered.
	resp, _ = doJSON(t, "POST", srv.URL+"/v1/rooms/"+room.Code+"/answer", host.Token, map[string]string{"text": "pizza"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, "POST", srv.URL+"/v1/rooms/"+room.Code+"/answer", guest.Token, map[string]string{"text": "pizza"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, "GET", srv.URL+"/v1/rooms/"+room.Code, host.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &room))
	assert.Equal(t, model.RoomRoundResults, room.Status)
	require.NotNil(t, room.RoundData.Results)
	assert.Equal(t, []string{"pizza"}, room.RoundData.Results.MajorityAnswers)

	// Host advances to round 2.
	resp, body = doJSON(t, "POST", srv.URL+"/v1/rooms/"+room.Code+"/next", host.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &room))
	assert.Equal(t, model.RoomPlaying, room.Status)
	assert.Equal(t, 2, room.CurrentRound)
}

func TestRoomEndpointsMapErrorsToStatusCodes(t *testing.T) {
	srv := newTestServer(t)
	user := guestLogin(t, srv, "Ana")

	resp, _ := doJSON(t, "GET", srv.URL+"/v1/rooms/00000", user.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, "POST", srv.URL+"/v1/rooms/00000/join", user.Token, map[string]string{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGroupAndQuizFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	user := guestLogin(t, srv, "Ana")

	resp, body := doJSON(t, "POST", srv.URL+"/v1/groups", user.Token, map[string]string{
		"name": "Turma", "description": "amigos",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var group model.Group
	require.NoError(t, json.Unmarshal(body, &group))
	assert.Equal(t, user.UID, group.OwnerID)
	require.Len(t, group.Members, 1)

	resp, body = doJSON(t, "GET", srv.URL+"/v1/groups", user.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Groups []model.Group `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Len(t, listing.Groups, 1)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
