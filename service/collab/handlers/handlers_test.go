package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"Alvin/service/collab"
	"Alvin/tools/errs"
)

type fakeAuthn struct {
	identities map[string]*collab.Identity // token -> identity
}

func (f *fakeAuthn) Authenticate(_ context.Context, credential string) (*collab.Identity, error) {
	if id, ok := f.identities[credential]; ok {
		return id, nil
	}
	return nil, errs.ErrUnauthenticated
}

type fakeAuthz struct {
	allowed map[string]bool // userID|projectID -> allowed
	err     error
}

func (f *fakeAuthz) HasProjectAccess(_ context.Context, userID, projectID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[userID+"|"+projectID], nil
}

type fixture struct {
	s     *collab.Server
	ctx   *collab.Context
	authz *fakeAuthz
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	authn := &fakeAuthn{identities: map[string]*collab.Identity{
		"tok-alice": {UserID: "alice", Username: "Alice", AvatarURL: "http://img/alice"},
		"tok-bob":   {UserID: "bob", Username: "Bob"},
	}}
	authz := &fakeAuthz{allowed: map[string]bool{
		"alice|p1": true,
		"bob|p1":   true,
	}}
	s := collab.NewServer(collab.Conf{}, authn, authz, nil)
	t.Cleanup(s.Close)
	RegisterAll(s)
	return &fixture{s: s, ctx: &collab.Context{S: s}, authz: authz}
}

func (f *fixture) dispatch(t *testing.T, c *collab.Client, event string, data map[string]any) error {
	t.Helper()
	return f.s.Disp().Dispatch(f.ctx, &collab.Envelope{Event: event, Data: data}, c)
}

// connect runs the handshake for a fresh client and consumes the ack.
func (f *fixture) connect(t *testing.T, connID, token string) *collab.Client {
	t.Helper()
	c := collab.NewClient(connID, nil, 32)
	if err := f.dispatch(t, c, collab.EventConnect, map[string]any{"token": token}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if env := recv(t, c); env.Event != collab.EventConnectionConfirmed {
		t.Fatalf("want %s, got %s", collab.EventConnectionConfirmed, env.Event)
	}
	return c
}

// joined is connect plus join_project, with the join traffic consumed.
func (f *fixture) joined(t *testing.T, connID, token, projectID string) *collab.Client {
	t.Helper()
	c := f.connect(t, connID, token)
	if err := f.dispatch(t, c, collab.EventJoinProject, map[string]any{"project_id": projectID}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if env := recv(t, c); env.Event != collab.EventRoomUsers {
		t.Fatalf("want %s, got %s", collab.EventRoomUsers, env.Event)
	}
	return c
}

func recv(t *testing.T, c *collab.Client) *collab.Envelope {
	t.Helper()
	select {
	case raw := <-c.Send:
		env := &collab.Envelope{}
		if err := json.Unmarshal(raw, env); err != nil {
			t.Fatalf("bad frame %s: %v", raw, err)
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func expectSilence(t *testing.T, c *collab.Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func expectError(t *testing.T, c *collab.Client, code string) {
	t.Helper()
	env := recv(t, c)
	if env.Event != collab.EventError {
		t.Fatalf("want error event, got %s", env.Event)
	}
	if env.Data["code"] != code {
		t.Fatalf("error code = %v, want %s", env.Data["code"], code)
	}
}

func TestConnectSuccess(t *testing.T) {
	f := newFixture(t)
	c := collab.NewClient("c1", nil, 8)

	if err := f.dispatch(t, c, collab.EventConnect, map[string]any{"token": "tok-alice"}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	env := recv(t, c)
	if env.Event != collab.EventConnectionConfirmed {
		t.Fatalf("got %s", env.Event)
	}
	if env.Data["user_id"] != "alice" || env.Data["conn_id"] != "c1" {
		t.Fatalf("ack = %v", env.Data)
	}
	if !c.Authenticated() {
		t.Fatal("identity not bound")
	}
	if _, ok := f.s.Registry().Lookup("c1"); !ok {
		t.Fatal("client not registered")
	}
}

func TestConnectBadToken(t *testing.T) {
	f := newFixture(t)
	c := collab.NewClient("c1", nil, 8)

	err := f.dispatch(t, c, collab.EventConnect, map[string]any{"token": "garbage"})
	if !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want unauthenticated, got %v", err)
	}
	expectError(t, c, errs.ReasonUnauthenticated)
	if c.Authenticated() {
		t.Fatal("identity bound on failed handshake")
	}
	if _, ok := f.s.Registry().Lookup("c1"); ok {
		t.Fatal("failed handshake registered the client")
	}
}

func TestConnectMissingToken(t *testing.T) {
	f := newFixture(t)
	c := collab.NewClient("c1", nil, 8)

	err := f.dispatch(t, c, collab.EventConnect, nil)
	if !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("want unauthenticated, got %v", err)
	}
	expectError(t, c, errs.ReasonUnauthenticated)
}

func TestConnectTwiceIsNoop(t *testing.T) {
	f := newFixture(t)
	c := f.connect(t, "c1", "tok-alice")

	if err := f.dispatch(t, c, collab.EventConnect, map[string]any{"token": "tok-bob"}); err != nil {
		t.Fatalf("repeat connect: %v", err)
	}
	if c.UserID != "alice" {
		t.Fatal("repeat connect rebound the identity")
	}
	expectSilence(t, c)
}

func TestJoinAuthorized(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")

	b := f.connect(t, "c2", "tok-bob")
	if err := f.dispatch(t, b, collab.EventJoinProject, map[string]any{"project_id": "p1"}); err != nil {
		t.Fatalf("join: %v", err)
	}

	env := recv(t, a)
	if env.Event != collab.EventUserJoined || env.Data["user_id"] != "bob" {
		t.Fatalf("got %s %v", env.Event, env.Data)
	}
	env = recv(t, b)
	if env.Event != collab.EventRoomUsers {
		t.Fatalf("got %s", env.Event)
	}
	if users, _ := env.Data["users"].([]any); len(users) != 2 {
		t.Fatalf("snapshot users = %v", env.Data["users"])
	}
}

func TestJoinDenied(t *testing.T) {
	f := newFixture(t)
	c := f.connect(t, "c1", "tok-alice")

	if err := f.dispatch(t, c, collab.EventJoinProject, map[string]any{"project_id": "p-secret"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	expectError(t, c, errs.ReasonAccessDenied)
	if f.s.Directory().Contains(collab.ProjectRoom("p-secret"), "c1") {
		t.Fatal("denied join mutated membership")
	}
}

func TestJoinAuthzErrorCountsAsDenial(t *testing.T) {
	f := newFixture(t)
	c := f.connect(t, "c1", "tok-alice")
	f.authz.err = errors.New("backend down")

	if err := f.dispatch(t, c, collab.EventJoinProject, map[string]any{"project_id": "p1"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	expectError(t, c, errs.ReasonAccessDenied)
}

func TestJoinMissingProjectID(t *testing.T) {
	f := newFixture(t)
	c := f.connect(t, "c1", "tok-alice")

	if err := f.dispatch(t, c, collab.EventJoinProject, map[string]any{}); err != nil {
		t.Fatalf("join: %v", err)
	}
	expectError(t, c, errs.ReasonMissingParameter)
}

func TestLeaveNotifiesRoom(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")
	b := f.joined(t, "c2", "tok-bob", "p1")
	recv(t, a) // user_joined bob

	if err := f.dispatch(t, b, collab.EventLeaveProject, map[string]any{"project_id": "p1"}); err != nil {
		t.Fatalf("leave: %v", err)
	}
	env := recv(t, a)
	if env.Event != collab.EventUserLeft || env.Data["user_id"] != "bob" {
		t.Fatalf("got %s %v", env.Event, env.Data)
	}
	if f.s.Directory().Contains(collab.ProjectRoom("p1"), "c2") {
		t.Fatal("leave did not remove membership")
	}
}

func TestLeaveClearsTyping(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")
	b := f.joined(t, "c2", "tok-bob", "p1")
	recv(t, a) // user_joined bob

	if err := f.dispatch(t, b, collab.EventTypingStatus, map[string]any{
		"project_id": "p1", "scene_id": "s1", "is_typing": true,
	}); err != nil {
		t.Fatalf("typing: %v", err)
	}
	recv(t, a) // typing true

	if err := f.dispatch(t, b, collab.EventLeaveProject, map[string]any{"project_id": "p1"}); err != nil {
		t.Fatalf("leave: %v", err)
	}

	env := recv(t, a)
	if env.Event != collab.EventTypingStatus || env.Data["is_typing"] != false {
		t.Fatalf("want typing cleared first, got %s %v", env.Event, env.Data)
	}
	env = recv(t, a)
	if env.Event != collab.EventUserLeft {
		t.Fatalf("got %s", env.Event)
	}
	if got := f.s.Typing().Snapshot(collab.ProjectRoom("p1")); len(got) != 0 {
		t.Fatalf("typing entry survived leave: %+v", got)
	}
}

func TestSceneUpdatedRelays(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")
	b := f.joined(t, "c2", "tok-bob", "p1")
	recv(t, a) // user_joined bob

	if err := f.dispatch(t, a, collab.EventSceneUpdated, map[string]any{
		"project_id": "p1",
		"scene_data": map[string]any{"objects": []any{"cube"}},
	}); err != nil {
		t.Fatalf("scene_updated: %v", err)
	}

	env := recv(t, b)
	if env.Event != collab.EventSceneUpdated {
		t.Fatalf("got %s", env.Event)
	}
	by, _ := env.Data["updated_by"].(map[string]any)
	if by["user_id"] != "alice" {
		t.Fatalf("updated_by = %v", env.Data["updated_by"])
	}
	expectSilence(t, a)
}

func TestSceneUpdatedMissingData(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")

	if err := f.dispatch(t, a, collab.EventSceneUpdated, map[string]any{"project_id": "p1"}); err != nil {
		t.Fatalf("scene_updated: %v", err)
	}
	expectError(t, a, errs.ReasonMissingParameter)
}

func TestCursorPositionRelays(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")
	b := f.joined(t, "c2", "tok-bob", "p1")
	recv(t, a) // user_joined bob

	if err := f.dispatch(t, b, collab.EventCursorPos, map[string]any{
		"project_id": "p1",
		"scene_id":   "s1",
		"position":   map[string]any{"x": 1.5, "y": 2.0},
	}); err != nil {
		t.Fatalf("cursor: %v", err)
	}

	env := recv(t, a)
	if env.Event != collab.EventCursorPos || env.Data["user_id"] != "bob" {
		t.Fatalf("got %s %v", env.Event, env.Data)
	}
	expectSilence(t, b)
}

func TestCommentAddedRelays(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")
	b := f.joined(t, "c2", "tok-bob", "p1")
	recv(t, a) // user_joined bob

	if err := f.dispatch(t, a, collab.EventCommentAdded, map[string]any{
		"project_id":   "p1",
		"comment_data": map[string]any{"text": "looks off"},
	}); err != nil {
		t.Fatalf("comment: %v", err)
	}

	env := recv(t, b)
	if env.Event != collab.EventCommentAdded {
		t.Fatalf("got %s", env.Event)
	}
}

func TestTypingStatusRoundTrip(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")
	b := f.joined(t, "c2", "tok-bob", "p1")
	recv(t, a) // user_joined bob

	if err := f.dispatch(t, a, collab.EventTypingStatus, map[string]any{
		"project_id": "p1", "scene_id": "s1", "is_typing": true,
	}); err != nil {
		t.Fatalf("typing: %v", err)
	}
	env := recv(t, b)
	if env.Event != collab.EventTypingStatus || env.Data["is_typing"] != true {
		t.Fatalf("got %s %v", env.Event, env.Data)
	}

	snap := f.s.Typing().Snapshot(collab.ProjectRoom("p1"))
	if len(snap) != 1 || snap[0].UserID != "alice" {
		t.Fatalf("tracker = %+v", snap)
	}

	if err := f.dispatch(t, a, collab.EventTypingStatus, map[string]any{
		"project_id": "p1", "is_typing": false,
	}); err != nil {
		t.Fatalf("typing stop: %v", err)
	}
	env = recv(t, b)
	if env.Data["is_typing"] != false {
		t.Fatalf("got %v", env.Data)
	}
	if got := f.s.Typing().Snapshot(collab.ProjectRoom("p1")); len(got) != 0 {
		t.Fatalf("tracker still holds %+v", got)
	}
}

func TestTypingRequiresMembership(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")

	// bob is authenticated but never joined p1
	b := f.connect(t, "c2", "tok-bob")
	if err := f.dispatch(t, b, collab.EventTypingStatus, map[string]any{
		"project_id": "p1", "scene_id": "s1", "is_typing": true,
	}); err != nil {
		t.Fatalf("typing: %v", err)
	}

	expectSilence(t, a)
	if got := f.s.Typing().Snapshot(collab.ProjectRoom("p1")); len(got) != 0 {
		t.Fatalf("non-member created a typing entry: %+v", got)
	}

	// nothing to linger after bob goes away
	f.s.Disconnect(b)
	if got := f.s.Typing().Snapshot(collab.ProjectRoom("p1")); len(got) != 0 {
		t.Fatalf("typing entry survived disconnect: %+v", got)
	}
	if err := f.dispatch(t, a, collab.EventGetRoomStatus, map[string]any{"project_id": "p1"}); err != nil {
		t.Fatalf("status: %v", err)
	}
	status := recv(t, a)
	if typing, _ := status.Data["typing_users"].([]any); len(typing) != 0 {
		t.Fatalf("room_status reports a ghost typist: %v", status.Data["typing_users"])
	}
}

func TestRoomStatusSnapshot(t *testing.T) {
	f := newFixture(t)
	a := f.joined(t, "c1", "tok-alice", "p1")
	b := f.joined(t, "c2", "tok-bob", "p1")
	recv(t, a) // user_joined bob

	if err := f.dispatch(t, b, collab.EventTypingStatus, map[string]any{
		"project_id": "p1", "scene_id": "s1", "is_typing": true,
	}); err != nil {
		t.Fatalf("typing: %v", err)
	}
	recv(t, a) // typing true

	if err := f.dispatch(t, a, collab.EventGetRoomStatus, map[string]any{"project_id": "p1"}); err != nil {
		t.Fatalf("status: %v", err)
	}
	env := recv(t, a)
	if env.Event != collab.EventRoomStatus {
		t.Fatalf("got %s", env.Event)
	}
	if env.Data["room"] != "project_p1" {
		t.Fatalf("room = %v", env.Data["room"])
	}
	users, _ := env.Data["users"].([]any)
	if len(users) != 2 {
		t.Fatalf("users = %v", env.Data["users"])
	}
	typing, _ := env.Data["typing_users"].([]any)
	if len(typing) != 1 {
		t.Fatalf("typing_users = %v", env.Data["typing_users"])
	}
	row, _ := typing[0].(map[string]any)
	if row["user_id"] != "bob" || row["is_typing"] != true {
		t.Fatalf("typing row = %v", row)
	}
	// the snapshot goes to the requester only
	expectSilence(t, b)
}
