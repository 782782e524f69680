package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/adapter"
	"github.com/kapu/interrupt-bot-go/internal/domain"
	"github.com/kapu/interrupt-bot-go/internal/service"
	"github.com/kapu/interrupt-bot-go/internal/service/duty"
	"github.com/kapu/interrupt-bot-go/internal/storage"
	"github.com/kapu/interrupt-bot-go/internal/trello"
)

type fakeKV struct {
	data map[string][]byte
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := f.data[key]
	if !ok {
		return nil, storage.ErrAbsent
	}
	return value, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Close() error { return nil }

type fakeTrello struct {
	members        map[string]*trello.Member
	boardsByMember map[string][]trello.Board
	listsByBoard   map[string][]trello.List
	cardsByList    map[string][]trello.Card
	cardsByID      map[string]*trello.Card
}

func newFakeTrello() *fakeTrello {
	return &fakeTrello{
		members:        make(map[string]*trello.Member),
		boardsByMember: make(map[string][]trello.Board),
		listsByBoard:   make(map[string][]trello.List),
		cardsByList:    make(map[string][]trello.Card),
		cardsByID:      make(map[string]*trello.Card),
	}
}

func (f *fakeTrello) addMember(id, username string) {
	m := &trello.Member{ID: id, Username: username}
	f.members[id] = m
	f.members[username] = m
}

func (f *fakeTrello) addCard(card trello.Card) {
	f.cardsByList[card.IDList] = append(f.cardsByList[card.IDList], card)
	stored := card
	f.cardsByID[card.ID] = &stored
}

func (f *fakeTrello) FindMember(_ context.Context, idOrUsername string) (*trello.Member, error) {
	m, ok := f.members[idOrUsername]
	if !ok {
		return nil, fmt.Errorf("%w: %s", trello.ErrNotFound, idOrUsername)
	}
	return m, nil
}

func (f *fakeTrello) MemberBoards(_ context.Context, idOrUsername string) ([]trello.Board, error) {
	if _, ok := f.members[idOrUsername]; !ok {
		return nil, fmt.Errorf("%w: %s", trello.ErrNotFound, idOrUsername)
	}
	return f.boardsByMember[idOrUsername], nil
}

func (f *fakeTrello) BoardLists(_ context.Context, boardID string) ([]trello.List, error) {
	return f.listsByBoard[boardID], nil
}

func (f *fakeTrello) ListCards(_ context.Context, listID string) ([]trello.Card, error) {
	return f.cardsByList[listID], nil
}

func (f *fakeTrello) FindCard(_ context.Context, cardID string) (*trello.Card, error) {
	card, ok := f.cardsByID[cardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", trello.ErrNotFound, cardID)
	}
	return card, nil
}

// testEnv wires real roster and duty services over in-memory fakes and records
// every outbound side effect in order.
type testEnv struct {
	api    *fakeTrello
	kv     *fakeKV
	roster *service.RosterStore
	deps   *Dependencies

	// events interleaves replies, admin notices and parts in emission order,
	// prefixed reply:/notice:/part:.
	events []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		api: newFakeTrello(),
		kv:  &fakeKV{data: make(map[string][]byte)},
	}
	env.roster = service.NewRosterStore(env.kv, zap.NewNop())

	privileged := map[string]bool{"cersei": true}

	env.deps = &Dependencies{
		Roster:    env.roster,
		Duty:      duty.NewService(env.api, "Game of Boards", zap.NewNop()),
		Trello:    env.api,
		Formatter: adapter.NewResponseFormatter(),
		SendMessage: func(room, message string) error {
			env.events = append(env.events, "reply:"+room+":"+message)
			return nil
		},
		NotifyAdmins: func(message string) {
			env.events = append(env.events, "notice:"+message)
		},
		IsPrivileged: func(userID string) bool { return privileged[userID] },
		LeaveRoom: func(room string) error {
			env.events = append(env.events, "part:"+room)
			return nil
		},
		Logger: zap.NewNop(),
	}
	return env
}

func (env *testEnv) seedRoster(t *testing.T) {
	t.Helper()
	seed := domain.NewRoster().
		With("jon", "jonsnow").
		With("sam", "samwelltarley").
		With("tyrion", "tyrionlannister").
		With("jaime", "jaimelannister")
	if err := env.roster.Put(context.Background(), seed); err != nil {
		t.Fatalf("seed roster: %v", err)
	}
}

func (env *testEnv) seedBoard() {
	env.api.addMember("id-jon", "jonsnow")
	env.api.addMember("id-sam", "samwelltarley")
	env.api.addMember("id-tyrion", "tyrionlannister")
	env.api.addMember("id-jaime", "jaimelannister")

	board := trello.Board{ID: "board-1", Name: "Game of Boards"}
	for _, username := range []string{"jonsnow", "samwelltarley", "tyrionlannister", "jaimelannister"} {
		env.api.boardsByMember[username] = []trello.Board{board}
	}

	env.api.listsByBoard["board-1"] = []trello.List{
		{ID: "list-interrupt", Name: "On Duty", IDBoard: "board-1"},
	}
	env.api.addCard(trello.Card{ID: "card-interrupt", Name: "Interrupt", IDList: "list-interrupt"})
	env.api.addCard(trello.Card{ID: "card-tyrion", Name: "Pay debts", IDList: "list-interrupt", IDMembers: []string{"id-tyrion"}})
	env.api.addCard(trello.Card{ID: "card-jaime", Name: "Guard king", IDList: "list-interrupt", IDMembers: []string{"id-jaime"}})
}

func cmdCtx(sender string) *domain.CommandContext {
	return domain.NewCommandContext("throne-room", sender, "")
}

func TestInterruptPingsCurrentPair(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)
	env.seedBoard()

	cmd := NewInterruptCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("maester"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{"reply:throne-room:<@tyrion> <@jaime>: you have an interrupt from <@maester> ^^"}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestInterruptMultipleCardsNoticePrecedesReply(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)
	env.seedBoard()
	env.api.addCard(trello.Card{ID: "card-dup", Name: "Interrupt", IDList: "list-interrupt"})

	cmd := NewInterruptCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("maester"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{
		"notice:Multiple interrupt cards found! Using first one.",
		"reply:throne-room:<@tyrion> <@jaime>: you have an interrupt from <@maester> ^^",
	}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestInterruptCardMissingNotifiesAdminsOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)
	env.seedBoard()
	env.api.cardsByList["list-interrupt"] = env.api.cardsByList["list-interrupt"][1:] // drop the sentinel

	cmd := NewInterruptCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("maester"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{`notice:Interrupt card not found! Your team trello board needs a list with a card titled "Interrupt".`}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestInterruptBoardMissingNotifiesAdminsOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)
	env.seedBoard()
	for username := range env.api.boardsByMember {
		env.api.boardsByMember[username] = nil
	}

	cmd := NewInterruptCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("maester"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{`notice:Trello team board "Game of Boards" not found! Set "TRELLO_BOARD_NAME" and restart me, please.`}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestInterruptAbsentRosterNotifiesAdminsOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedBoard()

	cmd := NewInterruptCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("maester"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{"notice:You must add some users to the team roster. " +
		"You will need each member's slack handle and trello user name."}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestInterruptUnassignedCardPingsWholeRoster(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)
	env.seedBoard()
	env.api.cardsByList["list-interrupt"] = []trello.Card{
		{ID: "card-interrupt", Name: "Interrupt", IDList: "list-interrupt"},
	}

	cmd := NewInterruptCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("maester"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{"reply:throne-room:<@jon> <@sam> <@tyrion> <@jaime>: you have an interrupt from <@maester> ^^"}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestRemoveSelf(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)

	cmd := NewRemoveCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("sam"), map[string]any{"target": "me"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{`reply:throne-room:Trello user "samwelltarley" (<@sam>) removed!`}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}

	persisted, err := env.roster.Get(context.Background())
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if !reflect.DeepEqual(persisted.Handles(), []string{"jon", "tyrion", "jaime"}) {
		t.Fatalf("unexpected roster after removal: %v", persisted.Handles())
	}
}

func TestRemoveOtherRequiresPrivilege(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)

	cmd := NewRemoveCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("sam"), map[string]any{"target": "@jon"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	// Silently dropped: no reply, no notice, roster untouched.
	if len(env.events) != 0 {
		t.Fatalf("expected no side effects, got %v", env.events)
	}
	persisted, err := env.roster.Get(context.Background())
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if persisted.Len() != 4 {
		t.Fatalf("roster mutated by unauthorized remove: %v", persisted.Handles())
	}
}

func TestRemoveOtherByPrivilegedSender(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)

	cmd := NewRemoveCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("cersei"), map[string]any{"target": "@jon"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{`reply:throne-room:Trello user "jonsnow" (<@jon>) removed!`}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestRemoveUnknownHandleReplies(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)

	cmd := NewRemoveCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("hodor"), map[string]any{"target": "me"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{"reply:throne-room:<@hodor> is not on the team roster."}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestAddSelfValidatesTrelloUsername(t *testing.T) {
	env := newTestEnv(t)
	env.seedBoard()

	cmd := NewAddCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("jon"),
		map[string]any{"target": "me", "username": "jonsnow"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{`reply:throne-room:Trello user "jonsnow" (<@jon>) added!`}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}

	persisted, err := env.roster.Get(context.Background())
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if username, ok := persisted.TrelloUsername("jon"); !ok || username != "jonsnow" {
		t.Fatalf("expected jon persisted, got %q (ok=%v)", username, ok)
	}
}

func TestAddUnknownTrelloUsernameReplies(t *testing.T) {
	env := newTestEnv(t)
	env.seedBoard()

	cmd := NewAddCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("hodor"),
		map[string]any{"target": "me", "username": "hodor"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{`reply:throne-room:Trello user "hodor" not found!`}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}

	// Nothing was persisted for the failed add.
	if _, err := env.roster.Get(context.Background()); !errors.Is(err, service.ErrRosterAbsent) {
		t.Fatalf("expected roster to stay absent, got %v", err)
	}
}

func TestAddOtherRequiresPrivilege(t *testing.T) {
	env := newTestEnv(t)
	env.seedBoard()

	cmd := NewAddCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("jon"),
		map[string]any{"target": "@sam", "username": "samwelltarley"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if len(env.events) != 0 {
		t.Fatalf("expected no side effects, got %v", env.events)
	}
}

func TestAddOtherByPrivilegedSender(t *testing.T) {
	env := newTestEnv(t)
	env.seedBoard()

	cmd := NewAddCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("cersei"),
		map[string]any{"target": "@sam", "username": "samwelltarley"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{`reply:throne-room:Trello user "samwelltarley" (<@sam>) added!`}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestTeamListsRosterInOrder(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoster(t)

	cmd := NewTeamCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("jon"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{"reply:throne-room:The team roster is " +
		"<@jon> => jonsnow, <@sam> => samwelltarley, <@tyrion> => tyrionlannister, <@jaime> => jaimelannister"}
	if !reflect.DeepEqual(env.events, want) {
		t.Fatalf("expected %v, got %v", want, env.events)
	}
}

func TestTeamAbsentRosterNotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)

	cmd := NewTeamCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("jon"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if len(env.events) != 1 || env.events[0][:7] != "notice:" {
		t.Fatalf("expected a single admin notice, got %v", env.events)
	}
}

func TestPartRequiresPrivilege(t *testing.T) {
	env := newTestEnv(t)

	cmd := NewPartCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("jon"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if len(env.events) != 0 {
		t.Fatalf("expected unauthorized part to be dropped, got %v", env.events)
	}

	if err := cmd.Execute(context.Background(), cmdCtx("cersei"), nil); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !reflect.DeepEqual(env.events, []string{"part:throne-room"}) {
		t.Fatalf("expected part, got %v", env.events)
	}
}

func TestEchoRepliesWithGivenText(t *testing.T) {
	env := newTestEnv(t)

	cmd := NewEchoCommand(env.deps)
	if err := cmd.Execute(context.Background(), cmdCtx("jon"), map[string]any{"text": "valar morghulis"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if !reflect.DeepEqual(env.events, []string{"reply:throne-room:valar morghulis"}) {
		t.Fatalf("unexpected events %v", env.events)
	}
}
