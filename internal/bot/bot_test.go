package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/cardlearn/internal/learning"
	"github.com/example/cardlearn/internal/logger"
	sr "github.com/example/cardlearn/internal/spaced_repetition"
	"github.com/example/cardlearn/pkg/models"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopped  bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeStore struct {
	decks     []models.Deck
	enrolled  map[string]int64
	submitted []answer
	users     []string
	next      *learning.Next
	err       error
}

func (s *fakeStore) ListVisible(_ context.Context, uid string) ([]models.Deck, error) {
	s.users = append(s.users, uid)
	return s.decks, nil
}

func (s *fakeStore) AddToUser(_ context.Context, deckID int64, uid string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.enrolled[uid] = deckID
	return 2, nil
}

func (s *fakeStore) GetNext(_ context.Context, uid string, deckID int64) (*learning.Next, error) {
	s.users = append(s.users, uid)
	return s.next, s.err
}

func (s *fakeStore) SubmitAction(_ context.Context, uid string, deckID, cardID int64, action string) (*learning.Next, error) {
	s.users = append(s.users, uid)
	s.submitted = append(s.submitted, answer{DeckID: deckID, CardID: cardID, Action: action})
	if s.err != nil {
		return nil, s.err
	}
	return s.next, nil
}

func newTestBot() (*Bot, *fakeAPI, *fakeStore) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	store := &fakeStore{enrolled: map[string]int64{}, next: learning.Finished}
	b := newBot(api, DefaultConfig("token"), store, store, store, logger.Nop())
	return b, api, store
}

func command(text string) *tgbotapi.Message {
	cmd := strings.SplitN(text, " ", 2)[0]
	return &tgbotapi.Message{
		MessageID: 1,
		Text:      text,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 100},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestAnswerRoundTrip(t *testing.T) {
	a := answer{DeckID: 3, CardID: 9001, Action: "good"}
	if a.String() != "a:3:9001:good" {
		t.Fatalf("String() = %q", a.String())
	}
	got, err := parseAnswer(a.String())
	if err != nil || got != a {
		t.Fatalf("parseAnswer = %+v, %v", got, err)
	}
	for _, bad := range []string{"", "a:3:9001", "b:3:9001:good", "a:x:1:good", "a:1:y:good", "a:1:2:good:extra"} {
		if _, err := parseAnswer(bad); !errors.Is(err, errBadCallback) {
			t.Errorf("parseAnswer(%q) err = %v", bad, err)
		}
	}
}

func TestAnswerKeyboard(t *testing.T) {
	kb := answerKeyboard(3, 7)
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != len(sr.Actions) {
		t.Fatalf("keyboard = %+v", kb)
	}
	for i, action := range sr.Actions {
		btn := kb.InlineKeyboard[0][i]
		want := fmt.Sprintf("a:3:7:%s", action)
		if btn.CallbackData == nil || *btn.CallbackData != want {
			t.Errorf("button %d data = %v, want %s", i, btn.CallbackData, want)
		}
	}
}

func TestRenderCardHidesAnswer(t *testing.T) {
	text := renderCard(&learning.CardPayload{
		Word:        "<cat>",
		Translation: "кошка",
		Description: "a pet",
		Decoys:      []string{"собака", "птица"},
	})
	if !strings.Contains(text, "<b>&lt;cat&gt;</b>") {
		t.Errorf("word not escaped: %s", text)
	}
	if !strings.Contains(text, "<tg-spoiler>кошка</tg-spoiler>") {
		t.Errorf("answer not hidden: %s", text)
	}
	first, second, third := strings.Index(text, "• кошка"), strings.Index(text, "• птица"), strings.Index(text, "• собака")
	if first < 0 || first > second || second > third {
		t.Errorf("options not sorted: %s", text)
	}
}

func TestLearnCommandSendsCard(t *testing.T) {
	b, api, store := newTestBot()
	store.next = &learning.Next{Card: &learning.CardPayload{CardID: 7, DeckID: 3, Word: "cat", Translation: "кошка"}}

	if err := b.HandleCommand(context.Background(), command("/learn 3")); err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	msg := api.last(t)
	if msg.ChatID != 100 || msg.ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("message = %+v", msg)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || *kb.InlineKeyboard[0][2].CallbackData != "a:3:7:good" {
		t.Fatalf("reply markup = %+v", msg.ReplyMarkup)
	}
	if store.users[0] != "tg:42" {
		t.Fatalf("user id = %q", store.users[0])
	}
}

func TestLearnCommandUsage(t *testing.T) {
	b, api, _ := newTestBot()
	if err := b.HandleCommand(context.Background(), command("/learn abc")); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(api.last(t).Text, "Usage") {
		t.Fatalf("text = %q", api.last(t).Text)
	}
}

func TestEnrollAndDecks(t *testing.T) {
	b, api, store := newTestBot()
	store.decks = []models.Deck{{ID: 1, Title: "Basics", IsDefault: true}}

	if err := b.HandleCommand(context.Background(), command("/decks")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(api.last(t).Text, "1. Basics (shared)") {
		t.Fatalf("decks text = %q", api.last(t).Text)
	}

	if err := b.HandleCommand(context.Background(), command("/enroll 1")); err != nil {
		t.Fatal(err)
	}
	if store.enrolled["tg:42"] != 1 || !strings.HasPrefix(api.last(t).Text, "Added 2") {
		t.Fatalf("enroll: %+v %q", store.enrolled, api.last(t).Text)
	}

	store.err = fmt.Errorf("deck 5: %w", models.ErrNotFound)
	if err := b.HandleCommand(context.Background(), command("/enroll 5")); err != nil {
		t.Fatalf("not found should be reported to the chat, got %v", err)
	}
	if !strings.Contains(api.last(t).Text, "not found") {
		t.Fatalf("text = %q", api.last(t).Text)
	}
}

func TestCallbackSubmitsAction(t *testing.T) {
	b, api, store := newTestBot()
	cb := &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 100}},
		Data:    "a:3:7:hard",
	}
	if err := b.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if len(store.submitted) != 1 || store.submitted[0] != (answer{DeckID: 3, CardID: 7, Action: "hard"}) {
		t.Fatalf("submitted = %+v", store.submitted)
	}
	if !strings.Contains(api.last(t).Text, "Nothing left") {
		t.Fatalf("text = %q", api.last(t).Text)
	}
	if len(api.requests) != 2 {
		t.Fatalf("expected callback answer and keyboard edit, got %d requests", len(api.requests))
	}

	store.err = fmt.Errorf("submit: %w", sr.ErrInvalidAction)
	cb.Data = "a:3:7:skip"
	if err := b.HandleCallback(context.Background(), cb); err != nil {
		t.Fatal(err)
	}
	if api.last(t).Text != "⚠️ Unknown answer" {
		t.Fatalf("text = %q", api.last(t).Text)
	}

	cb.Data = "garbage"
	if err := b.HandleCallback(context.Background(), cb); err != nil {
		t.Fatal(err)
	}
	if len(store.submitted) != 2 {
		t.Fatalf("garbage callback reached the session")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	b, api, store := newTestBot()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: command("/learn 3")}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if !api.stopped {
		t.Fatal("updates not stopped")
	}
	if len(api.sent) != 1 || len(store.users) != 1 {
		t.Fatalf("update not handled before return: sent=%d", len(api.sent))
	}
}

func TestReportDueRemindsTelegramUsers(t *testing.T) {
	b, api, _ := newTestBot()
	counts := []models.DueCount{
		{UserID: "tg:42", DeckID: 3, Due: 1},
		{UserID: "alice", DeckID: 3, Due: 5},
		{UserID: "tg:7", DeckID: 1, Due: 4},
	}
	if err := b.ReportDue(context.Background(), models.Date{}, counts); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 2 {
		t.Fatalf("sent %d reminders, want 2", len(api.sent))
	}
	if api.sent[0].ChatID != 42 || !strings.Contains(api.sent[0].Text, "1 card due in deck 3") {
		t.Fatalf("first reminder = %+v", api.sent[0])
	}
	if api.sent[1].ChatID != 7 || !strings.Contains(api.sent[1].Text, "/learn 1") {
		t.Fatalf("second reminder = %+v", api.sent[1])
	}
}
