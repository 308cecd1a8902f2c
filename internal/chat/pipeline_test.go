package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/kwlam/sitechat/internal/analytics"
	"github.com/kwlam/sitechat/internal/composer"
	"github.com/kwlam/sitechat/internal/config"
	"github.com/kwlam/sitechat/internal/content"
	"github.com/kwlam/sitechat/internal/conversation"
	"github.com/kwlam/sitechat/internal/db"
	"github.com/kwlam/sitechat/internal/llm"
)

type scriptedCompleter struct {
	reply    string
	err      error
	received [][]llm.Message
}

func (c *scriptedCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	copied := make([]llm.Message, len(messages))
	copy(copied, messages)
	c.received = append(c.received, copied)
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

type fixedHarvester struct{ harvest content.Harvest }

func (h *fixedHarvester) Gather(ctx context.Context) content.Harvest { return h.harvest }

func storeHoursHarvest() content.Harvest {
	return content.Harvest{
		Pages: []content.Snippet{{
			Kind:  content.KindPage,
			Title: "Contact Us",
			Body:  "Open Monday to Saturday, 10am to 7pm. Closed Sundays.",
			URL:   "https://shop.example/contact/",
		}},
	}
}

func newTestPipeline(t *testing.T, completer Completer) (*Pipeline, *conversation.Store, *analytics.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultSettings()
	cfg.Site.Name = "Swim Shop"
	cfg.Site.URL = "https://shop.example"

	store := conversation.NewStore(database)
	stats := analytics.NewStore(database)
	comp := composer.New(cfg)
	pipeline := NewPipeline(store, stats, &fixedHarvester{harvest: storeHoursHarvest()}, comp, completer, cfg.Site.DefaultLocale)
	return pipeline, store, stats
}

func TestSendMessageSuccess(t *testing.T) {
	completer := &scriptedCompleter{reply: "We open Monday to Saturday, 10am to 7pm."}
	pipeline, store, stats := newTestPipeline(t, completer)
	ctx := context.Background()

	reply, err := pipeline.SendMessage(ctx, SendRequest{
		Fingerprint: "203.0.113.7",
		Body:        "What are your opening hours?",
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if reply.ConversationID == "" {
		t.Error("expected a conversation id")
	}
	if reply.Failed {
		t.Errorf("unexpected failure: %s", reply.ErrorKind)
	}
	if reply.Body != completer.reply {
		t.Errorf("reply = %q", reply.Body)
	}

	// System prompt carries the harvested store-hours page.
	if len(completer.received) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(completer.received))
	}
	system := completer.received[0][0]
	if system.Role != llm.RoleSystem {
		t.Errorf("first message role = %q, want system", system.Role)
	}
	if !strings.Contains(system.Content, "Closed Sundays.") {
		t.Error("system prompt missing harvested page content")
	}

	// Both turns are stored.
	msgs, err := store.Messages(ctx, reply.ConversationID)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("stored messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != conversation.RoleUser || msgs[1].Role != conversation.RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}

	sum, err := stats.Window(ctx, 1)
	if err != nil {
		t.Fatalf("Window() error: %v", err)
	}
	if sum.ConversationsStarted != 1 || sum.MessagesSent != 1 {
		t.Errorf("analytics = %+v, want 1 started / 1 sent", sum)
	}
}

func TestSendMessageReplaysHistory(t *testing.T) {
	completer := &scriptedCompleter{reply: "10am to 7pm."}
	pipeline, _, _ := newTestPipeline(t, completer)
	ctx := context.Background()

	first, err := pipeline.SendMessage(ctx, SendRequest{Fingerprint: "203.0.113.7", Body: "When do you open?"})
	if err != nil {
		t.Fatalf("first SendMessage() error: %v", err)
	}

	second, err := pipeline.SendMessage(ctx, SendRequest{Fingerprint: "203.0.113.7", Body: "And on Sundays?"})
	if err != nil {
		t.Fatalf("second SendMessage() error: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Error("same fingerprint should reuse the conversation")
	}

	// Second call: system + prior exchange + new user message.
	msgs := completer.received[1]
	if len(msgs) != 4 {
		t.Fatalf("second completion messages = %d, want 4", len(msgs))
	}
	if msgs[1].Content != "When do you open?" || msgs[1].Role != llm.RoleUser {
		t.Errorf("history[0] = %+v", msgs[1])
	}
	if msgs[2].Content != "10am to 7pm." || msgs[2].Role != llm.RoleAssistant {
		t.Errorf("history[1] = %+v", msgs[2])
	}
	if msgs[3].Content != "And on Sundays?" {
		t.Errorf("in-flight message = %q", msgs[3].Content)
	}
}

func TestSendMessageCompletionFailure(t *testing.T) {
	completer := &scriptedCompleter{err: &llm.Error{Kind: llm.ErrAuth, Status: 401, Detail: "invalid key"}}
	pipeline, store, _ := newTestPipeline(t, completer)
	ctx := context.Background()

	reply, err := pipeline.SendMessage(ctx, SendRequest{Fingerprint: "203.0.113.7", Body: "hello"})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if !reply.Failed || reply.ErrorKind != llm.ErrAuth {
		t.Errorf("expected auth failure, got %+v", reply)
	}
	if reply.ConversationID == "" {
		t.Error("conversation id must survive a completion failure")
	}
	if !strings.Contains(reply.Body, "抱歉") {
		t.Errorf("expected chinese fallback by default, got %q", reply.Body)
	}
	if strings.Contains(reply.Body, "invalid key") {
		t.Error("provider detail must not leak to the user")
	}

	// The user turn is kept; no assistant turn is stored for a failure.
	msgs, _ := store.Messages(ctx, reply.ConversationID)
	if len(msgs) != 1 {
		t.Errorf("stored messages = %d, want 1", len(msgs))
	}
}

func TestSendMessageEnglishFallback(t *testing.T) {
	completer := &scriptedCompleter{err: &llm.Error{Kind: llm.ErrTimeout, Detail: "deadline"}}
	pipeline, _, _ := newTestPipeline(t, completer)

	reply, err := pipeline.SendMessage(context.Background(), SendRequest{
		Fingerprint: "203.0.113.7",
		PageURL:     "https://shop.example/en/contact/",
		Body:        "hello",
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if !strings.Contains(reply.Body, "taking too long") {
		t.Errorf("expected english timeout fallback, got %q", reply.Body)
	}
}

func TestSendMessageEmpty(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, &scriptedCompleter{reply: "x"})
	_, err := pipeline.SendMessage(context.Background(), SendRequest{Fingerprint: "203.0.113.7", Body: "   \x00 "})
	if err != ErrEmptyMessage {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}
