// Package chat runs the message pipeline: resolve the conversation,
// harvest site context, compose the prompt, and complete.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/kwlam/sitechat/internal/analytics"
	"github.com/kwlam/sitechat/internal/composer"
	"github.com/kwlam/sitechat/internal/config"
	"github.com/kwlam/sitechat/internal/content"
	"github.com/kwlam/sitechat/internal/conversation"
	"github.com/kwlam/sitechat/internal/llm"
	"github.com/kwlam/sitechat/internal/textutil"
)

// ErrEmptyMessage rejects blank input before any work happens.
var ErrEmptyMessage = errors.New("message is empty")

// Completer produces an assistant reply for a message sequence.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Harvester gathers the per-request site context.
type Harvester interface {
	Gather(ctx context.Context) content.Harvest
}

// SendRequest carries one user message plus the request signals used
// for conversation resolution and language detection.
type SendRequest struct {
	Fingerprint    string
	UserAgent      string
	PageURL        string
	AcceptLanguage string
	Body           string
}

// Reply is the pipeline outcome. ConversationID is always set once the
// conversation resolves, even when the completion failed; the widget
// keeps the thread either way.
type Reply struct {
	ConversationID string
	Body           string
	Failed         bool
	ErrorKind      llm.ErrorKind
}

// Pipeline wires the stores, harvester, composer and completion client.
type Pipeline struct {
	store     *conversation.Store
	analytics *analytics.Store
	harvester Harvester
	composer  *composer.Composer
	completer Completer
	locale    config.Locale
}

// NewPipeline builds the message pipeline. analytics may be nil.
func NewPipeline(store *conversation.Store, stats *analytics.Store, harvester Harvester, comp *composer.Composer, completer Completer, siteLocale config.Locale) *Pipeline {
	return &Pipeline{
		store:     store,
		analytics: stats,
		harvester: harvester,
		composer:  comp,
		completer: completer,
		locale:    siteLocale,
	}
}

// SendMessage runs one user message through the pipeline.
func (p *Pipeline) SendMessage(ctx context.Context, req SendRequest) (*Reply, error) {
	body := textutil.Clean(req.Body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	conversationID, created, err := p.store.ResolveOrCreate(ctx, req.Fingerprint, req.UserAgent)
	if err != nil {
		return nil, err
	}

	// The user's message is saved before anything can fail downstream.
	p.store.AppendMessage(ctx, conversationID, conversation.RoleUser, body, "")
	p.recordStats(ctx, created)

	locale := composer.DetectLocale(req.PageURL, req.AcceptLanguage, p.locale)
	harvest := p.harvester.Gather(ctx)
	system := p.composer.BuildPrompt(locale, harvest)

	history, err := p.store.RecentHistory(ctx, conversationID, p.composer.HistoryBound())
	if err != nil {
		log.Printf("chat: loading history for %s: %v", conversationID, err)
	}
	history = composer.FilterTurns(history)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, t := range history {
		messages = append(messages, llm.Message{Role: llm.Role(t.Role), Content: t.Body})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: body})

	answer, err := p.completer.Complete(ctx, messages)
	if err != nil {
		kind := llm.KindOf(err)
		log.Printf("chat: completion for %s failed (%s): %v", conversationID, kind, err)
		return &Reply{
			ConversationID: conversationID,
			Body:           fallbackReply(kind, locale),
			Failed:         true,
			ErrorKind:      kind,
		}, nil
	}

	answer = textutil.Clean(answer)
	p.store.AppendMessage(ctx, conversationID, conversation.RoleAssistant, answer, "")

	return &Reply{ConversationID: conversationID, Body: answer}, nil
}

// History returns the stored transcript for a conversation.
func (p *Pipeline) History(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.New("conversation id is required")
	}
	return p.store.Messages(ctx, conversationID)
}

func (p *Pipeline) recordStats(ctx context.Context, created bool) {
	if p.analytics == nil {
		return
	}
	started := 0
	if created {
		started = 1
	}
	if err := p.analytics.Record(ctx, conversation.PlatformAIChat, started, 1); err != nil {
		log.Printf("chat: recording analytics: %v", err)
	}
}

// fallbackReply is what the user sees when the completion fails. The
// wording stays generic; classification details go to the log only.
func fallbackReply(kind llm.ErrorKind, locale config.Locale) string {
	if locale == config.LocaleEnglish {
		if kind == llm.ErrTimeout {
			return "Sorry, the assistant is taking too long to respond. Please try again in a moment."
		}
		return "Sorry, the assistant is temporarily unavailable. Please try again later or contact our support team."
	}
	if kind == llm.ErrTimeout {
		return "抱歉，助手回應時間過長，請稍後再試。"
	}
	return "抱歉，助手暫時無法使用，請稍後再試或聯繫我們的客服團隊。"
}
