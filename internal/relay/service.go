// Package relay coordinates the pipeline from an incoming chat update to an
// outgoing reply: extract track candidates from the message text, resolve
// them against the catalog, and deliver the canonical link.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sydlexius/tracklink/internal/catalog"
	"github.com/sydlexius/tracklink/internal/event"
	"github.com/sydlexius/tracklink/internal/match"
	"github.com/sydlexius/tracklink/internal/telegram"
	"github.com/sydlexius/tracklink/internal/track"
)

const defaultLinkPrefix = "🎵 Listen on Spotify: "

// Messenger is the slice of the chat API the relay needs to deliver replies.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string) error
}

// Config holds relay behavior settings.
type Config struct {
	// ChannelID restricts processing to one chat. Zero accepts any chat
	// unless ChannelUsername is set.
	ChannelID int64

	// ChannelUsername restricts processing to the chat with this username
	// (leading @ optional, compared case-insensitively). Empty accepts any
	// chat unless ChannelID is set.
	ChannelUsername string

	// MaxCandidates caps how many track candidates are mined per message.
	MaxCandidates int

	// LinkPrefix starts every reply line, and marks a message as already
	// handled when it shows up in the incoming text.
	LinkPrefix string

	// NotFoundMessage is sent when no candidate matched. Empty disables
	// not-found replies and unmatched messages are left alone.
	NotFoundMessage string
}

// Service runs the relay pipeline for incoming updates.
type Service struct {
	resolver  *match.Resolver
	messenger Messenger
	bus       *event.Bus
	config    Config
	logger    *slog.Logger
}

// NewService creates the relay service.
func NewService(resolver *match.Resolver, messenger Messenger, bus *event.Bus, config Config, logger *slog.Logger) *Service {
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = track.DefaultMaxCandidates
	}
	if config.LinkPrefix == "" {
		config.LinkPrefix = defaultLinkPrefix
	}
	return &Service{
		resolver:  resolver,
		messenger: messenger,
		bus:       bus,
		config:    config,
		logger:    logger.With(slog.String("component", "relay")),
	}
}

// HandleUpdate processes one update end to end and sends at most one reply.
// It returns an error only when the catalog rate-limited the lookup and no
// candidate matched; the webhook handler turns that into a 503 so the chat
// platform redelivers the update later. Every other failure is logged and
// swallowed here.
func (s *Service) HandleUpdate(ctx context.Context, update telegram.Update) error {
	correlation := uuid.NewString()
	logger := s.logger.With(
		slog.String("correlation", correlation),
		slog.Int64("update_id", update.UpdateID),
	)

	msg := update.Payload()
	if msg == nil {
		logger.Debug("update carries no message")
		return nil
	}
	if !s.allowed(msg) {
		logger.Debug("ignoring message from foreign chat", "chat_id", msg.Chat.ID)
		return nil
	}

	text := msg.MessageText()
	if text == "" {
		logger.Debug("message has no usable text", "message_id", msg.MessageID)
		return nil
	}
	if strings.Contains(text, s.config.LinkPrefix) {
		logger.Debug("message already carries a link", "message_id", msg.MessageID)
		return nil
	}

	candidates := track.Extract(text, s.config.MaxCandidates)
	if len(candidates) == 0 {
		logger.Debug("no track candidates in message", "message_id", msg.MessageID)
		return nil
	}

	result, err := s.resolve(ctx, candidates)
	if err != nil {
		var rateLimited *catalog.ErrRateLimited
		if errors.As(err, &rateLimited) {
			logger.Warn("catalog rate limited, leaving update for redelivery",
				"retry_after", rateLimited.RetryAfter)
			return err
		}
		logger.Error("catalog lookup failed", "error", err)
		s.bus.Publish(event.Event{
			Type:        event.LookupFailed,
			Correlation: correlation,
			Data:        map[string]any{"chat_id": msg.Chat.ID, "error": err.Error()},
		})
		return nil
	}

	if result == nil || result.Entry.URL == "" {
		if result != nil {
			logger.Warn("matched entry has no canonical link",
				"artist", result.Entry.Artist, "title", result.Entry.Title)
		} else {
			logger.Info("no confident match", "candidates", len(candidates))
		}
		s.bus.Publish(event.Event{
			Type:        event.TrackUnmatched,
			Correlation: correlation,
			Data: map[string]any{
				"chat_id":    msg.Chat.ID,
				"message_id": msg.MessageID,
				"candidates": len(candidates),
			},
		})
		s.replyNotFound(ctx, logger, msg)
		return nil
	}

	if err := s.reply(ctx, msg, result); err != nil {
		logger.Error("sending reply failed", "error", err)
		s.bus.Publish(event.Event{
			Type:        event.ReplyFailed,
			Correlation: correlation,
			Data:        map[string]any{"chat_id": msg.Chat.ID, "error": err.Error()},
		})
		return nil
	}

	logger.Info("track linked",
		"artist", result.Entry.Artist,
		"title", result.Entry.Title,
		"url", result.Entry.URL,
		"confidence", result.Confidence,
	)
	s.bus.Publish(event.Event{
		Type:        event.TrackLinked,
		Correlation: correlation,
		Data: map[string]any{
			"chat_id":    msg.Chat.ID,
			"message_id": msg.MessageID,
			"artist":     result.Entry.Artist,
			"title":      result.Entry.Title,
			"url":        result.Entry.URL,
			"confidence": result.Confidence,
		},
	})
	return nil
}

// allowed reports whether the message's chat passes the channel filter. An
// unset filter accepts every chat.
func (s *Service) allowed(msg *telegram.Message) bool {
	if s.config.ChannelID == 0 && s.config.ChannelUsername == "" {
		return true
	}
	if s.config.ChannelID != 0 && msg.Chat.ID == s.config.ChannelID {
		return true
	}
	return s.config.ChannelUsername != "" &&
		strings.EqualFold(strings.TrimPrefix(s.config.ChannelUsername, "@"), msg.Chat.Username)
}

// resolve runs one catalog lookup per candidate concurrently and picks the
// first qualifying match in candidate order, so an early strong candidate
// beats a later one regardless of which lookup returns first. When nothing
// matched, a rate limit outranks other lookup errors so the caller can ask
// for redelivery.
func (s *Service) resolve(ctx context.Context, candidates []track.Candidate) (*match.Result, error) {
	results := make([]*match.Result, len(candidates))
	errs := make([]error, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxCandidates)
	for i, c := range candidates {
		g.Go(func() error {
			results[i], errs[i] = s.resolver.Resolve(ctx, c)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines report through the errs slice

	var rateLimitErr, firstErr error
	for i, r := range results {
		if errs[i] != nil {
			var rl *catalog.ErrRateLimited
			if rateLimitErr == nil && errors.As(errs[i], &rl) {
				rateLimitErr = errs[i]
			}
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		if r != nil {
			return r, nil
		}
	}

	if rateLimitErr != nil {
		return nil, rateLimitErr
	}
	return nil, firstErr
}

func (s *Service) reply(ctx context.Context, msg *telegram.Message, result *match.Result) error {
	line := s.config.LinkPrefix + result.Entry.URL
	if msg.Caption != "" {
		return s.messenger.EditMessageCaption(ctx, msg.Chat.ID, msg.MessageID, msg.Caption+"\n"+line)
	}
	return s.messenger.SendMessage(ctx, msg.Chat.ID, line)
}

func (s *Service) replyNotFound(ctx context.Context, logger *slog.Logger, msg *telegram.Message) {
	if s.config.NotFoundMessage == "" {
		return
	}
	if err := s.messenger.SendMessage(ctx, msg.Chat.ID, s.config.NotFoundMessage); err != nil {
		logger.Error("sending not-found reply failed", "error", err)
	}
}
