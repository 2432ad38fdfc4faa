// Package chat owns one video-analysis conversation: the message history,
// the generated timestamp list, and the single in-flight chat call. At
// most one chat call is live at a time; starting a new send or switching
// videos supersedes the old call, which is then fully discarded — a
// cancelled exchange leaves no trace in history, not even an error entry.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tubelens/tubelens/internal/gateway"
	"github.com/tubelens/tubelens/internal/timestamp"
	"github.com/tubelens/tubelens/internal/video"
)

// ErrInvalidURL reports a video input that did not resolve to an ID.
// Callers should surface it as a validation message, not a failure.
var ErrInvalidURL = errors.New("not a valid YouTube URL or video ID")

// ErrCancelled reports a chat call that was superseded before settling.
var ErrCancelled = errors.New("chat request cancelled")

// ErrNoVideo reports an operation attempted before a video was loaded.
var ErrNoVideo = errors.New("no video loaded")

const welcomeMessage = "Video loaded! I can help you analyze this video content. Ask me questions, or generate timestamps to get started."

// Message is one history entry. Immutable after creation.
type Message struct {
	ID         int64    `json:"id"`
	Role       string   `json:"role"` // "user" or "assistant"
	Content    string   `json:"content"`
	Timestamps []string `json:"timestamps"`
}

// Gateway is the slice of the AI gateway the session drives.
type Gateway interface {
	GenerateTimestamps(ctx context.Context, videoID string) ([]string, error)
	Chat(ctx context.Context, req gateway.ChatRequest) (*gateway.ChatResult, error)
}

type pendingCall struct {
	cancel context.CancelFunc
	msgID  int64
}

// Session drives the gateway for one loaded video.
type Session struct {
	gw     Gateway
	logger *slog.Logger

	mu         sync.Mutex
	videoID    string
	messages   []Message
	timestamps []timestamp.Parsed
	pending    *pendingCall
	lastID     int64
}

func NewSession(gw Gateway, logger *slog.Logger) *Session {
	return &Session{gw: gw, logger: logger}
}

// LoadVideo resolves the input to a video ID and resets the session:
// any in-flight chat call is cancelled and discarded, history and
// timestamps are cleared, and a welcome message opens the new chat.
func (s *Session) LoadVideo(input string) (string, error) {
	id, ok := video.ExtractID(input)
	if !ok {
		return "", ErrInvalidURL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked()
	s.videoID = id
	s.messages = s.messages[:0]
	s.timestamps = nil
	s.appendLocked(Message{Role: "assistant", Content: welcomeMessage})

	s.logger.Info("video loaded", "video_id", id)
	return id, nil
}

// Send appends the user message, supersedes any in-flight call, and asks
// the gateway for a response. The user message is appended before the
// call suspends, so history order always matches send order.
func (s *Session) Send(ctx context.Context, text string) (*Message, error) {
	s.mu.Lock()
	if s.videoID == "" {
		s.mu.Unlock()
		return nil, ErrNoVideo
	}

	s.supersedeLocked()

	// Context window excludes the message being sent.
	history := make([]gateway.ContextMessage, 0, len(s.messages))
	for _, m := range s.messages {
		history = append(history, gateway.ContextMessage{Role: m.Role, Content: m.Content})
	}
	known := make([]string, 0, len(s.timestamps))
	for _, ts := range s.timestamps {
		known = append(known, ts.Time+" - "+ts.Description)
	}

	userMsg := s.appendLocked(Message{Role: "user", Content: text})

	cctx, cancel := context.WithCancel(ctx)
	p := &pendingCall{cancel: cancel, msgID: userMsg.ID}
	s.pending = p
	videoID := s.videoID
	s.mu.Unlock()

	res, err := s.gw.Chat(cctx, gateway.ChatRequest{
		Message:         text,
		VideoID:         videoID,
		Context:         history,
		KnownTimestamps: known,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if cctx.Err() != nil {
		// Superseded or externally cancelled: discard everything. If the
		// superseder already rolled back the user message this is a no-op.
		if s.pending == p {
			s.removeMessageLocked(p.msgID)
			s.pending = nil
		}
		s.logger.Info("chat call discarded after cancellation", "video_id", videoID)
		return nil, ErrCancelled
	}

	s.pending = nil
	cancel()

	if err != nil {
		s.appendLocked(Message{
			Role:    "assistant",
			Content: "Sorry, I encountered an error: " + err.Error(),
		})
		return nil, err
	}

	reply := s.appendLocked(Message{
		Role:       "assistant",
		Content:    res.Content,
		Timestamps: res.Timestamps,
	})
	return &reply, nil
}

// Cancel aborts the in-flight chat call, if any, and rolls back its
// pending user message.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
}

// GenerateTimestamps asks the gateway for section markers and replaces
// the session's timestamp list wholesale. There is no cancellation path
// for this operation; switching videos simply stops observing the result.
func (s *Session) GenerateTimestamps(ctx context.Context) ([]timestamp.Parsed, error) {
	s.mu.Lock()
	videoID := s.videoID
	s.mu.Unlock()
	if videoID == "" {
		return nil, ErrNoVideo
	}

	raw, err := s.gw.GenerateTimestamps(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var parsed []timestamp.Parsed
	for _, line := range raw {
		parsed = append(parsed, timestamp.ExtractLines(line)...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoID != videoID {
		// Video changed while we were waiting; drop the stale result.
		return nil, ErrCancelled
	}
	s.timestamps = parsed
	s.logger.Info("timestamps stored", "video_id", videoID, "count", len(parsed))
	return parsed, nil
}

// Messages returns a copy of the history, oldest first.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Timestamps returns a copy of the current timestamp list.
func (s *Session) Timestamps() []timestamp.Parsed {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]timestamp.Parsed, len(s.timestamps))
	copy(out, s.timestamps)
	return out
}

// VideoID returns the loaded video's ID, or "" before any load.
func (s *Session) VideoID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoID
}

// SeekURL returns an embed URL that starts playback at the given offset.
func (s *Session) SeekURL(seconds int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoID == "" {
		return "", ErrNoVideo
	}
	return video.EmbedURLAt(s.videoID, seconds), nil
}

// supersedeLocked cancels the in-flight call and rolls back its pending
// user message, atomically with whatever the caller does next.
func (s *Session) supersedeLocked() {
	if s.pending == nil {
		return
	}
	s.pending.cancel()
	s.removeMessageLocked(s.pending.msgID)
	s.pending = nil
}

func (s *Session) appendLocked(m Message) Message {
	m.ID = s.nextIDLocked()
	if m.Timestamps == nil {
		m.Timestamps = []string{}
	}
	s.messages = append(s.messages, m)
	return m
}

func (s *Session) removeMessageLocked(id int64) {
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// nextIDLocked issues creation-timestamp IDs, bumped when two messages
// land in the same millisecond so IDs stay strictly increasing.
func (s *Session) nextIDLocked() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
