// Package gateway relays timestamp-generation and video-chat requests to
// the upstream multimodal model and normalizes its responses and failure
// modes into a small stable contract. Both operations are stateless: no
// session lives server-side, and repeating a call has no side effect
// beyond the call itself.
package gateway

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tubelens/tubelens/internal/gemini"
	"github.com/tubelens/tubelens/internal/video"
)

// Model is the upstream client surface the gateway depends on.
type Model interface {
	GenerateContent(ctx context.Context, parts []gemini.Part) (*gemini.Response, error)
	Configured() bool
}

// Options bounds how much context is forwarded upstream. The windows cap
// prompt size; they are policy constants, not caches.
type Options struct {
	HistoryWindow  int
	TimestampLimit int
}

// Gateway owns the upstream credential and the prompt assembly for both
// operations.
type Gateway struct {
	model  Model
	opts   Options
	logger *slog.Logger
}

func New(model Model, opts Options, logger *slog.Logger) *Gateway {
	return &Gateway{model: model, opts: opts, logger: logger}
}

var (
	// One timestamp per line, "<clock> - title" (hyphen or en dash).
	timestampLineRe = regexp.MustCompile(`^\s*(\d{1,2}:\d{2}(?::\d{2})?)\s*[-–]\s*(.+)`)
	// Any clock substring anywhere. Chat prose embeds timestamps inline,
	// so this scan is deliberately looser than the line extractor above.
	clockScanRe = regexp.MustCompile(`\b(\d{1,2}:\d{2}(?::\d{2})?)\b`)
)

// GenerateTimestamps asks the model for "<clock> - title" section markers
// covering the referenced video and returns the normalized matching lines.
func (g *Gateway) GenerateTimestamps(ctx context.Context, videoID string) ([]string, error) {
	if videoID == "" {
		return nil, invalidInput("Video ID is required")
	}
	if !g.model.Configured() {
		g.logger.Error("upstream credential missing")
		return nil, misconfigured()
	}

	g.logger.Info("generating timestamps", "video_id", videoID)

	resp, err := g.model.GenerateContent(ctx, []gemini.Part{
		{Text: timestampPrompt},
		{FileData: &gemini.FileData{
			FileURI:  video.WatchURL(videoID),
			MIMEType: "video/mp4",
		}},
	})
	if err != nil {
		return nil, g.remapUpstreamError(err,
			"This video content cannot be analyzed due to safety restrictions. Please try a different video.",
			"Unable to analyze this video. It may be private, restricted, or not accessible to the AI model.",
			"Video content blocked by safety filters. Please try a different video.",
			"Failed to generate timestamps. Please try again with a different video.")
	}

	if gwErr := checkResponse(resp,
		blockHint,
		"No response generated. The video might not be accessible or suitable for analysis.",
		"Content was blocked by safety filters. Try with a different video.",
	); gwErr != nil {
		g.logger.Warn("timestamp generation rejected", "video_id", videoID, "error", gwErr.Message)
		return nil, gwErr
	}

	timestamps := extractTimestampLines(resp.Text())
	g.logger.Info("timestamps generated", "video_id", videoID, "count", len(timestamps))
	return timestamps, nil
}

// ChatRequest is one chat turn: the user's message plus bounded context.
type ChatRequest struct {
	Message         string
	VideoID         string
	Context         []ContextMessage
	KnownTimestamps []string
}

// ChatResult is the model's answer plus every clock-format substring
// found in it.
type ChatResult struct {
	Content    string
	Timestamps []string
}

// Chat answers a question about the referenced video given the recent
// conversation window and any known timestamps.
func (g *Gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if req.Message == "" || req.VideoID == "" {
		return nil, invalidInput("Message and video ID are required")
	}
	if !g.model.Configured() {
		g.logger.Error("upstream credential missing")
		return nil, misconfigured()
	}

	prompt := buildChatPrompt(req.Message, req.Context, req.KnownTimestamps, g.opts.HistoryWindow, g.opts.TimestampLimit)

	g.logger.Info("processing chat message", "video_id", req.VideoID, "context_len", len(req.Context))

	resp, err := g.model.GenerateContent(ctx, []gemini.Part{
		{Text: prompt},
		{FileData: &gemini.FileData{
			FileURI:  video.WatchURL(req.VideoID),
			MIMEType: "video/mp4",
		}},
	})
	if err != nil {
		return nil, g.remapUpstreamError(err,
			"Response was blocked by safety filters. Please try a different question.",
			"Unable to analyze this video. It may be private, restricted, or not accessible.",
			"Response blocked by safety filters. Please try a different question.",
			"Failed to process chat message. Please try again.")
	}

	if gwErr := checkResponse(resp,
		func(string) string {
			return "Response was blocked by safety filters. Please try a different question."
		},
		"No response generated. Please try a different question.",
		"Response was blocked by safety filters. Please try a different question.",
	); gwErr != nil {
		g.logger.Warn("chat rejected", "video_id", req.VideoID, "error", gwErr.Message)
		return nil, gwErr
	}

	text := resp.Text()
	timestamps := scanClockTimes(text)
	g.logger.Info("chat response ready", "video_id", req.VideoID, "timestamps", len(timestamps))

	return &ChatResult{Content: text, Timestamps: timestamps}, nil
}

// blockHint builds the reason-specific message for a blocked timestamp
// request. The chat operation uses a single message instead; the two ops
// intentionally differ here.
func blockHint(reason string) string {
	msg := "Content was blocked by safety filters (" + reason + ")."
	switch reason {
	case "OTHER":
		return msg + " This video may contain content that doesn't meet AI safety guidelines. Try educational videos like tutorials, documentaries, or lectures."
	case "SAFETY":
		return msg + " This video contains content flagged for safety concerns. Please try a different video."
	default:
		return msg + " Try with a different video - educational content works best."
	}
}

// checkResponse inspects upstream block/candidate/finish metadata and
// returns the matching classified error, or nil for a usable response.
func checkResponse(resp *gemini.Response, blockedMsg func(reason string) string, noCandidatesMsg, safetyStopMsg string) *Error {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return blocked(blockedMsg(resp.PromptFeedback.BlockReason))
	}
	if len(resp.Candidates) == 0 {
		return noResponse(noCandidatesMsg)
	}
	if resp.Candidates[0].FinishReason == "SAFETY" {
		return blocked(safetyStopMsg)
	}
	return nil
}

// remapUpstreamError folds a raw upstream error into the taxonomy. Known
// substrings indicate policy or accessibility problems the user can act
// on; everything else is a generic failure.
func (g *Gateway) remapUpstreamError(err error, blockedMsg, notAvailableMsg, safetyMsg, genericMsg string) *Error {
	text := err.Error()
	g.logger.Error("upstream call failed", "error", err)

	switch {
	case strings.Contains(text, "Response was blocked"), strings.Contains(text, "blocked"):
		return blocked(blockedMsg)
	case strings.Contains(text, "not available"):
		return blocked(notAvailableMsg)
	case strings.Contains(text, "SAFETY"):
		return blocked(safetyMsg)
	default:
		return upstream(genericMsg)
	}
}

// extractTimestampLines keeps only "<clock> - title" lines and normalizes
// each to "<clock> - <title>".
func extractTimestampLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		m := timestampLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, strings.TrimSpace(m[1])+" - "+strings.TrimSpace(m[2]))
	}
	return out
}

// scanClockTimes collects every clock substring in order of appearance.
func scanClockTimes(text string) []string {
	var out []string
	for _, m := range clockScanRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}
