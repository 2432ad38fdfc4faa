package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/tubelens/tubelens/internal/gemini"
)

// fakeModel scripts the upstream response for one call.
type fakeModel struct {
	configured bool
	resp       *gemini.Response
	err        error
	gotParts   []gemini.Part
}

func (f *fakeModel) GenerateContent(ctx context.Context, parts []gemini.Part) (*gemini.Response, error) {
	f.gotParts = parts
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeModel) Configured() bool { return f.configured }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGateway(m Model) *Gateway {
	return New(m, Options{HistoryWindow: 6, TimestampLimit: 10}, discardLogger())
}

func textResponse(text string) *gemini.Response {
	return &gemini.Response{
		Candidates: []gemini.Candidate{{
			Content:      gemini.Content{Parts: []gemini.Part{{Text: text}}},
			FinishReason: "STOP",
		}},
	}
}

func TestGenerateTimestamps_Success(t *testing.T) {
	m := &fakeModel{configured: true, resp: textResponse(
		"Here are the sections:\n" +
			"0:00 - Intro\n" +
			"  2:34 – Main topic\n" + // en dash, leading whitespace
			"not a timestamp line\n" +
			"1:23:45 - Conclusion",
	)}

	got, err := newGateway(m).GenerateTimestamps(context.Background(), "abc12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"0:00 - Intro", "2:34 - Main topic", "1:23:45 - Conclusion"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("timestamps = %v, want %v", got, want)
	}

	// The video must be handed over by reference, never decoded locally.
	if len(m.gotParts) != 2 || m.gotParts[1].FileData == nil {
		t.Fatalf("parts = %+v", m.gotParts)
	}
	fd := m.gotParts[1].FileData
	if fd.FileURI != "https://www.youtube.com/watch?v=abc12345678" || fd.MIMEType != "video/mp4" {
		t.Errorf("file data = %+v", fd)
	}
}

func TestGenerateTimestamps_MissingVideoID(t *testing.T) {
	_, err := newGateway(&fakeModel{configured: true}).GenerateTimestamps(context.Background(), "")
	assertKind(t, err, InvalidInput, http.StatusBadRequest)
}

func TestGenerateTimestamps_NotConfigured(t *testing.T) {
	_, err := newGateway(&fakeModel{configured: false}).GenerateTimestamps(context.Background(), "abc12345678")
	assertKind(t, err, ServiceMisconfigured, http.StatusInternalServerError)
}

func TestGenerateTimestamps_BlockedPrompt(t *testing.T) {
	m := &fakeModel{configured: true, resp: &gemini.Response{
		PromptFeedback: &gemini.PromptFeedback{BlockReason: "SAFETY"},
	}}

	_, err := newGateway(m).GenerateTimestamps(context.Background(), "abc12345678")
	gwErr := assertKind(t, err, ContentBlocked, http.StatusBadRequest)
	if !strings.Contains(gwErr.Message, "SAFETY") || !strings.Contains(gwErr.Message, "flagged for safety concerns") {
		t.Errorf("message = %q", gwErr.Message)
	}
}

func TestGenerateTimestamps_BlockedOtherHint(t *testing.T) {
	m := &fakeModel{configured: true, resp: &gemini.Response{
		PromptFeedback: &gemini.PromptFeedback{BlockReason: "OTHER"},
	}}

	_, err := newGateway(m).GenerateTimestamps(context.Background(), "abc12345678")
	gwErr := assertKind(t, err, ContentBlocked, http.StatusBadRequest)
	if !strings.Contains(gwErr.Message, "educational videos") {
		t.Errorf("expected OTHER-specific hint, got %q", gwErr.Message)
	}
}

func TestGenerateTimestamps_NoCandidates(t *testing.T) {
	m := &fakeModel{configured: true, resp: &gemini.Response{}}

	_, err := newGateway(m).GenerateTimestamps(context.Background(), "abc12345678")
	assertKind(t, err, NoResponse, http.StatusBadRequest)
}

func TestGenerateTimestamps_SafetyFinish(t *testing.T) {
	m := &fakeModel{configured: true, resp: &gemini.Response{
		Candidates: []gemini.Candidate{{FinishReason: "SAFETY"}},
	}}

	_, err := newGateway(m).GenerateTimestamps(context.Background(), "abc12345678")
	assertKind(t, err, ContentBlocked, http.StatusBadRequest)
}

func TestGenerateTimestamps_UpstreamErrorRemap(t *testing.T) {
	cases := []struct {
		errText string
		kind    Kind
		status  int
	}{
		{"Response was blocked due to policy", ContentBlocked, http.StatusBadRequest},
		{"Text not available for this video", ContentBlocked, http.StatusBadRequest},
		{"candidate rejected: SAFETY", ContentBlocked, http.StatusBadRequest},
		{"connection reset by peer", UpstreamFailure, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		m := &fakeModel{configured: true, err: errors.New(tc.errText)}
		_, err := newGateway(m).GenerateTimestamps(context.Background(), "abc12345678")
		gwErr := assertKind(t, err, tc.kind, tc.status)
		if strings.Contains(gwErr.Message, tc.errText) {
			t.Errorf("raw upstream text leaked into %q", gwErr.Message)
		}
	}
}

func TestChat_Success(t *testing.T) {
	m := &fakeModel{configured: true, resp: textResponse(
		"At 2:34 the speaker introduces the topic, and around 1:23:45 it wraps up (see 0:16 too).",
	)}

	res, err := newGateway(m).Chat(context.Background(), ChatRequest{
		Message: "what happens?",
		VideoID: "abc12345678",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(res.Content, "At 2:34") {
		t.Errorf("content = %q", res.Content)
	}
	want := []string{"2:34", "1:23:45", "0:16"}
	if !reflect.DeepEqual(res.Timestamps, want) {
		t.Errorf("timestamps = %v, want %v", res.Timestamps, want)
	}
}

func TestChat_MissingFields(t *testing.T) {
	gw := newGateway(&fakeModel{configured: true})

	_, err := gw.Chat(context.Background(), ChatRequest{VideoID: "abc12345678"})
	assertKind(t, err, InvalidInput, http.StatusBadRequest)

	_, err = gw.Chat(context.Background(), ChatRequest{Message: "hello"})
	assertKind(t, err, InvalidInput, http.StatusBadRequest)
}

func TestChat_NotConfigured(t *testing.T) {
	// Misconfiguration wins regardless of input validity.
	_, err := newGateway(&fakeModel{configured: false}).Chat(context.Background(), ChatRequest{
		Message: "hello",
		VideoID: "abc12345678",
	})
	assertKind(t, err, ServiceMisconfigured, http.StatusInternalServerError)
}

func TestChat_ContextWindowing(t *testing.T) {
	m := &fakeModel{configured: true, resp: textResponse("ok")}
	gw := newGateway(m)

	var ctxMsgs []ContextMessage
	for i := 0; i < 10; i++ {
		ctxMsgs = append(ctxMsgs, ContextMessage{Role: "user", Content: fmt.Sprintf("message %d", i)})
	}
	var stamps []string
	for i := 0; i < 15; i++ {
		stamps = append(stamps, fmt.Sprintf("%d:00 - Section %d", i, i))
	}

	_, err := gw.Chat(context.Background(), ChatRequest{
		Message:         "question",
		VideoID:         "abc12345678",
		Context:         ctxMsgs,
		KnownTimestamps: stamps,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := m.gotParts[0].Text
	if strings.Contains(prompt, "message 3") {
		t.Error("prompt contains history older than the 6-message window")
	}
	for i := 4; i < 10; i++ {
		if !strings.Contains(prompt, fmt.Sprintf("message %d", i)) {
			t.Errorf("prompt missing recent message %d", i)
		}
	}

	if strings.Contains(prompt, "Section 10") {
		t.Error("prompt contains timestamps beyond the 10-entry limit")
	}
	if !strings.Contains(prompt, "Section 9") {
		t.Error("prompt missing timestamp within the limit")
	}
	if !strings.Contains(prompt, "User question: question") {
		t.Error("prompt missing user question")
	}
}

func TestChat_BlockedUsesSingleMessage(t *testing.T) {
	m := &fakeModel{configured: true, resp: &gemini.Response{
		PromptFeedback: &gemini.PromptFeedback{BlockReason: "OTHER"},
	}}

	_, err := newGateway(m).Chat(context.Background(), ChatRequest{
		Message: "hello",
		VideoID: "abc12345678",
	})
	gwErr := assertKind(t, err, ContentBlocked, http.StatusBadRequest)
	if !strings.Contains(gwErr.Message, "different question") {
		t.Errorf("message = %q", gwErr.Message)
	}
	// No reason-specific hint on the chat side.
	if strings.Contains(gwErr.Message, "OTHER") {
		t.Errorf("chat block message should not carry the reason, got %q", gwErr.Message)
	}
}

func TestBuildChatPrompt_RoleRendering(t *testing.T) {
	prompt := buildChatPrompt("next", []ContextMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
	}, nil, 6, 10)

	if !strings.Contains(prompt, "User: first question") {
		t.Error("user turn not rendered")
	}
	if !strings.Contains(prompt, "Assistant: first answer") {
		t.Error("assistant turn not rendered")
	}
	if strings.Contains(prompt, "Existing video timestamps") {
		t.Error("timestamp block rendered with no known timestamps")
	}
}

func TestExtractionAsymmetry(t *testing.T) {
	text := "Summary with inline 3:21 mention\n0:00 - Intro"

	// Line extractor only accepts "<clock> - title" lines.
	if got := extractTimestampLines(text); !reflect.DeepEqual(got, []string{"0:00 - Intro"}) {
		t.Errorf("extractTimestampLines = %v", got)
	}

	// Loose scan sees every clock substring.
	if got := scanClockTimes(text); !reflect.DeepEqual(got, []string{"3:21", "0:00"}) {
		t.Errorf("scanClockTimes = %v", got)
	}
}

func assertKind(t *testing.T, err error, kind Kind, status int) *Error {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("error %v is not a gateway.Error", err)
	}
	if gwErr.Kind != kind {
		t.Fatalf("kind = %d, want %d (message %q)", gwErr.Kind, kind, gwErr.Message)
	}
	if gwErr.HTTPStatus() != status {
		t.Fatalf("status = %d, want %d", gwErr.HTTPStatus(), status)
	}
	return gwErr
}
