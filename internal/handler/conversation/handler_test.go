package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sumoniya0512-oss/mobifix/internal/model/chat"
	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
	"github.com/sumoniya0512-oss/mobifix/internal/service/assistant"
	conversationService "github.com/sumoniya0512-oss/mobifix/internal/service/conversation"
)

type stubGenerator struct {
	solution assistant.Outcome
}

func (s *stubGenerator) GenerateSolution(context.Context, assistant.SolutionRequest) assistant.Outcome {
	return s.solution
}

func (s *stubGenerator) TranslateText(_ context.Context, text string, _ locale.Language) assistant.Outcome {
	return assistant.Outcome{Text: "translated: " + text}
}

func setupRouter(solution assistant.Outcome) (*chi.Mux, *conversationService.Service) {
	svc := conversationService.NewService(&stubGenerator{solution: solution})
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, svc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createConversation(t *testing.T, r http.Handler) chat.Conversation {
	t.Helper()

	resp := doJSON(r, http.MethodPost, "/conversations", map[string]string{
		"platform":    "android",
		"deviceModel": "Pixel 8",
		"language":    "en",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var conversation chat.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &conversation); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}
	return conversation
}

func TestCreateConversation(t *testing.T) {
	r, _ := setupRouter(assistant.Outcome{})
	conversation := createConversation(t, r)

	if conversation.ID == "" || conversation.Platform != chat.PlatformAndroid {
		t.Fatalf("unexpected conversation: %+v", conversation)
	}
}

func TestCreateConversationInvalidPlatform(t *testing.T) {
	r, _ := setupRouter(assistant.Outcome{})

	resp := doJSON(r, http.MethodPost, "/conversations", map[string]string{
		"platform": "windows",
		"language": "en",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSubmitMessage(t *testing.T) {
	r, _ := setupRouter(assistant.Outcome{Text: "1. Restart the phone"})
	conversation := createConversation(t, r)

	resp := doJSON(r, http.MethodPost, "/conversations/"+conversation.ID+"/messages", map[string]string{
		"text": "battery drains fast",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		User      chat.Message  `json:"user"`
		Assistant *chat.Message `json:"assistant"`
		Fallback  bool          `json:"fallback"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Assistant == nil || result.Assistant.Content != "1. Restart the phone" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Assistant.AnswersID != result.User.ID {
		t.Fatal("answer not linked to the user message")
	}
}

func TestSubmitEmptyRejected(t *testing.T) {
	r, _ := setupRouter(assistant.Outcome{Text: "unused"})
	conversation := createConversation(t, r)

	resp := doJSON(r, http.MethodPost, "/conversations/"+conversation.ID+"/messages", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSubmitUnknownConversation(t *testing.T) {
	r, _ := setupRouter(assistant.Outcome{Text: "unused"})

	resp := doJSON(r, http.MethodPost, "/conversations/missing/messages", map[string]string{"text": "hi"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestEditMessage(t *testing.T) {
	r, svc := setupRouter(assistant.Outcome{Text: "answer"})
	conversation := createConversation(t, r)

	result, err := svc.Submit(context.Background(), conversation.ID, "phone overheats", nil)
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	path := fmt.Sprintf("/conversations/%s/messages/%s", conversation.ID, result.User.ID)
	resp := doJSON(r, http.MethodPatch, path, map[string]string{"content": "phone overheats while charging"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var edited struct {
		Message     chat.Message `json:"message"`
		Regenerated bool         `json:"regenerated"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &edited); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !edited.Regenerated {
		t.Fatal("editing the live turn must regenerate")
	}
	if edited.Message.Content != "phone overheats while charging" {
		t.Fatalf("content not replaced: %q", edited.Message.Content)
	}

	// Editing an assistant message is rejected.
	path = fmt.Sprintf("/conversations/%s/messages/%s", conversation.ID, result.Assistant.ID)
	resp = doJSON(r, http.MethodPatch, path, map[string]string{"content": "rewrite"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTranslateMessage(t *testing.T) {
	r, svc := setupRouter(assistant.Outcome{Text: "restart it"})
	conversation := createConversation(t, r)

	result, err := svc.Submit(context.Background(), conversation.ID, "slow phone", nil)
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	path := fmt.Sprintf("/conversations/%s/messages/%s/translate", conversation.ID, result.Assistant.ID)
	resp := doJSON(r, http.MethodPost, path, map[string]string{"language": "ta"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Message    chat.Message `json:"message"`
		Translated bool         `json:"translated"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !payload.Translated || payload.Message.Content != "translated: restart it" {
		t.Fatalf("unexpected translation result: %+v", payload)
	}
}

func TestFeedbackRoundTrip(t *testing.T) {
	r, svc := setupRouter(assistant.Outcome{Text: "answer"})
	conversation := createConversation(t, r)

	result, err := svc.Submit(context.Background(), conversation.ID, "problem", nil)
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	path := fmt.Sprintf("/conversations/%s/messages/%s/feedback", conversation.ID, result.Assistant.ID)
	resp := doJSON(r, http.MethodPut, path, map[string]string{"choice": "yes"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = doJSON(r, http.MethodPut, path, map[string]string{"choice": "maybe"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid choice, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/conversations/"+conversation.ID+"/feedback", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var feedback map[string]chat.FeedbackChoice
	if err := json.Unmarshal(rec.Body.Bytes(), &feedback); err != nil {
		t.Fatalf("decode feedback: %v", err)
	}
	if feedback[result.Assistant.ID] != chat.FeedbackYes {
		t.Fatalf("unexpected feedback: %+v", feedback)
	}
}

func TestClearHistory(t *testing.T) {
	r, svc := setupRouter(assistant.Outcome{Text: "answer"})
	conversation := createConversation(t, r)

	if _, err := svc.Submit(context.Background(), conversation.ID, "problem", nil); err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/conversations/"+conversation.ID+"/messages", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	messages, _ := svc.Transcript(context.Background(), conversation.ID)
	if len(messages) != 0 {
		t.Fatalf("history not cleared: %d messages", len(messages))
	}
}

func TestDraftRoundTrip(t *testing.T) {
	r, _ := setupRouter(assistant.Outcome{})
	conversation := createConversation(t, r)

	resp := doJSON(r, http.MethodPut, "/conversations/"+conversation.ID+"/draft", map[string]any{
		"text": "screen flickers",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/conversations/"+conversation.ID+"/draft", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var draft struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &draft); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if draft.Text != "screen flickers" {
		t.Fatalf("unexpected draft: %q", draft.Text)
	}
}

func TestUpdateSettingsPartial(t *testing.T) {
	r, _ := setupRouter(assistant.Outcome{})
	conversation := createConversation(t, r)

	resp := doJSON(r, http.MethodPatch, "/conversations/"+conversation.ID+"/settings", map[string]string{
		"language": "hi",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated chat.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}
	if updated.Language != locale.Hindi {
		t.Fatalf("language not updated: %s", updated.Language)
	}
	if updated.Platform != chat.PlatformAndroid || updated.DeviceModel != "Pixel 8" {
		t.Fatalf("partial update clobbered settings: %+v", updated)
	}

	resp = doJSON(r, http.MethodPatch, "/conversations/"+conversation.ID+"/settings", map[string]string{
		"platform": "toaster",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPendingEndpoint(t *testing.T) {
	r, svc := setupRouter(assistant.Outcome{})
	conversation := createConversation(t, r)

	token := svc.BeginOp(conversation.ID, conversationService.OpSolution)
	defer svc.EndOp(token)

	req := httptest.NewRequest(http.MethodGet, "/conversations/"+conversation.ID+"/pending", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var ops []conversationService.PendingOp
	if err := json.Unmarshal(rec.Body.Bytes(), &ops); err != nil {
		t.Fatalf("decode pending ops: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != conversationService.OpSolution {
		t.Fatalf("unexpected pending ops: %+v", ops)
	}
}
