package handlers

import (
	"context"
	"net/http"
)

// Assistant is satisfied by *services.CookingAssistant.
type Assistant interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type ChatReply struct {
	Reply string `json:"reply"`
}

type AssistantHandler struct {
	assistant Assistant
	errs      *ErrorWriter
}

func NewAssistantHandler(assistant Assistant, errs *ErrorWriter) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, errs: errs}
}

// Chat forwards a cooking question to the model
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	reply, err := h.assistant.Chat(r.Context(), req.Prompt)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: ChatReply{Reply: reply}})
}
