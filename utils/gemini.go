package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"numrenohacks/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

var geminiTimeout = 30 * time.Second

// ErrGeminiUnavailable is returned when the AI backend gave no usable
// answer; the chat flow escalates instead of failing the request.
var ErrGeminiUnavailable = errors.New("chat assistant unavailable")

// System prompt for the support assistant, kept close to the event FAQ.
const chatSystemPrompt = `You are the support assistant for NumrenoHacks 2025, a festive winter hackathon.
Answer only questions about the hackathon: registration, teams, members, problem statements,
project submission, deadlines, judging, prizes, ID verification, the dashboard and login.
Keep answers short and friendly.
If you are unsure or the issue needs a human, say: "Please escalate this to our admin team for assistance."`

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// AskGemini sends a single-turn support question to the configured Gemini
// model and returns its text answer.
func AskGemini(question string) (string, error) {
	payload := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: chatSystemPrompt}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: question}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	uri := fmt.Sprintf("%s/%s:generateContent?key=%s",
		geminiBaseURL, config.AppConfig.GeminiModel, config.AppConfig.GeminiAPIKey)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := fasthttp.DoTimeout(req, resp, geminiTimeout); err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("chat backend returned status %d", resp.StatusCode())
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrGeminiUnavailable
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
