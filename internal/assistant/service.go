// Package assistant provides free-form nutrition chat backed by Gemini.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const (
	DefaultModel = "gemini-1.5-flash-latest"

	systemInstruction = "You are a friendly nutrition and wellness assistant. Give practical, food-focused " +
		"suggestions in plain language. Keep answers short. You are not a doctor: when symptoms sound serious " +
		"or persistent, recommend seeing a healthcare provider."

	emptyReply = "I'm sorry, I couldn't generate a response at this time. Please try again."
)

var (
	ErrNoMessages    = errors.New("messages are required")
	ErrLastNotUser   = errors.New("last message must come from the user")
	ErrInvalidRole   = errors.New("invalid message role")
	ErrRequestFailed = errors.New("assistant request failed")
	ErrNotConfigured = errors.New("assistant not configured")
)

// Message is one turn in the OpenAI-style conversation the client sends.
type Message struct {
	Role    string
	Content string
}

type sendFunc func(ctx context.Context, system *genai.Content, history []*genai.Content, parts []genai.Part) (*genai.GenerateContentResponse, error)

type Service struct {
	client *genai.Client
	model  string
	send   sendFunc
	logger *logrus.Logger
}

func NewService(ctx context.Context, apiKey, model string, logger *logrus.Logger) (*Service, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	s := &Service{client: client, model: model, logger: logger}
	s.send = s.sendGemini
	return s, nil
}

func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Reply answers the last user message given the earlier turns.
func (s *Service) Reply(ctx context.Context, messages []Message) (string, error) {
	system, history, last, err := buildConversation(messages)
	if err != nil {
		return "", err
	}

	resp, err := s.send(ctx, system, history, last.Parts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	text := extractText(resp)
	if text == "" {
		s.logger.WithField("model", s.model).Warn("Gemini returned no text candidates")
		return emptyReply, nil
	}

	s.logger.WithFields(logrus.Fields{
		"model": s.model,
		"turns": len(messages),
	}).Debug("Assistant reply generated")

	return text, nil
}

func (s *Service) sendGemini(ctx context.Context, system *genai.Content, history []*genai.Content, parts []genai.Part) (*genai.GenerateContentResponse, error) {
	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = system

	session := model.StartChat()
	session.History = history
	return session.SendMessage(ctx, parts...)
}

// buildConversation maps client turns onto Gemini content. System turns
// are folded into the system instruction; assistant turns become "model".
func buildConversation(messages []Message) (*genai.Content, []*genai.Content, *genai.Content, error) {
	if len(messages) == 0 {
		return nil, nil, nil, ErrNoMessages
	}

	instructions := []string{systemInstruction}
	var turns []*genai.Content

	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			if m.Content != "" {
				instructions = append(instructions, m.Content)
			}
		case "user":
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		case "assistant", "model":
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			return nil, nil, nil, fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
		}
	}

	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return nil, nil, nil, ErrLastNotUser
	}

	system := &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(instructions, "\n\n"))}}
	return system, turns[:len(turns)-1], turns[len(turns)-1], nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
