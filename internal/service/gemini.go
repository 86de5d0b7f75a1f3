package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/logger"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiService calls the Gemini generateContent endpoint. It sends the
// prompt and the inline image in a single request and translates HTTP
// failures into the retryable/non-retryable error split the invoker acts on.
type GeminiService struct {
	client          *resty.Client
	baseURL         string
	analysisModel   string
	generationModel string
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	AnalysisModel   string
	GenerationModel string
}

// NewGeminiService creates a new Gemini client.
func NewGeminiService(cfg *GeminiConfig) *GeminiService {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("x-goog-api-key", cfg.APIKey)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &GeminiService{
		client:          client,
		baseURL:         strings.TrimRight(baseURL, "/"),
		analysisModel:   cfg.AnalysisModel,
		generationModel: cfg.GenerationModel,
	}
}

// Model returns the model name used for a mode.
func (s *GeminiService) Model(mode domain.Mode) string {
	if mode == domain.ModeGeneration {
		return s.generationModel
	}
	return s.analysisModel
}

// Gemini API request/response structures
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature        *float64 `json:"temperature,omitempty"`
	TopP               float64  `json:"topP,omitempty"`
	TopK               int      `json:"topK,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text,omitempty"`
				InlineData *struct {
					MIMEType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData,omitempty"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// disabledSafetySettings turns off all block thresholds so chart screenshots
// with aggressive trading language are not rejected.
var disabledSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

// Invoke sends a single generateContent call and collects the text and image
// parts of the first candidate. A safety block is a fatal rejection; rate
// limits, 5xx and transport failures are transient; an empty candidate is
// returned as empty raw output for the normalizer to degrade.
func (s *GeminiService) Invoke(ctx context.Context, mode domain.Mode, image []byte, imageMIME string, prompt string) (*domain.RawOutput, error) {
	model := s.Model(mode)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, model)

	req := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{Text: prompt},
					{InlineData: &geminiInlineData{
						MIMEType: imageMIME,
						Data:     base64.StdEncoding.EncodeToString(image),
					}},
				},
			},
		},
	}

	if mode == domain.ModeGeneration {
		req.GenerationConfig = geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		}
	} else {
		temperature := 0.0
		req.GenerationConfig = geminiGenerationConfig{
			Temperature:     &temperature,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 4096,
		}
		req.SafetySettings = disabledSafetySettings
	}

	start := time.Now()
	var resp geminiResponse
	var apiErr geminiErrorResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&apiErr).
		Post(url)

	if err != nil {
		return nil, &domain.TransientUpstreamError{Message: "request failed", Err: err}
	}

	status := httpResp.StatusCode()
	logger.With(logger.Fields{
		logger.FieldModel:      model,
		logger.FieldStatus:     status,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug(ctx, "Gemini call finished")

	if status != 200 {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = httpResp.Status()
		}
		if status == 408 || status == 429 || status >= 500 {
			return nil, &domain.TransientUpstreamError{StatusCode: status, Message: msg}
		}
		return nil, &domain.FatalUpstreamError{StatusCode: status, Message: msg}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, &domain.FatalUpstreamError{
			Message: fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
		}
	}

	out := &domain.RawOutput{}
	if len(resp.Candidates) > 0 {
		var texts []string
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
			if part.InlineData != nil && part.InlineData.Data != "" {
				data, decErr := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if decErr != nil {
					logger.CtxWarn(ctx, "discarding undecodable image part model=%s error=%v", model, decErr)
					continue
				}
				out.Images = append(out.Images, domain.GeneratedImage{
					Data:     data,
					MIMEType: part.InlineData.MIMEType,
				})
			}
		}
		out.Text = strings.Join(texts, "\n")
	}

	if len(out.Images) > 0 {
		logger.With(logger.Fields{
			logger.FieldModel: model,
			logger.FieldCount: len(out.Images),
		}).Debug(ctx, "Model returned generated images")
	}

	return out, nil
}
