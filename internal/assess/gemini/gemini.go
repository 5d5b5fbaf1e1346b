// Package gemini implements the qualitative assessment service on top of
// the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/agentstation/signalmap/pkg/assess"
	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/logging"
)

const service = "gemini"

const instruction = `You review early-stage companies for a startup directory.
Given a company summary, reply with a single JSON object:
{"score": <integer 0-100>, "flags": [<short strings>], "recommendation": "feature"|"approve"|"review"|"reject", "rationale": "<one sentence>"}
Flag missing data, inconsistencies and anything that suggests the company is not early stage.`

// generator is the part of the genai client the assessor needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Assessor asks a Gemini model for a secondary opinion on a profile.
type Assessor struct {
	models  generator
	model   string
	timeout time.Duration
}

// Option configures an Assessor.
type Option func(*Assessor)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(a *Assessor) {
		if model != "" {
			a.model = model
		}
	}
}

// WithTimeout bounds each assessment call.
func WithTimeout(d time.Duration) Option {
	return func(a *Assessor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// New creates an assessor backed by the Gemini API.
func New(ctx context.Context, apiKey string, opts ...Option) (*Assessor, error) {
	if apiKey == "" {
		return nil, &errors.ConfigError{
			Component: service,
			Message:   "API key is required for assessments",
			Err:       errors.ErrAPIKeyRequired,
		}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, errors.NewConfigError(service, "failed to create client", err)
	}
	return newAssessor(client.Models, opts...), nil
}

func newAssessor(models generator, opts ...Option) *Assessor {
	a := &Assessor{
		models:  models,
		model:   constants.DefaultAssessmentModel,
		timeout: constants.AssessmentTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Model returns the configured model name.
func (a *Assessor) Model() string { return a.model }

// Assess implements assess.Assessor.
func (a *Assessor) Assess(ctx context.Context, s assess.Summary) (assess.Assessment, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := prompt(s)
	if err != nil {
		return assess.Assessment{}, err
	}

	logger := logging.FromContext(ctx)
	logger.Debug().Str("model", a.model).Str("name", s.Name).Msg("Requesting assessment")

	resp, err := a.models.GenerateContent(ctx, a.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	})
	if err != nil {
		return assess.Assessment{}, wrap(err)
	}
	if resp == nil {
		return assess.Assessment{}, errors.NewAPIError(service, 0, "empty response")
	}

	result, err := parse(resp.Text())
	if err != nil {
		return assess.Assessment{}, err
	}
	result.Assessor = service + "/" + a.model
	return result, nil
}

func prompt(s assess.Summary) (string, error) {
	fields, err := json.Marshal(s.Fields)
	if err != nil {
		return "", errors.WrapParse("json", "", err)
	}
	return fmt.Sprintf("Company summary:\n%s\n\nStructured fields:\n%s", s.Text, fields), nil
}

// parse decodes a model reply, tolerating a fenced code block around the JSON.
func parse(text string) (assess.Assessment, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return assess.Assessment{}, errors.NewAPIError(service, 0, "empty response")
	}

	var a assess.Assessment
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return assess.Assessment{}, errors.WrapParse("json", "", err)
	}
	a.Recommendation = strings.ToLower(strings.TrimSpace(a.Recommendation))
	if err := a.Validate(); err != nil {
		return assess.Assessment{}, err
	}
	return a, nil
}

func wrap(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return errors.WrapAPI(service, apiErr.Code, err)
	}
	return errors.WrapAPI(service, 0, err)
}
