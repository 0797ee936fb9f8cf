package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultTimeout  = 30 * time.Second

	Model           = "gpt-3.5-turbo-0613"
	MaxTokens       = 2048
	TagFunctionName = "getTagSuggestions"

	SystemPrompt = "You are ChatGPT, a helpful code assistant and text analysis tool. " +
		"You help with semantic understanding of input text and providing suggestions for tags " +
		"that best allow to categorize and identify the text, for use in search engines or content link grouping. " +
		"You will receive the input text from the user."
)

// Logger receives diagnostic lines from the client.
type Logger interface {
	Debug(msg, detail string)
	Warn(msg, detail string)
	Error(msg, detail string)
}

// Notifier receives user-facing notices.
type Notifier interface {
	Notify(n Notice)
}

type nopLogger struct{}

func (nopLogger) Debug(string, string) {}
func (nopLogger) Warn(string, string)  {}
func (nopLogger) Error(string, string) {}

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

// Client requests tag suggestions from the OpenAI chat completions API.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     Logger
	notifier   Notifier
}

// ClientParams holds parameters for creating a Client.
// Zero values fall back to defaults.
type ClientParams struct {
	HTTPClient *http.Client
	Endpoint   string
	Logger     Logger
	Notifier   Notifier
}

// NewClient creates a new tag suggestion client.
func NewClient(params ClientParams) *Client {
	c := &Client{
		endpoint:   params.Endpoint,
		httpClient: params.HTTPClient,
		logger:     params.Logger,
		notifier:   params.Notifier,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.logger == nil {
		c.logger = nopLogger{}
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	return c
}

// TagSuggestionFunction returns the function schema advertised to the model.
// The tag guidance in the description is advisory only.
func TagSuggestionFunction() FunctionSchema {
	return FunctionSchema{
		Name:        TagFunctionName,
		Description: "Suggest the best matching tags that describe the provided input text. At least 1 tag returned.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tags": {
					Type: "array",
					Description: "An array of tags. Come up with 2 to 10 tags. " +
						"These can be used to tag the input text to help with search engines or grouping with related tag content. " +
						"Tags can only contain lowercase letters and underscores.",
					Items: &jsonschema.Schema{Type: "string"},
				},
			},
		},
	}
}

// RequestTags suggests tags for inputText.
//
// An empty apiKey is not an error: the user is notified and an empty
// slice is returned without calling the API. A remote error payload is
// reported to the user and returned wrapped in ErrResponseMissingTags.
func (c *Client) RequestTags(ctx context.Context, apiKey, inputText string) ([]string, error) {
	if apiKey == "" {
		c.logger.Warn(ErrMissingCredential.Error(), "")
		c.notifier.Notify(Notice{
			Kind:    NoticeMissingCredential,
			Message: "OpenAI API key is missing. Please add it in the settings.",
		})
		return []string{}, nil
	}

	result, err := c.CompleteWithFunctionCall(ctx, apiKey, inputText, TagSuggestionFunction())
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) {
			c.logger.Error(ErrResponseMissingTags.Error(), remote.Error())
			c.notifier.Notify(Notice{Kind: NoticeRemoteError, Message: remote.Message})
			return nil, fmt.Errorf("%w: %w", ErrResponseMissingTags, remote)
		}
		return nil, err
	}

	if result.Tags == nil {
		return []string{}, nil
	}

	detail, _ := json.Marshal(result)
	c.logger.Debug("OpenAI API suggested tags", string(detail))
	return result.Tags, nil
}

// CompleteWithFunctionCall sends inputText with fn advertised as the only
// callable function and forces the model to call it. It returns the decoded
// function-call arguments.
func (c *Client) CompleteWithFunctionCall(ctx context.Context, apiKey, inputText string, fn FunctionSchema) (*TagsResult, error) {
	if strings.TrimSpace(inputText) == "" {
		c.logger.Warn("CompleteWithFunctionCall: invalid input text", strconv.Quote(inputText))
		return nil, ErrInvalidInput
	}

	jsonData, err := json.Marshal(newRequest(inputText, fn))
	if err != nil {
		return nil, c.fail(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, c.fail(fmt.Errorf("%w: create request: %v", ErrCompletionRequest, err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(fmt.Errorf("%w: %v", ErrCompletionRequest, err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(fmt.Errorf("%w: read response: %v", ErrCompletionRequest, err))
	}

	return c.parseResponse(resp.StatusCode, body)
}

func newRequest(inputText string, fn FunctionSchema) apiRequest {
	return apiRequest{
		Model:     Model,
		MaxTokens: MaxTokens,
		Messages: []apiMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: inputText},
		},
		Functions:    []FunctionSchema{fn},
		FunctionCall: functionCallRef{Name: fn.Name},
	}
}

// parseResponse decodes a completion response. An error payload takes
// precedence over any function call in the same body.
func (c *Client) parseResponse(statusCode int, body []byte) (*TagsResult, error) {
	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		if statusCode == http.StatusOK {
			return nil, c.fail(fmt.Errorf("%w: %v", ErrDecoding, err))
		}
		return nil, c.fail(fmt.Errorf("%w: status %d", ErrCompletionRequest, statusCode))
	}

	if apiResp.Error != nil {
		remote := &RemoteError{
			StatusCode: statusCode,
			Type:       apiResp.Error.Type,
			Message:    apiResp.Error.Message,
			Param:      apiResp.Error.Param,
			Code:       apiResp.Error.Code,
		}
		return nil, c.fail(fmt.Errorf("%w: %w", ErrCompletionRequest, remote))
	}

	if statusCode == http.StatusOK && len(apiResp.Choices) > 0 && apiResp.Choices[0].Message.FunctionCall != nil {
		args := apiResp.Choices[0].Message.FunctionCall.Arguments
		var result TagsResult
		if err := json.Unmarshal([]byte(args), &result); err != nil {
			return nil, c.fail(fmt.Errorf("%w: function call arguments: %v", ErrDecoding, err))
		}
		return &result, nil
	}

	return nil, c.fail(fmt.Errorf("%w: status %d", ErrCompletionRequest, statusCode))
}

// fail logs err and returns it.
func (c *Client) fail(err error) error {
	c.logger.Error("CompleteWithFunctionCall failed", err.Error())
	return err
}
