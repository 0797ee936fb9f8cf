package ai

import "github.com/google/jsonschema-go/jsonschema"

// FunctionSchema describes one callable function advertised to the model.
type FunctionSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// TagsResult is the decoded function-call arguments.
type TagsResult struct {
	Tags []string `json:"tags"`
}

// NoticeKind identifies why a user-facing notice was raised.
type NoticeKind int

const (
	NoticeMissingCredential NoticeKind = iota
	NoticeRemoteError
)

// Notice is a plain user-facing message. Formatting is up to the Notifier.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// apiRequest represents the chat completions request body.
type apiRequest struct {
	Model        string           `json:"model"`
	MaxTokens    int              `json:"max_tokens"`
	Messages     []apiMessage     `json:"messages"`
	Functions    []FunctionSchema `json:"functions"`
	FunctionCall functionCallRef  `json:"function_call"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type functionCallRef struct {
	Name string `json:"name"`
}

// apiResponse represents the chat completions response body. Only the
// fields the client reads are declared.
type apiResponse struct {
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error"`
}

type choice struct {
	Message responseMessage `json:"message"`
}

type responseMessage struct {
	Role         string        `json:"role"`
	Content      *string       `json:"content"`
	FunctionCall *functionCall `json:"function_call"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Param   any    `json:"param"`
	Code    any    `json:"code"`
}
