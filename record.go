package azchat

// Wire types for the merged chat-completion response. The base schema is
// the vendor-neutral response shape; augmented deployments layer
// filtering fields onto it at the top level and inside each choice.
// Values are immutable after decode and carry no identity beyond the
// document they came from.

// Role is the author of a response message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleFunction  Role = "function"
)

func knownRole(s string) bool {
	switch Role(s) {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool, RoleFunction:
		return true
	}
	return false
}

// FinishReason is the closed set of reasons generation stopped.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
	FinishReasonFunctionCall  FinishReason = "function_call"
)

func knownFinishReason(s string) bool {
	switch FinishReason(s) {
	case FinishReasonStop, FinishReasonLength, FinishReasonToolCalls,
		FinishReasonContentFilter, FinishReasonFunctionCall:
		return true
	}
	return false
}

// ServiceTier is the processing tier reported by the service.
type ServiceTier string

const (
	ServiceTierScale   ServiceTier = "scale"
	ServiceTierDefault ServiceTier = "default"
)

func knownServiceTier(s string) bool {
	switch ServiceTier(s) {
	case ServiceTierScale, ServiceTierDefault:
		return true
	}
	return false
}

// FunctionCall names a function the model wants called and its
// arguments as generated JSON text.
type FunctionCall struct {
	Name      string
	Arguments string
}

// ToolCall is one tool invocation generated by the model.
type ToolCall struct {
	ID       string
	Type     string // currently always "function"
	Function FunctionCall
}

// ChatMessage is the response message payload of one choice.
type ChatMessage struct {
	Content   *string
	Refusal   *string
	ToolCalls []ToolCall
	Role      Role
	// FunctionCall is deprecated upstream in favor of ToolCalls but still
	// appears on the wire.
	FunctionCall *FunctionCall
}

// TopLogprob is one of the most likely alternatives at a token position.
type TopLogprob struct {
	Token   string
	Logprob float64
	Bytes   []byte
}

// TokenLogprob carries log-probability detail for one generated token.
type TokenLogprob struct {
	Token       string
	Logprob     float64
	Bytes       []byte
	TopLogprobs []TopLogprob
}

// ChoiceLogprobs holds per-token log-probability lists for a choice.
type ChoiceLogprobs struct {
	Content []TokenLogprob
	Refusal []TokenLogprob
}

// Usage is the aggregate token accounting for the request.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// ExtraField is one preserved unknown member (UnknownPassthrough only).
// Value is a generic tree value as produced by the decoder.
type ExtraField struct {
	Key   string
	Value any
}

// ChatChoice is one generated alternative with its extension slot
// inlined. ContentFilterResults is nil whenever the document carried no
// extension bundle for this choice.
type ChatChoice struct {
	Index                int64
	Message              ChatMessage
	FinishReason         *FinishReason
	Logprobs             *ChoiceLogprobs
	ContentFilterResults *ChoiceFilterOutcome
	Extra                []ExtraField
}

// ChatCompletion is the merged record: the base response entity with
// extension fields spliced in at the level they were read from.
type ChatCompletion struct {
	ID                  string
	Choices             []ChatChoice
	Created             int64
	Model               string
	ServiceTier         *ServiceTier
	SystemFingerprint   *string
	Object              string
	Usage               *Usage
	PromptFilterResults []PromptFilterResult
	Extra               []ExtraField
}
