package model

// IntentKind enumerates the outbound response actions a consumer may request
// against the originating platform.
type IntentKind string

const (
	IntentAcknowledge IntentKind = "acknowledge"
	IntentAddNote     IntentKind = "add_note"
	IntentResolve     IntentKind = "resolve"
	IntentCreate      IntentKind = "create"
)

// ResponseIntent is a provider-neutral outbound action. Text carries the note
// body for add_note; Fields carries provider fields for create.
type ResponseIntent struct {
	Kind   IntentKind             `json:"kind"`
	Text   string                 `json:"text,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

func AddNote(text string) ResponseIntent {
	return ResponseIntent{Kind: IntentAddNote, Text: text}
}

func Acknowledge() ResponseIntent {
	return ResponseIntent{Kind: IntentAcknowledge}
}

func Resolve() ResponseIntent {
	return ResponseIntent{Kind: IntentResolve}
}

func Create(fields map[string]interface{}) ResponseIntent {
	return ResponseIntent{Kind: IntentCreate, Fields: fields}
}
