package model

import (
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/event"
)

// TriggerUser is the actor behind a trigger event. Providers that deliver
// system-generated events carry the synthetic system user instead.
type TriggerUser struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	IsBot       bool   `json:"is_bot"`
}

// SystemUser stands in when a provider payload names no acting user.
func SystemUser() TriggerUser {
	return TriggerUser{ID: "system", IsBot: true}
}

// TriggerMessage is the canonical event every provider payload is normalized
// into. Immutable after construction; Metadata holds provider-specific scalar
// fields (status, urgency, priority, service_id, team_ids, ...) and never
// contains null placeholders: absent source fields are absent keys.
type TriggerMessage struct {
	ID        string                 `json:"id"`
	Platform  string                 `json:"platform"`
	ChannelID string                 `json:"channel_id"`
	User      TriggerUser            `json:"user"`
	Text      string                 `json:"text"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ThreadID  string                 `json:"thread_id,omitempty"`
	ReplyTo   string                 `json:"reply_to,omitempty"`
}

// MetaString returns the metadata value for key when it is a string.
func (m TriggerMessage) MetaString(key string) string {
	v, ok := m.Metadata[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// MetaStrings returns the metadata value for key as a string slice, accepting
// both []string and the []interface{} shape produced by JSON round-trips.
func (m TriggerMessage) MetaStrings(key string) []string {
	v, ok := m.Metadata[key]
	if !ok {
		return nil
	}
	switch vs := v.(type) {
	case []string:
		return vs
	case []interface{}:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ToCloudEvent renders the message as a CloudEvent for the downstream
// consumer. Routing attributes are exposed as extensions.
func (m TriggerMessage) ToCloudEvent() (event.Event, error) {
	ce := cloudevents.NewEvent()
	ce.SetID(m.ID)
	ce.SetSource("triggerd/" + m.Platform)
	ce.SetType("io.triggerd.trigger")
	ce.SetTime(m.Timestamp)
	ce.SetExtension("platform", m.Platform)
	ce.SetExtension("channelid", m.ChannelID)
	if m.ThreadID != "" {
		ce.SetExtension("threadid", m.ThreadID)
	}
	if err := ce.SetData(cloudevents.ApplicationJSON, m); err != nil {
		return ce, err
	}
	return ce, nil
}
