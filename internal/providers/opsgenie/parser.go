package opsgenie

import (
	"encoding/json"
	"fmt"

	"triggerd/internal/model"
	"triggerd/internal/providers/shared"
	"triggerd/internal/trigger"
)

// webhookPayload is the Opsgenie alert webhook wire format.
type webhookPayload struct {
	Action          string        `json:"action"`
	IntegrationName string        `json:"integrationName"`
	Source          *actionSource `json:"source"`
	Alert           alertPayload  `json:"alert"`
}

type actionSource struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type alertPayload struct {
	AlertID     string   `json:"alertId"`
	Message     string   `json:"message"`
	Description string   `json:"description"`
	TinyID      string   `json:"tinyId"`
	Alias       string   `json:"alias"`
	Entity      string   `json:"entity"`
	Note        string   `json:"note"`
	Priority    string   `json:"priority"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags"`
	Teams       []string `json:"teams"`
	Username    string   `json:"username"`
	UserID      string   `json:"userId"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

func (a *Adapter) Parse(_ trigger.HeaderReader, body []byte) (model.TriggerMessage, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.TriggerMessage{}, trigger.NewParseError("opsgenie", "invalid json", err)
	}
	if payload.Action == "" {
		return model.TriggerMessage{}, trigger.NewParseError("opsgenie", "missing action", nil)
	}
	if payload.Alert.AlertID == "" {
		return model.TriggerMessage{}, trigger.NewParseError("opsgenie", "missing alertId", nil)
	}
	return normalize(payload), nil
}

func normalize(payload webhookPayload) model.TriggerMessage {
	alert := payload.Alert
	action := shared.NormalizeEventType(payload.Action)

	user := model.SystemUser()
	if alert.UserID != "" || alert.Username != "" {
		user = model.TriggerUser{
			ID:       shared.NonEmpty(alert.UserID, alert.Username),
			Username: alert.Username,
		}
	}

	metadata := map[string]interface{}{
		"event_type": action,
	}
	if alert.Priority != "" {
		metadata["priority"] = alert.Priority
	}
	if len(alert.Tags) > 0 {
		metadata["tags"] = alert.Tags
	}
	if len(alert.Teams) > 0 {
		metadata["team_ids"] = alert.Teams
	}
	if alert.Source != "" {
		metadata["source"] = alert.Source
	}
	if alert.TinyID != "" {
		metadata["tiny_id"] = alert.TinyID
	}
	if alert.Alias != "" {
		metadata["alias"] = alert.Alias
	}
	if alert.Entity != "" {
		metadata["entity"] = alert.Entity
	}
	if alert.Note != "" {
		metadata["note"] = alert.Note
	}
	if alert.Description != "" && alert.Description != alert.Message {
		metadata["description"] = alert.Description
	}
	if payload.IntegrationName != "" {
		metadata["integration_name"] = payload.IntegrationName
	}

	// Opsgenie supplies no per-delivery id; the composite keeps lifecycle
	// events distinct while thread_id stays constant for the alert.
	id := fmt.Sprintf("%s:%s:%d", alert.AlertID, action, alert.UpdatedAt)

	channelID := "default"
	if len(alert.Teams) > 0 && alert.Teams[0] != "" {
		channelID = alert.Teams[0]
	} else if payload.IntegrationName != "" {
		channelID = payload.IntegrationName
	}

	timestamp := shared.MillisOrNow(alert.UpdatedAt)
	if alert.UpdatedAt <= 0 {
		timestamp = shared.MillisOrNow(alert.CreatedAt)
	}

	msg := model.TriggerMessage{
		ID:        id,
		Platform:  "opsgenie",
		ChannelID: channelID,
		User:      user,
		Text:      alert.Message,
		Timestamp: timestamp,
		Metadata:  metadata,
		ThreadID:  alert.AlertID,
	}
	if action == "addnote" && alert.Note != "" {
		msg.ReplyTo = alert.AlertID
	}
	return msg
}
