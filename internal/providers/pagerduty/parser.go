package pagerduty

import (
	"encoding/json"
	"time"

	"triggerd/internal/model"
	"triggerd/internal/providers/shared"
	"triggerd/internal/trigger"
)

// v3Envelope is the PagerDuty v3 webhook wire format.
type v3Envelope struct {
	Event v3Event `json:"event"`
}

type v3Event struct {
	ID           string       `json:"id"`
	EventType    string       `json:"event_type"`
	ResourceType string       `json:"resource_type"`
	OccurredAt   time.Time    `json:"occurred_at"`
	Agent        *v3Reference `json:"agent"`
	Data         v3Incident   `json:"data"`
}

type v3Reference struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
	HTMLURL string `json:"html_url"`
}

type v3Incident struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Number      int           `json:"number"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Urgency     string        `json:"urgency"`
	HTMLURL     string        `json:"html_url"`
	Service     *v3Reference  `json:"service"`
	Priority    *v3Reference  `json:"priority"`
	Teams       []v3Reference `json:"teams"`
	Alerts      []v3Alert     `json:"alerts"`
}

type v3Alert struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
}

func (a *Adapter) Parse(_ trigger.HeaderReader, body []byte) (model.TriggerMessage, error) {
	var envelope v3Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return model.TriggerMessage{}, trigger.NewParseError("pagerduty", "invalid json", err)
	}
	event := envelope.Event
	if event.ID == "" {
		return model.TriggerMessage{}, trigger.NewParseError("pagerduty", "missing event id", nil)
	}
	if event.EventType == "" {
		return model.TriggerMessage{}, trigger.NewParseError("pagerduty", "missing event_type", nil)
	}
	if event.Data.ID == "" {
		return model.TriggerMessage{}, trigger.NewParseError("pagerduty", "missing incident id", nil)
	}
	return normalize(event), nil
}

func normalize(event v3Event) model.TriggerMessage {
	incident := event.Data

	user := model.SystemUser()
	if event.Agent != nil && event.Agent.ID != "" {
		user = model.TriggerUser{
			ID:          event.Agent.ID,
			DisplayName: event.Agent.Summary,
			IsBot:       event.Agent.Type != "user_reference",
		}
	}

	metadata := map[string]interface{}{
		"event_type": shared.NormalizeEventType(event.EventType),
	}
	if incident.Status != "" {
		metadata["status"] = incident.Status
	}
	if incident.Urgency != "" {
		metadata["urgency"] = incident.Urgency
	}
	if incident.Priority != nil && incident.Priority.Summary != "" {
		metadata["priority"] = incident.Priority.Summary
	}
	channelID := ""
	if incident.Service != nil {
		channelID = incident.Service.ID
		if incident.Service.ID != "" {
			metadata["service_id"] = incident.Service.ID
		}
		if incident.Service.Summary != "" {
			metadata["service_name"] = incident.Service.Summary
		}
	}
	if len(incident.Teams) > 0 {
		teamIDs := make([]string, 0, len(incident.Teams))
		for _, team := range incident.Teams {
			if team.ID != "" {
				teamIDs = append(teamIDs, team.ID)
			}
		}
		if len(teamIDs) > 0 {
			metadata["team_ids"] = teamIDs
		}
	}
	if incident.HTMLURL != "" {
		metadata["html_url"] = incident.HTMLURL
	}
	if incident.Number > 0 {
		metadata["incident_number"] = incident.Number
	}
	if incident.Description != "" && incident.Description != incident.Title {
		metadata["description"] = incident.Description
	}
	if len(incident.Alerts) > 0 {
		metadata["alert_count"] = len(incident.Alerts)
		if incident.Alerts[0].Severity != "" {
			metadata["alert_severity"] = incident.Alerts[0].Severity
		}
	}

	timestamp := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		timestamp = time.Now().UTC()
	}

	return model.TriggerMessage{
		ID:        event.ID,
		Platform:  "pagerduty",
		ChannelID: channelID,
		User:      user,
		Text:      incident.Title,
		Timestamp: timestamp,
		Metadata:  metadata,
		ThreadID:  incident.ID,
	}
}
