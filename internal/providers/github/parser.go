package github

import (
	"encoding/json"
	"fmt"
	"time"

	"triggerd/internal/model"
	"triggerd/internal/providers/shared"
	"triggerd/internal/trigger"

	githubv53 "github.com/google/go-github/v53/github"
)

func (a *Adapter) Parse(headers trigger.HeaderReader, body []byte) (model.TriggerMessage, error) {
	eventType := shared.NormalizeEventType(headers.Get(eventTypeHeader))
	deliveryID := shared.FallbackID(headers.Get(eventIDHeader))

	switch eventType {
	case "workflow_run":
		var event githubv53.WorkflowRunEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return model.TriggerMessage{}, trigger.NewParseError("github", "invalid workflow_run json", err)
		}
		return normalizeWorkflowRun(&event, deliveryID)
	case "issues":
		var event githubv53.IssuesEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return model.TriggerMessage{}, trigger.NewParseError("github", "invalid issues json", err)
		}
		return normalizeIssue(&event, deliveryID)
	default:
		return model.TriggerMessage{}, trigger.NewParseError("github", fmt.Sprintf("unsupported event %q", eventType), nil)
	}
}

func normalizeWorkflowRun(event *githubv53.WorkflowRunEvent, deliveryID string) (model.TriggerMessage, error) {
	run := event.GetWorkflowRun()
	if run == nil || run.GetID() == 0 {
		return model.TriggerMessage{}, trigger.NewParseError("github", "missing workflow run", nil)
	}
	repo := repoFullName(event.GetRepo())

	metadata := map[string]interface{}{
		"event_type": "workflow_run." + shared.NormalizeEventType(event.GetAction()),
		"service_id": repo,
	}
	if run.GetConclusion() != "" {
		metadata["conclusion"] = run.GetConclusion()
	}
	if run.GetStatus() != "" {
		metadata["status"] = run.GetStatus()
	}
	if run.GetHeadBranch() != "" {
		metadata["branch"] = run.GetHeadBranch()
	}
	if run.GetHTMLURL() != "" {
		metadata["html_url"] = run.GetHTMLURL()
	}
	if run.GetRunAttempt() > 0 {
		metadata["run_attempt"] = run.GetRunAttempt()
	}

	timestamp := run.GetUpdatedAt().Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return model.TriggerMessage{
		ID:        deliveryID,
		Platform:  "github",
		ChannelID: repo,
		User:      senderUser(event.GetSender()),
		Text:      run.GetName(),
		Timestamp: timestamp.UTC(),
		Metadata:  metadata,
		ThreadID:  fmt.Sprintf("%s#run-%d", repo, run.GetID()),
	}, nil
}

func normalizeIssue(event *githubv53.IssuesEvent, deliveryID string) (model.TriggerMessage, error) {
	issue := event.GetIssue()
	if issue == nil || issue.GetNumber() == 0 {
		return model.TriggerMessage{}, trigger.NewParseError("github", "missing issue", nil)
	}
	repo := repoFullName(event.GetRepo())

	metadata := map[string]interface{}{
		"event_type": "issues." + shared.NormalizeEventType(event.GetAction()),
		"service_id": repo,
	}
	if issue.GetState() != "" {
		metadata["status"] = issue.GetState()
	}
	if issue.GetHTMLURL() != "" {
		metadata["html_url"] = issue.GetHTMLURL()
	}
	if len(issue.Labels) > 0 {
		labels := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			if label.GetName() != "" {
				labels = append(labels, label.GetName())
			}
		}
		if len(labels) > 0 {
			metadata["tags"] = labels
		}
	}

	timestamp := issue.GetUpdatedAt().Time
	if timestamp.IsZero() {
		timestamp = issue.GetCreatedAt().Time
	}
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return model.TriggerMessage{
		ID:        deliveryID,
		Platform:  "github",
		ChannelID: repo,
		User:      senderUser(event.GetSender()),
		Text:      issue.GetTitle(),
		Timestamp: timestamp.UTC(),
		Metadata:  metadata,
		ThreadID:  fmt.Sprintf("%s#%d", repo, issue.GetNumber()),
	}, nil
}

func repoFullName(repo *githubv53.Repository) string {
	if repo == nil {
		return "unknown"
	}
	return shared.NonEmpty(repo.GetFullName(), repo.GetName())
}

func senderUser(sender *githubv53.User) model.TriggerUser {
	if sender == nil || sender.GetLogin() == "" {
		return model.SystemUser()
	}
	return model.TriggerUser{
		ID:       sender.GetLogin(),
		Username: sender.GetLogin(),
		IsBot:    sender.GetType() == "Bot",
	}
}
