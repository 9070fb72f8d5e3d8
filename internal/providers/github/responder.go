package github

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"triggerd/internal/model"
	"triggerd/internal/trigger"

	githubv53 "github.com/google/go-github/v53/github"
)

// Responder maps response intents onto GitHub issues. Resource ids are
// "owner/repo#123" for existing issues and "owner/repo" for create.
// Acknowledge has no GitHub counterpart and fails permanently.
type Responder struct {
	client *githubv53.Client
}

func NewResponder(token string) *Responder {
	return &Responder{client: githubv53.NewTokenClient(context.Background(), token)}
}

func NewResponderWithClient(client *githubv53.Client) *Responder {
	return &Responder{client: client}
}

func (r *Responder) Respond(ctx context.Context, resourceID string, intent model.ResponseIntent) error {
	switch intent.Kind {
	case model.IntentAddNote:
		owner, repo, number, err := splitIssueRef(resourceID)
		if err != nil {
			return err
		}
		_, resp, err := r.client.Issues.CreateComment(ctx, owner, repo, number, &githubv53.IssueComment{
			Body: githubv53.String(intent.Text),
		})
		return translateErr(resp, err)
	case model.IntentResolve:
		owner, repo, number, err := splitIssueRef(resourceID)
		if err != nil {
			return err
		}
		_, resp, err := r.client.Issues.Edit(ctx, owner, repo, number, &githubv53.IssueRequest{
			State: githubv53.String("closed"),
		})
		return translateErr(resp, err)
	case model.IntentCreate:
		owner, repo, err := splitRepoRef(resourceID)
		if err != nil {
			return err
		}
		title, _ := intent.Fields["title"].(string)
		body, _ := intent.Fields["body"].(string)
		if title == "" {
			return fmt.Errorf("github: create intent requires a title field")
		}
		req := &githubv53.IssueRequest{Title: githubv53.String(title)}
		if body != "" {
			req.Body = githubv53.String(body)
		}
		_, resp, err := r.client.Issues.Create(ctx, owner, repo, req)
		return translateErr(resp, err)
	default:
		return fmt.Errorf("github: unsupported intent %q", intent.Kind)
	}
}

func splitIssueRef(resourceID string) (owner, repo string, number int, err error) {
	ref, numStr, ok := strings.Cut(resourceID, "#")
	if !ok {
		return "", "", 0, fmt.Errorf("github: resource id %q is not owner/repo#number", resourceID)
	}
	owner, repo, err = splitRepoRef(ref)
	if err != nil {
		return "", "", 0, err
	}
	number, err = strconv.Atoi(numStr)
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("github: invalid issue number in %q", resourceID)
	}
	return owner, repo, number, nil
}

func splitRepoRef(ref string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(ref), "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("github: resource id %q is not owner/repo", ref)
	}
	return owner, repo, nil
}

func translateErr(resp *githubv53.Response, err error) error {
	if err == nil {
		return nil
	}
	var ghErr *githubv53.ErrorResponse
	if errors.As(err, &ghErr) && resp != nil {
		return &trigger.HTTPStatusError{Status: resp.StatusCode, Body: ghErr.Message}
	}
	var rateErr *githubv53.RateLimitError
	if errors.As(err, &rateErr) {
		return &trigger.HTTPStatusError{Status: 429, Body: rateErr.Message}
	}
	return err
}
