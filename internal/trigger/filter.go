package trigger

import (
	"fmt"
	"strings"

	"triggerd/internal/model"
)

// FilterCriteria restricts which normalized events are forwarded downstream.
// Every empty field imposes no restriction.
type FilterCriteria struct {
	EventTypes      []string
	AllowedServices []string
	AllowedTeams    []string
	// MinPriority is one of P1..P5; P1 is highest. An event at or above the
	// minimum passes; events carrying no priority always pass.
	MinPriority string
	// MinUrgency of "high" requires urgency == "high"; "low" or empty
	// imposes nothing.
	MinUrgency string
}

// priorityRank orders P1 > P2 > P3 > P4 > P5. Lower rank is more urgent.
var priorityRank = map[string]int{
	"P1": 1,
	"P2": 2,
	"P3": 3,
	"P4": 4,
	"P5": 5,
}

// ShouldProcess evaluates a normalized event against the subscription's
// criteria. Checks short-circuit on the first failure; the reason names the
// failing dimension.
func ShouldProcess(msg model.TriggerMessage, criteria FilterCriteria) (bool, string) {
	if len(criteria.EventTypes) > 0 {
		eventType := msg.MetaString("event_type")
		if !containsFold(criteria.EventTypes, eventType) {
			return false, fmt.Sprintf("event type %q not in allow-list", eventType)
		}
	}
	if len(criteria.AllowedServices) > 0 {
		serviceID := msg.MetaString("service_id")
		if !containsFold(criteria.AllowedServices, serviceID) {
			return false, fmt.Sprintf("service %q not in allow-list", serviceID)
		}
	}
	if len(criteria.AllowedTeams) > 0 {
		if !anyTeamAllowed(msg.MetaStrings("team_ids"), criteria.AllowedTeams) {
			return false, "no team in allow-list"
		}
	}
	if criteria.MinPriority != "" {
		if ok, reason := prioritySufficient(msg.MetaString("priority"), criteria.MinPriority); !ok {
			return false, reason
		}
	}
	if strings.EqualFold(strings.TrimSpace(criteria.MinUrgency), "high") {
		urgency := msg.MetaString("urgency")
		if !strings.EqualFold(urgency, "high") {
			return false, fmt.Sprintf("urgency %q below minimum high", urgency)
		}
	}
	return true, ""
}

func prioritySufficient(priority, minimum string) (bool, string) {
	if strings.TrimSpace(priority) == "" {
		// Absence is not failure.
		return true, ""
	}
	rank, ok := priorityRank[strings.ToUpper(strings.TrimSpace(priority))]
	if !ok {
		return true, ""
	}
	minRank, ok := priorityRank[strings.ToUpper(strings.TrimSpace(minimum))]
	if !ok {
		return true, ""
	}
	if rank > minRank {
		return false, fmt.Sprintf("priority %s below minimum %s", priority, minimum)
	}
	return true, ""
}

func anyTeamAllowed(teams, allowed []string) bool {
	for _, team := range teams {
		if containsFold(allowed, team) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	needle = strings.TrimSpace(needle)
	for _, candidate := range haystack {
		if strings.EqualFold(strings.TrimSpace(candidate), needle) {
			return true
		}
	}
	return false
}
