package webhook

import "time"

// Event is the subset of the issue tracker's issues webhook payload the
// service consumes. Everything else in the delivery is ignored.
type Event struct {
	Action     string     `json:"action"`
	Issue      EventIssue `json:"issue"`
	Repository EventRepo  `json:"repository"`
}

// EventIssue is the issue portion of the payload.
type EventIssue struct {
	Number    int          `json:"number"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	User      EventUser    `json:"user"`
	Labels    []EventLabel `json:"labels"`
	CreatedAt time.Time    `json:"created_at"`
}

// EventUser is the account that opened the issue.
type EventUser struct {
	Login string `json:"login"`
}

// EventLabel is a label already present on the issue.
type EventLabel struct {
	Name string `json:"name"`
}

// EventRepo identifies the repository the issue belongs to.
type EventRepo struct {
	FullName string `json:"full_name"`
}

// LabelNames flattens the label objects into plain names.
func (e *EventIssue) LabelNames() []string {
	if len(e.Labels) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.Labels))
	for _, l := range e.Labels {
		names = append(names, l.Name)
	}
	return names
}
