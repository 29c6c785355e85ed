package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// EventType identifies the kind of an execution-request event.
type EventType string

const (
	// EventTypeComment records a free-form discussion comment.
	EventTypeComment EventType = "COMMENT"
	// EventTypeReview records a reviewer's verdict on the request.
	EventTypeReview EventType = "REVIEW"
	// EventTypeEdit records a snapshot of the request content before an edit.
	EventTypeEdit EventType = "EDIT"
	// EventTypeExecute records an execution attempt's resolved parameters.
	EventTypeExecute EventType = "EXECUTE"
)

// ReviewAction is the verdict carried by a ReviewEvent.
type ReviewAction string

const (
	ReviewActionApprove       ReviewAction = "APPROVE"
	ReviewActionComment       ReviewAction = "COMMENT"
	ReviewActionRequestChange ReviewAction = "REQUEST_CHANGE"
)

// IsValid reports whether the review action is one of the known verdicts.
func (a ReviewAction) IsValid() bool {
	switch a {
	case ReviewActionApprove, ReviewActionComment, ReviewActionRequestChange:
		return true
	}
	return false
}

// EventMeta holds the fields common to all event variants.
//
// RequestID is a weak back-reference to the owning execution request, used
// for authorization context lookups only.
type EventMeta struct {
	// ID is assigned by the repository on append; empty before persistence.
	ID        string
	RequestID string
	AuthorID  string
	CreatedAt time.Time
}

// Event is the sealed interface implemented by the four event variants.
// Events are immutable once appended; the log is append-only and corrections
// happen by appending compensating events, never by mutation.
type Event interface {
	Type() EventType
	Meta() EventMeta

	// isEvent seals the interface to the variants defined in this package.
	isEvent()
}

// CommentEvent is a discussion comment on an execution request.
type CommentEvent struct {
	EventMeta
	Comment string
}

// ReviewEvent is a reviewer's verdict, with an optional comment.
type ReviewEvent struct {
	EventMeta
	Comment string
	Action  ReviewAction
}

// EditEvent snapshots the pre-edit statement/command context for audit.
// Container fields are empty for requests that are not container-based.
// The snapshot is never replayed onto the request's current statement.
type EditEvent struct {
	EventMeta
	PreviousQuery         string
	PreviousCommand       string
	PreviousContainerName string
	PreviousPodName       string
	PreviousNamespace     string
}

// ExecuteEvent records the resolved parameters of an execution attempt.
type ExecuteEvent struct {
	EventMeta
	Query         string
	Command       string
	ContainerName string
	PodName       string
	Namespace     string
}

func (e *CommentEvent) Type() EventType { return EventTypeComment }
func (e *ReviewEvent) Type() EventType  { return EventTypeReview }
func (e *EditEvent) Type() EventType    { return EventTypeEdit }
func (e *ExecuteEvent) Type() EventType { return EventTypeExecute }

func (e *CommentEvent) Meta() EventMeta { return e.EventMeta }
func (e *ReviewEvent) Meta() EventMeta  { return e.EventMeta }
func (e *EditEvent) Meta() EventMeta    { return e.EventMeta }
func (e *ExecuteEvent) Meta() EventMeta { return e.EventMeta }

func (*CommentEvent) isEvent() {}
func (*ReviewEvent) isEvent()  {}
func (*EditEvent) isEvent()    {}
func (*ExecuteEvent) isEvent() {}

// Storage payload shapes, one per variant.
type commentPayload struct {
	Comment string `json:"comment"`
}

type reviewPayload struct {
	Comment string       `json:"comment"`
	Action  ReviewAction `json:"action"`
}

type editPayload struct {
	PreviousQuery         string `json:"previous_query,omitempty"`
	PreviousCommand       string `json:"previous_command,omitempty"`
	PreviousContainerName string `json:"previous_container_name,omitempty"`
	PreviousPodName       string `json:"previous_pod_name,omitempty"`
	PreviousNamespace     string `json:"previous_namespace,omitempty"`
}

type executePayload struct {
	Query         string `json:"query,omitempty"`
	Command       string `json:"command,omitempty"`
	ContainerName string `json:"container_name,omitempty"`
	PodName       string `json:"pod_name,omitempty"`
	Namespace     string `json:"namespace,omitempty"`
}

// DecodeEvent reconstructs a typed event from its persisted kind tag and JSON
// payload. An unknown kind is a hard MalformedPayloadError: a new event kind
// appearing in storage without code to read it is a schema-migration bug, not
// something to default around. No field-level validation happens here.
func DecodeEvent(meta EventMeta, kind EventType, payload []byte) (Event, error) {
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	switch kind {
	case EventTypeComment:
		var p commentPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, ErrMalformedPayload("event %s: decode comment payload: %v", meta.ID, err)
		}
		return &CommentEvent{EventMeta: meta, Comment: p.Comment}, nil
	case EventTypeReview:
		var p reviewPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, ErrMalformedPayload("event %s: decode review payload: %v", meta.ID, err)
		}
		return &ReviewEvent{EventMeta: meta, Comment: p.Comment, Action: p.Action}, nil
	case EventTypeEdit:
		var p editPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, ErrMalformedPayload("event %s: decode edit payload: %v", meta.ID, err)
		}
		return &EditEvent{
			EventMeta:             meta,
			PreviousQuery:         p.PreviousQuery,
			PreviousCommand:       p.PreviousCommand,
			PreviousContainerName: p.PreviousContainerName,
			PreviousPodName:       p.PreviousPodName,
			PreviousNamespace:     p.PreviousNamespace,
		}, nil
	case EventTypeExecute:
		var p executePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, ErrMalformedPayload("event %s: decode execute payload: %v", meta.ID, err)
		}
		return &ExecuteEvent{
			EventMeta:     meta,
			Query:         p.Query,
			Command:       p.Command,
			ContainerName: p.ContainerName,
			PodName:       p.PodName,
			Namespace:     p.Namespace,
		}, nil
	default:
		return nil, ErrMalformedPayload("event %s: unknown event kind %q", meta.ID, kind)
	}
}

// EncodeEventPayload serializes an event's variant-specific fields for storage.
func EncodeEventPayload(evt Event) ([]byte, error) {
	switch e := evt.(type) {
	case *CommentEvent:
		return json.Marshal(commentPayload{Comment: e.Comment})
	case *ReviewEvent:
		return json.Marshal(reviewPayload{Comment: e.Comment, Action: e.Action})
	case *EditEvent:
		return json.Marshal(editPayload{
			PreviousQuery:         e.PreviousQuery,
			PreviousCommand:       e.PreviousCommand,
			PreviousContainerName: e.PreviousContainerName,
			PreviousPodName:       e.PreviousPodName,
			PreviousNamespace:     e.PreviousNamespace,
		})
	case *ExecuteEvent:
		return json.Marshal(executePayload{
			Query:         e.Query,
			Command:       e.Command,
			ContainerName: e.ContainerName,
			PodName:       e.PodName,
			Namespace:     e.Namespace,
		})
	default:
		return nil, ErrMalformedPayload("encode event: unknown variant %T", evt)
	}
}

// SortEvents returns a copy of events in display order: created-at ascending,
// with equal timestamps broken by lexicographic id so that the larger id is
// treated as later. The order is total, which keeps status folds reproducible.
func SortEvents(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := sorted[i].Meta(), sorted[j].Meta()
		if mi.CreatedAt.Equal(mj.CreatedAt) {
			return mi.ID < mj.ID
		}
		return mi.CreatedAt.Before(mj.CreatedAt)
	})
	return sorted
}
