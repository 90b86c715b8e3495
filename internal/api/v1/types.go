package mqchatv1

// Transport states reported by GetStatus and status change events.
const (
	StatusOffline      = "OFFLINE"
	StatusConnecting   = "CONNECTING"
	StatusOnline       = "ONLINE"
	StatusReconnecting = "RECONNECTING"
	StatusError        = "ERROR"
)

type GetStatusRequest struct{}

type GetStatusResponse struct {
	Identity      string `json:"identity"`
	Namespace     string `json:"namespace"`
	Broker        string `json:"broker"`
	Status        string `json:"status"`
	Contacts      int    `json:"contacts"`
	Unread        int    `json:"unread"`
	Drops         int64  `json:"drops"`
	MissedEvents  uint64 `json:"missed_events"`
	StartedUnixMs int64  `json:"started_unix_ms"`
}

type Contact struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Unread int    `json:"unread"`
	Typing bool   `json:"typing"`
}

type ListContactsRequest struct{}

type ListContactsResponse struct {
	Contacts []Contact `json:"contacts"`
}

// Message mirrors one history entry. Status is "", "delivered" or "read".
type Message struct {
	ID          string `json:"id"`
	Sender      string `json:"sender"`
	Receiver    string `json:"receiver"`
	Body        string `json:"body"`
	Outgoing    bool   `json:"outgoing"`
	Status      string `json:"status,omitempty"`
	ReadLocally bool   `json:"read_locally,omitempty"`
	// Rendered is the message as the chat view prints it.
	Rendered string `json:"rendered"`
}

type GetConversationRequest struct {
	Contact string `json:"contact"`
}

type GetConversationResponse struct {
	Contact  string    `json:"contact"`
	Label    string    `json:"label"`
	Messages []Message `json:"messages"`
	Unread   int       `json:"unread"`
	Typing   bool      `json:"typing"`
}

type SendRequest struct {
	Contact string `json:"contact"`
	Body    string `json:"body"`
}

type SendResponse struct {
	ID string `json:"id"`
}

type SendToAllRequest struct {
	Body string `json:"body"`
}

type SendToAllResponse struct {
	IDs []string `json:"ids"`
}

type NotifyTypingRequest struct {
	Contact string `json:"contact"`
}

type NotifyTypingResponse struct {
	Sent bool `json:"sent"`
}

type MarkReadRequest struct {
	Contact string `json:"contact"`
}

type MarkReadResponse struct {
	IDs []string `json:"ids"`
}

type Drop struct {
	Topic           string `json:"topic"`
	Reason          string `json:"reason"`
	Payload         string `json:"payload"`
	CreatedAtUnixMs int64  `json:"created_at_unix_ms"`
}

type ListDropsRequest struct {
	Limit int `json:"limit"`
}

type ListDropsResponse struct {
	Drops []Drop `json:"drops"`
	Total int64  `json:"total"`
}

type WatchChangesRequest struct{}

// ChangeEvent is one bus event forwarded to a watcher. Contact and MsgID are
// set for chat events, From and To for status changes.
type ChangeEvent struct {
	EventID          string `json:"event_id"`
	Kind             string `json:"kind"`
	OccurredAtUnixMs int64  `json:"occurred_at_unix_ms"`
	Contact          string `json:"contact,omitempty"`
	MsgID            string `json:"msg_id,omitempty"`
	From             string `json:"from,omitempty"`
	To               string `json:"to,omitempty"`
	Detail           string `json:"detail,omitempty"`
}
