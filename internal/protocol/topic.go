package protocol

import (
	"fmt"
	"strings"
)

// Kind is the last topic segment and selects the payload schema.
type Kind string

const (
	KindMessage   Kind = "message"
	KindDelivered Kind = "delivered"
	KindRead      Kind = "read"
	KindTyping    Kind = "typing"
)

// DefaultNamespace is the topic root used by the course broker.
const DefaultNamespace = "ttm4175"

// Kinds lists every event kind a participant subscribes to.
var Kinds = []Kind{KindMessage, KindDelivered, KindRead, KindTyping}

// Topic returns the topic an event of the given kind is published on.
// contact is the intended recipient.
func Topic(namespace, contact string, kind Kind) string {
	return namespace + "/chat/" + contact + "/" + string(kind)
}

// SubscriptionTopic returns the MQTT wildcard covering every kind addressed to self.
func SubscriptionTopic(namespace, self string) string {
	return namespace + "/chat/" + self + "/+"
}

// TopicPrefix returns the prefix shared by every topic addressed to self.
func TopicPrefix(namespace, self string) string {
	return namespace + "/chat/" + self + "/"
}

// ParseTopic splits a topic into recipient and kind. The kind is returned as
// found; callers decide whether it is known.
func ParseTopic(namespace, topic string) (string, Kind, error) {
	rest, ok := strings.CutPrefix(topic, namespace+"/chat/")
	if !ok {
		return "", "", fmt.Errorf("topic %q outside namespace %q", topic, namespace)
	}
	contact, kind, ok := strings.Cut(rest, "/")
	if !ok || contact == "" || kind == "" || strings.Contains(kind, "/") {
		return "", "", fmt.Errorf("topic %q: want %s/chat/<contact>/<kind>", topic, namespace)
	}
	return contact, Kind(kind), nil
}

// Known reports whether k is one of Kinds.
func (k Kind) Known() bool {
	switch k {
	case KindMessage, KindDelivered, KindRead, KindTyping:
		return true
	}
	return false
}
