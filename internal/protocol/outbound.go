package protocol

import "fmt"

// Publisher hands a payload to the transport. Implementations must not wait
// for delivery confirmation.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Outbound encodes local actions as protocol events and publishes them.
// It satisfies the sync engine's outbound port.
type Outbound struct {
	namespace string
	pub       Publisher
}

// NewOutbound creates an outbound adapter publishing under namespace.
func NewOutbound(namespace string, pub Publisher) *Outbound {
	return &Outbound{namespace: namespace, pub: pub}
}

func (o *Outbound) OnOutboundMessage(sender, receiver, body, id string) error {
	payload, err := EncodeMessage(sender, receiver, body, id)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return o.pub.Publish(Topic(o.namespace, receiver, KindMessage), payload)
}

func (o *Outbound) OnOutboundTyping(sender, receiver string) error {
	payload, err := EncodeTyping(sender, receiver)
	if err != nil {
		return fmt.Errorf("encode typing: %w", err)
	}
	return o.pub.Publish(Topic(o.namespace, receiver, KindTyping), payload)
}

func (o *Outbound) OnOutboundReadReceipt(sender, receiver, id string) error {
	return o.publishReceipt(KindRead, sender, receiver, id)
}

// OnOutboundDelivered publishes a delivery receipt for a message received from receiver.
func (o *Outbound) OnOutboundDelivered(sender, receiver, id string) error {
	return o.publishReceipt(KindDelivered, sender, receiver, id)
}

func (o *Outbound) publishReceipt(kind Kind, sender, receiver, id string) error {
	payload, err := EncodeReceipt(sender, receiver, id)
	if err != nil {
		return fmt.Errorf("encode %s receipt: %w", kind, err)
	}
	return o.pub.Publish(Topic(o.namespace, receiver, kind), payload)
}
