package events

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Publisher fans completed chat turns out over the in-process pub/sub.
// Publishing is best-effort; a turn is never failed because its event could
// not be delivered.
type Publisher struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewPublisher(pubSub *gochannel.GoChannel, topic string) *Publisher {
	return &Publisher{pubSub: pubSub, topic: topic}
}

func (p *Publisher) PublishTurn(ev ChatTurnEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.pubSub.Publish(p.topic, message.NewMessage(watermill.NewUUID(), payload))
}
