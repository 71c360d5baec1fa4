package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"finance-chatbot-be/internal/pkg/logger"
	"finance-chatbot-be/pkg/events"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains completed-turn events off the in-process pub/sub and
// writes them to the structured log for later analysis.
type consumerService struct {
	log       logger.ILogger
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewConsumerService(
	log logger.ILogger,
	pubSub *gochannel.GoChannel,
	topicName string,
) IConsumerService {
	return &consumerService{
		log:       log,
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var ev events.ChatTurnEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		cs.log.Error("ConsumerService", "failed to unmarshal turn event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.log.Info("ConsumerService", "chat turn recorded", map[string]interface{}{
		"user_id":  ev.UserID,
		"branch":   ev.Branch,
		"category": ev.Category,
		"degraded": ev.Degraded,
	})
	msg.Ack()
}
