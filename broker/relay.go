package broker

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"sortie/entities"
	"sortie/hub"
)

const exchangeName = "sortie.events"

// Relay mirrors room events across service instances through a fanout
// exchange. Local delivery always happens first; the broker only
// carries events to sessions connected elsewhere.
type Relay struct {
	local      *hub.Hub
	conn       *amqp.Connection
	channel    *amqp.Channel
	instanceID string
}

type envelope struct {
	Room  string         `json:"room"`
	Event entities.Event `json:"event"`
}

func NewRelay(url string, local *hub.Hub) (*Relay, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, "", exchangeName, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := channel.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}

	r := &Relay{
		local:      local,
		conn:       conn,
		channel:    channel,
		instanceID: uuid.NewString(),
	}

	go r.consume(deliveries)

	return r, nil
}

// Publish delivers the event to local sessions and forwards it to the
// other instances. A broker failure is logged, not surfaced: local
// delivery already succeeded.
func (r *Relay) Publish(roomID string, event entities.Event) {
	r.local.Publish(roomID, event)

	body, err := json.Marshal(envelope{Room: roomID, Event: event})
	if err != nil {
		log.Printf("relay: failed to encode event for room %s: %v", roomID, err)
		return
	}

	err = r.channel.Publish(exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		AppId:       r.instanceID,
		Body:        body,
	})
	if err != nil {
		log.Printf("relay: failed to forward event for room %s: %v", roomID, err)
	}
}

func (r *Relay) consume(deliveries <-chan amqp.Delivery) {
	for msg := range deliveries {
		if msg.AppId == r.instanceID {
			continue
		}

		var env envelope
		if err := json.Unmarshal(msg.Body, &env); err != nil {
			log.Printf("relay: failed to decode broker message: %v", err)
			continue
		}

		r.local.Publish(env.Room, env.Event)
	}
}

func (r *Relay) Close() error {
	return r.conn.Close()
}
