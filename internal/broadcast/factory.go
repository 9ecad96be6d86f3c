package broadcast

import (
	"fmt"
	"os"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

// NewFromConfig builds a Broadcaster over the configured destinations. The hub
// is always used when "hub" is listed so the API can serve subscriptions.
func NewFromConfig(cfg models.BroadcastConfig, hub *Hub) (*Broadcaster, error) {
	var destinations []Destination
	closeAll := func() {
		for _, d := range destinations {
			d.Close()
		}
	}

	for _, name := range cfg.Destinations {
		switch name {
		case "hub":
			if hub == nil {
				closeAll()
				return nil, fmt.Errorf("hub destination configured without a hub")
			}
			destinations = append(destinations, hub)
		case "console":
			destinations = append(destinations, NewConsoleOutput(os.Stdout))
		case "file":
			destinations = append(destinations, NewJSONOutput(cfg.OutputPath))
		case "kafka":
			output, err := NewKafkaOutput(cfg.Kafka)
			if err != nil {
				closeAll()
				return nil, err
			}
			destinations = append(destinations, output)
		case "rabbitmq":
			output, err := NewRabbitMQOutput(cfg.RabbitMQ)
			if err != nil {
				closeAll()
				return nil, err
			}
			destinations = append(destinations, output)
		default:
			closeAll()
			return nil, fmt.Errorf("unsupported broadcast destination: %s", name)
		}
	}
	return NewBroadcaster(destinations...), nil
}
