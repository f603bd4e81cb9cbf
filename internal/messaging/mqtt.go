package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/utils"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const handleTimeout = 5 * time.Second

// TelemetrySubscriber feeds drone telemetry published over MQTT into the
// same location update path as the REST endpoint.
type TelemetrySubscriber struct {
	client   mqtt.Client
	topic    string
	tracking usecase.TrackingService
	log      *zap.Logger
}

func NewTelemetrySubscriber(cfg utils.MQTTConfig, tracking usecase.TrackingService, log *zap.Logger) *TelemetrySubscriber {
	s := &TelemetrySubscriber{
		topic:    cfg.TelemetryTopic,
		tracking: tracking,
		log:      log.With(zap.String("component", "mqtt-telemetry")),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(10 * time.Second).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.log.Warn("MQTT connection lost", zap.Error(err))
		})

	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects; subscriptions are (re)made in the connect handler.
func (s *TelemetrySubscriber) Start() error {
	token := s.client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *TelemetrySubscriber) Stop() {
	s.client.Disconnect(250)
	s.log.Info("MQTT telemetry subscriber stopped")
}

func (s *TelemetrySubscriber) onConnect(client mqtt.Client) {
	token := client.Subscribe(s.topic, 1, s.handle)
	if token.WaitTimeout(10*time.Second) && token.Error() == nil {
		s.log.Info("Subscribed to telemetry", zap.String("topic", s.topic))
		return
	}
	s.log.Error("Failed to subscribe to telemetry", zap.Error(token.Error()), zap.String("topic", s.topic))
}

func (s *TelemetrySubscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	var req request.LocationUpdateRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		s.log.Warn("Discarding malformed telemetry", zap.Error(err), zap.String("topic", msg.Topic()))
		return
	}
	if req.SerialNumber == "" {
		req.SerialNumber = serialFromTopic(msg.Topic())
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if _, err := s.tracking.UpdateLocation(ctx, &req); err != nil {
		s.log.Warn("Telemetry rejected",
			zap.Error(err),
			zap.String("topic", msg.Topic()),
			zap.String("serial_number", req.SerialNumber))
	}
}

// serialFromTopic extracts {serial} from drones/{serial}/telemetry.
func serialFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) == 3 && parts[0] == "drones" && parts[2] == "telemetry" {
		return parts[1]
	}
	return ""
}
