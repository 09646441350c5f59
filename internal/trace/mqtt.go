package trace

import (
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Mr-Niloy/ColdKeys/internal/config"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// MQTTPublisher mirrors trace records to a broker topic. Publishing is fire and forget.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	qos    byte
}

func ConnectMQTT(cfg config.MQTTConfig, logger keymap.Logger) (*MQTTPublisher, error) {
	broker := strings.TrimSpace(cfg.Broker)
	if broker == "" {
		return nil, fmt.Errorf("mqtt broker is not configured")
	}
	if strings.HasPrefix(broker, "mqtt://") {
		broker = "tcp://" + strings.TrimPrefix(broker, "mqtt://")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		clientID = "coldkeys"
	}
	opts.SetClientID(clientID + "-" + time.Now().Format("150405.000"))
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("Trace mirror connection lost", "broker", broker, "err", err)
	}
	opts.OnConnect = func(_ mqtt.Client) {
		logger.Info("Trace mirror connected", "broker", broker, "topic", cfg.Topic)
	}

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if ok := tok.WaitTimeout(5 * time.Second); !ok {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: timed out", broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}

	return &MQTTPublisher{client: client, topic: cfg.Topic, qos: byte(cfg.QoS)}, nil
}

func (p *MQTTPublisher) Publish(payload []byte) error {
	if !p.client.IsConnectionOpen() {
		return fmt.Errorf("mqtt connection is not open")
	}
	p.client.Publish(p.topic, p.qos, false, payload)
	return nil
}

func (p *MQTTPublisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}
