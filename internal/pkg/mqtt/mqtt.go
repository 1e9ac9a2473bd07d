package mqtt

import (
	"errors"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type service struct {
	client      paho_mqtt.Client
	topicPrefix string
	timeout     time.Duration
	logger      *zap.Logger

	mu                  sync.Mutex
	configuredEmployees map[string]struct{}
}

func New(client paho_mqtt.Client, topicPrefix string) *service {
	if topicPrefix == "" {
		topicPrefix = "ev-reimbursement"
	}
	return &service{
		client:              client,
		topicPrefix:         topicPrefix,
		timeout:             5 * time.Second,
		logger:              zap.L(),
		configuredEmployees: make(map[string]struct{}),
	}
}

// NewClient builds a paho client for the broker with auto reconnect enabled.
func NewClient(host, username, password string) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(host).
		SetClientID("ev-reimbursement").
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false)
	return paho_mqtt.NewClient(opts)
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(s.timeout)
	if res {
		return token.Error()
	}
	if err := token.Error(); err != nil {
		return err
	}
	return errors.New("unable to connect in time")
}

func (s *service) Close() error {
	s.client.Disconnect(250)
	return nil
}
