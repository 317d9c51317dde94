package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/helioplan/helioplan/core/mqtt"
	"github.com/helioplan/helioplan/core/scheduler"
	"github.com/helioplan/helioplan/infra/logger"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// PlanPublisher serializes schedule results and pushes them to field
// controllers through an MQTT client.
type PlanPublisher struct {
	cli        Client
	log        logger.Logger
	ackTimeout time.Duration
}

// NewPlanPublisher creates a publisher. An ackTimeout of zero disables
// acknowledgment tracking for device commands.
func NewPlanPublisher(cli Client, ackTimeout time.Duration) *PlanPublisher {
	return &PlanPublisher{cli: cli, log: logger.New("plan_publisher"), ackTimeout: ackTimeout}
}

// PublishPlan publishes the complete schedule on the microgrid plan topic.
func (p *PlanPublisher) PublishPlan(microgridID string, res scheduler.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := p.cli.PublishPlan(microgridID, payload); err != nil {
		return fmt.Errorf("publish plan: %w", err)
	}
	p.log.Infof("published plan for %s with %d slots", microgridID, len(res.Slots))
	return nil
}

// PublishSlotCommands sends one setpoint command per admitted device in the
// slot. Unacknowledged commands are logged but do not fail the publication.
func (p *PlanPublisher) PublishSlotCommands(microgridID string, slot scheduler.Slot) error {
	for _, dev := range slot.Devices {
		cmdID, err := p.cli.SendCommand(microgridID, dev.DeviceID, dev.PowerKW, slot.Time)
		if err != nil {
			return fmt.Errorf("device %s: %w", dev.DeviceID, err)
		}
		if p.ackTimeout <= 0 {
			continue
		}
		ok, err := p.cli.WaitForAck(cmdID, p.ackTimeout)
		if err != nil || !ok {
			p.log.Warnf("no ack for command %s (device %s): %v", cmdID, dev.DeviceID, err)
		}
	}
	return nil
}

// MockClient is a simple client used in tests.
type MockClient struct {
	Plans      map[string][]byte
	Commands   map[string]float64
	FailIDs    map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockClient creates a new MockClient.
func NewMockClient() *MockClient {
	return &MockClient{
		Plans:      make(map[string][]byte),
		Commands:   make(map[string]float64),
		FailIDs:    make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// PublishPlan records the plan payload or fails if configured to.
func (m *MockClient) PublishPlan(microgridID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[microgridID] {
		return fmt.Errorf("publish failed")
	}
	m.Plans[microgridID] = payload
	return nil
}

// SendCommand records the setpoint or returns an error if configured to fail.
func (m *MockClient) SendCommand(microgridID, deviceID string, powerKW float64, _ time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[deviceID] {
		return "", fmt.Errorf("publish failed")
	}
	m.Commands[deviceID] = powerKW
	commandID := fmt.Sprintf("cmd-%s-%s", microgridID, deviceID)
	m.AckResults[commandID] = true
	return commandID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockClient) WaitForAck(commandID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[commandID]
	m.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("unknown command")
	}
	return ok, nil
}
