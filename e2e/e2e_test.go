package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/helioplan/helioplan/core/model"
	"github.com/helioplan/helioplan/core/scheduler"
	"github.com/helioplan/helioplan/infra/mqtt"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Logf("mosquitto not ready: %v", err)
		t.Skip("Mosquitto not ready after retries")
	}
	return cont, broker
}

// connectControllerSim mimics a field controller: it records the retained
// plan, acknowledges every device command and exposes what it received.
type controllerSim struct {
	cli      paho.Client
	plans    chan []byte
	commands chan string
}

func connectControllerSim(broker string, t *testing.T) *controllerSim {
	t.Helper()
	sim := &controllerSim{
		plans:    make(chan []byte, 4),
		commands: make(chan string, 16),
	}
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("controller-sim")
	sim.cli = paho.NewClient(opts)
	var connErr error
	for i := 0; i < 5; i++ {
		token := sim.cli.Connect()
		token.Wait()
		connErr = token.Error()
		if connErr == nil {
			break
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	if connErr != nil {
		t.Logf("controller connect failed: %v", connErr)
		t.Skip("Mosquitto not ready after retries")
	}
	if token := sim.cli.Subscribe("microgrid/mg1/plan", 0, func(_ paho.Client, m paho.Message) {
		sim.plans <- m.Payload()
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe plan: %v", token.Error())
	}
	if token := sim.cli.Subscribe("microgrid/mg1/device/+/command", 0, func(_ paho.Client, m paho.Message) {
		var cmd struct {
			CommandID string `json:"command_id"`
			DeviceID  string `json:"device_id"`
		}
		_ = json.Unmarshal(m.Payload(), &cmd)
		sim.commands <- cmd.DeviceID
		payload, _ := json.Marshal(map[string]string{"command_id": cmd.CommandID})
		sim.cli.Publish("microgrid/mg1/ack", 0, false, payload)
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe commands: %v", token.Error())
	}
	return sim
}

func TestPlanPublicationWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	sim := connectControllerSim(broker, t)
	defer sim.cli.Disconnect(100)

	client, err := mqtt.NewPahoClient(mqtt.Config{
		Broker:   broker,
		ClientID: "helioplan-e2e",
		AckTopic: "microgrid/mg1/ack",
	})
	if err != nil {
		t.Fatalf("mqtt client: %v", err)
	}
	defer client.Disconnect()

	pub := mqtt.NewPlanPublisher(client, 2*time.Second)
	res := scheduler.Result{
		Mode: scheduler.ModeCost,
		Slots: []scheduler.Slot{
			{
				Time:     time.Now().Truncate(time.Hour),
				SupplyKW: 14,
				LoadKW:   4.8,
				Devices: []model.DeviceAllocation{
					{DeviceID: "fridge", PowerKW: 0.8},
					{DeviceID: "pump-1", PowerKW: 4},
				},
			},
		},
		InitialSoC: 0.5,
		FinalSoC:   0.6,
	}

	if err := pub.PublishPlan("mg1", res); err != nil {
		t.Fatalf("publish plan: %v", err)
	}
	select {
	case payload := <-sim.plans:
		var decoded scheduler.Result
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("decode plan: %v", err)
		}
		if len(decoded.Slots) != 1 {
			t.Fatalf("plan slots = %d, want 1", len(decoded.Slots))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("plan not received")
	}

	if err := pub.PublishSlotCommands("mg1", res.Slots[0]); err != nil {
		t.Fatalf("publish commands: %v", err)
	}
	received := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-sim.commands:
			received[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("device command not received")
		}
	}
	if !received["fridge"] || !received["pump-1"] {
		t.Fatalf("missing device commands: %v", received)
	}
}
