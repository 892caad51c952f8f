//go:build integration

// Run against a local broker on 127.0.0.1:1883:
//
//	go test -tags=integration -count=1 ./internal/infrastructure/mqtt/...

package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"
)

func brokerClient(t *testing.T, clientID string) *Client {
	t.Helper()

	cfg := testConfig()
	cfg.Broker.ClientID = clientID
	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect(%s) error = %v", clientID, err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // test cleanup
	return client
}

// collect subscribes to filter and delivers decoded payloads of type T.
func collect[T any](t *testing.T, c *Client, filter string) <-chan T {
	t.Helper()

	out := make(chan T, 8)
	err := c.Subscribe(filter, 1, func(_ string, payload []byte) error {
		var v T
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		select {
		case out <- v:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe(%s) error = %v", filter, err)
	}
	return out
}

func TestIntegration_Lifecycle(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "graylogic-ets-int-lifecycle"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	for i := range 2 {
		if err := client.Close(); err != nil {
			t.Errorf("Close() #%d error = %v", i+1, err)
		}
	}
	if !errors.Is(client.HealthCheck(context.Background()), ErrNotConnected) {
		t.Error("HealthCheck() after Close should report ErrNotConnected")
	}
}

func TestIntegration_ConnectRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19998

	if _, err := Connect(cfg); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestIntegration_Subscriptions(t *testing.T) {
	client := brokerClient(t, "graylogic-ets-int-subs")
	noop := func(string, []byte) error { return nil }

	one := Topics{}.ExportCompleted("track one")
	two := Topics{}.ExportCompleted("track two")
	for _, topic := range []string{two, one, Topics{}.ServiceStatus()} {
		if err := client.Subscribe(topic, 1, noop); err != nil {
			t.Fatalf("Subscribe(%s) error = %v", topic, err)
		}
	}

	if err := client.Unsubscribe(one); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	want := []string{Topics{}.ExportCompleted("track two"), Topics{}.ServiceStatus()}
	slices.Sort(want)
	if got := client.Subscriptions(); !slices.Equal(got, want) {
		t.Errorf("Subscriptions() = %v, want %v", got, want)
	}
}

func TestIntegration_ExportEvent(t *testing.T) {
	type event struct {
		Project string `json:"project"`
		Rows    int    `json:"rows"`
	}

	pub := brokerClient(t, "graylogic-ets-int-pub")
	events := collect[event](t, brokerClient(t, "graylogic-ets-int-sub"), Topics{}.AllExports())
	time.Sleep(100 * time.Millisecond)

	want := event{Project: "Roundtrip Villa", Rows: 12}
	if err := pub.PublishJSON(Topics{}.ExportCompleted(want.Project), want, false); err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-events:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatal("export event not received")
		}
	}
}

func TestIntegration_OnlineStatus(t *testing.T) {
	brokerClient(t, "graylogic-ets-int-status")
	statuses := collect[statusPayload](t, brokerClient(t, "graylogic-ets-int-watch"), Topics{}.ServiceStatus())

	timeout := time.After(5 * time.Second)
	for {
		select {
		case s := <-statuses:
			if s.Status == statusOnline {
				return
			}
		case <-timeout:
			t.Fatal("online status not received")
		}
	}
}
