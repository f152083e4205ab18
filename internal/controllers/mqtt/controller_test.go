package mqttctrl

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/testutil"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeToken struct {
	err error
}

func (t fakeToken) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func (t fakeToken) Wait() bool                       { return true }
func (t fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (t fakeToken) Error() error                     { return t.err }

type publishCall struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type fakeClient struct {
	publishes []publishCall
}

func (c *fakeClient) IsConnected() bool      { return true }
func (c *fakeClient) IsConnectionOpen() bool { return true }
func (c *fakeClient) Connect() mqtt.Token    { return fakeToken{} }
func (c *fakeClient) Disconnect(_ uint)      {}
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	var b []byte
	switch v := payload.(type) {
	case []byte:
		b = append([]byte(nil), v...)
	case string:
		b = []byte(v)
	default:
		tmp, _ := json.Marshal(v)
		b = tmp
	}
	c.publishes = append(c.publishes, publishCall{
		topic: topic, qos: qos, retain: retained, payload: b,
	})
	return fakeToken{}
}
func (c *fakeClient) Subscribe(_ string, _ byte, _ mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (c *fakeClient) SubscribeMultiple(_ map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (c *fakeClient) Unsubscribe(_ ...string) mqtt.Token       { return fakeToken{} }
func (c *fakeClient) AddRoute(_ string, _ mqtt.MessageHandler) {}
func (c *fakeClient) OptionsReader() mqtt.ClientOptionsReader  { return mqtt.ClientOptionsReader{} }

// ---- tests ----

func newTestController(t *testing.T, cfg Config) (*Controller, *testutil.FakeZoneService, *fakeClient) {
	t.Helper()
	svc := testutil.NewFakeZoneService()
	c, err := New(svc, cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	fc := &fakeClient{}
	c.client = fc
	return c, svc, fc
}

func send(c *Controller, topic, payload string) {
	c.onMessage(nil, fakeMessage{topic: topic, payload: []byte(payload)})
}

func TestNewDefaults(t *testing.T) {
	c, _, _ := newTestController(t, Config{DeviceID: "room101"})

	if c.cfg.BrokerURL != "tcp://localhost:1883" {
		t.Fatalf("expected default BrokerURL, got %q", c.cfg.BrokerURL)
	}
	if c.cfg.BaseTopic != "thermocomfort/room101" {
		t.Fatalf("expected default BaseTopic, got %q", c.cfg.BaseTopic)
	}
	if c.cfg.ClientID != "thermocomfort-room101" {
		t.Fatalf("expected default ClientID, got %q", c.cfg.ClientID)
	}
	if c.cfg.PublishInterval != 1*time.Second {
		t.Fatalf("expected default PublishInterval, got %v", c.cfg.PublishInterval)
	}
}

func TestNewValidation(t *testing.T) {
	svc := testutil.NewFakeZoneService()

	if _, err := New(svc, Config{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error when DeviceID missing")
	}
	if _, err := New(svc, Config{DeviceID: "x", QoS: 2}, zerolog.Nop()); err == nil {
		t.Fatal("expected error when QoS > 1")
	}
}

func TestTopicJoin(t *testing.T) {
	c, _, _ := newTestController(t, Config{DeviceID: "room101", BaseTopic: "thermocomfort/room101/"})
	if got := c.topic("snapshot"); got != "thermocomfort/room101/snapshot" {
		t.Fatalf("expected topic without double slashes, got %q", got)
	}
}

func TestDecodeValueStrict(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v, err := decodeValueStrict[float64]([]byte(`{"value": 12.5}`))
		if err != nil {
			t.Fatal(err)
		}
		if v != 12.5 {
			t.Fatalf("expected 12.5, got %v", v)
		}
	})

	t.Run("missing value", func(t *testing.T) {
		if _, err := decodeValueStrict[bool]([]byte(`{}`)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		if _, err := decodeValueStrict[string]([]byte(`{"value":"seated","extra":1}`)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeValueStrict[string]([]byte(`{"value":`)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestOnMessage_IgnoresWrongPrefix(t *testing.T) {
	c, svc, _ := newTestController(t, Config{DeviceID: "room101"})

	send(c, "otherprefix/set/clothing", `{"value":1}`)

	if svc.SetClothingCalled {
		t.Fatal("expected SetClothing not called")
	}
}

func TestOnMessage_FloatFields(t *testing.T) {
	tests := []struct {
		field string
		check func(*testutil.FakeZoneService) bool
	}{
		{"air_temperature", func(s *testutil.FakeZoneService) bool { return s.SetAirTemperatureArg == 21.5 }},
		{"mean_radiant_temperature", func(s *testutil.FakeZoneService) bool { return s.SetMeanRadiantTemperatureArg == 21.5 }},
		{"air_velocity", func(s *testutil.FakeZoneService) bool { return s.SetAirVelocityArg == 21.5 }},
		{"relative_humidity", func(s *testutil.FakeZoneService) bool { return s.S.Humidity == comfort.RelativeHumidity(21.5) }},
		{"vapor_pressure", func(s *testutil.FakeZoneService) bool { return s.S.Humidity == comfort.VaporPressure(21.5) }},
		{"clothing", func(s *testutil.FakeZoneService) bool { return s.SetClothingArg == 21.5 }},
		{"metabolic_rate", func(s *testutil.FakeZoneService) bool { return s.SetMetabolicRateArg == 21.5 }},
		{"external_work", func(s *testutil.FakeZoneService) bool { return s.SetExternalWorkArg == 21.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			c, svc, _ := newTestController(t, Config{DeviceID: "room101"})
			send(c, "thermocomfort/room101/set/"+tt.field, `{"value":21.5}`)
			if !tt.check(svc) {
				t.Fatalf("%s not applied: %+v", tt.field, svc.S)
			}
		})
	}
}

func TestOnMessage_Activity(t *testing.T) {
	c, svc, _ := newTestController(t, Config{DeviceID: "room101"})

	send(c, "thermocomfort/room101/set/activity", `{"value":"standing"}`)

	if !svc.SetActivityCalled || svc.SetActivityArg != zone.ActivityStanding {
		t.Fatalf("expected SetActivity(standing), got called=%v arg=%v", svc.SetActivityCalled, svc.SetActivityArg)
	}
}

func TestOnMessage_ActivityInvalid_DoesNotCallService(t *testing.T) {
	c, svc, _ := newTestController(t, Config{DeviceID: "room101"})

	send(c, "thermocomfort/room101/set/activity", `{"value":"sprinting"}`)

	if svc.SetActivityCalled {
		t.Fatal("expected SetActivity not called")
	}
}

func TestOnMessage_WrongType_DoesNotCallService(t *testing.T) {
	c, svc, _ := newTestController(t, Config{DeviceID: "room101"})

	send(c, "thermocomfort/room101/set/clothing", `{"value":"warm"}`)

	if svc.SetClothingCalled {
		t.Fatal("expected SetClothing not called")
	}
}

func TestOnMessage_ServiceError_IsIgnored(t *testing.T) {
	c, svc, _ := newTestController(t, Config{DeviceID: "room101"})
	svc.SetAirVelocityErr = errors.New("boom")

	send(c, "thermocomfort/room101/set/air_velocity", `{"value":-1}`)

	if !svc.SetAirVelocityCalled {
		t.Fatal("expected SetAirVelocity called")
	}
}

func TestApply_UnknownField(t *testing.T) {
	c, _, _ := newTestController(t, Config{DeviceID: "room101"})
	if err := c.apply("mode", []byte(`{"value":"heat"}`)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestPublishSnapshot_PublishesJSON(t *testing.T) {
	c, _, fc := newTestController(t, Config{DeviceID: "room101", QoS: 1, RetainSnapshot: true})

	c.publishSnapshot()

	if len(fc.publishes) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(fc.publishes))
	}

	p := fc.publishes[0]
	if p.topic != "thermocomfort/room101/snapshot" {
		t.Fatalf("expected snapshot topic, got %q", p.topic)
	}
	if p.qos != 1 || p.retain != true {
		t.Fatalf("expected qos=1 retain=true, got qos=%d retain=%v", p.qos, p.retain)
	}

	var got map[string]any
	if err := json.Unmarshal(p.payload, &got); err != nil {
		t.Fatalf("invalid published json: %v payload=%s", err, string(p.payload))
	}
	if got["device_id"] != "room101" {
		t.Fatalf("expected device_id=room101, got %v", got["device_id"])
	}
	if got["activity"] != "sedentary" {
		t.Fatalf("expected activity=sedentary, got %v", got["activity"])
	}
	if _, ok := got["comfort"].(map[string]any); !ok {
		t.Fatalf("expected comfort object, got %v", got["comfort"])
	}
}
