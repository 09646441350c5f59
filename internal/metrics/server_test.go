package metrics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
	"github.com/Mr-Niloy/ColdKeys/internal/core/dispatch"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

func get(t *testing.T, srv *httptest.Server, path string) string {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(body)
}

func TestRouterServesMetricsAndDevices(t *testing.T) {
	c := NewCollector()
	c.DeviceGrabbed(linuxinput.DeviceInfo{
		Path: "/dev/input/event4",
		Name: "Keychron K2",
		ID:   evdev.InputID{Vendor: 0x05ac, Product: 0x024f},
	})
	c.DeviceGrabbed(linuxinput.DeviceInfo{Path: "/dev/input/event3", Name: "Macro Pad"})
	c.DeviceLost("/dev/input/event3", nil)

	action := keymap.ActionDescriptor{Key: "KEY_F13", Kind: keymap.KindVolume, Action: "mute"}
	c.KeyEvent(keymap.KeyEvent{Transition: keymap.TransitionDown}, &action)
	c.KeyEvent(keymap.KeyEvent{Transition: keymap.TransitionUp}, nil)
	c.JobDone(dispatch.Job{Action: action}, dispatch.Result{Success: true, Duration: 20 * time.Millisecond})
	c.JobDropped(dispatch.Job{Action: action}, "queue_full")

	srv := httptest.NewServer(NewRouter(c, func() Status {
		return Status{Session: "s-1", Profile: "default", Mapped: 8}
	}))
	defer srv.Close()

	metrics := get(t, srv, "/metrics")
	for _, want := range []string{
		`coldkeys_key_events_total{mapped="true",transition="down"} 1`,
		`coldkeys_key_events_total{mapped="false",transition="up"} 1`,
		`coldkeys_actions_total{kind="volume",result="success"} 1`,
		`coldkeys_actions_dropped_total{reason="queue_full"} 1`,
		`coldkeys_grabbed_devices 1`,
		`coldkeys_devices_lost_total 1`,
	} {
		if !strings.Contains(metrics, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, metrics)
		}
	}

	var devices []deviceView
	if err := json.Unmarshal([]byte(get(t, srv, "/devices")), &devices); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(devices) != 1 || devices[0].Path != "/dev/input/event4" || devices[0].Vendor != "05ac" {
		t.Fatalf("devices = %+v", devices)
	}

	var status Status
	if err := json.Unmarshal([]byte(get(t, srv, "/status")), &status); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if status.Profile != "default" || status.Mapped != 8 {
		t.Fatalf("status = %+v", status)
	}

	if body := get(t, srv, "/healthz"); body != "ok\n" {
		t.Fatalf("healthz = %q", body)
	}
}
