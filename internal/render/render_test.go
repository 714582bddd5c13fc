package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/shake_dice/internal/dice"
	"github.com/relabs-tech/shake_dice/internal/game"
	"github.com/relabs-tech/shake_dice/internal/motion"
)

var (
	idle      = game.Frame{Face: 1}
	rolling   = game.Frame{Face: 1, Rolling: true, Motion: motion.Sample{X: 1.2, Y: -0.8, Z: 1.5}}
	rolledSix = game.Frame{Face: 6, Rolls: 1}
)

func TestCard(t *testing.T) {
	tests := []struct {
		name  string
		frame game.Frame
		want  []string
	}{
		{name: "before first roll", frame: idle, want: []string{"Shake your device", "------------------------"}},
		{name: "rolling", frame: rolling, want: []string{"Rolling...", "X= 1.20 Y=-0.80 Z= 1.50"}},
		{name: "rolled six", frame: rolledSix, want: []string{"You rolled 6", "[########################]"}},
		{name: "rolled three", frame: game.Frame{Face: 3, Rolls: 2}, want: []string{"You rolled 3", "[############------------]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Card(tt.frame)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Card = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestConsole_PrintsOnChangeOnly(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	for _, f := range []game.Frame{idle, idle, rolling, rolling, rolling, rolledSix, rolledSix} {
		if err := c.Render(f); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("printed %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "You rolled 6") {
		t.Errorf("last line = %q", lines[2])
	}
}

func TestDrawCard(t *testing.T) {
	// Top-left pip of a six sits at (20, 20).
	pip := image.Point{X: 20, Y: 20}

	img := DrawCard(rolledSix)
	if img.BitAt(pip.X, pip.Y) != image1bit.On {
		t.Error("six: top-left pip not drawn")
	}
	if img.BitAt(32, 32) != image1bit.Off {
		t.Error("six: center pixel set, a six has no center pip")
	}

	img = DrawCard(game.Frame{Face: 1, Rolls: 1})
	if img.BitAt(32, 32) != image1bit.On {
		t.Error("one: center pip not drawn")
	}
	if img.BitAt(pip.X, pip.Y) != image1bit.Off {
		t.Error("one: corner pip drawn")
	}

	img = DrawCard(rolling)
	if img.BitAt(pip.X, pip.Y) != image1bit.Off {
		t.Error("rolling: pips drawn while face is unknown")
	}
	if img.BitAt(faceInset, faceInset) != image1bit.On {
		t.Error("rolling: face outline missing")
	}
}

type fakePanel struct {
	draws int
	err   error
}

func (p *fakePanel) Bounds() image.Rectangle { return image.Rect(0, 0, cardW, cardH) }

func (p *fakePanel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	p.draws++
	return p.err
}

func TestOLED_RedrawsOnChange(t *testing.T) {
	p := &fakePanel{}
	o := &OLED{dev: p}

	for _, f := range []game.Frame{idle, idle, rolling, rolling, rolledSix} {
		if err := o.Render(f); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if p.draws != 3 {
		t.Errorf("draws = %d, want 3", p.draws)
	}

	p.err = errors.New("i2c nack")
	if err := o.Render(idle); err == nil {
		t.Error("Render with failing panel returned nil")
	}
	p.err = nil
	if err := o.Render(idle); err != nil || p.draws != 5 {
		t.Errorf("retry after failure: err=%v draws=%d, want a redraw", err, p.draws)
	}
}

type errRenderer struct{ calls int }

func (e *errRenderer) Render(game.Frame) error {
	e.calls++
	return errors.New("boom")
}

func TestMulti(t *testing.T) {
	a, b := &errRenderer{}, &errRenderer{}
	if err := (Multi{a, b}).Render(idle); err == nil {
		t.Fatal("Multi.Render returned nil with failing renderers")
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d, %d; want every renderer called once", a.calls, b.calls)
	}
}

func TestWebSocket_API(t *testing.T) {
	ws := NewWebSocket()
	h := ws.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dice", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("/api/dice before any frame = %d, want 503", rec.Code)
	}

	ws.Render(rolledSix)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dice", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/dice = %d, want 200", rec.Code)
	}
	var got game.Frame
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Face != 6 || got.Rolls != 1 {
		t.Errorf("/api/dice = %+v", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/faces", nil))
	var faces []cubeFace
	if err := json.NewDecoder(rec.Body).Decode(&faces); err != nil {
		t.Fatalf("decode faces: %v", err)
	}
	if len(faces) != 6 {
		t.Fatalf("/api/faces returned %d faces", len(faces))
	}
	for _, f := range faces {
		if len(f.Pips) != int(f.Face) {
			t.Errorf("face %d has %d pips", f.Face, len(f.Pips))
		}
	}
}

func TestWebSocket_Stream(t *testing.T) {
	ws := NewWebSocket()
	srv := httptest.NewServer(ws.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ws.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("server never registered the client")
		}
		time.Sleep(5 * time.Millisecond)
	}

	want := game.Frame{Face: 4, Rolls: 3, Orientation: dice.Orientation{X: 7.85}}
	if err := ws.Render(want); err != nil {
		t.Fatalf("Render: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got game.Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Face != 4 || got.Rolls != 3 || got.Orientation.X != 7.85 {
		t.Errorf("streamed frame = %+v", got)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for ws.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("server kept a closed client")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocket_RenderDoesNotWaitForSlowClient(t *testing.T) {
	ws := NewWebSocket()

	// A client whose writer never drains its queue.
	stalled := &wsClient{send: make(chan game.Frame, clientBacklog), done: make(chan struct{})}
	ws.clients[stalled] = struct{}{}

	returned := make(chan struct{})
	go func() {
		for i := 0; i < clientBacklog*10; i++ {
			ws.Render(game.Frame{Face: 2, Rolls: i + 1})
		}
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Render blocked on a client that is not reading")
	}

	if n := len(stalled.send); n != clientBacklog {
		t.Fatalf("queued %d frames, want %d", n, clientBacklog)
	}
	if first := <-stalled.send; first.Rolls != 1 {
		t.Errorf("oldest queued frame has Rolls=%d, want 1; later frames should be dropped", first.Rolls)
	}

	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dice", nil))
	var latest game.Frame
	if err := json.NewDecoder(rec.Body).Decode(&latest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if latest.Rolls != clientBacklog*10 {
		t.Errorf("/api/dice Rolls = %d, want the last rendered frame", latest.Rolls)
	}
}

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

type fakeClient struct {
	mqtt.Client
	mu        sync.Mutex
	published []string
	retained  []bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, topic+" "+string(payload.([]byte)))
	c.retained = append(c.retained, retained)
	return doneToken{}
}

func TestMQTT_PublishesOnChange(t *testing.T) {
	client := &fakeClient{}
	m := NewMQTT(client, "dice/state")

	for _, f := range []game.Frame{idle, rolling, rolling, rolledSix, rolledSix} {
		if err := m.Render(f); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}

	if len(client.published) != 3 {
		t.Fatalf("published %d messages, want 3", len(client.published))
	}
	last := client.published[2]
	if !strings.HasPrefix(last, "dice/state ") || !strings.Contains(last, `"face":6`) {
		t.Errorf("last message = %q", last)
	}
	if !client.retained[0] {
		t.Error("state messages should be retained")
	}
}
