package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/shake_dice/internal/config"
	"github.com/relabs-tech/shake_dice/internal/motion"
	"github.com/relabs-tech/shake_dice/internal/render"
)

func TestStartLocalSource_Mock(t *testing.T) {
	cfg := config.Default()
	cfg.SampleInterval = 1

	ctx, cancel := context.WithCancel(context.Background())
	feed, wait, err := startLocalSource(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("startLocalSource: %v", err)
	}

	got := make(chan motion.Sample, 1)
	h := feed.Subscribe(func(s motion.Sample) {
		select {
		case got <- s:
		default:
		}
	})
	defer feed.Unsubscribe(h)

	select {
	case s := <-got:
		if s.Z == 0 {
			t.Errorf("mock sample has no gravity component: %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no sample from mock source")
	}

	cancel()
	wait()
}

func TestStartLocalSource_RejectsMQTT(t *testing.T) {
	cfg := config.Default()
	cfg.MotionSource = config.SourceMQTT

	if _, _, err := startLocalSource(context.Background(), cfg, nil); err == nil {
		t.Error("startLocalSource(mqtt) returned nil error")
	}
}

func TestSuperviseSource_FailureCancelsContext(t *testing.T) {
	portGone := errors.New("serial read: EOF")

	tests := []struct {
		name      string
		run       sourceRunner
		wantCause error
	}{
		{
			name:      "source dies",
			run:       func(context.Context, *motion.Feed) error { return portGone },
			wantCause: portGone,
		},
		{
			name: "shutdown",
			run: func(ctx context.Context, _ *motion.Feed) error {
				<-ctx.Done()
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancelCause(context.Background())
			defer cancel(nil)

			_, wait := superviseSource(ctx, tt.run, cancel)
			if tt.wantCause == nil {
				cancel(nil)
			}
			wait()

			select {
			case <-ctx.Done():
			default:
				t.Fatal("context still live after the source stopped")
			}
			if got := sourceFailure(ctx); !errors.Is(got, tt.wantCause) {
				t.Errorf("sourceFailure = %v, want %v", got, tt.wantCause)
			}
		})
	}
}

func TestBuildRenderers_Console(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	renderers, closers, err := buildRenderers(context.Background(), cfg, nil, &buf)
	if err != nil {
		t.Fatalf("buildRenderers: %v", err)
	}
	if len(renderers) != 1 || len(closers) != 0 {
		t.Fatalf("got %d renderers, %d closers; want 1, 0", len(renderers), len(closers))
	}
	if _, ok := renderers[0].(*render.Console); !ok {
		t.Errorf("renderer is %T, want *render.Console", renderers[0])
	}
}

func TestPrintState(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "resolved", payload: `{"face":5,"rolls":2}`, want: "You rolled 5"},
		{name: "rolling", payload: `{"face":5,"rolling":true,"rolls":2}`, want: "Rolling..."},
		{name: "garbage", payload: `not json`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printState(render.NewConsole(&buf), []byte(tt.payload))

			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("printed %q, want nothing", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("printed %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}
