package deferred

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/deferred/filter"
	"github.com/gogpu/deferred/geometry"
	"github.com/gogpu/deferred/light"
)

// recorder is a slog.Handler that keeps every record at or above level.
type recorder struct {
	level slog.Level

	mu      sync.Mutex
	records []slog.Record
}

func (h *recorder) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }
func (h *recorder) WithAttrs([]slog.Attr) slog.Handler           { return h }
func (h *recorder) WithGroup(string) slog.Handler                { return h }

func (h *recorder) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

// find returns the attributes of the first record whose message starts
// with msg.
func (h *recorder) find(msg string) (slog.Level, map[string]slog.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if !strings.HasPrefix(r.Message, msg) {
			continue
		}
		attrs := make(map[string]slog.Value)
		r.Attrs(func(a slog.Attr) bool {
			attrs[a.Key] = a.Value
			return true
		})
		return r.Level, attrs, true
	}
	return 0, nil, false
}

// record installs a recording logger for the duration of the test.
func record(t *testing.T, level slog.Level) *recorder {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	h := &recorder{level: level}
	SetLogger(slog.New(h))
	return h
}

func TestNopHandler(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.Int("lights", 1)}).(nopHandler); !ok {
		t.Error("WithAttrs() did not return a nopHandler")
	}
	if _, ok := h.WithGroup("pass").(nopHandler); !ok {
		t.Error("WithGroup() did not return a nopHandler")
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) left a nil logger")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

func TestRenderLogsFrame(t *testing.T) {
	h := record(t, slog.LevelDebug)
	r := newRenderer(t, WithFilters(filter.Fog{Near: 1, Far: 50}))
	f := &Frame{Camera: testCamera(), Instances: []geometry.Instance{wall(nil)}, Lights: []light.Light{headOn()}}
	if _, err := r.Render(context.Background(), f); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	level, attrs, ok := h.find("frame rendered")
	if !ok {
		t.Fatal("no frame rendered record")
	}
	if level != slog.LevelInfo {
		t.Errorf("frame rendered level = %v, want INFO", level)
	}
	for key, want := range map[string]int64{"width": size, "height": size, "instances": 1, "lights": 1} {
		if got := attrs[key]; got.Kind() != slog.KindInt64 || got.Int64() != want {
			t.Errorf("frame rendered %s = %v, want %d", key, got, want)
		}
	}

	if _, attrs, ok := h.find("geometry pass"); !ok || attrs["triangles"].Int64() != 2 {
		t.Errorf("geometry pass record = %v (found %v), want 2 triangles", attrs, ok)
	}
	if _, attrs, ok := h.find("light pass"); !ok || attrs["output"].String() != "light-buffer" {
		t.Errorf("light pass record = %v (found %v), want light-buffer output", attrs, ok)
	}
	if _, attrs, ok := h.find("filter"); !ok || attrs["name"].String() != "fog" {
		t.Errorf("filter record = %v (found %v), want fog", attrs, ok)
	}
	if _, _, ok := h.find("frame has no lights"); ok {
		t.Error("lit frame warned about missing lights")
	}
}

func TestRenderWarnsWithoutLights(t *testing.T) {
	h := record(t, slog.LevelWarn)
	r := newRenderer(t)
	f := &Frame{Camera: testCamera(), Instances: []geometry.Instance{wall(nil)}}
	if _, err := r.Render(context.Background(), f); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	level, _, ok := h.find("frame has no lights")
	if !ok || level != slog.LevelWarn {
		t.Errorf("no-lights record found %v at %v, want WARN", ok, level)
	}
	if _, _, ok := h.find("frame rendered"); ok {
		t.Error("INFO record passed a WARN level handler")
	}
}

func TestLoggerConcurrentWithRender(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	r := newRenderer(t)
	f := &Frame{Camera: testCamera(), Instances: []geometry.Instance{wall(nil)}, Lights: []light.Light{headOn()}}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetLogger(slog.New(&recorder{level: slog.LevelDebug}))
			SetLogger(nil)
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Render(context.Background(), f); err != nil {
				t.Errorf("Render() error = %v", err)
			}
		}()
	}
	wg.Wait()
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("light pass", "lights", 3)
	}
}
