package factory

import (
	"strings"
	"testing"
	"time"
)

type sink struct {
	URL   string
	Every int
}

type sinkConf struct {
	URL     string        `json:"url"`
	Every   int           `json:"every"`
	Timeout time.Duration `json:"timeout"`
	Tags    []string      `json:"tags"`
}

func newSink(conf map[string]any) (*sink, error) {
	var c sinkConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sink{URL: c.URL, Every: c.Every}, nil
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sink]()
	if err := reg.Register("influx", newSink); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://db", "every": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.URL != "http://db" || inst.Every != 3 {
		t.Fatalf("unexpected sink %+v", inst)
	}
}

// Values coming from environment variables arrive as strings.
func TestDecode_WeakTypes(t *testing.T) {
	var c sinkConf
	if err := Decode(map[string]any{"every": "15"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Every != 15 {
		t.Fatalf("expected 15 got %d", c.Every)
	}
}

func TestDecode_DurationsAndLists(t *testing.T) {
	var c sinkConf
	if err := Decode(map[string]any{"timeout": "2s", "tags": "pv,battery"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Timeout != 2*time.Second {
		t.Fatalf("expected 2s got %v", c.Timeout)
	}
	if len(c.Tags) != 2 || c.Tags[1] != "battery" {
		t.Fatalf("unexpected tags %v", c.Tags)
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	var c sinkConf
	if err := Decode(map[string]any{"ulr": "http://db"}, &c); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestRegistry_CreateNamesFailingType(t *testing.T) {
	reg := NewRegistry[*sink]()
	if err := reg.Register("influx", newSink); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := reg.Create(ModuleConfig{Type: "influx", Conf: map[string]any{"every": "often"}})
	if err == nil || !strings.HasPrefix(err.Error(), "influx: ") {
		t.Fatalf("expected error naming the type, got %v", err)
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("z", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
	if got := reg.Types(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("unexpected types %v", got)
	}
}
