package render_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-invoicedoc/pkg/render"
)

func TestLayoutRegistry(t *testing.T) {
	reg := render.NewLayoutRegistry()
	reg.MustRegister(render.NewLayoutFunc("Plain", func(view render.View) (string, error) {
		return view.Number, nil
	}))

	if err := reg.Register(render.NewLayoutFunc("plain", nil)); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil layout to fail")
	}
	if err := reg.Register(render.NewLayoutFunc(" ", nil)); err == nil {
		t.Fatalf("expected blank name to fail")
	}

	layout, err := reg.Get("PLAIN")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out, _ := layout.Render(render.View{Number: "INV-1"}); out != "INV-1" {
		t.Fatalf("unexpected layout output %q", out)
	}
	if _, err := reg.Get("missing"); !errors.Is(err, render.ErrLayoutNotFound) {
		t.Fatalf("expected ErrLayoutNotFound, got %v", err)
	}
	if !reg.Has("plain") || reg.Has("missing") {
		t.Fatalf("unexpected Has results")
	}
}

func TestDefaultLayouts(t *testing.T) {
	engine := newEngine(t)

	want := []string{"bold", "classic", "creative", "modern"}
	if diff := cmp.Diff(want, engine.Layouts().List()); diff != "" {
		t.Fatalf("layouts mismatch (-want +got):\n%s", diff)
	}
	for _, name := range want {
		if engine.Layouts().MustGet(name).Name() != name {
			t.Fatalf("layout %s has wrong name", name)
		}
	}
}
