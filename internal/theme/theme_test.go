package theme

import (
	"context"
	"errors"
	"testing"
)

func TestToggle(t *testing.T) {
	p := NewProvider(Dark)
	if p.Mode() != Dark {
		t.Fatalf("expected initial dark")
	}
	if m := p.Toggle(); m != Light || p.Mode() != Light {
		t.Fatalf("expected light after toggle, got %s", m)
	}
	if m := p.Toggle(); m != Dark {
		t.Fatalf("expected dark after second toggle, got %s", m)
	}
}

func TestNewProviderDefaultsToLight(t *testing.T) {
	if m := NewProvider("").Mode(); m != Light {
		t.Fatalf("expected light, got %s", m)
	}
}

func TestFromPreference(t *testing.T) {
	if m := FromPreference(`"dark"`, Light); m != Dark {
		t.Fatalf("expected dark from quoted hint, got %s", m)
	}
	if m := FromPreference("", Dark); m != Dark {
		t.Fatalf("expected fallback, got %s", m)
	}
	if _, err := ParseMode("sepia"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestFromContext(t *testing.T) {
	p := NewProvider(Light)
	ctx := WithProvider(context.Background(), p)
	if FromContext(ctx) != p {
		t.Fatalf("expected attached provider")
	}
}

func TestFromContextPanicsOutsideScope(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic without provider")
		}
	}()
	FromContext(context.Background())
}

func TestPalettes(t *testing.T) {
	if n := len(BoardColors()); n != 5 {
		t.Fatalf("expected five palettes, got %d", n)
	}
	c, err := ParseBoardColor("purple")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if css := c.CSS(); css != "rgba(192, 132, 252)" {
		t.Fatalf("unexpected css %s", css)
	}
	if c.Label() != "Purple" {
		t.Fatalf("unexpected label %s", c.Label())
	}
	if _, err := ParseBoardColor("red"); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}
}
