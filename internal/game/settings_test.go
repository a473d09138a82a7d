package game

import (
	"errors"
	"testing"

	"pawnstorm/internal/theme"
)

func TestSettingsApplyOnSubmit(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.OpenSettings()
	if err := c.PickColor("blue"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	v := c.View()
	if !v.Dialogs.Settings || v.BoardColor != theme.Green || v.PendingColor != theme.Blue {
		t.Fatalf("picking must only stage the color: %+v", v)
	}
	c.SubmitSettings()
	v = c.View()
	if v.Dialogs.Settings || v.BoardColor != theme.Blue {
		t.Fatalf("expected blue applied and dialog closed: %+v", v)
	}
	if v.DarkSquare != "rgba(96, 165, 250)" {
		t.Fatalf("unexpected dark square %s", v.DarkSquare)
	}
}

func TestSettingsCloseDiscards(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.OpenSettings()
	_ = c.PickColor("sky")
	c.CloseSettings()
	if v := c.View(); v.BoardColor != theme.Green || v.Dialogs.Settings {
		t.Fatalf("closing must not apply: %+v", v)
	}
	c.OpenSettings()
	if v := c.View(); v.PendingColor != theme.Green {
		t.Fatalf("reopening starts from the applied color, got %s", v.PendingColor)
	}
}

func TestPickUnknownColor(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	if err := c.PickColor("red"); !errors.Is(err, theme.ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}
}

func TestSettingsSurviveReset(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.OpenSettings()
	_ = c.PickColor("purple")
	c.SubmitSettings()
	c.Resize(300)
	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if v := c.View(); v.BoardColor != theme.Purple || v.Width != 300 {
		t.Fatalf("board preferences must survive a reset: %+v", v)
	}
}
