package discord

import (
	"testing"
	"time"
)

func TestCooldownPerGuild(t *testing.T) {
	c := newCooldowns(time.Hour)

	if !c.Allow("g1") {
		t.Fatal("first call for a guild must pass")
	}
	if c.Allow("g1") {
		t.Fatal("second call within the window must be rejected")
	}
	if !c.Allow("g2") {
		t.Fatal("another guild has its own cooldown")
	}
}

func TestCooldownRecovers(t *testing.T) {
	c := newCooldowns(10 * time.Millisecond)

	if !c.Allow("g1") {
		t.Fatal("first call must pass")
	}
	time.Sleep(20 * time.Millisecond)
	if !c.Allow("g1") {
		t.Fatal("cooldown did not expire")
	}
}
