package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownWindow(t *testing.T) {
	now := time.Date(2024, 2, 5, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(time.Minute)
	c.now = func() time.Time { return now }

	assert.False(t, c.Active(), "a fresh cooldown should be inactive")

	c.Engage()
	assert.True(t, c.Active())

	now = now.Add(59 * time.Second)
	assert.True(t, c.Active())

	now = now.Add(2 * time.Second)
	assert.False(t, c.Active())
}

func TestCooldownEngageExtendsWindow(t *testing.T) {
	now := time.Date(2024, 2, 5, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(time.Minute)
	c.now = func() time.Time { return now }

	c.Engage()
	now = now.Add(45 * time.Second)
	c.Engage()
	now = now.Add(45 * time.Second)
	assert.True(t, c.Active(), "re-engaging should restart the window")
}

func TestCooldownDefaultDuration(t *testing.T) {
	c := NewCooldown(0)
	assert.Equal(t, time.Minute, c.duration)
}
