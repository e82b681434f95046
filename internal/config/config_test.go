package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, 2*time.Second, cfg.BotDelay)
	assert.Equal(t, 3*time.Second, cfg.ChallengeWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ONESERV_ADDR", ":9999")
	t.Setenv("ONESERV_BOT_DELAY_MS", "250")
	t.Setenv("ONESERV_CHALLENGE_WINDOW_MS", "1500")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.BotDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.ChallengeWindow)
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("ONESERV_BOT_DELAY_MS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.BotDelay)
}
