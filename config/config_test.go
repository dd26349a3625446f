package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, 20, cfg.ItemsPerPage)
	assert.False(t, cfg.DynamicPaging)
	assert.Equal(t, 2*time.Second, cfg.PageDelay)
	assert.Equal(t, 20*time.Second, cfg.SelectorTimeout)
	assert.Equal(t, "https://www.copart.com", cfg.SiteOrigin)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MAX_PAGES", "7")
	t.Setenv("PAGE_DELAY_MS", "500")
	t.Setenv("DYNAMIC_PAGING", "true")
	t.Setenv("TELEGRAM_CHAT_ID", "-1002147359725")

	cfg := Load()

	assert.Equal(t, 7, cfg.MaxPages)
	assert.Equal(t, 500*time.Millisecond, cfg.PageDelay)
	assert.True(t, cfg.DynamicPaging)
	assert.Equal(t, int64(-1002147359725), cfg.TelegramChatID)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_PAGES", "many")
	t.Setenv("DYNAMIC_PAGING", "yep")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxPages)
	assert.False(t, cfg.DynamicPaging)
}
