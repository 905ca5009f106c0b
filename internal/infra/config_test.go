package infra

import "testing"

func validConfig() *Config {
	cfg := &Config{}
	cfg.Binance.WSURL = "wss://fstream.binance.com"
	cfg.Binance.RestURL = "https://fapi.binance.com"
	cfg.Binance.APIKey = "k"
	cfg.Binance.SecretKey = "s"
	cfg.Telegram.Token = "t"
	cfg.Telegram.ChatID = "1"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"plain ws scheme ok", func(c *Config) { c.Binance.WSURL = "ws://localhost:8080" }, false},
		{"http scheme rejected", func(c *Config) { c.Binance.WSURL = "https://fstream.binance.com" }, true},
		{"empty ws url", func(c *Config) { c.Binance.WSURL = "" }, true},
		{"missing rest url", func(c *Config) { c.Binance.RestURL = "" }, true},
		{"missing api key", func(c *Config) { c.Binance.APIKey = "" }, true},
		{"missing telegram chat", func(c *Config) { c.Telegram.ChatID = "" }, true},
		{"negative debounce", func(c *Config) { c.Notify.DebounceMS = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
