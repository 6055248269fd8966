package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setRequiredEnv supplies the secrets New refuses to start without.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_CONFIG_NAME", "does-not-exist")
	t.Setenv("APP_ENV_FILE", "does-not-exist.env")
	t.Setenv("APP_MERCADOPAGO_ACCESS_TOKEN", "APP_USR-platform")
	t.Setenv("APP_AUTH_JWT_SECRET", "test-secret")
}

func validConfig() *Config {
	return &Config{
		Site:        SiteConfig{BaseURL: "http://x"},
		Auth:        AuthConfig{JWTSecret: "s"},
		MercadoPago: MercadoPagoConfig{Timeout: time.Second, AccessToken: "APP_USR-platform"},
		Fees:        FeeConfig{PlatformFeePercent: 5},
		Reaper: ReaperConfig{
			Enabled:    true,
			Interval:   time.Minute,
			PollAfter:  15 * time.Minute,
			PendingTTL: time.Hour,
		},
	}
}

func TestNew_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 5.0, cfg.Fees.PlatformFeePercent)
	require.Equal(t, 0.0774, cfg.Fees.ProviderCommissionRate)
	require.False(t, cfg.Fees.RegionalTaxEnabled)
	require.Equal(t, 10*time.Second, cfg.MercadoPago.Timeout)
	require.Equal(t, "https://api.mercadopago.com", cfg.MercadoPago.BaseURL)
	require.False(t, cfg.Reaper.Enabled)
	require.Equal(t, 20, cfg.Database.MaxOpenConns)
	require.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestNew_EnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_FEES_PLATFORM_FEE_PERCENT", "7.5")
	t.Setenv("APP_MERCADOPAGO_CLIENT_ID", "123")
	t.Setenv("APP_MERCADOPAGO_CLIENT_SECRET", "shh")
	t.Setenv("APP_MERCADOPAGO_PUBLIC_KEY", "APP_USR-pub")
	t.Setenv("APP_MERCADOPAGO_OAUTH_REDIRECT_URL", "https://notes.example.com/merchant/oauth/callback")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 7.5, cfg.Fees.PlatformFeePercent)
	require.Equal(t, "APP_USR-platform", cfg.MercadoPago.AccessToken)
	require.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	require.Equal(t, "123", cfg.MercadoPago.ClientID)
	require.Equal(t, "shh", cfg.MercadoPago.ClientSecret)
	require.Equal(t, "APP_USR-pub", cfg.MercadoPago.PublicKey)
	require.Equal(t, "https://notes.example.com/merchant/oauth/callback", cfg.MercadoPago.OAuthRedirectURL)
}

func TestNew_MissingSecrets(t *testing.T) {
	t.Setenv("APP_CONFIG_NAME", "does-not-exist")
	t.Setenv("APP_ENV_FILE", "does-not-exist.env")
	t.Setenv("APP_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("APP_MERCADOPAGO_ACCESS_TOKEN", "")

	_, err := New()
	require.ErrorContains(t, err, "mercadopago.access_token")
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"fee over 100":         func(c *Config) { c.Fees.PlatformFeePercent = 150 },
		"no access token":      func(c *Config) { c.MercadoPago.AccessToken = "" },
		"no jwt secret":        func(c *Config) { c.Auth.JWTSecret = "" },
		"zero reaper interval": func(c *Config) { c.Reaper.Interval = 0 },
		"zero poll_after":      func(c *Config) { c.Reaper.PollAfter = 0 },
		"ttl below poll_after": func(c *Config) { c.Reaper.PendingTTL = 10 * time.Minute },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_DisabledReaperSkipsChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Reaper = ReaperConfig{Enabled: false}
	require.NoError(t, cfg.Validate())
}

func TestSiteConfig_URL(t *testing.T) {
	s := SiteConfig{BaseURL: "https://notes.example.com/"}
	require.Equal(t, "https://notes.example.com/payment/webhook", s.URL("/payment/webhook"))
	require.Equal(t, "https://notes.example.com/buy/1", s.URL("buy/1"))
}
