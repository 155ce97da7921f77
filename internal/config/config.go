// Package config loads the medbox's compile-time tunables and per-deployment
// identity, using an embedded-JSON-with-fallback-defaults convention: a
// per-device override JSON blob wins where present, compile-time constants
// fill in the rest.
package config

import (
	"errors"

	"github.com/andreyvit/tinyjson"

	"medbox-fw/bus"
	"medbox-fw/x/strconvx"
	"medbox-fw/x/strx"
)

// Tunable constants. These are the fallback values used when no embedded
// override is present for a given device ID.
const (
	DefaultMaxStepsSafety  = 5000
	DefaultSensorThreshold = 500
	DefaultJamTimeoutMs    = 8000
	DefaultCooldownMs      = 200
	DefaultLevelIntervalMs = 4000
	DefaultAmountClamp     = 100
	DefaultMailboxLen      = 8
	DefaultDevicePrefix    = "01"
)

// Config is the resolved set of tunables and identity for one deployment.
type Config struct {
	DevicePrefix    string // e.g. "01" -> topics under "medbox/01/"
	MAC             string // hardware MAC, used to build the bus client ID
	MaxStepsSafety  int32
	SensorThreshold int
	JamTimeoutMs    int64
	CooldownMs      int64
	LevelIntervalMs int64
	AmountClamp     int
	MailboxLen      int
}

// Default returns the compile-time defaults.
func Default() Config {
	return Config{
		DevicePrefix:    DefaultDevicePrefix,
		MaxStepsSafety:  DefaultMaxStepsSafety,
		SensorThreshold: DefaultSensorThreshold,
		JamTimeoutMs:    DefaultJamTimeoutMs,
		CooldownMs:      DefaultCooldownMs,
		LevelIntervalMs: DefaultLevelIntervalMs,
		AmountClamp:     DefaultAmountClamp,
		MailboxLen:      DefaultMailboxLen,
	}
}

// ClientID builds the bus client identity: "<device-prefix>-" + <hardware MAC>.
func (c Config) ClientID() string {
	return strx.Coalesce(c.DevicePrefix, DefaultDevicePrefix) + "-" + c.MAC
}

// EmbeddedConfigLookup resolves raw per-device override JSON. Overridable
// in tests.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Load resolves the config for deviceID: defaults overlaid with any
// embedded JSON override for that device. Unknown/missing override keys
// fall back to the default; the override is never required.
func Load(deviceID, mac string) (Config, error) {
	cfg := Default()
	cfg.DevicePrefix = deviceID
	cfg.MAC = mac

	raw, ok := EmbeddedConfigLookup(deviceID)
	if !ok || len(raw) == 0 {
		return cfg, nil
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	if err := r.EnsureEOF(); err != nil {
		return cfg, err
	}
	m, ok := val.(map[string]any)
	if !ok {
		return cfg, errors.New("config: embedded override is not a JSON object")
	}

	applyInt32(m, "max_steps_safety", &cfg.MaxStepsSafety)
	applyInt(m, "sensor_threshold", &cfg.SensorThreshold)
	applyInt64(m, "jam_timeout_ms", &cfg.JamTimeoutMs)
	applyInt64(m, "cooldown_ms", &cfg.CooldownMs)
	applyInt64(m, "level_interval_ms", &cfg.LevelIntervalMs)
	applyInt(m, "amount_clamp", &cfg.AmountClamp)
	applyInt(m, "mailbox_len", &cfg.MailboxLen)
	if v, ok := m["device_prefix"].(string); ok && v != "" {
		cfg.DevicePrefix = v
	}

	return cfg, nil
}

func applyInt(m map[string]any, key string, out *int) {
	if f, ok := m[key].(float64); ok {
		*out = int(f)
	}
}

func applyInt32(m map[string]any, key string, out *int32) {
	if f, ok := m[key].(float64); ok {
		*out = int32(f)
	}
}

func applyInt64(m map[string]any, key string, out *int64) {
	if f, ok := m[key].(float64); ok {
		*out = int64(f)
	}
}

// ToMap flattens the resolved config for retained per-key publication.
func (c Config) ToMap() map[string]any {
	return map[string]any{
		"device_prefix":     c.DevicePrefix,
		"max_steps_safety":  c.MaxStepsSafety,
		"sensor_threshold":  c.SensorThreshold,
		"jam_timeout_ms":    c.JamTimeoutMs,
		"cooldown_ms":       c.CooldownMs,
		"level_interval_ms": c.LevelIntervalMs,
		"amount_clamp":      c.AmountClamp,
		"mailbox_len":       c.MailboxLen,
	}
}

// PublishRetained announces the resolved config on medbox/<id>/config/<key>,
// retained, so an operator can observe what a given boot actually resolved
// to, one key per message rather than a single opaque blob.
func PublishRetained(conn bus.Client, prefix string, c Config) {
	for k, v := range c.ToMap() {
		conn.Publish(prefix+"/config/"+k, 1, true, toBytes(v))
	}
}

// toBytes renders a scalar config value without pulling in an encoder —
// every value here is a string or a fixed-width integer.
func toBytes(v any) []byte {
	switch x := v.(type) {
	case string:
		return []byte(x)
	case int:
		return []byte(strconvx.Itoa(x))
	case int32:
		return []byte(strconvx.FormatInt(int64(x), 10))
	case int64:
		return []byte(strconvx.FormatInt(x, 10))
	default:
		return nil
	}
}
