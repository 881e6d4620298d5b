package ftfz

import (
	"fmt"
	"log"
	"os"

	"github.com/zoobzio/clockz"
	"gopkg.in/yaml.v3"
)

// Config tunes a Layer. The zero value selects the documented defaults:
// provider id 1 named "trace", the OS process id, the real clock, and a
// stderr log for diagnostics.
type Config struct {
	// Clock supplies the monotonic reference fixed at construction.
	// Defaults to the real clock; inject a fake for deterministic tests.
	Clock clockz.Clock

	// OnError receives diagnostics for absorbed failures (sink writes,
	// intern writes, dropped arguments). Never called with nil. Defaults
	// to logging on stderr. The trace itself never carries diagnostics.
	OnError func(error)

	// ProviderName names the trace producer. Defaults to DefaultProviderName.
	ProviderName string

	// ProcessID pins the process identity in thread records. Defaults to
	// the OS process id.
	ProcessID uint64

	// ProviderID identifies the trace producer. Defaults to DefaultProviderID.
	ProviderID uint32
}

// withDefaults fills unset fields with the documented defaults.
func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = clockz.RealClock
	}
	if c.OnError == nil {
		c.OnError = func(err error) {
			log.Print(err)
		}
	}
	if c.ProviderName == "" {
		c.ProviderName = DefaultProviderName
	}
	if c.ProcessID == 0 {
		c.ProcessID = uint64(os.Getpid())
	}
	if c.ProviderID == 0 {
		c.ProviderID = DefaultProviderID
	}
	return c
}

// LoadConfig reads provider settings from a YAML file. Keys: provider_id,
// provider_name, process_id. Absent keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ftfz: read config: %w", err)
	}

	var raw struct {
		ProviderName string `yaml:"provider_name"`
		ProviderID   uint32 `yaml:"provider_id"`
		ProcessID    uint64 `yaml:"process_id"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("ftfz: parse config: %w", err)
	}

	return Config{
		ProviderID:   raw.ProviderID,
		ProviderName: raw.ProviderName,
		ProcessID:    raw.ProcessID,
	}, nil
}
