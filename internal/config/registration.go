package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RegistrationConfig carries the tunable business rules for the
// registration lifecycle. It is hot-reloadable; consumers must read it
// through a RegistrationConfigHolder on every operation rather than
// capturing it at startup.
type RegistrationConfig struct {
	// ReservationTTLMinutes is how long an unpaid, ledger-empty
	// registration holds before the sweeper cancels it.
	ReservationTTLMinutes int `mapstructure:"reservationTTLMinutes"`

	// UnpaidStatuses are the registration statuses that may still
	// appear at checkout and are valid transfer targets.
	UnpaidStatuses []string `mapstructure:"unpaidStatuses"`

	// DelinquentStatuses select registrations for the unpaid report.
	DelinquentStatuses []string `mapstructure:"delinquentStatuses"`

	// RosterCategories is the display order for per-category capacity
	// summaries.
	RosterCategories []string `mapstructure:"rosterCategories"`

	// AllowLateWithoutAlternative keeps a registration payable after the
	// price deadline when the event has no other open price to switch to.
	AllowLateWithoutAlternative bool `mapstructure:"allowLateWithoutAlternative"`
}

func DefaultRegistrationConfig() RegistrationConfig {
	return RegistrationConfig{
		ReservationTTLMinutes:       30,
		UnpaidStatuses:              []string{"pending", "waiting", "partially_paid"},
		DelinquentStatuses:          []string{"pending", "partially_paid"},
		RosterCategories:            []string{"open", "women"},
		AllowLateWithoutAlternative: true,
	}
}

type RegistrationConfigHolder struct {
	current atomic.Value // holds RegistrationConfig
}

func NewRegistrationConfigHolder() (*RegistrationConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("registration")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/rosterly/config") // Volume-mounted config
	v.AddConfigPath("/etc/rosterly")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("ROSTERLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultRegistrationConfig()
		v.SetDefault("registration.reservationTTLMinutes", defaults.ReservationTTLMinutes)
		v.SetDefault("registration.unpaidStatuses", defaults.UnpaidStatuses)
		v.SetDefault("registration.delinquentStatuses", defaults.DelinquentStatuses)
		v.SetDefault("registration.rosterCategories", defaults.RosterCategories)
		v.SetDefault("registration.allowLateWithoutAlternative", defaults.AllowLateWithoutAlternative)
	}

	var cfg RegistrationConfig
	if err := v.UnmarshalKey("registration", &cfg); err != nil {
		return nil, err
	}
	if err := validateRegistrationConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RegistrationConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RegistrationConfig
		if err := v.UnmarshalKey("registration", &updated); err != nil {
			log.Printf("[registration-config] reload failed: %v", err)
			return
		}
		if err := validateRegistrationConfig(updated); err != nil {
			log.Printf("[registration-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[registration-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticRegistrationConfigHolder wraps a fixed config, for tests.
func NewStaticRegistrationConfigHolder(cfg RegistrationConfig) *RegistrationConfigHolder {
	holder := &RegistrationConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *RegistrationConfigHolder) Get() RegistrationConfig {
	return h.current.Load().(RegistrationConfig)
}

func validateRegistrationConfig(cfg RegistrationConfig) error {
	if cfg.ReservationTTLMinutes <= 0 {
		return errors.New("registration.reservationTTLMinutes must be positive")
	}
	if len(cfg.UnpaidStatuses) == 0 {
		return errors.New("registration.unpaidStatuses cannot be empty")
	}
	if len(cfg.RosterCategories) == 0 {
		return errors.New("registration.rosterCategories cannot be empty")
	}
	return nil
}
