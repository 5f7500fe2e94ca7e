package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MarketplaceConfig carries the tunables of the catalog surface. The
// search page size is fixed by the API contract and is deliberately
// not configurable here.
type MarketplaceConfig struct {
	PopularsLimit     int `mapstructure:"popularsLimit"`
	PopularsCacheTTL  int `mapstructure:"popularsCacheTTL"` // seconds
	MaxPurchaseItems  int `mapstructure:"maxPurchaseItems"`
	MaxProductNameLen int `mapstructure:"maxProductNameLen"`
	MaxDescriptionLen int `mapstructure:"maxDescriptionLen"`
}

func DefaultMarketplaceConfig() MarketplaceConfig {
	return MarketplaceConfig{
		PopularsLimit:     12,
		PopularsCacheTTL:  60,
		MaxPurchaseItems:  100,
		MaxProductNameLen: 200,
		MaxDescriptionLen: 5000,
	}
}

// MarketplaceConfigHolder keeps the current marketplace config and
// hot-reloads it when the config file changes.
type MarketplaceConfigHolder struct {
	current atomic.Value // holds MarketplaceConfig
}

func NewMarketplaceConfigHolder() (*MarketplaceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("marketplace")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/chopchop/config")
	v.AddConfigPath("/etc/chopchop")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CHOPCHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultMarketplaceConfig()
		v.SetDefault("marketplace.popularsLimit", defaults.PopularsLimit)
		v.SetDefault("marketplace.popularsCacheTTL", defaults.PopularsCacheTTL)
		v.SetDefault("marketplace.maxPurchaseItems", defaults.MaxPurchaseItems)
		v.SetDefault("marketplace.maxProductNameLen", defaults.MaxProductNameLen)
		v.SetDefault("marketplace.maxDescriptionLen", defaults.MaxDescriptionLen)
	}

	var cfg MarketplaceConfig
	if err := v.UnmarshalKey("marketplace", &cfg); err != nil {
		return nil, err
	}
	if err := validateMarketplaceConfig(cfg); err != nil {
		return nil, err
	}

	holder := &MarketplaceConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated MarketplaceConfig
		if err := v.UnmarshalKey("marketplace", &updated); err != nil {
			log.Printf("[marketplace-config] reload failed: %v", err)
			return
		}
		if err := validateMarketplaceConfig(updated); err != nil {
			log.Printf("[marketplace-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[marketplace-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticMarketplaceConfigHolder wraps a fixed config. It never
// reloads and is meant for tests.
func NewStaticMarketplaceConfigHolder(cfg MarketplaceConfig) *MarketplaceConfigHolder {
	holder := &MarketplaceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *MarketplaceConfigHolder) Get() MarketplaceConfig {
	return h.current.Load().(MarketplaceConfig)
}

func validateMarketplaceConfig(cfg MarketplaceConfig) error {
	if cfg.PopularsLimit <= 0 {
		return errors.New("marketplace.popularsLimit must be positive")
	}
	if cfg.MaxPurchaseItems <= 0 {
		return errors.New("marketplace.maxPurchaseItems must be positive")
	}
	return nil
}
