package configs

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/navid-fn/bestex/internal/feed"
	"github.com/navid-fn/bestex/internal/models"
	"github.com/navid-fn/bestex/internal/router"
)

const (
	minQuoteTTL = time.Second
	maxQuoteTTL = 10 * time.Second
)

// VenueConfig describes one external venue: its feed, its quote lifetime and
// how the router prices it.
type VenueConfig struct {
	ID      string   `yaml:"id"`
	WSURL   string   `yaml:"ws_url"`
	RESTURL string   `yaml:"rest_url"`
	Pairs   []string `yaml:"pairs"`

	// TTL is how long a written quote stays present. Match it to how fast
	// the venue pushes updates.
	TTL time.Duration `yaml:"ttl"`

	FeeRate     float64 `yaml:"fee_rate"`
	Reliability float64 `yaml:"reliability"`

	Reconnect feed.ReconnectPolicy `yaml:"reconnect"`
}

type venuesFile struct {
	Venues []VenueConfig `yaml:"venues"`
}

func defaultPairs() []string { return []string{"BTC/USD", "ETH/USD"} }

// DefaultVenues returns the built-in venue set.
func DefaultVenues() []VenueConfig {
	return []VenueConfig{
		{
			ID:          "coinbase",
			Pairs:       defaultPairs(),
			TTL:         5 * time.Second,
			FeeRate:     0.004,
			Reliability: 1.0,
			Reconnect:   feed.CappedExponential(5*time.Second, 10),
		},
		{
			ID:          "binance",
			Pairs:       defaultPairs(),
			TTL:         3 * time.Second,
			FeeRate:     0.001,
			Reliability: 0.9,
			Reconnect:   feed.FixedDelay(5 * time.Second),
		},
		{
			ID:          "kraken",
			Pairs:       defaultPairs(),
			TTL:         4 * time.Second,
			FeeRate:     0.0026,
			Reliability: 0.95,
			Reconnect:   feed.CappedExponential(2*time.Second, 8),
		},
	}
}

// LoadVenues reads path, or returns the defaults when path is empty.
func LoadVenues(path string) ([]VenueConfig, error) {
	if path == "" {
		return DefaultVenues(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venues file: %w", err)
	}
	return ParseVenues(data)
}

func ParseVenues(data []byte) ([]VenueConfig, error) {
	var file venuesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse venues file: %w", err)
	}
	if len(file.Venues) == 0 {
		return nil, fmt.Errorf("venues file lists no venues")
	}
	if err := ValidateVenues(file.Venues); err != nil {
		return nil, err
	}
	return file.Venues, nil
}

func ValidateVenues(venues []VenueConfig) error {
	seen := make(map[string]bool, len(venues))
	for i := range venues {
		v := &venues[i]
		if v.ID == "" {
			return fmt.Errorf("venue %d has no id", i)
		}
		if seen[v.ID] {
			return fmt.Errorf("venue %s listed twice", v.ID)
		}
		seen[v.ID] = true

		if len(v.Pairs) == 0 {
			return fmt.Errorf("venue %s has no pairs", v.ID)
		}
		for j, p := range v.Pairs {
			v.Pairs[j] = models.NormalizePair(p)
		}
		if v.TTL < minQuoteTTL || v.TTL > maxQuoteTTL {
			return fmt.Errorf("venue %s: ttl %v outside %v..%v", v.ID, v.TTL, minQuoteTTL, maxQuoteTTL)
		}
		if v.FeeRate < 0 {
			return fmt.Errorf("venue %s: negative fee rate", v.ID)
		}
		if v.Reliability < 0 || v.Reliability > 1 {
			return fmt.Errorf("venue %s: reliability must be within 0..1", v.ID)
		}
		if err := v.Reconnect.Validate(); err != nil {
			return fmt.Errorf("venue %s: %w", v.ID, err)
		}
	}
	return nil
}

// VenueIDs returns the ids in configuration order.
func VenueIDs(venues []VenueConfig) []string {
	ids := make([]string, len(venues))
	for i, v := range venues {
		ids[i] = v.ID
	}
	return ids
}

// RouterVenues converts venue definitions into router pricing entries.
func RouterVenues(venues []VenueConfig) []router.Venue {
	out := make([]router.Venue, len(venues))
	for i, v := range venues {
		out[i] = router.Venue{ID: v.ID, FeeRate: v.FeeRate, Reliability: v.Reliability}
	}
	return out
}
