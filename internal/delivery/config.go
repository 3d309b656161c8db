package delivery

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"tamaqBack/internal/delivery/estimate"
)

const (
	defaultApplicationFeeRate = 0.05
	defaultPrepareDelay       = 20 * time.Second
	defaultDeliverDelay       = 15 * time.Second
	defaultPollTick           = 2 * time.Second
)

// Config holds runtime configuration for the delivery module.
type Config struct {
	Estimate           estimate.Config
	ApplicationFeeRate float64
	PrepareDelay       time.Duration
	DeliverDelay       time.Duration
	PollTick           time.Duration
}

// LoadConfig reads delivery configuration from environment variables and applies defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		Estimate:           estimate.DefaultConfig(),
		ApplicationFeeRate: defaultApplicationFeeRate,
		PrepareDelay:       defaultPrepareDelay,
		DeliverDelay:       defaultDeliverDelay,
		PollTick:           defaultPollTick,
	}

	if v, err := readFloatEnv("DELIVERY_AVERAGE_SPEED_MPH"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.Estimate.AverageSpeedMPH = *v
	}

	if v, err := readIntEnv("DELIVERY_EXTRA_MINUTES"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.Estimate.ExtraMinutes = *v
	}

	if v, err := readIntEnv("DELIVERY_MIN_WINDOW_MINUTES"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.Estimate.MinWindowMinutes = *v
	}

	if v, err := readFloatEnv("DELIVERY_NEAR_TIER_MILES"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.Estimate.NearTierMiles = *v
	}

	if v, err := readFloatEnv("DELIVERY_FAR_TIER_MILES"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.Estimate.FarTierMiles = *v
	}

	if v, err := readSecondsEnv("DELIVERY_PREPARE_DELAY_SECONDS"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.PrepareDelay = *v
	}

	if v, err := readSecondsEnv("DELIVERY_DELIVER_DELAY_SECONDS"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.DeliverDelay = *v
	}

	if v, err := readSecondsEnv("DELIVERY_POLL_TICK_SECONDS"); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.PollTick = *v
	}

	return cfg, nil
}

func readIntEnv(name string) (*int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &v, nil
}

func readFloatEnv(name string) (*float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &v, nil
}

func readSecondsEnv(name string) (*time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return nil, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	d := time.Duration(secs) * time.Second
	return &d, nil
}
