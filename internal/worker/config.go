// Package worker runs background jobs for the itinerary engine: queued
// optimizations and weather forecast warm-up, fed from Pub/Sub.
package worker

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/catalog"
)

// Config holds worker settings.
type Config struct {
	// ProjectID is the Google Cloud project hosting the topic.
	ProjectID string

	// TopicName receives jobs published by the API.
	TopicName string

	// SubscriptionName is the subscription the worker pulls from.
	SubscriptionName string

	// MaxOutstanding bounds concurrently processed messages.
	// Default: 10
	MaxOutstanding int

	// Refresh configures the weather warm-up job.
	Refresh RefreshConfig
}

// ConfigFromEnv reads worker settings from environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		ProjectID:        getEnv("PUBSUB_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		TopicName:        getEnv("PUBSUB_TOPIC", "anvago-jobs"),
		SubscriptionName: getEnv("PUBSUB_SUBSCRIPTION", "anvago-jobs-worker"),
		MaxOutstanding:   getEnvInt("PUBSUB_MAX_OUTSTANDING", 10),
		Refresh:          DefaultRefreshConfig(),
	}
	if cities := os.Getenv("WEATHER_REFRESH_CITIES"); cities != "" {
		var targets []RefreshTarget
		for i, city := range strings.Split(cities, ",") {
			if city = strings.TrimSpace(city); city != "" {
				targets = append(targets, RefreshTarget{City: city, Priority: i + 1})
			}
		}
		cfg.Refresh.Targets = targets
	}
	cfg.Refresh.Concurrency = getEnvInt("WEATHER_REFRESH_CONCURRENCY", cfg.Refresh.Concurrency)
	return cfg
}

// RefreshTarget is a city whose forecast is kept warm.
type RefreshTarget struct {
	// City is a catalog city name or key.
	City string

	// Priority orders the refresh (lower runs first).
	Priority int
}

// RefreshConfig holds configuration for the weather refresh job.
type RefreshConfig struct {
	// Targets are the cities to warm. If empty, uses DefaultRefreshTargets.
	Targets []RefreshTarget

	// Concurrency is the number of cities warmed in parallel.
	// Default: 3
	Concurrency int

	// Timeout bounds each city's refresh.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:     DefaultRefreshTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultRefreshTargets returns every catalog city. Central Vietnam, where
// most trips are planned, goes first.
func DefaultRefreshTargets() []RefreshTarget {
	priority := map[string]int{"danang": 1, "hoian": 1, "hue": 2}
	var targets []RefreshTarget
	for _, c := range catalog.Cities() {
		p, ok := priority[c.Key]
		if !ok {
			p = 3
		}
		targets = append(targets, RefreshTarget{City: c.Key, Priority: p})
	}
	return targets
}

// Cities returns the target cities ordered by priority.
func (c RefreshConfig) Cities() []string {
	targets := append([]RefreshTarget(nil), c.Targets...)
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].Priority < targets[j].Priority })

	cities := make([]string, 0, len(targets))
	for _, t := range targets {
		cities = append(cities, t.City)
	}
	return cities
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
