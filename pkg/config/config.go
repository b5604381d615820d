package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	DevicesFile   string `json:"devices_file" yaml:"devices_file"`     // Device inventory to load at startup
	OutputFile    string `json:"output_file" yaml:"output_file"`       // File to write analysis results to
	DashboardPort string `json:"dashboard_port" yaml:"dashboard_port"` // Port for the dashboard API
	HistoryLimit  int    `json:"history_limit" yaml:"history_limit"`   // Number of analyses kept in dashboard history
	EnableCORS    bool   `json:"enable_cors" yaml:"enable_cors"`       // Allow cross-origin dashboard requests
	City          string `json:"city" yaml:"city"`                     // Default port city for geo queries
	SearchTerm    string `json:"search_term" yaml:"search_term"`       // Default search term for geo queries
	RadiusKM      int    `json:"radius_km" yaml:"radius_km"`           // Default search radius in kilometers
}

// GenerationConfig carries the narrative generation settings. It is built
// once at the process boundary and passed by value; the core never reads
// ambient credential state.
type GenerationConfig struct {
	APIKey         string // Remote text-generation credential, empty when absent
	Available      bool   // Whether remote generation capability is configured
	SimulationMode bool   // Force the deterministic simulated generator
}

// SimulationSentinel is the placeholder credential that selects simulation
// mode instead of a remote call
const SimulationSentinel = "simulation"

// Simulated reports whether the credential is present but flagged as a
// simulation placeholder
func (g GenerationConfig) Simulated() bool {
	return g.SimulationMode || strings.EqualFold(g.APIKey, SimulationSentinel)
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() Config {
	return Config{
		OutputFile:    "attack_analysis.json",
		DashboardPort: "8080",
		HistoryLimit:  10,
		City:          "Vladivostok",
		SearchTerm:    "ICS",
		RadiusKM:      5,
	}
}

// LoadConfigFromFile loads configuration from a JSON or YAML file, chosen by
// extension. Missing fields keep their defaults.
func LoadConfigFromFile(filePath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = fmt.Errorf("unsupported config format: %s", filepath.Ext(filePath))
	}

	return cfg, err
}

// GenerationFromEnv reads the generation settings from the environment once,
// at the process boundary
func GenerationFromEnv() GenerationConfig {
	key := os.Getenv("OPENAI_API_KEY")
	simulation := os.Getenv("PORT_TWIN_SIMULATION") == "1"

	return GenerationConfig{
		APIKey:         key,
		Available:      key != "",
		SimulationMode: simulation,
	}
}
