package attack

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/maritime-sec/port-twin/pkg/config"
	"github.com/maritime-sec/port-twin/pkg/models"
	"github.com/maritime-sec/port-twin/pkg/scoring"
)

// Aggregate risk weighting: the mean score provides a baseline while a small
// number of severe devices can dominate through the high-count term.
const (
	avgWeight      = 0.7
	highVulnWeight = 0.6
	maxRiskScore   = 10
)

// Analyzer orchestrates ranking, narrative generation and aggregate risk
// scoring. It holds no state across Analyze calls and never mutates the
// device set it is given.
type Analyzer struct {
	genConfig config.GenerationConfig
	remote    NarrativeGenerator
	logger    *logrus.Logger
}

// NewAnalyzer creates an analyzer. A remote generator is constructed when the
// configuration carries a real credential.
func NewAnalyzer(genConfig config.GenerationConfig, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}

	a := &Analyzer{
		genConfig: genConfig,
		logger:    logger,
	}

	if genConfig.Available && genConfig.APIKey != "" && !genConfig.Simulated() {
		a.remote = NewRemoteGenerator(genConfig.APIKey, logger)
	}

	return a
}

// WithRemoteGenerator replaces the remote generator. Used to inject fakes in
// tests and alternate transports.
func (a *Analyzer) WithRemoteGenerator(gen NarrativeGenerator) *Analyzer {
	a.remote = gen
	return a
}

// Analyze produces the attack vector report for a device set. It is the error
// boundary of the pipeline: every failure surfaces as a failed result, never
// as a panic or error to the caller.
func (a *Analyzer) Analyze(ctx context.Context, devices []models.Device, useAI bool) (result models.AnalysisResult) {
	if len(devices) == 0 {
		return models.AnalysisResult{
			Success:      false,
			Error:        "no devices available",
			AttackVector: NoDevicesMessage,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Errorf("Attack vector generation panicked: %v", r)
			result = models.AnalysisResult{
				Success:      false,
				Error:        fmt.Sprintf("%v", r),
				AttackVector: fmt.Sprintf("Error generating attack vector: %v", r),
			}
		}
	}()

	mode := ResolveMode(a.genConfig, useAI)
	a.logger.Infof("Generating attack vector for %d devices (mode: %s)", len(devices), mode)

	narrative := GenerateNarrative(ctx, devices, a.genConfig, useAI, a.remote)

	var sum float64
	high := 0
	for _, device := range devices {
		sum += device.VulnScore
		if device.VulnScore >= scoring.HighThreshold {
			high++
		}
	}
	avg := sum / float64(len(devices))

	riskScore := scoring.Round1(math.Min(maxRiskScore, avg*avgWeight+float64(high)*highVulnWeight))
	avgScore := scoring.Round1(avg)

	return models.AnalysisResult{
		Success:       true,
		AttackVector:  narrative,
		RiskScore:     &riskScore,
		HighVulnCount: &high,
		AvgVulnScore:  &avgScore,
	}
}

// SaveAnalysis writes the result envelope verbatim as indented JSON, creating
// parent directories as needed. Failures are returned to the caller and not
// retried.
func SaveAnalysis(result models.AnalysisResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding analysis result: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating analysis directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing analysis result: %w", err)
	}

	return nil
}
