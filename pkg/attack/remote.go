package attack

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/maritime-sec/port-twin/pkg/models"
)

const (
	systemPrompt = "You are a cybersecurity expert specializing in maritime infrastructure security."

	// Response-size ceiling for the single generation request
	maxCompletionTokens = 1200
)

// NarrativeGenerator produces an attack narrative from a device set
type NarrativeGenerator interface {
	Generate(ctx context.Context, devices []models.Device) string
}

// completionClient is the slice of the OpenAI client the generator uses
type completionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// RemoteGenerator asks a remote text-generation model for the narrative.
// Any failure degrades to the simulated generator with a visible note; the
// error never reaches the caller.
type RemoteGenerator struct {
	client completionClient
	model  string
	logger *logrus.Logger
}

// NewRemoteGenerator creates a generator backed by the OpenAI API
func NewRemoteGenerator(apiKey string, logger *logrus.Logger) *RemoteGenerator {
	if logger == nil {
		logger = logrus.New()
	}

	return &RemoteGenerator{
		client: openai.NewClient(apiKey),
		model:  openai.GPT3Dot5Turbo,
		logger: logger,
	}
}

// Generate issues one synchronous completion request for the ranked device
// set and returns the model's narrative
func (g *RemoteGenerator) Generate(ctx context.Context, devices []models.Device) string {
	if len(devices) == 0 {
		return NoDevicesMessage
	}

	ranked := RankDevices(devices)
	prompt := buildPrompt(ranked)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxCompletionTokens,
		Temperature: 0.7,
	})
	if err != nil {
		g.logger.Warnf("Remote generation failed, degrading to simulated analysis: %v", err)
		return degradedNarrative(devices, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		g.logger.Warn("Remote generation returned an empty response, degrading to simulated analysis")
		return degradedNarrative(devices, fmt.Errorf("empty model response"))
	}

	return resp.Choices[0].Message.Content
}

// degradedNarrative is the fallback output when the remote call fails: the
// simulated narrative plus a note carrying the captured error
func degradedNarrative(devices []models.Device, cause error) string {
	return SimulatedNarrative(devices) +
		fmt.Sprintf("\n\n*Note: AI-enhanced analysis unavailable. Error: %v*", cause)
}

// buildPrompt assembles the generation request from the ranked device set
func buildPrompt(ranked []models.Device) string {
	var b strings.Builder

	b.WriteString("The following IoT devices are present in a maritime port environment:\n\n")
	for i, device := range ranked {
		fmt.Fprintf(&b, "%d. %s (%s):\n", i+1, device.DisplayName(), device.TypeLabel())
		fmt.Fprintf(&b, "   - Vulnerability Score: %g\n", device.VulnScore)
		if len(device.CVEs) > 0 {
			fmt.Fprintf(&b, "   - CVEs: %s\n", strings.Join(device.CVEs, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString(`Based on these devices and their vulnerabilities, generate a detailed cyber attack scenario that could target this maritime port. Include:

1. Initial entry point (which vulnerable device would be targeted first)
2. Step-by-step attack progression
3. Potential lateral movement between devices
4. Impact assessment
5. Recommended mitigations

Format your response with markdown headers and bullet points for readability.
`)

	return b.String()
}
