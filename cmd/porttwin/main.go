package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/maritime-sec/port-twin/pkg/api"
	"github.com/maritime-sec/port-twin/pkg/attack"
	"github.com/maritime-sec/port-twin/pkg/config"
	"github.com/maritime-sec/port-twin/pkg/fleet"
	"github.com/maritime-sec/port-twin/pkg/models"
	"github.com/maritime-sec/port-twin/pkg/scoring"
	"github.com/maritime-sec/port-twin/pkg/shodan"
)

const (
	appName    = "port-twin"
	appVersion = "1.0.0"
)

var log = logrus.New()

func main() {
	app := &cli.App{
		Name:    appName,
		Usage:   "Maritime port digital twin vulnerability and attack vector analysis",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE` (JSON or YAML)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"PORT_TWIN_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				level = logrus.InfoLevel
			}
			log.SetLevel(level)
			log.SetFormatter(&logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05",
			})
			return nil
		},
		Commands: []*cli.Command{
			commandAnalyze(),
			commandConvert(),
			commandQuery(),
			commandDashboard(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func printBanner() {
	color.Cyan("\n=== Maritime Port Digital Twin ===")
	color.Cyan("Vulnerability posture and attack vector analysis\n")
}

func loadAppConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadConfigFromFile(path)
	}
	return config.DefaultConfig(), nil
}

func loadDeviceSet(path string) ([]models.Device, error) {
	if path == "" {
		log.Info("No device inventory given, using the demo fleet")
		return fleet.DemoDevices(), nil
	}
	return fleet.LoadDevices(path)
}

func commandAnalyze() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Generate an attack vector analysis for a device inventory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "devices",
				Aliases: []string{"d"},
				Usage:   "Device inventory `FILE` (JSON array); demo fleet when omitted",
			},
			&cli.BoolFlag{
				Name:  "ai",
				Usage: "Use AI-assisted generation when a credential is configured",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Save the analysis envelope to `FILE`",
			},
		},
		Action: func(c *cli.Context) error {
			printBanner()

			devices, err := loadDeviceSet(c.String("devices"))
			if err != nil {
				return err
			}

			analyzer := attack.NewAnalyzer(config.GenerationFromEnv(), log)
			result := analyzer.Analyze(context.Background(), devices, c.Bool("ai"))

			if !result.Success {
				return fmt.Errorf("analysis failed: %s", result.Error)
			}

			fmt.Println(result.AttackVector)
			displaySummary(devices, result)

			if output := c.String("output"); output != "" {
				if err := attack.SaveAnalysis(result, output); err != nil {
					return err
				}
				color.Green("Analysis saved to %s", output)
			}

			return nil
		},
	}
}

func commandConvert() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert a scan text response to structured JSON",
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output `FILE` (default: input with .json extension)",
			},
			&cli.BoolFlag{
				Name:    "summarize",
				Aliases: []string{"s"},
				Usage:   "Print a summary of the parsed data",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one input file")
			}
			input := c.Args().First()

			doc, err := shodan.ParseTextFile(input, log)
			if err != nil {
				if errors.Is(err, shodan.ErrNotFound) {
					return fmt.Errorf("input file not found: %s", input)
				}
				return err
			}

			output := c.String("output")
			if output == "" {
				output = replaceExt(input, ".json")
			}

			if err := shodan.WriteJSON(doc, output); err != nil {
				return err
			}
			log.Infof("Saved parsed scan data to %s", output)

			if c.Bool("summarize") {
				printDocSummary(doc)
			}

			return nil
		},
	}
}

func commandQuery() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Build a geo-bounded scan-data search query for a port city",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "city",
				Usage: "Port city name",
			},
			&cli.StringFlag{
				Name:  "term",
				Usage: "Search term",
			},
			&cli.IntFlag{
				Name:  "radius",
				Usage: "Search radius in kilometers",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadAppConfig(c)
			if err != nil {
				return err
			}

			city, term, radius := cfg.City, cfg.SearchTerm, cfg.RadiusKM
			if c.String("city") != "" {
				city = c.String("city")
			}
			if c.String("term") != "" {
				term = c.String("term")
			}
			if c.Int("radius") > 0 {
				radius = c.Int("radius")
			}

			query, coords, err := shodan.GeoQuery(city, term, radius)
			if err != nil {
				return err
			}

			color.Cyan("Query for %s (%.4f, %.4f):", city, coords.Lat, coords.Lon)
			fmt.Println(query)
			return nil
		},
	}
}

func commandDashboard() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Run the dashboard API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the dashboard API",
			},
			&cli.StringFlag{
				Name:    "devices",
				Aliases: []string{"d"},
				Usage:   "Device inventory `FILE`; demo fleet when omitted",
			},
		},
		Action: func(c *cli.Context) error {
			printBanner()

			cfg, err := loadAppConfig(c)
			if err != nil {
				return err
			}
			if c.String("port") != "" {
				cfg.DashboardPort = c.String("port")
			}

			devicesFile := c.String("devices")
			if devicesFile == "" {
				devicesFile = cfg.DevicesFile
			}
			devices, err := loadDeviceSet(devicesFile)
			if err != nil {
				return err
			}

			analyzer := attack.NewAnalyzer(config.GenerationFromEnv(), log)
			server := api.NewDashboardServer(cfg, analyzer, devices, log)

			color.Green("Dashboard API running at http://localhost:%s", cfg.DashboardPort)
			return server.Start()
		},
	}
}

func displaySummary(devices []models.Device, result models.AnalysisResult) {
	fmt.Println()
	color.Cyan("=== Risk Summary ===")
	if result.RiskScore != nil {
		level := scoring.Classify(*result.RiskScore)
		line := color.GreenString
		switch level {
		case scoring.High:
			line = color.RedString
		case scoring.Medium:
			line = color.YellowString
		}
		fmt.Println(line("Overall Risk Score: %.1f/10 (%s)", *result.RiskScore, level))
	}
	if result.AvgVulnScore != nil {
		fmt.Printf("Average Vulnerability Score: %.1f\n", *result.AvgVulnScore)
	}
	if result.HighVulnCount != nil {
		fmt.Printf("High Vulnerability Devices: %d of %d\n", *result.HighVulnCount, len(devices))
	}

	for _, device := range attack.RankDevices(devices) {
		status := scoring.Classify(device.VulnScore).RAG()
		fmt.Printf("  [%-5s] %-28s %s (%.1f)\n", status, device.DisplayName(), device.TypeLabel(), device.VulnScore)
	}
}

func printDocSummary(doc *shodan.ParsedDocument) {
	summary := shodan.Summarize(doc)
	log.Infof("Total hosts: %d, unique IPs: %d", summary.TotalHosts, summary.UniqueIPs)
	log.Infof("Countries: %v", summary.Countries)
	log.Infof("Organizations: %v", summary.Organizations)

	portServices := shodan.ExtractPortServices(doc)
	ports := make([]int, 0, len(portServices))
	for port := range portServices {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	log.Infof("Found %d unique ports", len(ports))
	for _, port := range ports {
		log.Infof("  Port %d: %v", port, portServices[port])
	}

	if vulns := shodan.ExtractVulnerabilities(doc); len(vulns) > 0 {
		log.Infof("Found %d potential vulnerabilities", len(vulns))
	}
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
