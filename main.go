package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"quiver/config"
	"quiver/dispatch"
	"quiver/logging"
)

const version = "1.0.0"

func main() {
	config.ParseArgs()
	if config.CliArgs.Version {
		fmt.Println("quiver " + version)
		return
	}

	if config.CliArgs.Debug {
		logging.InitLogger(logrus.DebugLevel)
	} else {
		logging.InitLogger(logrus.InfoLevel)
	}
	log := logging.GetLogger()

	if config.CliArgs.ConfigFile == "" {
		log.Fatalln("no config file given, use -config")
	}
	cfg, err := config.LoadConfig(config.CliArgs.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Batch) == 0 {
		log.Fatalln("config has no batch entries to dispatch")
	}

	// Build the dispatcher and queue every configured request.
	dispatcher, err := dispatch.New(dispatch.SettingsFrom(cfg.Dispatch), dispatch.Capabilities{})
	if err != nil {
		log.Fatalf("Failed to build dispatcher: %v", err)
	}
	for _, entry := range cfg.Batch {
		dispatcher.Add(&dispatch.Request{
			ID:     entry.ID,
			Method: entry.Method,
			URL:    entry.URL,
		})
	}

	log.Infof("Dispatching %d requests", dispatcher.QueueSize())
	results := dispatcher.ExecuteAll(context.Background())

	failed := 0
	for id, res := range results {
		if res.Success {
			log.Infof("%s: %d in %s", id, res.StatusCode, res.Duration)
			continue
		}
		failed++
		if res.Err != "" {
			log.Errorf("%s: %s", id, res.Err)
		} else {
			log.Errorf("%s: HTTP %d", id, res.StatusCode)
		}
	}
	log.Infof("Batch finished: %d ok, %d failed", len(results)-failed, failed)
}
