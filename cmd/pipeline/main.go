package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/umkm-health/internal/logger"
	"github.com/Dan9191/umkm-health/internal/repository"
	"github.com/Dan9191/umkm-health/internal/service"
)

func main() {
	input := flag.String("input", "umkm_dataset", "comma-separated transaction log files or directories")
	out := flag.String("out", "artifacts", "directory for the dataset, scaler params and label classes")
	schedule := flag.String("schedule", "", "cron schedule to rebuild periodically (e.g. \"@daily\"); empty runs once")
	logLevel := flag.String("log-level", getEnv("LOG_LEVEL", "info"), "log level")
	logFormat := flag.String("log-format", getEnv("LOG_FORMAT", "text"), "log format: text or json")
	flag.Parse()

	log, err := logger.New(*logLevel, *logFormat, getEnv("LOG_FILE", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	inputs := splitInputs(*input)
	p := service.NewPipeline(repository.NewRepository(log), log)

	if *schedule == "" {
		if _, err := p.Run(inputs, *out); err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
		return
	}

	c := newScheduler(log)
	if _, err := c.AddFunc(*schedule, func() {
		if _, err := p.Run(inputs, *out); err != nil {
			log.Errorf("Scheduled pipeline run failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid schedule %q: %v", *schedule, err)
	}
	c.Start()
	log.Infof("Pipeline scheduled with %q", *schedule)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("Scheduler stopped")
}

func splitInputs(raw string) []string {
	var inputs []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			inputs = append(inputs, part)
		}
	}
	return inputs
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// newScheduler skips a tick while the previous rebuild is still writing to the
// output directory.
func newScheduler(log *logrus.Logger) *cron.Cron {
	l := cronLogger{log}
	return cron.New(cron.WithLogger(l), cron.WithChain(cron.SkipIfStillRunning(l)))
}

// cronLogger adapts logrus to the cron.Logger interface
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
