// Command logshipper is the composition root: it reads newline-delimited
// log records from stdin and ships them to whichever destination
// LOGSHIPPER_DESTINATION selects, the same getEnv-driven, one-writer-per-
// process shape as the teacher's cmd/main.go.
package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/facade/loggroup"
	"github.com/Clever/log-writers-go/facade/stream"
	"github.com/Clever/log-writers-go/facade/topic"
	"github.com/Clever/log-writers-go/message"
	"github.com/Clever/log-writers-go/queue"
	"github.com/Clever/log-writers-go/shutdown"
	"github.com/Clever/log-writers-go/stats"
	"github.com/Clever/log-writers-go/writer"
)

var kvlog = logger.New("logshipper")

func main() {
	destination := getEnv("LOGSHIPPER_DESTINATION")
	region := getEnv("LOGSHIPPER_AWS_REGION")

	baseCfg := writer.Config{
		BatchDelay:               batchDelayFromEnv(),
		DiscardThreshold:         discardThresholdFromEnv(),
		DiscardAction:            queue.DiscardOldest,
		TruncateOversizeMessages: false,
		InitializationTimeout:    30 * time.Second,
		EnableBatchLogging:       os.Getenv("LOGSHIPPER_VERBOSE") == "true",
	}

	var w *writer.Skeleton
	switch destination {
	case "loggroup":
		f := loggroup.New(loggroup.Config{
			Region:        region,
			LogGroupName:  getEnv("LOGSHIPPER_LOG_GROUP"),
			LogStreamName: getEnv("LOGSHIPPER_LOG_STREAM"),
		}, kvlog)
		w = writer.NewLogGroupWriter(writer.LogGroupConfig{
			Config:          baseCfg,
			LogGroupName:    getEnv("LOGSHIPPER_LOG_GROUP"),
			LogStreamName:   getEnv("LOGSHIPPER_LOG_STREAM"),
			RetentionDays:   int64FromEnv("LOGSHIPPER_RETENTION_DAYS", 0),
			DedicatedWriter: os.Getenv("LOGSHIPPER_DEDICATED_WRITER") == "true",
		}, f, kvlog)
	case "stream":
		f := stream.New(stream.Config{
			Region:     region,
			StreamName: getEnv("LOGSHIPPER_STREAM_NAME"),
		}, kvlog)
		w = writer.NewStreamWriter(writer.StreamConfig{
			Config:         baseCfg,
			StreamName:     getEnv("LOGSHIPPER_STREAM_NAME"),
			ShardCount:     int64FromEnv("LOGSHIPPER_SHARD_COUNT", 1),
			RetentionHours: int64FromEnv("LOGSHIPPER_RETENTION_HOURS", 0),
			AutoCreate:     os.Getenv("LOGSHIPPER_AUTO_CREATE") == "true",
		}, f, kvlog)
	case "topic":
		f := topic.New(topic.Config{Region: region}, kvlog)
		w = writer.NewTopicWriter(writer.TopicConfig{
			Config:     baseCfg,
			TopicName:  os.Getenv("LOGSHIPPER_TOPIC_NAME"),
			TopicArn:   os.Getenv("LOGSHIPPER_TOPIC_ARN"),
			Subject:    os.Getenv("LOGSHIPPER_TOPIC_SUBJECT"),
			AutoCreate: os.Getenv("LOGSHIPPER_AUTO_CREATE") == "true",
		}, f, kvlog)
	default:
		log.Fatalf("Unknown LOGSHIPPER_DESTINATION %q: want loggroup, stream, or topic", destination)
	}

	w.Start(context.Background())
	if w.State() == writer.StateInitFailed {
		log.Fatalf("writer failed to initialize")
	}

	reporter := stats.NewReporter(destination, w.Statistics(), time.Minute, kvlog)
	reporter.Start()

	coordinator := shutdown.New(kvlog, w)
	coordinator.InstallSignalHook(30 * time.Second)

	limiter := rateLimiterFromEnv()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if limiter != nil {
			if err := limiter.Wait(context.Background()); err != nil {
				break
			}
		}
		w.AddMessage(message.New(time.Now().UnixMilli(), scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		kvlog.ErrorD("stdin-read-error", logger.M{"error": err.Error()})
	}

	coordinator.RemoveSignalHook()
	coordinator.Stop(30 * time.Second)
	reporter.Stop()
}

// rateLimiterFromEnv builds an admission-side rate limiter (messages per
// second) from LOGSHIPPER_RATE_LIMIT, the same records-per-second knob the
// teacher's cmd/main.go derives from RATE_LIMIT, generalized here to gate
// addMessage instead of one KCL shard's record throughput.
func rateLimiterFromEnv() *rate.Limiter {
	raw := os.Getenv("LOGSHIPPER_RATE_LIMIT")
	if raw == "" {
		return nil
	}
	rl, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Invalid LOGSHIPPER_RATE_LIMIT: %s", err.Error())
	}
	burst := int(rl * 1.2)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rl), burst)
}

func batchDelayFromEnv() time.Duration {
	raw := os.Getenv("LOGSHIPPER_BATCH_DELAY_MS")
	if raw == "" {
		return 500 * time.Millisecond
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid LOGSHIPPER_BATCH_DELAY_MS: %s", err.Error())
	}
	return time.Duration(ms) * time.Millisecond
}

func discardThresholdFromEnv() int {
	raw := os.Getenv("LOGSHIPPER_DISCARD_THRESHOLD")
	if raw == "" {
		return 100000
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid LOGSHIPPER_DISCARD_THRESHOLD: %s", err.Error())
	}
	return n
}

func int64FromEnv(name string, def int64) int64 {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("Invalid %s: %s", name, err.Error())
	}
	return n
}

// getEnv looks up an environment variable and exits if it isn't set.
func getEnv(envVar string) string {
	val := os.Getenv(envVar)
	if val == "" {
		log.Fatalf("Must specify env variable %s", envVar)
	}
	return val
}
