// Config validation, run as the first step of each destination's
// initialization: destination name patterns, retention-period ranges,
// shard count, and topic name/ARN/subject. The stream writer generates its
// own partition keys, so there is no configured partition key to check.
// Grounded on the teacher's NewFirehoseWriter, which validates FlushCount/
// FlushSize eagerly and fails construction on a bad value rather than
// discovering it on the first network call.
package writer

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/facade"
)

var (
	logGroupNamePattern = regexp.MustCompile(`^[.\-_/#A-Za-z0-9]{1,512}$`)
	streamNamePattern   = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

	// validLogGroupRetentionDays is the exact enumerated set from §6; 0 is
	// accepted too, as this package's sentinel for "leave retention
	// untouched" rather than a real CloudWatch Logs retention value.
	validLogGroupRetentionDays = map[int64]bool{
		0: true, 1: true, 3: true, 5: true, 7: true, 14: true, 30: true,
		60: true, 90: true, 120: true, 150: true, 180: true, 365: true,
		400: true, 545: true, 731: true, 1827: true, 3653: true,
	}
)

// configError collects every validation failure found, rather than
// stopping at the first one, so a caller sees "invalid log group name",
// "blank log stream name", and "invalid retention period: 897" together
// instead of one at a time across repeated failed restarts.
type configError struct {
	messages []string
}

func (e *configError) add(format string, args ...interface{}) {
	e.messages = append(e.messages, fmt.Sprintf(format, args...))
}

func (e *configError) err() error {
	if len(e.messages) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(e.messages, "; "))
}

// logAndFail logs each accumulated violation as its own error entry (the
// specification's literal "three error entries recorded") and returns a
// facade.Error carrying them all, so the writer's Start path can set
// lastError and transition to INIT_FAILED.
func (e *configError) logAndFail(writerName string, log *logger.Logger) error {
	if log != nil {
		for _, msg := range e.messages {
			log.ErrorD("invalid-writer-configuration", logger.M{"writer": writerName, "reason": msg})
		}
	}
	return facade.NewError(facade.InvalidConfiguration, false, e.err())
}

func validateLogGroupConfig(cfg LogGroupConfig, name string, log *logger.Logger) error {
	var ce configError
	if !logGroupNamePattern.MatchString(cfg.LogGroupName) {
		ce.add("invalid log group name")
	}
	if strings.TrimSpace(cfg.LogStreamName) == "" {
		ce.add("blank log stream name")
	}
	if !validLogGroupRetentionDays[cfg.RetentionDays] {
		ce.add("invalid retention period: %d", cfg.RetentionDays)
	}
	if len(ce.messages) == 0 {
		return nil
	}
	return ce.logAndFail(name, log)
}

func validateStreamConfig(cfg StreamConfig, name string, log *logger.Logger) error {
	var ce configError
	if !streamNamePattern.MatchString(cfg.StreamName) {
		ce.add("invalid stream name")
	}
	if cfg.ShardCount < 1 {
		ce.add("invalid shard count: %d", cfg.ShardCount)
	}
	if cfg.RetentionHours != 0 && (cfg.RetentionHours < 24 || cfg.RetentionHours > 168) {
		ce.add("invalid retention period (hours): %d", cfg.RetentionHours)
	}
	if len(ce.messages) == 0 {
		return nil
	}
	return ce.logAndFail(name, log)
}

func validateTopicConfig(cfg TopicConfig, name string, log *logger.Logger) error {
	var ce configError
	if (cfg.TopicName == "") == (cfg.TopicArn == "") {
		ce.add("exactly one of topicName or topicArn must be set")
	}
	if len(cfg.Subject) > 100 {
		ce.add("subject exceeds 100 characters")
	}
	for i := 0; i < len(cfg.Subject); i++ {
		if cfg.Subject[i] > 127 {
			ce.add("subject must be ASCII")
			break
		}
	}
	if len(ce.messages) == 0 {
		return nil
	}
	return ce.logAndFail(name, log)
}
