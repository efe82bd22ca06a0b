// Grounded on the teacher's firehose_writer.go Initialize/ProcessMessage
// shape, adapted to drive facade/loggroup instead of Firehose and to own a
// cached sequence token the way CloudWatch Logs' PutLogEvents requires.
package writer

import (
	"context"
	"fmt"

	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/batch"
	"github.com/Clever/log-writers-go/facade/loggroup"
	"github.com/Clever/log-writers-go/message"
)

// LogGroupConfig configures a log-group writer on top of the shared Config.
type LogGroupConfig struct {
	Config
	LogGroupName  string
	LogStreamName string
	RetentionDays int64 // 0 means leave the group's retention untouched

	// DedicatedWriter, when true, assumes this writer is the only
	// publisher to LogStreamName and caches the sequence token across
	// batches. When false, a fresh token is fetched before every batch,
	// trading a round-trip per batch for correctness under concurrent
	// publishers. Both modes refresh the token on INVALID_SEQUENCE_TOKEN
	// per the writer's race-retry handling; DedicatedWriter only changes
	// whether a fetch also happens when there was no race.
	DedicatedWriter bool
}

// logGroupState holds the sequence token the loggroup writer's closures
// share; only the writer's single worker goroutine ever touches it, so no
// lock is needed.
type logGroupState struct {
	token    string
	hasToken bool
}

// NewLogGroupWriter builds a Skeleton that delivers to a CloudWatch Logs log
// group/stream.
func NewLogGroupWriter(cfg LogGroupConfig, f loggroup.Facade, log *logger.Logger) *Skeleton {
	st := &logGroupState{}
	writerName := fmt.Sprintf("loggroup:%s/%s", cfg.LogGroupName, cfg.LogStreamName)

	initFn := func(ctx context.Context) error {
		if err := validateLogGroupConfig(cfg, writerName, log); err != nil {
			return err
		}

		var found bool
		if err := retryDescribe(ctx, func() error {
			var ferr error
			_, found, ferr = f.FindLogGroup()
			return ferr
		}); err != nil {
			return err
		}
		if !found {
			if err := retryCreate(ctx, f.CreateLogGroup); err != nil {
				return err
			}
		}
		if cfg.RetentionDays > 0 {
			if err := f.SetLogGroupRetention(cfg.RetentionDays); err != nil {
				return err
			}
		}

		var desc *loggroup.StreamDescriptor
		if err := retryDescribe(ctx, func() error {
			var ferr error
			desc, ferr = f.FindLogStream()
			return ferr
		}); err != nil {
			return err
		}
		if desc == nil {
			if err := retryCreate(ctx, f.CreateLogStream); err != nil {
				return err
			}
			st.hasToken = false
			return nil
		}
		if desc.UploadSequenceToken != "" {
			st.token = desc.UploadSequenceToken
			st.hasToken = true
		}
		return nil
	}

	sendFn := func(ctx context.Context, msgs []message.LogMessage, hint Hint) Result {
		// INVALID_SEQUENCE_TOKEN always forces a refresh, dedicated or
		// not: a stale cached token is by definition wrong once a race
		// has been observed. Absent a race, a non-dedicated writer still
		// fetches fresh every batch since it cannot assume exclusivity
		// over the stream; a dedicated writer trusts its cache.
		if hint.RefreshToken || !cfg.DedicatedWriter {
			token, found, err := f.RetrieveSequenceToken()
			if err != nil {
				return Result{Err: err}
			}
			st.token = token
			st.hasToken = found
		}

		token := ""
		if st.hasToken {
			token = st.token
		}
		next, err := f.PutEvents(token, msgs)
		if err != nil {
			return Result{Err: err}
		}
		st.token = next
		st.hasToken = next != ""
		return Result{}
	}

	recreateFn := func(ctx context.Context) error {
		var found bool
		if err := retryDescribe(ctx, func() error {
			var ferr error
			_, found, ferr = f.FindLogGroup()
			return ferr
		}); err != nil {
			return err
		}
		if !found {
			if err := retryCreate(ctx, f.CreateLogGroup); err != nil {
				return err
			}
		}
		if err := retryCreate(ctx, f.CreateLogStream); err != nil {
			return err
		}
		token, found, err := f.RetrieveSequenceToken()
		if err != nil {
			return err
		}
		st.token = token
		st.hasToken = found
		return nil
	}

	return New(writerName, cfg.Config, batch.LogGroupCaps, initFn, sendFn, recreateFn, f.Shutdown, log)
}
