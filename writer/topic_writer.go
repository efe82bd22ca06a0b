// Grounded on the same Skeleton shape as the other two writers; the topic
// destination never batches (batch.TopicCaps caps a batch at one message),
// so sendFn's "batch" is always a single publish and there is no recreate
// path -- a deleted topic is not something this writer recovers from.
package writer

import (
	"context"
	"fmt"

	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/batch"
	"github.com/Clever/log-writers-go/facade/topic"
	"github.com/Clever/log-writers-go/message"
)

// TopicConfig configures a topic writer on top of the shared Config.
// Exactly one of TopicName or TopicArn must be set: TopicArn addresses an
// existing topic directly (AutoCreate is meaningless in that case);
// TopicName is resolved (and optionally created) via the facade.
type TopicConfig struct {
	Config
	TopicName  string
	TopicArn   string
	Subject    string
	AutoCreate bool
}

// NewTopicWriter builds a Skeleton that delivers to a pub/sub topic (SNS).
func NewTopicWriter(cfg TopicConfig, f topic.Facade, log *logger.Logger) *Skeleton {
	var arn string

	label := cfg.TopicName
	if label == "" {
		label = cfg.TopicArn
	}
	writerName := fmt.Sprintf("topic:%s", label)

	initFn := func(ctx context.Context) error {
		if err := validateTopicConfig(cfg, writerName, log); err != nil {
			return err
		}

		if cfg.TopicArn != "" {
			arn = cfg.TopicArn
			return nil
		}

		var foundArn string
		var found bool
		if err := retryDescribe(ctx, func() error {
			var ferr error
			foundArn, found, ferr = f.FindTopicByName(cfg.TopicName)
			return ferr
		}); err != nil {
			return err
		}
		if !found {
			if !cfg.AutoCreate {
				return fmt.Errorf("topic %q not found and AutoCreate is false", cfg.TopicName)
			}
			if err := retryCreate(ctx, func() error {
				var ferr error
				foundArn, ferr = f.CreateTopic(cfg.TopicName)
				return ferr
			}); err != nil {
				return err
			}
		}
		arn = foundArn
		return nil
	}

	sendFn := func(ctx context.Context, msgs []message.LogMessage, hint Hint) Result {
		if len(msgs) == 0 {
			return Result{}
		}
		_, err := f.Publish(arn, cfg.Subject, string(msgs[0].Payload))
		if err != nil {
			return Result{Err: err}
		}
		return Result{}
	}

	return New(writerName, cfg.Config, batch.TopicCaps, initFn, sendFn, nil, f.Shutdown, log)
}
