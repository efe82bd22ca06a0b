// Package topic is the service facade for the pub/sub topic destination
// (SNS). Mirrors facade/loggroup and facade/stream's shape.
//
// Grounded on the same minimal-local-interface pattern and on the
// NextToken pagination loop in facade/loggroup (itself grounded on the
// rosa-log-router delivery example's DescribeLogGroups loop); SNS's
// ListTopics is paginated the same way.
package topic

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/facade"
)

// SNSAPI is the narrow slice of the SDK's SNSAPI the facade drives.
type SNSAPI interface {
	ListTopics(*sns.ListTopicsInput) (*sns.ListTopicsOutput, error)
	CreateTopic(*sns.CreateTopicInput) (*sns.CreateTopicOutput, error)
	Publish(*sns.PublishInput) (*sns.PublishOutput, error)
}

// Facade is the uniform contract the topic writer drives.
type Facade interface {
	ListTopics() ([]string, error)
	FindTopicByName(name string) (arn string, found bool, err error)
	CreateTopic(name string) (arn string, err error)
	Publish(arn, subject, body string) (messageID string, err error)
	Shutdown() error
}

// SNSFacade is the production Facade.
type SNSFacade struct {
	client SNSAPI
	log    *logger.Logger
}

// Config configures an SNSFacade.
type Config struct {
	Region string
}

// New constructs an SNSFacade, establishing its own AWS session.
func New(cfg Config, log *logger.Logger) *SNSFacade {
	sess := session.Must(session.NewSession(aws.NewConfig().WithRegion(cfg.Region).WithMaxRetries(2)))
	return NewWithClient(sns.New(sess), log)
}

// NewWithClient constructs an SNSFacade around an already-built client.
func NewWithClient(client SNSAPI, log *logger.Logger) *SNSFacade {
	return &SNSFacade{client: client, log: log}
}

// ListTopics returns every topic ARN, transparently following pagination
// tokens.
func (f *SNSFacade) ListTopics() ([]string, error) {
	var arns []string
	var nextToken *string
	for {
		out, err := f.client.ListTopics(&sns.ListTopicsInput{NextToken: nextToken})
		if err != nil {
			return nil, toFacadeError(err)
		}
		for _, t := range out.Topics {
			if t.TopicArn != nil {
				arns = append(arns, *t.TopicArn)
			}
		}
		if out.NextToken == nil {
			return arns, nil
		}
		nextToken = out.NextToken
	}
}

// FindTopicByName searches ListTopics for an ARN whose trailing segment
// matches name exactly.
func (f *SNSFacade) FindTopicByName(name string) (string, bool, error) {
	arns, err := f.ListTopics()
	if err != nil {
		return "", false, err
	}
	for _, arn := range arns {
		if topicNameFromARN(arn) == name {
			return arn, true, nil
		}
	}
	return "", false, nil
}

func topicNameFromARN(arn string) string {
	idx := strings.LastIndex(arn, ":")
	if idx == -1 {
		return arn
	}
	return arn[idx+1:]
}

// CreateTopic creates the topic; SNS's CreateTopic is itself idempotent by
// name, so no special-casing of "already exists" is needed.
func (f *SNSFacade) CreateTopic(name string) (string, error) {
	out, err := f.client.CreateTopic(&sns.CreateTopicInput{Name: aws.String(name)})
	if err != nil {
		return "", toFacadeError(err)
	}
	if out.TopicArn == nil {
		return "", facade.NewError(facade.UnexpectedException, false, nil)
	}
	return *out.TopicArn, nil
}

// Publish sends a single message; the topic destination never batches.
func (f *SNSFacade) Publish(arn, subject, body string) (string, error) {
	input := &sns.PublishInput{
		TopicArn: aws.String(arn),
		Message:  aws.String(body),
	}
	if subject != "" {
		input.Subject = aws.String(subject)
	}

	out, err := f.client.Publish(input)
	if err != nil {
		return "", toFacadeError(err)
	}
	if out.MessageId == nil {
		return "", nil
	}
	return *out.MessageId, nil
}

// Shutdown releases no resources today.
func (f *SNSFacade) Shutdown() error { return nil }

func toFacadeError(err error) *facade.Error {
	aerr, ok := err.(awserr.Error)
	if !ok {
		return facade.NewError(facade.UnexpectedException, false, err)
	}

	switch aerr.Code() {
	case "Throttling", "ThrottledException":
		return facade.NewError(facade.Throttling, true, err)
	case "InternalError":
		return facade.NewError(facade.Aborted, true, err)
	case "InvalidParameter", "ValidationException":
		return facade.NewError(facade.InvalidConfiguration, false, err)
	default:
		return facade.NewError(facade.UnexpectedException, false, err)
	}
}
