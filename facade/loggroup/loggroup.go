// Package loggroup is the service facade for the log-group/log-stream
// destination (CloudWatch Logs). It is the only package that imports the
// concrete AWS SDK for this destination; everything it returns to the
// writer is either a plain value or a *facade.Error.
//
// Grounded on the teacher's firehoseiface-wrapping style in
// writer/firehose_writer.go and sender/firehose_sender.go (construct a
// session with aws.NewConfig()/session.Must, hold only a narrow client
// interface so this package's tests can inject a gomock mock) and on the
// DescribeLogGroups/DescribeLogStreams pagination and idempotent-create
// handling shown in the rosa-log-router delivery example.
package loggroup

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/facade"
	"github.com/Clever/log-writers-go/message"
)

// CloudWatchLogsAPI is the narrow slice of the SDK's CloudWatchLogsAPI the
// facade actually drives. A local, minimal interface (rather than the
// SDK's full CloudWatchLogsAPI, which carries dozens of
// unrelated methods) is the pattern the rosa-log-router delivery package
// uses for the same client; it keeps the gomock-generated mock small and
// is satisfied by *cloudwatchlogs.CloudWatchLogs without any adapter.
type CloudWatchLogsAPI interface {
	DescribeLogGroups(*cloudwatchlogs.DescribeLogGroupsInput) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
	CreateLogGroup(*cloudwatchlogs.CreateLogGroupInput) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(*cloudwatchlogs.PutRetentionPolicyInput) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	DescribeLogStreams(*cloudwatchlogs.DescribeLogStreamsInput) (*cloudwatchlogs.DescribeLogStreamsOutput, error)
	CreateLogStream(*cloudwatchlogs.CreateLogStreamInput) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(*cloudwatchlogs.PutLogEventsInput) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// StreamDescriptor is what FindLogStream returns about an existing stream.
type StreamDescriptor struct {
	Name                string
	UploadSequenceToken string
}

// Facade is the uniform contract the log-group writer drives.
type Facade interface {
	FindLogGroup() (arn string, found bool, err error)
	CreateLogGroup() error
	SetLogGroupRetention(days int64) error
	FindLogStream() (*StreamDescriptor, error)
	CreateLogStream() error
	RetrieveSequenceToken() (token string, found bool, err error)
	PutEvents(token string, messages []message.LogMessage) (newToken string, err error)
	Shutdown() error
}

// CloudWatchFacade is the production Facade, backed by the AWS SDK.
type CloudWatchFacade struct {
	client        CloudWatchLogsAPI
	logGroupName  string
	logStreamName string
	log           *logger.Logger
}

// Config configures a CloudWatchFacade.
type Config struct {
	Region        string
	LogGroupName  string
	LogStreamName string
}

// New constructs a CloudWatchFacade from a Config, establishing its own AWS
// session the way the teacher's NewFirehoseSender does.
func New(cfg Config, log *logger.Logger) *CloudWatchFacade {
	sess := session.Must(session.NewSession(aws.NewConfig().WithRegion(cfg.Region).WithMaxRetries(2)))
	return NewWithClient(cloudwatchlogs.New(sess), cfg, log)
}

// NewWithClient constructs a CloudWatchFacade around an already-built
// client, the seam tests use to inject a gomock mock.
func NewWithClient(client CloudWatchLogsAPI, cfg Config, log *logger.Logger) *CloudWatchFacade {
	return &CloudWatchFacade{
		client:        client,
		logGroupName:  cfg.LogGroupName,
		logStreamName: cfg.LogStreamName,
		log:           log,
	}
}

// FindLogGroup looks up the log group by exact name, following pagination
// tokens the way DescribeLogGroups/DescribeLogStreams are paginated in the
// rosa-log-router delivery example.
func (f *CloudWatchFacade) FindLogGroup() (string, bool, error) {
	var nextToken *string
	for {
		out, err := f.client.DescribeLogGroups(&cloudwatchlogs.DescribeLogGroupsInput{
			LogGroupNamePrefix: aws.String(f.logGroupName),
			NextToken:          nextToken,
		})
		if err != nil {
			return "", false, toFacadeError(err)
		}
		for _, g := range out.LogGroups {
			if g.LogGroupName != nil && *g.LogGroupName == f.logGroupName {
				arn := ""
				if g.Arn != nil {
					arn = *g.Arn
				}
				return arn, true, nil
			}
		}
		if out.NextToken == nil {
			return "", false, nil
		}
		nextToken = out.NextToken
	}
}

// CreateLogGroup creates the log group, tolerating a concurrent creation.
func (f *CloudWatchFacade) CreateLogGroup() error {
	_, err := f.client.CreateLogGroup(&cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(f.logGroupName),
	})
	if err != nil {
		if isAWSCode(err, "ResourceAlreadyExistsException") {
			return nil
		}
		return toFacadeError(err)
	}
	return nil
}

// SetLogGroupRetention calls PutRetentionPolicy once; retention enforcement
// beyond that single call is out of scope.
func (f *CloudWatchFacade) SetLogGroupRetention(days int64) error {
	_, err := f.client.PutRetentionPolicy(&cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    aws.String(f.logGroupName),
		RetentionInDays: aws.Int64(days),
	})
	if err != nil {
		return toFacadeError(err)
	}
	return nil
}

// FindLogStream looks up the configured log stream by exact name.
func (f *CloudWatchFacade) FindLogStream() (*StreamDescriptor, error) {
	var nextToken *string
	for {
		out, err := f.client.DescribeLogStreams(&cloudwatchlogs.DescribeLogStreamsInput{
			LogGroupName:        aws.String(f.logGroupName),
			LogStreamNamePrefix: aws.String(f.logStreamName),
			NextToken:           nextToken,
		})
		if err != nil {
			return nil, toFacadeError(err)
		}
		for _, s := range out.LogStreams {
			if s.LogStreamName != nil && *s.LogStreamName == f.logStreamName {
				d := &StreamDescriptor{Name: f.logStreamName}
				if s.UploadSequenceToken != nil {
					d.UploadSequenceToken = *s.UploadSequenceToken
				}
				return d, nil
			}
		}
		if out.NextToken == nil {
			return nil, nil
		}
		nextToken = out.NextToken
	}
}

// CreateLogStream creates the log stream, tolerating a concurrent creation.
func (f *CloudWatchFacade) CreateLogStream() error {
	_, err := f.client.CreateLogStream(&cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(f.logGroupName),
		LogStreamName: aws.String(f.logStreamName),
	})
	if err != nil {
		if isAWSCode(err, "ResourceAlreadyExistsException") {
			return nil
		}
		return toFacadeError(err)
	}
	return nil
}

// RetrieveSequenceToken re-fetches the stream's current upload sequence
// token. A nil/absent token (brand-new stream) is reported via found=false.
func (f *CloudWatchFacade) RetrieveSequenceToken() (string, bool, error) {
	desc, err := f.FindLogStream()
	if err != nil {
		return "", false, err
	}
	if desc == nil {
		return "", false, facade.NewError(facade.MissingLogStream, true, fmt.Errorf("log stream %q not found", f.logStreamName))
	}
	if desc.UploadSequenceToken == "" {
		return "", false, nil
	}
	return desc.UploadSequenceToken, true, nil
}

// PutEvents sends a batch, returning the next sequence token on success.
func (f *CloudWatchFacade) PutEvents(token string, messages []message.LogMessage) (string, error) {
	events := make([]*cloudwatchlogs.InputLogEvent, len(messages))
	for i, m := range messages {
		events[i] = &cloudwatchlogs.InputLogEvent{
			Timestamp: aws.Int64(m.Timestamp),
			Message:   aws.String(string(m.Payload)),
		}
	}

	input := &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(f.logGroupName),
		LogStreamName: aws.String(f.logStreamName),
		LogEvents:     events,
	}
	if token != "" {
		input.SequenceToken = aws.String(token)
	}

	out, err := f.client.PutLogEvents(input)
	if err != nil {
		return "", toFacadeError(err)
	}

	if out.RejectedLogEventsInfo != nil {
		if f.log != nil {
			f.log.WarnD("rejected-log-events", logger.M{"log_group": f.logGroupName, "log_stream": f.logStreamName})
		}
	}

	next := ""
	if out.NextSequenceToken != nil {
		next = *out.NextSequenceToken
	}
	return next, nil
}

// Shutdown releases no resources today; the AWS SDK client owns no socket
// the facade must explicitly close.
func (f *CloudWatchFacade) Shutdown() error { return nil }

func isAWSCode(err error, code string) bool {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == code
	}
	return false
}

// toFacadeError maps a cloudwatchlogs SDK error onto the shared reason-code
// taxonomy.
func toFacadeError(err error) *facade.Error {
	aerr, ok := err.(awserr.Error)
	if !ok {
		return facade.NewError(facade.UnexpectedException, false, err)
	}

	switch aerr.Code() {
	case "ThrottlingException", "LimitExceededException":
		return facade.NewError(facade.Throttling, true, err)
	case "ServiceUnavailableException", "OperationAbortedException":
		return facade.NewError(facade.Aborted, true, err)
	case "InvalidSequenceTokenException":
		return facade.NewError(facade.InvalidSequenceToken, true, err)
	case "DataAlreadyAcceptedException":
		return facade.NewError(facade.AlreadyProcessed, false, err)
	case "ResourceNotFoundException":
		return facade.NewError(facade.MissingLogGroup, true, err)
	case "InvalidParameterException":
		return facade.NewError(facade.InvalidConfiguration, false, err)
	default:
		return facade.NewError(facade.UnexpectedException, false, err)
	}
}
