// Package stream is the service facade for the partitioned-stream
// destination (Kinesis). Mirrors facade/loggroup's shape: a minimal local
// interface over the bits of the SDK actually used, wrapped by a facade
// that normalizes errors onto the shared taxonomy.
//
// Grounded on the teacher's own Kinesis usage (the firehose_writer and
// record_processor packages consume a Kinesis stream via the KCL, and
// firehose/firehose_kinesis.go shows the session.Must/aws.NewConfig
// construction this package reuses) and on the per-record partial-failure
// handling pattern in sender/firehose_sender.go's retry loop over
// RequestResponses, generalized here to Kinesis's own per-record
// ErrorCode/ErrorMessage shape.
package stream

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kinesis"
	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/facade"
	"github.com/Clever/log-writers-go/message"
)

// KinesisAPI is the narrow slice of the SDK's KinesisAPI the facade drives.
type KinesisAPI interface {
	DescribeStreamSummary(*kinesis.DescribeStreamSummaryInput) (*kinesis.DescribeStreamSummaryOutput, error)
	CreateStream(*kinesis.CreateStreamInput) (*kinesis.CreateStreamOutput, error)
	IncreaseStreamRetentionPeriod(*kinesis.IncreaseStreamRetentionPeriodInput) (*kinesis.IncreaseStreamRetentionPeriodOutput, error)
	PutRecords(*kinesis.PutRecordsInput) (*kinesis.PutRecordsOutput, error)
}

// State is the stream's lifecycle phase.
type State int

const (
	StateUnknown State = iota
	StateAbsent
	StateCreating
	StateActive
	StateUpdating
	StateDeleting
)

// Facade is the uniform contract the partitioned-stream writer drives.
type Facade interface {
	RetrieveStreamStatus() (State, error)
	CreateStream(shardCount int64) error
	SetRetentionPeriod(hours int64) error
	// PutRecords returns the indices, within batch, of records that must be
	// requeued: the records that failed outright, or every index when the
	// call failed because the stream is missing. Any other call failure
	// returns nil indices with the error.
	PutRecords(batch []message.LogMessage, partitionKey string) ([]int, error)
	Shutdown() error
}

// KinesisFacade is the production Facade.
type KinesisFacade struct {
	client     KinesisAPI
	streamName string
	log        *logger.Logger
}

// Config configures a KinesisFacade.
type Config struct {
	Region     string
	StreamName string
}

// New constructs a KinesisFacade, establishing its own AWS session.
func New(cfg Config, log *logger.Logger) *KinesisFacade {
	sess := session.Must(session.NewSession(aws.NewConfig().WithRegion(cfg.Region).WithMaxRetries(2)))
	return NewWithClient(kinesis.New(sess), cfg, log)
}

// NewWithClient constructs a KinesisFacade around an already-built client.
func NewWithClient(client KinesisAPI, cfg Config, log *logger.Logger) *KinesisFacade {
	return &KinesisFacade{client: client, streamName: cfg.StreamName, log: log}
}

// RetrieveStreamStatus polls the stream's current lifecycle phase.
func (f *KinesisFacade) RetrieveStreamStatus() (State, error) {
	out, err := f.client.DescribeStreamSummary(&kinesis.DescribeStreamSummaryInput{
		StreamName: aws.String(f.streamName),
	})
	if err != nil {
		if isAWSCode(err, "ResourceNotFoundException") {
			return StateAbsent, nil
		}
		return StateUnknown, toFacadeError(err)
	}
	if out.StreamDescriptionSummary == nil || out.StreamDescriptionSummary.StreamStatus == nil {
		return StateUnknown, nil
	}
	switch *out.StreamDescriptionSummary.StreamStatus {
	case kinesis.StreamStatusCreating:
		return StateCreating, nil
	case kinesis.StreamStatusActive:
		return StateActive, nil
	case kinesis.StreamStatusUpdating:
		return StateUpdating, nil
	case kinesis.StreamStatusDeleting:
		return StateDeleting, nil
	default:
		return StateUnknown, nil
	}
}

// CreateStream creates the stream with shardCount shards, tolerating a
// concurrent creation.
func (f *KinesisFacade) CreateStream(shardCount int64) error {
	_, err := f.client.CreateStream(&kinesis.CreateStreamInput{
		StreamName: aws.String(f.streamName),
		ShardCount: aws.Int64(shardCount),
	})
	if err != nil {
		if isAWSCode(err, "ResourceInUseException") {
			return nil
		}
		return toFacadeError(err)
	}
	return nil
}

// SetRetentionPeriod calls IncreaseStreamRetentionPeriod once.
func (f *KinesisFacade) SetRetentionPeriod(hours int64) error {
	_, err := f.client.IncreaseStreamRetentionPeriod(&kinesis.IncreaseStreamRetentionPeriodInput{
		StreamName:           aws.String(f.streamName),
		RetentionPeriodHours: aws.Int64(hours),
	})
	if err != nil {
		return toFacadeError(err)
	}
	return nil
}

// PutRecords sends a batch, returning the indices of any records Kinesis
// rejected so the writer can requeue only those.
func (f *KinesisFacade) PutRecords(batch []message.LogMessage, partitionKey string) ([]int, error) {
	entries := make([]*kinesis.PutRecordsRequestEntry, len(batch))
	for i, m := range batch {
		entries[i] = &kinesis.PutRecordsRequestEntry{
			Data:         m.Payload,
			PartitionKey: aws.String(partitionKey),
		}
	}

	out, err := f.client.PutRecords(&kinesis.PutRecordsInput{
		StreamName: aws.String(f.streamName),
		Records:    entries,
	})
	if err != nil {
		if isAWSCode(err, "ResourceNotFoundException") {
			all := make([]int, len(batch))
			for i := range all {
				all[i] = i
			}
			return all, facade.NewError(facade.MissingLogStream, true, err)
		}
		return nil, toFacadeError(err)
	}

	if out.FailedRecordCount == nil || *out.FailedRecordCount == 0 {
		return nil, nil
	}

	var failedIdx []int
	for i, r := range out.Records {
		if r.ErrorCode != nil && *r.ErrorCode != "" {
			failedIdx = append(failedIdx, i)
			if f.log != nil {
				f.log.WarnD("kinesis-record-rejected", logger.M{
					"stream": f.streamName, "error_code": *r.ErrorCode,
				})
			}
		}
	}
	return failedIdx, nil
}

// Shutdown releases no resources today.
func (f *KinesisFacade) Shutdown() error { return nil }

func isAWSCode(err error, code string) bool {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == code
	}
	return false
}

func toFacadeError(err error) *facade.Error {
	aerr, ok := err.(awserr.Error)
	if !ok {
		return facade.NewError(facade.UnexpectedException, false, err)
	}

	switch aerr.Code() {
	case "ProvisionedThroughputExceededException", "LimitExceededException":
		return facade.NewError(facade.Throttling, true, err)
	case "InternalFailure":
		return facade.NewError(facade.Aborted, true, err)
	case "ResourceNotFoundException":
		return facade.NewError(facade.MissingLogStream, true, err)
	case "InvalidArgumentException":
		return facade.NewError(facade.InvalidConfiguration, false, err)
	default:
		return facade.NewError(facade.UnexpectedException, false, err)
	}
}
