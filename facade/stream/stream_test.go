package stream

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/kinesis"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/Clever/log-writers-go/facade"
	"github.com/Clever/log-writers-go/facade/stream/mock_kinesisiface"
	"github.com/Clever/log-writers-go/message"
)

func setup(t *testing.T) (*KinesisFacade, *mock_kinesisiface.MockKinesisAPI) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockClient := mock_kinesisiface.NewMockKinesisAPI(ctrl)
	f := NewWithClient(mockClient, Config{StreamName: "s"}, nil)
	return f, mockClient
}

func TestRetrieveStreamStatusActive(t *testing.T) {
	f, mockClient := setup(t)
	mockClient.EXPECT().DescribeStreamSummary(gomock.Any()).Return(&kinesis.DescribeStreamSummaryOutput{
		StreamDescriptionSummary: &kinesis.StreamDescriptionSummary{
			StreamStatus: aws.String(kinesis.StreamStatusActive),
		},
	}, nil)

	state, err := f.RetrieveStreamStatus()
	assert.NoError(t, err)
	assert.Equal(t, StateActive, state)
}

func TestRetrieveStreamStatusAbsent(t *testing.T) {
	f, mockClient := setup(t)
	mockClient.EXPECT().DescribeStreamSummary(gomock.Any()).Return(nil, awserr.New("ResourceNotFoundException", "no stream", nil))

	state, err := f.RetrieveStreamStatus()
	assert.NoError(t, err)
	assert.Equal(t, StateAbsent, state)
}

func TestCreateStreamIdempotent(t *testing.T) {
	f, mockClient := setup(t)
	mockClient.EXPECT().CreateStream(gomock.Any()).Return(nil, awserr.New("ResourceInUseException", "exists", nil))

	assert.NoError(t, f.CreateStream(1))
}

func TestPutRecordsAllSucceed(t *testing.T) {
	f, mockClient := setup(t)
	mockClient.EXPECT().PutRecords(gomock.Any()).Return(&kinesis.PutRecordsOutput{
		FailedRecordCount: aws.Int64(0),
		Records:           []*kinesis.PutRecordsResultEntry{{}, {}},
	}, nil)

	failed, err := f.PutRecords([]message.LogMessage{message.New(1, "a"), message.New(2, "b")}, "p")
	assert.NoError(t, err)
	assert.Empty(t, failed)
}

func TestPutRecordsPartialFailure(t *testing.T) {
	f, mockClient := setup(t)
	mockClient.EXPECT().PutRecords(gomock.Any()).Return(&kinesis.PutRecordsOutput{
		FailedRecordCount: aws.Int64(1),
		Records: []*kinesis.PutRecordsResultEntry{
			{SequenceNumber: aws.String("1")},
			{ErrorCode: aws.String("ProvisionedThroughputExceededException")},
		},
	}, nil)

	failed, err := f.PutRecords([]message.LogMessage{message.New(1, "a"), message.New(2, "b")}, "p")
	assert.NoError(t, err)
	assert.Equal(t, []int{1}, failed)
}

func TestPutRecordsMissingStream(t *testing.T) {
	f, mockClient := setup(t)
	mockClient.EXPECT().PutRecords(gomock.Any()).Return(nil, awserr.New("ResourceNotFoundException", "gone", nil))

	failed, err := f.PutRecords([]message.LogMessage{message.New(1, "a"), message.New(2, "b")}, "p")
	assert.Equal(t, []int{0, 1}, failed)
	ferr := err.(*facade.Error)
	assert.Equal(t, facade.MissingLogStream, ferr.Code)
}
