package writer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/facade"
	"github.com/Clever/log-writers-go/facade/loggroup"
	"github.com/Clever/log-writers-go/facade/stream"
	"github.com/Clever/log-writers-go/message"
	"github.com/Clever/log-writers-go/queue"
)

type noopSleeper struct{}

func (noopSleeper) Sleep(time.Duration) {}

var testLog = logger.New("log-writers-go-test")

// fakeLogGroupFacade is a hand-written test double (not a gomock mock,
// since these tests exercise the writer's decision logic rather than the
// facade's SDK translation, which loggroup_test.go already covers).
type fakeLogGroupFacade struct {
	findGroupErr error
	findGroupOk  bool

	// findGroupErrs, when non-empty, overrides findGroupErr: consumed in
	// order (one call each) so a test can script a throttle-then-succeed
	// sequence; the last entry repeats once exhausted.
	findGroupErrs  []error
	findGroupCalls int

	putEventsErrs []error // consumed in order; last value repeats once exhausted
	putEventsCall int

	retrieveTokenToken string
	retrieveTokenErr   error
	retrieveTokenCalls int

	shutdownCalls int
}

func (f *fakeLogGroupFacade) FindLogGroup() (string, bool, error) {
	if len(f.findGroupErrs) > 0 {
		idx := f.findGroupCalls
		if idx >= len(f.findGroupErrs) {
			idx = len(f.findGroupErrs) - 1
		}
		f.findGroupCalls++
		if f.findGroupErrs[idx] != nil {
			return "", false, f.findGroupErrs[idx]
		}
		return "arn", f.findGroupOk, nil
	}
	f.findGroupCalls++
	return "arn", f.findGroupOk, f.findGroupErr
}
func (f *fakeLogGroupFacade) CreateLogGroup() error            { return nil }
func (f *fakeLogGroupFacade) SetLogGroupRetention(int64) error { return nil }
func (f *fakeLogGroupFacade) FindLogStream() (*loggroup.StreamDescriptor, error) {
	return &loggroup.StreamDescriptor{Name: "stream", UploadSequenceToken: "tok-0"}, nil
}
func (f *fakeLogGroupFacade) CreateLogStream() error { return nil }
func (f *fakeLogGroupFacade) RetrieveSequenceToken() (string, bool, error) {
	f.retrieveTokenCalls++
	return f.retrieveTokenToken, f.retrieveTokenToken != "", f.retrieveTokenErr
}
func (f *fakeLogGroupFacade) PutEvents(token string, msgs []message.LogMessage) (string, error) {
	idx := f.putEventsCall
	if idx >= len(f.putEventsErrs) {
		idx = len(f.putEventsErrs) - 1
	}
	f.putEventsCall++
	if idx >= 0 && f.putEventsErrs[idx] != nil {
		return "", f.putEventsErrs[idx]
	}
	return "tok-next", nil
}
func (f *fakeLogGroupFacade) Shutdown() error {
	f.shutdownCalls++
	return nil
}

func TestLogGroupHappyPath(t *testing.T) {
	f := &fakeLogGroupFacade{findGroupOk: true}
	cfg := LogGroupConfig{
		Config:        Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		LogGroupName:  "argle",
		LogStreamName: "bargle",
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.Start(context.Background())
	assert.Equal(t, StateRunning, w.State())

	w.AddMessage(message.New(1000, "m1"))

	snap := w.Statistics().Snapshot()
	assert.EqualValues(t, 1, snap.MessagesSent)
	assert.EqualValues(t, 1, snap.LastBatchSize)
	assert.EqualValues(t, 1, f.putEventsCall)
}

func TestLogGroupInitFailureDiscardsEverything(t *testing.T) {
	f := &fakeLogGroupFacade{findGroupErr: errors.New("invalid log group name")}
	cfg := LogGroupConfig{
		Config:        Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000, DiscardAction: queue.DiscardOldest},
		LogGroupName:  "I'm No Good!",
		LogStreamName: "bargle",
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.Start(context.Background())

	assert.Equal(t, StateInitFailed, w.State())
	assert.True(t, w.WaitUntilStopped(time.Second))

	w.AddMessage(message.New(1, "dropped"))
	assert.Equal(t, 0, w.QueueSize())
}

func TestLogGroupInvalidConfigAccumulatesAllViolations(t *testing.T) {
	cfg := LogGroupConfig{
		LogGroupName:  "I'm No Good!",
		LogStreamName: "",
		RetentionDays: 897,
	}
	err := validateLogGroupConfig(cfg, "loggroup:test", testLog)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log group name")
	assert.Contains(t, err.Error(), "blank log stream name")
	assert.Contains(t, err.Error(), "invalid retention period: 897")
}

func TestLogGroupInitRetriesThrottledFindLogGroup(t *testing.T) {
	throttleErr := facade.NewError(facade.Throttling, true, errors.New("slow down"))
	f := &fakeLogGroupFacade{
		findGroupOk:   true,
		findGroupErrs: []error{throttleErr, nil},
	}
	cfg := LogGroupConfig{
		Config:        Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		LogGroupName:  "argle",
		LogStreamName: "bargle",
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.Start(context.Background())

	assert.Equal(t, StateRunning, w.State(), "a throttled FindLogGroup must be retried, not fatal to init")
	assert.EqualValues(t, 2, f.findGroupCalls)
}

func TestLogGroupUnrecoveredSequenceTokenRace(t *testing.T) {
	raceErr := facade.NewError(facade.InvalidSequenceToken, true, errors.New("race"))
	f := &fakeLogGroupFacade{
		findGroupOk:        true,
		putEventsErrs:      []error{raceErr, raceErr, raceErr, raceErr},
		retrieveTokenToken: "tok-refreshed",
	}
	cfg := LogGroupConfig{
		Config:        Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		LogGroupName:  "argle",
		LogStreamName: "bargle",
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.SetSleeper(noopSleeper{})
	w.Start(context.Background())

	w.AddMessage(message.New(1, "m1"))

	assert.EqualValues(t, 4, f.putEventsCall)
	snap := w.Statistics().Snapshot()
	assert.EqualValues(t, 4, snap.WriterRaceRetries)
	assert.EqualValues(t, 1, snap.UnrecoveredWriterRaceRetries)
	assert.Equal(t, 1, w.QueueSize(), "the unsent message must be requeued")
}

func TestLogGroupThrottledRetrySucceeds(t *testing.T) {
	throttleErr := facade.NewError(facade.Throttling, true, errors.New("slow down"))
	f := &fakeLogGroupFacade{
		findGroupOk:   true,
		putEventsErrs: []error{throttleErr, nil},
	}
	cfg := LogGroupConfig{
		Config:        Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		LogGroupName:  "argle",
		LogStreamName: "bargle",
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.SetSleeper(noopSleeper{})
	w.Start(context.Background())

	w.AddMessage(message.New(1, "m1"))

	assert.EqualValues(t, 2, f.putEventsCall, "exactly two service calls: one throttled, one that succeeds")
	snap := w.Statistics().Snapshot()
	assert.EqualValues(t, 1, snap.ThrottledWrites)
	assert.EqualValues(t, 1, snap.MessagesSent)
	assert.Equal(t, 0, w.QueueSize())
}

func TestLogGroupUnrecoveredThrottleRequeues(t *testing.T) {
	throttleErr := facade.NewError(facade.Throttling, true, errors.New("slow down"))
	f := &fakeLogGroupFacade{
		findGroupOk:   true,
		putEventsErrs: []error{throttleErr},
	}
	cfg := LogGroupConfig{
		Config:        Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		LogGroupName:  "argle",
		LogStreamName: "bargle",
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.SetSleeper(noopSleeper{})
	w.Start(context.Background())

	w.AddMessage(message.New(1, "m1"))

	assert.EqualValues(t, 4, f.putEventsCall, "exactly 4 attempts before giving up")
	snap := w.Statistics().Snapshot()
	assert.EqualValues(t, 4, snap.ThrottledWrites)
	assert.EqualValues(t, 0, snap.MessagesSent)
	assert.Equal(t, 1, w.QueueSize(), "the unsent batch must be requeued")
}

func TestLogGroupGracefulShutdownFlushesAndCallsFacadeShutdown(t *testing.T) {
	f := &fakeLogGroupFacade{findGroupOk: true}
	cfg := LogGroupConfig{
		Config: Config{
			BatchDelay:            time.Hour,
			InitializationTimeout: time.Second,
			DiscardThreshold:      10000,
		},
		LogGroupName:  "argle",
		LogStreamName: "bargle",
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.SetSleeper(noopSleeper{})
	w.Start(context.Background())
	assert.Equal(t, StateRunning, w.State())

	w.AddMessage(message.New(1000, "m1"))
	w.AddMessage(message.New(1001, "m2"))

	w.Stop()
	assert.True(t, w.WaitUntilStopped(time.Second), "writer must flush and stop well before the hour-long batch delay")

	assert.Equal(t, StateStopped, w.State())
	assert.EqualValues(t, 1, f.putEventsCall, "both pending messages must go out in a single flush-on-stop batch")
	assert.EqualValues(t, 1, f.shutdownCalls, "facade.Shutdown must be called exactly once")

	snap := w.Statistics().Snapshot()
	assert.EqualValues(t, 2, snap.MessagesSent)
	assert.EqualValues(t, 2, snap.LastBatchSize)
}

func TestLogGroupDedicatedWriterCachesToken(t *testing.T) {
	f := &fakeLogGroupFacade{findGroupOk: true}
	cfg := LogGroupConfig{
		Config:          Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		LogGroupName:    "argle",
		LogStreamName:   "bargle",
		DedicatedWriter: true,
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.Start(context.Background())

	w.AddMessage(message.New(1, "m1"))
	w.AddMessage(message.New(2, "m2"))

	assert.EqualValues(t, 2, f.putEventsCall)
	assert.EqualValues(t, 0, f.retrieveTokenCalls, "a dedicated writer must not re-fetch the token absent a race")
}

func TestLogGroupSharedWriterRefetchesTokenEveryBatch(t *testing.T) {
	f := &fakeLogGroupFacade{findGroupOk: true, retrieveTokenToken: "tok-fresh"}
	cfg := LogGroupConfig{
		Config:          Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		LogGroupName:    "argle",
		LogStreamName:   "bargle",
		DedicatedWriter: false,
	}
	w := NewLogGroupWriter(cfg, f, testLog)
	w.Start(context.Background())

	w.AddMessage(message.New(1, "m1"))
	w.AddMessage(message.New(2, "m2"))

	assert.EqualValues(t, 2, f.putEventsCall)
	assert.EqualValues(t, 2, f.retrieveTokenCalls, "a non-dedicated writer must fetch a fresh token before every batch")
}

// fakeStreamFacade lets a test script PutRecords responses call-by-call.
type fakeStreamFacade struct {
	putRecordsResponses []fakeStreamResponse
	putRecordsCall      int
	createStreamCalls   int
	initialState        stream.State // defaults to StateActive (zero value is StateUnknown, so set explicitly when absent)

	// pollErrs scripts the status checks made while waiting for the
	// stream to go active after a create; a nil entry reports StateActive.
	pollErrs  []error
	pollCalls int
}

type fakeStreamResponse struct {
	failed []int
	err    error
}

func (f *fakeStreamFacade) RetrieveStreamStatus() (stream.State, error) {
	if f.createStreamCalls > 0 {
		if f.pollCalls < len(f.pollErrs) {
			err := f.pollErrs[f.pollCalls]
			f.pollCalls++
			if err != nil {
				return stream.StateUnknown, err
			}
		}
		return stream.StateActive, nil
	}
	if f.initialState == stream.StateUnknown {
		return stream.StateActive, nil
	}
	return f.initialState, nil
}
func (f *fakeStreamFacade) CreateStream(int64) error {
	f.createStreamCalls++
	return nil
}
func (f *fakeStreamFacade) SetRetentionPeriod(int64) error { return nil }
func (f *fakeStreamFacade) PutRecords(batch []message.LogMessage, partitionKey string) ([]int, error) {
	idx := f.putRecordsCall
	if idx >= len(f.putRecordsResponses) {
		idx = len(f.putRecordsResponses) - 1
	}
	f.putRecordsCall++
	r := f.putRecordsResponses[idx]
	return r.failed, r.err
}
func (f *fakeStreamFacade) Shutdown() error { return nil }

func TestStreamMissingStreamRecreateAndRetry(t *testing.T) {
	missingErr := facade.NewError(facade.MissingLogStream, true, errors.New("gone"))
	f := &fakeStreamFacade{
		putRecordsResponses: []fakeStreamResponse{
			{failed: []int{0}, err: missingErr},
			{},
		},
	}
	cfg := StreamConfig{
		Config:     Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		StreamName: "s",
		ShardCount: 1,
	}
	w := NewStreamWriter(cfg, f, testLog)
	w.SetSleeper(noopSleeper{})
	w.Start(context.Background())

	w.AddMessage(message.New(1, "m1"))
	assert.Equal(t, 1, f.createStreamCalls, "missing stream must trigger a recreate")
	assert.Equal(t, 1, w.QueueSize(), "first failed attempt is requeued, not lost")

	// Draining again delivers the requeued message successfully.
	w.AddMessage(message.New(2, "m2"))
	snap := w.Statistics().Snapshot()
	assert.EqualValues(t, 2, snap.MessagesSent)
	assert.Equal(t, 0, w.QueueSize())
}

func TestStreamAbsentWithoutAutoCreateFailsInit(t *testing.T) {
	f := &fakeStreamFacade{initialState: stream.StateAbsent}
	cfg := StreamConfig{
		Config:     Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		StreamName: "s",
		ShardCount: 1,
		AutoCreate: false,
	}
	w := NewStreamWriter(cfg, f, testLog)
	w.Start(context.Background())

	assert.Equal(t, StateInitFailed, w.State())
	assert.Equal(t, 0, f.createStreamCalls)
}

func TestStreamAbsentWithAutoCreateSucceeds(t *testing.T) {
	f := &fakeStreamFacade{
		initialState:        stream.StateAbsent,
		putRecordsResponses: []fakeStreamResponse{{}},
	}
	cfg := StreamConfig{
		Config:     Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		StreamName: "s",
		ShardCount: 1,
		AutoCreate: true,
	}
	w := NewStreamWriter(cfg, f, testLog)
	w.Start(context.Background())

	assert.Equal(t, StateRunning, w.State())
	assert.Equal(t, 1, f.createStreamCalls)

	w.AddMessage(message.New(1, "m1"))
	assert.EqualValues(t, 1, w.Statistics().Snapshot().MessagesSent)
}

func TestStreamActiveWaitToleratesThrottling(t *testing.T) {
	throttleErr := facade.NewError(facade.Throttling, true, errors.New("slow down"))
	f := &fakeStreamFacade{
		initialState:        stream.StateAbsent,
		pollErrs:            []error{throttleErr},
		putRecordsResponses: []fakeStreamResponse{{}},
	}
	cfg := StreamConfig{
		Config:     Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		StreamName: "s",
		ShardCount: 1,
		AutoCreate: true,
	}
	w := NewStreamWriter(cfg, f, testLog)
	w.Start(context.Background())

	assert.Equal(t, StateRunning, w.State(), "a throttled status poll while waiting for active must be retried, not fatal")
	assert.Equal(t, 1, f.pollCalls)
}

// fakeTopicFacade is a hand-written test double for the topic writer,
// mirroring fakeLogGroupFacade/fakeStreamFacade above.
type fakeTopicFacade struct {
	findArn         string
	findFound       bool
	findErr         error
	createArn       string
	createErr       error
	createCalls     int
	publishErr      error
	publishCalls    int
	lastPublishArn  string
	lastPublishBody string
}

func (f *fakeTopicFacade) ListTopics() ([]string, error) { return nil, nil }
func (f *fakeTopicFacade) FindTopicByName(string) (string, bool, error) {
	return f.findArn, f.findFound, f.findErr
}
func (f *fakeTopicFacade) CreateTopic(string) (string, error) {
	f.createCalls++
	return f.createArn, f.createErr
}
func (f *fakeTopicFacade) Publish(arn, subject, body string) (string, error) {
	f.publishCalls++
	f.lastPublishArn = arn
	f.lastPublishBody = body
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return "msg-id", nil
}
func (f *fakeTopicFacade) Shutdown() error { return nil }

func TestTopicHappyPathByArn(t *testing.T) {
	f := &fakeTopicFacade{}
	cfg := TopicConfig{
		Config:   Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		TopicArn: "arn:aws:sns:r:a:mine",
		Subject:  "alerts",
	}
	w := NewTopicWriter(cfg, f, testLog)
	w.Start(context.Background())
	assert.Equal(t, StateRunning, w.State())

	w.AddMessage(message.New(1, "hello"))

	assert.Equal(t, 0, f.createCalls, "an explicit TopicArn must never trigger find-or-create")
	assert.EqualValues(t, 1, f.publishCalls)
	assert.Equal(t, "arn:aws:sns:r:a:mine", f.lastPublishArn)
	assert.Equal(t, "hello", f.lastPublishBody)
	assert.EqualValues(t, 1, w.Statistics().Snapshot().MessagesSent)
}

func TestTopicNotFoundWithoutAutoCreateFailsInit(t *testing.T) {
	f := &fakeTopicFacade{findFound: false}
	cfg := TopicConfig{
		Config:     Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		TopicName:  "my-topic",
		AutoCreate: false,
	}
	w := NewTopicWriter(cfg, f, testLog)
	w.Start(context.Background())

	assert.Equal(t, StateInitFailed, w.State())
	assert.Equal(t, 0, f.createCalls)
}

func TestTopicNotFoundWithAutoCreateSucceeds(t *testing.T) {
	f := &fakeTopicFacade{findFound: false, createArn: "arn:aws:sns:r:a:new"}
	cfg := TopicConfig{
		Config:     Config{Synchronous: true, InitializationTimeout: time.Second, DiscardThreshold: 10000},
		TopicName:  "my-topic",
		AutoCreate: true,
	}
	w := NewTopicWriter(cfg, f, testLog)
	w.Start(context.Background())

	assert.Equal(t, StateRunning, w.State())
	assert.Equal(t, 1, f.createCalls)

	w.AddMessage(message.New(1, "hi"))
	assert.Equal(t, "arn:aws:sns:r:a:new", f.lastPublishArn)
}
