package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/isaaclog/isaaclog/internal/classify"
)

// PutLogEvents limits.
const (
	MaxBatchEvents = 10000
	MaxBatchBytes  = 1048576
	EventOverhead  = 26

	// maxMessageBytes is the largest message one event may carry.
	maxMessageBytes = 256*1024 - EventOverhead

	// maxPendingEvents caps what is kept for retry while the service
	// keeps failing. The oldest events are dropped first.
	maxPendingEvents = 10 * MaxBatchEvents
)

func init() {
	Register("cloudwatch", openCloudWatch)
}

// logsAPI is the part of the CloudWatch Logs client the sink uses.
type logsAPI interface {
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchSink buffers lines and ships them to a CloudWatch Logs stream.
type CloudWatchSink struct {
	client  logsAPI
	group   string
	stream  string
	profile string
	region  string
	created bool
	pending []types.InputLogEvent
	metrics *lineMetrics
	now     func() time.Time
}

// CloudWatchOption configures a CloudWatchSink.
type CloudWatchOption func(*CloudWatchSink)

// WithAWSProfile records the profile and region the clients were built for.
func WithAWSProfile(profile, region string) CloudWatchOption {
	return func(s *CloudWatchSink) {
		s.profile = profile
		s.region = region
	}
}

// WithMetrics publishes per-category line counts to namespace on every
// Flush.
func WithMetrics(client metricsAPI, namespace string) CloudWatchOption {
	return func(s *CloudWatchSink) {
		s.metrics = newLineMetrics(client, namespace)
	}
}

// NewCloudWatchSink creates a sink writing to group/stream through client.
func NewCloudWatchSink(client logsAPI, group, stream string, opts ...CloudWatchOption) *CloudWatchSink {
	s := &CloudWatchSink{
		client: client,
		group:  group,
		stream: stream,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func openCloudWatch(u *url.URL, opts OpenOptions) (Sink, error) {
	group := strings.TrimPrefix(u.Host+u.Path, "/")
	if group == "" {
		return nil, fmt.Errorf("cloudwatch mirror URI %q has no log group", u.String())
	}

	q := u.Query()
	profile := opts.Profile
	if p := q.Get("profile"); p != "" {
		profile = p
	}
	region := opts.Region
	if r := q.Get("region"); r != "" {
		region = r
	}
	stream := q.Get("stream")
	if stream == "" {
		stream = DefaultStreamName()
	}

	cfg, err := loadAWSConfig(profile, region)
	if err != nil {
		return nil, err
	}

	cwOpts := []CloudWatchOption{WithAWSProfile(profile, region)}
	if ns := q.Get("metrics"); ns != "" {
		cwOpts = append(cwOpts, WithMetrics(cloudwatch.NewFromConfig(cfg), ns))
	}
	return NewCloudWatchSink(cloudwatchlogs.NewFromConfig(cfg), group, stream, cwOpts...), nil
}

// DefaultStreamName is isaaclog-<hostname>.
func DefaultStreamName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return "isaaclog-" + host
}

// Group returns the target log group.
func (s *CloudWatchSink) Group() string {
	return s.group
}

// Stream returns the target log stream.
func (s *CloudWatchSink) Stream() string {
	return s.stream
}

// Profile returns the AWS profile the sink resolved, after URI overrides.
func (s *CloudWatchSink) Profile() string {
	return s.profile
}

// Region returns the AWS region the sink resolved, after URI overrides.
func (s *CloudWatchSink) Region() string {
	return s.region
}

// Write buffers one line as a log event.
func (s *CloudWatchSink) Write(_ context.Context, l classify.Line) error {
	if s.metrics != nil {
		s.metrics.count(l.Category)
	}
	s.pending = append(s.pending, types.InputLogEvent{
		Message:   aws.String(truncateMessage(l.Text, maxMessageBytes)),
		Timestamp: aws.Int64(s.now().UnixMilli()),
	})
	if over := len(s.pending) - maxPendingEvents; over > 0 {
		s.pending = s.pending[over:]
	}
	return nil
}

// Flush sends every buffered event, then the line counts when metrics are
// enabled. Events not accepted by the service stay buffered for the next
// Flush.
func (s *CloudWatchSink) Flush(ctx context.Context) error {
	if err := s.flushEvents(ctx); err != nil {
		return err
	}
	if s.metrics != nil {
		return s.metrics.publish(ctx, s.group, s.now())
	}
	return nil
}

func (s *CloudWatchSink) flushEvents(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.ensureStream(ctx); err != nil {
		return err
	}

	for len(s.pending) > 0 {
		n := batchLen(s.pending)
		_, err := s.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
			LogGroupName:  aws.String(s.group),
			LogStreamName: aws.String(s.stream),
			LogEvents:     s.pending[:n],
		})
		if err != nil {
			return fmt.Errorf("failed to put log events: %w", err)
		}
		s.pending = s.pending[n:]
	}
	s.pending = nil
	return nil
}

// Close sends what is left.
func (s *CloudWatchSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Flush(ctx)
}

func (s *CloudWatchSink) ensureStream(ctx context.Context) error {
	if s.created {
		return nil
	}
	_, err := s.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(s.group),
		LogStreamName: aws.String(s.stream),
	})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return fmt.Errorf("failed to create log stream %s: %w", s.stream, err)
	}
	s.created = true
	return nil
}

// truncateMessage cuts msg to at most n bytes without splitting a UTF-8
// sequence.
func truncateMessage(msg string, n int) string {
	if len(msg) <= n {
		return msg
	}
	for n > 0 && !utf8.RuneStart(msg[n]) {
		n--
	}
	return msg[:n]
}

// batchLen returns how many leading events fit in one PutLogEvents call.
func batchLen(events []types.InputLogEvent) int {
	size := 0
	for i, e := range events {
		eventSize := len(aws.ToString(e.Message)) + EventOverhead
		if i == MaxBatchEvents || size+eventSize > MaxBatchBytes {
			return i
		}
		size += eventSize
	}
	return len(events)
}

// loadAWSConfig loads the AWS configuration with optional profile and region.
func loadAWSConfig(profile, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}

// AccountID returns the AWS account the given profile resolves to, using
// STS GetCallerIdentity.
func AccountID(ctx context.Context, profile, region string) (string, error) {
	cfg, err := loadAWSConfig(profile, region)
	if err != nil {
		return "", err
	}

	result, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	if result.Account == nil {
		return "", fmt.Errorf("account ID not returned")
	}
	return *result.Account, nil
}
