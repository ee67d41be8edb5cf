package mirror

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/isaaclog/isaaclog/internal/classify"
)

// MetricName is the CloudWatch metric line counts are published under.
const MetricName = "Lines"

// metricsAPI is the part of the CloudWatch client the sink uses.
type metricsAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// lineMetrics counts mirrored lines per category between publishes.
type lineMetrics struct {
	client    metricsAPI
	namespace string
	counts    map[classify.Category]int
}

func newLineMetrics(client metricsAPI, namespace string) *lineMetrics {
	return &lineMetrics{
		client:    client,
		namespace: namespace,
		counts:    make(map[classify.Category]int),
	}
}

func (m *lineMetrics) count(c classify.Category) {
	m.counts[c]++
}

// publish sends one datum per counted category. Counts survive a failed
// call and are added to the next one.
func (m *lineMetrics) publish(ctx context.Context, group string, at time.Time) error {
	if len(m.counts) == 0 {
		return nil
	}

	cats := make([]classify.Category, 0, len(m.counts))
	for c := range m.counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	data := make([]cwtypes.MetricDatum, 0, len(cats))
	for _, c := range cats {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(MetricName),
			Dimensions: []cwtypes.Dimension{
				{Name: aws.String("LogGroup"), Value: aws.String(group)},
				{Name: aws.String("Category"), Value: aws.String(c.String())},
			},
			Timestamp: aws.Time(at),
			Unit:      cwtypes.StandardUnitCount,
			Value:     aws.Float64(float64(m.counts[c])),
		})
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("failed to put metric data: %w", err)
	}
	m.counts = make(map[classify.Category]int)
	return nil
}
