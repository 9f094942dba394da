package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the backend.
const (
	MetricOrdersCreated    = "OrdersCreated"
	MetricOrderValue       = "OrderValue"
	MetricPaymentsRecorded = "PaymentsRecorded"
	MetricPaymentAmount    = "PaymentAmount"
	MetricRejectedPayloads = "RejectedPayloads"
	MetricCustomersCreated = "CustomersCreated"
)

// Metrics publishes counters to CloudWatch. A Metrics with an empty
// namespace or nil client is a no-op.
type Metrics struct {
	CW        CloudWatchAPI
	Namespace string
	nowFunc   func() time.Time
}

// NewMetrics returns a Metrics bound to a namespace.
func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{CW: cw, Namespace: namespace, nowFunc: time.Now}
}

// Count records value for name with optional dimension pairs ("Route", "/orders").
func (m *Metrics) Count(ctx context.Context, name string, value float64, dims ...string) error {
	if m == nil || m.CW == nil || m.Namespace == "" {
		return nil
	}
	if len(dims)%2 != 0 {
		return fmt.Errorf("metric %s: odd number of dimension values", name)
	}
	var dimensions []cwtypes.Dimension
	for i := 0; i < len(dims); i += 2 {
		dimensions = append(dimensions, cwtypes.Dimension{
			Name:  awsString(dims[i]),
			Value: awsString(dims[i+1]),
		})
	}
	ts := m.nowFunc()
	_, err := m.CW.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString(name),
				Value:      &value,
				Unit:       cwtypes.StandardUnitCount,
				Timestamp:  &ts,
				Dimensions: dimensions,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}
