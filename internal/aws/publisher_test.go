package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/imrishuroy/go-tailor-orderflow/internal/events"
)

type mockSQS struct {
	in  *sqs.SendMessageInput
	err error
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.in = params
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{}, nil
}

type mockCloudWatch struct {
	in *cloudwatch.PutMetricDataInput
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.in = params
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestPublish_BodyAndAttributes(t *testing.T) {
	q := &mockSQS{}
	p := NewPublisher(q, "https://sqs.local/events")
	ev := events.New(events.TypeOrderCreated, "o-1", "c-1", 500)

	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if *q.in.QueueUrl != "https://sqs.local/events" {
		t.Fatalf("queue url = %s", *q.in.QueueUrl)
	}
	var got events.Event
	if err := json.Unmarshal([]byte(*q.in.MessageBody), &got); err != nil {
		t.Fatal(err)
	}
	if got.EventID != ev.EventID || got.Amount != 500 {
		t.Fatalf("body = %+v", got)
	}
	if a := q.in.MessageAttributes["event_type"]; *a.StringValue != events.TypeOrderCreated {
		t.Fatalf("event_type attribute = %s", *a.StringValue)
	}
	if _, ok := q.in.MessageAttributes["correlation_id"]; ok {
		t.Fatalf("empty correlation id should not become an attribute")
	}
}

func TestPublish_SendError(t *testing.T) {
	q := &mockSQS{err: errors.New("throttled")}
	p := NewPublisher(q, "q")
	if err := p.Publish(context.Background(), events.New(events.TypePaymentRecorded, "o", "c", 1)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMetricsCount(t *testing.T) {
	cw := &mockCloudWatch{}
	m := NewMetrics(cw, "Tailor")
	m.nowFunc = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }

	if err := m.Count(context.Background(), MetricOrdersCreated, 1, "Route", "/orders"); err != nil {
		t.Fatalf("count: %v", err)
	}
	d := cw.in.MetricData[0]
	if *d.MetricName != MetricOrdersCreated || *d.Value != 1 || len(d.Dimensions) != 1 {
		t.Fatalf("datum = %+v", d)
	}
	if err := m.Count(context.Background(), MetricOrdersCreated, 1, "Route"); err == nil {
		t.Fatalf("odd dimensions should fail")
	}
}

func TestMetricsCount_NoNamespaceIsNoop(t *testing.T) {
	cw := &mockCloudWatch{}
	if err := NewMetrics(cw, "").Count(context.Background(), MetricOrdersCreated, 1); err != nil {
		t.Fatal(err)
	}
	if cw.in != nil {
		t.Fatalf("no call expected")
	}
}
