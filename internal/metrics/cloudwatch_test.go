package metrics

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type fakeCloudWatch struct {
	mu         sync.Mutex
	puts       []*cloudwatch.PutMetricDataInput
	dashboards []*cloudwatch.PutDashboardInput
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	f.puts = append(f.puts, in)
	f.mu.Unlock()
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func (f *fakeCloudWatch) PutDashboard(_ context.Context, in *cloudwatch.PutDashboardInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutDashboardOutput, error) {
	f.mu.Lock()
	f.dashboards = append(f.dashboards, in)
	f.mu.Unlock()
	return &cloudwatch.PutDashboardOutput{}, nil
}

func (f *fakeCloudWatch) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

func useFakeCloudWatch(t *testing.T) *fakeCloudWatch {
	t.Helper()
	fake := &fakeCloudWatch{}
	prev := cwState.Load()
	cwState.Store(&cloudWatchState{
		client:        fake,
		namespace:     "OpenAlgoTest",
		dashboardName: "openalgo-test",
		region:        "eu-west-1",
	})
	resetMetricPublishTimes()
	t.Cleanup(func() {
		cwState.Store(prev)
		resetMetricPublishTimes()
	})
	return fake
}

func TestEmitMetricPublishesNumericValues(t *testing.T) {
	fake := useFakeCloudWatch(t)

	EmitMetric(nil, "stream_metrics", "stream_events", int64(5), "counter", map[string]interface{}{"kind": "ltp", "unit": "count"})

	if fake.putCount() != 1 {
		t.Fatalf("expected 1 publish, got %d", fake.putCount())
	}
	in := fake.puts[0]
	if aws.ToString(in.Namespace) != "OpenAlgoTest" {
		t.Fatalf("unexpected namespace: %s", aws.ToString(in.Namespace))
	}
	datum := in.MetricData[0]
	if aws.ToString(datum.MetricName) != "stream_events" || aws.ToFloat64(datum.Value) != 5 {
		t.Fatalf("unexpected datum: %+v", datum)
	}
	if datum.Unit != cwtypes.StandardUnitCount {
		t.Fatalf("unexpected unit: %s", datum.Unit)
	}

	dims := map[string]string{}
	for _, d := range datum.Dimensions {
		dims[aws.ToString(d.Name)] = aws.ToString(d.Value)
	}
	if dims["component"] != "stream_metrics" || dims["kind"] != "ltp" {
		t.Fatalf("unexpected dimensions: %v", dims)
	}
	if _, ok := dims["unit"]; ok {
		t.Fatal("unit must not be a dimension")
	}
}

func TestEmitMetricSkipsNonNumericValues(t *testing.T) {
	fake := useFakeCloudWatch(t)

	EmitMetric(nil, "stream_metrics", "stream_state", "connected", "gauge", nil)
	if fake.putCount() != 0 {
		t.Fatalf("expected no publish for string value, got %d", fake.putCount())
	}
}

func TestPublishIsThrottledPerSeries(t *testing.T) {
	fake := useFakeCloudWatch(t)

	now := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	prevNow := timeNow
	timeNow = func() time.Time { return now }
	defer func() { timeNow = prevNow }()

	EmitMetric(nil, "stream_metrics", "stream_events", 1, "counter", map[string]interface{}{"kind": "ltp"})
	EmitMetric(nil, "stream_metrics", "stream_events", 1, "counter", map[string]interface{}{"kind": "ltp"})
	EmitMetric(nil, "stream_metrics", "stream_events", 1, "counter", map[string]interface{}{"kind": "depth"})
	if fake.putCount() != 2 {
		t.Fatalf("expected 2 publishes within the interval, got %d", fake.putCount())
	}

	now = now.Add(cloudWatchPublishInterval)
	EmitMetric(nil, "stream_metrics", "stream_events", 1, "counter", map[string]interface{}{"kind": "ltp"})
	if fake.putCount() != 3 {
		t.Fatalf("expected publish after interval, got %d", fake.putCount())
	}
}

func TestPublishMetricsFuncOverride(t *testing.T) {
	useFakeCloudWatch(t)

	var captured []cwtypes.MetricDatum
	prev := publishMetricsFunc
	publishMetricsFunc = func(_ context.Context, _ *cloudWatchState, data []cwtypes.MetricDatum) {
		captured = append(captured, data...)
	}
	defer func() { publishMetricsFunc = prev }()

	EmitMetric(nil, "tick_writer", "recorder_objects_written", 2.5, "counter", map[string]interface{}{"unit": "bytes"})
	if len(captured) != 1 {
		t.Fatalf("expected 1 datum, got %d", len(captured))
	}
	if captured[0].Unit != cwtypes.StandardUnitBytes {
		t.Fatalf("unexpected unit: %s", captured[0].Unit)
	}
}

func TestEmitMetricWithoutClient(t *testing.T) {
	prev := cwState.Load()
	cwState.Store(&cloudWatchState{namespace: "OpenAlgo"})
	defer cwState.Store(prev)

	called := false
	prevPublish := publishMetricsFunc
	publishMetricsFunc = func(context.Context, *cloudWatchState, []cwtypes.MetricDatum) { called = true }
	defer func() { publishMetricsFunc = prevPublish }()

	EmitMetric(nil, "stream_metrics", "stream_events", 1, "counter", nil)
	if called {
		t.Fatal("expected no publish without a client")
	}
}

func TestCreateDashboardFromTemplate(t *testing.T) {
	fake := useFakeCloudWatch(t)

	if err := CreateDashboardFromTemplate(context.Background()); err != nil {
		t.Fatalf("create dashboard: %v", err)
	}
	if len(fake.dashboards) != 1 {
		t.Fatalf("expected 1 dashboard, got %d", len(fake.dashboards))
	}
	in := fake.dashboards[0]
	if aws.ToString(in.DashboardName) != "openalgo-test" {
		t.Fatalf("unexpected dashboard name: %s", aws.ToString(in.DashboardName))
	}
	body := aws.ToString(in.DashboardBody)
	if !json.Valid([]byte(body)) {
		t.Fatal("dashboard body is not valid JSON")
	}
	if !strings.Contains(body, `"OpenAlgoTest"`) || !strings.Contains(body, `"eu-west-1"`) {
		t.Fatalf("namespace and region were not substituted: %s", body)
	}
	if strings.Contains(body, `"ap-south-1"`) {
		t.Fatal("template region left in body")
	}
}

func TestMetricUnitFromString(t *testing.T) {
	tests := []struct {
		in    string
		want  cwtypes.StandardUnit
		found bool
	}{
		{"count", cwtypes.StandardUnitCount, true},
		{"Bytes", cwtypes.StandardUnitBytes, true},
		{"milliseconds", cwtypes.StandardUnitMilliseconds, true},
		{"furlongs", cwtypes.StandardUnitCount, false},
	}
	for _, tt := range tests {
		got, found := metricUnitFromString(tt.in)
		if got != tt.want || found != tt.found {
			t.Errorf("metricUnitFromString(%q) = %s, %v", tt.in, got, found)
		}
	}
}

func TestToFloat64(t *testing.T) {
	for _, v := range []interface{}{1, int32(1), int64(1), float32(1), 1.0} {
		if f, ok := toFloat64(v); !ok || f != 1 {
			t.Errorf("toFloat64(%T) = %v, %v", v, f, ok)
		}
	}
	if _, ok := toFloat64("1"); ok {
		t.Error("expected string to be rejected")
	}
}
