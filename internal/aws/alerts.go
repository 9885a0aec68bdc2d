package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// AlertPublisher pushes stock-batch alert counts to CloudWatch.
type AlertPublisher struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

func NewAlertPublisher(client CloudWatchAPI, namespace string) *AlertPublisher {
	return &AlertPublisher{CloudWatch: client, Namespace: namespace, nowFunc: time.Now}
}

// PublishBatch sends one datum for accepted records and one per alert kind, all dimensioned by source.
func (a *AlertPublisher) PublishBatch(ctx context.Context, source string, accepted int, alerts map[string]int) error {
	now := a.nowFunc()
	dims := []cwtypes.Dimension{{Name: sdkaws.String("Source"), Value: sdkaws.String(source)}}

	data := []cwtypes.MetricDatum{{
		MetricName: sdkaws.String("StockRecordsAccepted"),
		Dimensions: dims,
		Timestamp:  &now,
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(float64(accepted)),
	}}

	kinds := make([]string, 0, len(alerts))
	for k := range alerts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		data = append(data, cwtypes.MetricDatum{
			MetricName: sdkaws.String("StockAlert"),
			Dimensions: append([]cwtypes.Dimension{{Name: sdkaws.String("Alert"), Value: sdkaws.String(k)}}, dims...),
			Timestamp:  &now,
			Unit:       cwtypes.StandardUnitCount,
			Value:      sdkaws.Float64(float64(alerts[k])),
		})
	}

	_, err := a.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(a.Namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
