package sqsgath

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func New(runUuid string, queueUrl string, region string) *sqsResQueueGatherer {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		panic(fmt.Sprintf("unable to load SDK config, %v", err))
	}

	return &sqsResQueueGatherer{
		sqsClient: sqs.NewFromConfig(cfg),
		queueUrl:  queueUrl,
		runUuid:   runUuid,
	}
}
