package sqsgath

import (
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/stressforge/stresser/api"
)

type sqsResQueueGatherer struct {
	sqsClient *sqs.Client
	queueUrl  string
	runUuid   string
}

func (s *sqsResQueueGatherer) StartRun(systemInfo string) {
	s.send(api.NewStartRun(s.runUuid, systemInfo))
}

func (s *sqsResQueueGatherer) StartStressor(name string, workers int) {
	s.send(api.NewStartStressor(s.runUuid, name, workers))
}

func (s *sqsResQueueGatherer) FinishStressor(name string, result *api.StressorResult) {
	s.send(api.NewFinishStressor(s.runUuid, name, result))
}

func (s *sqsResQueueGatherer) FinishRunWithInternalError(msg string) {
	trimmed := trimStrToRect(msg, api.MaxFieldHeight, api.MaxFieldWidth)
	s.send(api.NewFinishRun(s.runUuid, &trimmed, true))
}

func (s *sqsResQueueGatherer) FinishRunWithoutError() {
	s.send(api.NewFinishRun(s.runUuid, nil, false))
}
