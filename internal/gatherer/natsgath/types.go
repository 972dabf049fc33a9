package natsgath

import (
	"github.com/nats-io/nats.go"

	"github.com/stressforge/stresser/api"
)

type natsGatherer struct {
	nc      *nats.Conn
	inbox   string
	runUuid string
}

func (s *natsGatherer) StartRun(systemInfo string) {
	s.send(api.NewStartRun(s.runUuid, systemInfo))
}

func (s *natsGatherer) StartStressor(name string, workers int) {
	s.send(api.NewStartStressor(s.runUuid, name, workers))
}

func (s *natsGatherer) FinishStressor(name string, result *api.StressorResult) {
	s.send(api.NewFinishStressor(s.runUuid, name, result))
}

func (s *natsGatherer) FinishRunWithInternalError(msg string) {
	trimmed := trimStrToRect(msg, api.MaxFieldHeight, api.MaxFieldWidth)
	s.send(api.NewFinishRun(s.runUuid, &trimmed, true))
}

func (s *natsGatherer) FinishRunWithoutError() {
	s.send(api.NewFinishRun(s.runUuid, nil, false))
}
