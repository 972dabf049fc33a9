package natsgath

import (
	"encoding/json"
	"log"
)

// send marshals msg and publishes it on the inbox subject. Delivery
// problems are logged and dropped so reporting never stalls the run.
func (s *natsGatherer) send(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal progress message: %v", err)
		return
	}
	if err := s.nc.Publish(s.inbox, b); err != nil {
		log.Printf("publish progress message to NATS: %v", err)
	}
}
