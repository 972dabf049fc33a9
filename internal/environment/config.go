package environment

import (
	"os"

	"github.com/joho/godotenv"
)

// EnvConfig selects the progress gatherer and its transport endpoints.
type EnvConfig struct {
	// Gatherer is "term", "nats" or "sqs". Default "term".
	Gatherer string

	NatsUrl     string
	NatsSubject string

	SqsQueueUrl string
	AwsRegion   string

	LogLevel string
}

// ReadEnvConfig loads configuration from the environment, with an
// optional .env file. A missing .env file is fine: pure-env operation
// is the common case on stress hosts.
func ReadEnvConfig() *EnvConfig {
	_ = godotenv.Load()

	return &EnvConfig{
		Gatherer:    getenv("STRESSER_GATHERER", "term"),
		NatsUrl:     getenv("NATS_URL", "nats://localhost:4222"),
		NatsSubject: getenv("NATS_SUBJECT", "stresser.runs"),
		SqsQueueUrl: os.Getenv("SQS_QUEUE_URL"),
		AwsRegion:   getenv("AWS_REGION", "eu-central-1"),
		LogLevel:    getenv("STRESSER_LOG_LEVEL", "info"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
