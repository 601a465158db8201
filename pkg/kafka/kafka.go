package kafka

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/opamenu/om-order/config"
	"github.com/opamenu/om-order/pkg/applogger"
)

func NewProducer() *kafka.Producer {
	c := config.Get()
	logger := applogger.GetLogrus()

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": c.Kafka.BrokerList,
		"acks":              "all",
	})
	if err != nil {
		logger.WithField("object", "kafka").Fatal(err)
	}

	return producer
}
