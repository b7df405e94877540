package kafka

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	msg, err := encode(Event{Key: "search", Value: map[string]int{"hits": 3}})
	require.NoError(t, err)

	assert.Equal(t, []byte("search"), msg.Key)
	assert.JSONEq(t, `{"hits":3}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, contentTypeJSON, string(msg.Headers[0].Value))
	assert.False(t, msg.Time.IsZero())
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, err := encode(Event{Key: "bad", Value: make(chan int)})
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Query string `json:"query"`
	}
	got, err := DecodeJSON[payload]([]byte(`{"query":"excel"}`))
	require.NoError(t, err)
	assert.Equal(t, "excel", got.Query)

	_, err = DecodeJSON[payload]([]byte(`{`))
	assert.Error(t, err)
}

func TestReaderConfigDefaults(t *testing.T) {
	cfg := config.KafkaConfig{Brokers: []string{"localhost:9092"}, ConsumerGroup: "catalog"}
	rc := readerConfig(cfg, "catalog.invalidate")

	assert.Equal(t, "catalog", rc.GroupID)
	assert.Equal(t, "catalog.invalidate", rc.Topic)
	assert.Equal(t, FirstOffset, rc.StartOffset)
}

func TestReaderConfigOptions(t *testing.T) {
	cfg := config.KafkaConfig{Brokers: []string{"localhost:9092"}, ConsumerGroup: "catalog"}
	rc := readerConfig(cfg, "catalog.invalidate", WithGroupID("catalog-cache-a"), WithStartOffset(LastOffset))

	assert.Equal(t, "catalog-cache-a", rc.GroupID)
	assert.Equal(t, LastOffset, rc.StartOffset)
	assert.Equal(t, []string{"localhost:9092"}, rc.Brokers)
}
