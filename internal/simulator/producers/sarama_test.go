package producers

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSaramaProducerWriteMessage(t *testing.T) {
	mock := mocks.NewSyncProducer(t, sarama.NewConfig())
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"location":"Central Square"}` {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewSaramaProducerFrom(mock, zap.NewNop())
	assert.NoError(t, p.WriteMessage("traffic_samples", []byte(`{"location":"Central Square"}`)))
	assert.NoError(t, p.Close())
}

func TestSaramaProducerWriteMessageFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, sarama.NewConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewSaramaProducerFrom(mock, zap.NewNop())
	assert.ErrorIs(t, p.WriteMessage("traffic_samples", []byte("{}")), sarama.ErrOutOfBrokers)
	assert.NoError(t, p.Close())
}

func TestSaramaProducerNotInitialized(t *testing.T) {
	p := &SaramaProducer{logger: zap.NewNop()}
	assert.Error(t, p.WriteMessage("traffic_samples", []byte("{}")))
	assert.NoError(t, p.Close())
}
