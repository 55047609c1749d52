package exchange

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNone, Classify(nil))
	assert.Equal(t, KindSigning, Classify(fmt.Errorf("sign order: %w", ErrSigning)))
	assert.Equal(t, KindStatus, Classify(fmt.Errorf("submit: %w", &StatusError{StatusCode: 503, Status: "503 Service Unavailable"})))
	assert.Equal(t, KindTimeout, Classify(fmt.Errorf("submit: %w", context.DeadlineExceeded)))
	assert.Equal(t, KindTimeout, Classify(timeoutErr{}))
	assert.Equal(t, KindNetwork, Classify(errors.New("connection reset by peer")))
}

func TestOrderAckCanceled(t *testing.T) {
	assert.True(t, OrderAck{Status: "canceled"}.Canceled())
	assert.True(t, OrderAck{Status: "Cancelled"}.Canceled())
	assert.False(t, OrderAck{Status: "executed"}.Canceled())
	assert.False(t, OrderAck{Status: "resting"}.Canceled())
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{StatusCode: 400, Status: "400 Bad Request", Body: ` {"error":"bad"} `}
	assert.Equal(t, `venue returned 400 Bad Request: {"error":"bad"}`, err.Error())
	assert.Equal(t, OrderMarket, ParseOrderType("MARKET"))
	assert.Equal(t, OrderLimit, ParseOrderType(""))
}
