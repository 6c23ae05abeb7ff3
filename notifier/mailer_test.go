package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type mockDialer struct {
	mock.Mock
}

func (d *mockDialer) DialAndSend(m ...*gomail.Message) error {
	args := d.Called(m)
	return args.Error(0)
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	dialer := new(mockDialer)
	dialer.On("DialAndSend", mock.MatchedBy(func(msgs []*gomail.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		m := msgs[0]
		return m.GetHeader("To")[0] == "jane@example.com" &&
			m.GetHeader("From")[0] == "stock@example.com" &&
			m.GetHeader("Subject")[0] == "Approved"
	})).Return(nil).Once()

	mailer := NewSMTPMailerWithDialer("stock@example.com", dialer, zap.NewNop())
	err := mailer.Send(context.Background(), "jane@example.com", "Approved", "welcome")

	require.NoError(t, err)
	dialer.AssertExpectations(t)
}

func TestSMTPMailerWrapsTransportError(t *testing.T) {
	dialer := new(mockDialer)
	boom := errors.New("connection refused")
	dialer.On("DialAndSend", mock.Anything).Return(boom)

	mailer := NewSMTPMailerWithDialer("stock@example.com", dialer, zap.NewNop())
	err := mailer.Send(context.Background(), "jane@example.com", "Rejected", "sorry")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	dialer := new(mockDialer)
	mailer := NewSMTPMailerWithDialer("stock@example.com", dialer, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mailer.Send(ctx, "jane@example.com", "Approved", "welcome")
	assert.ErrorIs(t, err, context.Canceled)
	dialer.AssertNotCalled(t, "DialAndSend", mock.Anything)
}

func TestLogMailerNeverFails(t *testing.T) {
	assert.NoError(t, NewLogMailer(zap.NewNop()).Send(context.Background(), "a@b.c", "s", "b"))
}
