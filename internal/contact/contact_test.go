package contact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jon4hz/cinetro/internal/database"
	"github.com/jon4hz/cinetro/internal/database/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	enabled  bool
	alertErr error
	ackErr   error
	calls    []string
}

func (f *fakeNotifier) Enabled() bool { return f.enabled }

func (f *fakeNotifier) SendContactAlert(msg database.ContactMessage) error {
	f.calls = append(f.calls, "alert:"+msg.Name)
	return f.alertErr
}

func (f *fakeNotifier) SendContactAcknowledgement(msg database.ContactMessage) error {
	f.calls = append(f.calls, "ack:"+msg.Email)
	return f.ackErr
}

func TestSubmit_Success(t *testing.T) {
	db := mock.NewMockDB()
	notifier := &fakeNotifier{enabled: true}

	msg, err := New(db, notifier).Submit(context.Background(), Submission{
		Name:    "Ada",
		Email:   "ada@x.com",
		Message: "Hi",
	})
	require.NoError(t, err)

	stored := db.ContactMessages()
	require.Len(t, stored, 1)
	assert.Equal(t, "Ada", stored[0].Name)
	assert.Equal(t, "ada@x.com", stored[0].Email)
	assert.Equal(t, "Hi", stored[0].Message)
	assert.False(t, stored[0].CreatedAt.IsZero())
	assert.Equal(t, stored[0].ID, msg.ID)

	assert.Equal(t, []string{"alert:Ada", "ack:ada@x.com"}, notifier.calls)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		sub    Submission
		fields map[string][]string
	}{
		{
			name:   "invalid email",
			sub:    Submission{Name: "Ada", Email: "not-an-email", Message: "Hi"},
			fields: map[string][]string{"email": {"Enter a valid email address."}},
		},
		{
			name: "all blank",
			sub:  Submission{Name: " ", Message: "\n"},
			fields: map[string][]string{
				"name":    {"This field may not be blank."},
				"email":   {"This field may not be blank."},
				"message": {"This field may not be blank."},
			},
		},
		{
			name:   "name too long",
			sub:    Submission{Name: strings.Repeat("a", 101), Email: "ada@x.com", Message: "Hi"},
			fields: map[string][]string{"name": {"Ensure this field has no more than 100 characters."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := mock.NewMockDB()
			notifier := &fakeNotifier{enabled: true}

			_, err := New(db, notifier).Submit(context.Background(), tt.sub)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields)
			assert.Empty(t, db.ContactMessages())
			assert.Empty(t, notifier.calls)
		})
	}
}

func TestSubmit_AlertFailureKeepsMessage(t *testing.T) {
	db := mock.NewMockDB()
	notifier := &fakeNotifier{enabled: true, alertErr: errors.New("SMTP AUTH failed")}

	_, err := New(db, notifier).Submit(context.Background(), Submission{Name: "Ada", Email: "ada@x.com", Message: "Hi"})

	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "SMTP AUTH failed", err.Error())
	assert.Len(t, db.ContactMessages(), 1)
	assert.Equal(t, []string{"alert:Ada"}, notifier.calls, "acknowledgement is not attempted")
}

func TestSubmit_AcknowledgementFailure(t *testing.T) {
	db := mock.NewMockDB()
	notifier := &fakeNotifier{enabled: true, ackErr: errors.New("mailbox unavailable")}

	_, err := New(db, notifier).Submit(context.Background(), Submission{Name: "Ada", Email: "ada@x.com", Message: "Hi"})

	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Len(t, db.ContactMessages(), 1)
	assert.Len(t, notifier.calls, 2)
}

func TestSubmit_EmailDisabled(t *testing.T) {
	db := mock.NewMockDB()
	notifier := &fakeNotifier{enabled: false}

	_, err := New(db, notifier).Submit(context.Background(), Submission{Name: "Ada", Email: "ada@x.com", Message: "Hi"})
	require.NoError(t, err)
	assert.Len(t, db.ContactMessages(), 1)
	assert.Empty(t, notifier.calls)
}

func TestSubmit_StoreFailure(t *testing.T) {
	db := mock.NewMockDB()
	boom := errors.New("disk full")
	db.CreateContactMessageError = boom
	notifier := &fakeNotifier{enabled: true}

	_, err := New(db, notifier).Submit(context.Background(), Submission{Name: "Ada", Email: "ada@x.com", Message: "Hi"})
	require.ErrorIs(t, err, boom)

	var derr *DeliveryError
	assert.False(t, errors.As(err, &derr))
	assert.Empty(t, notifier.calls)
}
