package services

import (
	"testing"

	"github.com/harentsoaR/booking-api/internal/config"
	"github.com/harentsoaR/booking-api/internal/models"
)

func TestNotificationServiceDisabledWithoutTwilio(t *testing.T) {
	t.Parallel()
	if svc := NewNotificationService(config.Twilio{AccountSID: "AC123"}, nil); svc != nil {
		t.Fatalf("service = %+v, want nil when credentials are incomplete", svc)
	}

	var svc *NotificationService
	svc.SendBookingConfirmationSMS(&models.User{Phone: "+15550000000"}, &models.BookingDetail{})
}

func TestNotificationServiceSkipsUsersWithoutPhone(t *testing.T) {
	t.Parallel()
	svc := NewNotificationService(config.Twilio{AccountSID: "AC123", AuthToken: "token", PhoneNumber: "+15550000001"}, nil)
	if svc == nil {
		t.Fatalf("service = nil, want configured")
	}
	if svc.loc == nil {
		t.Fatalf("loc = nil, want UTC default")
	}
	// No phone: returns before any request is made.
	svc.SendBookingCancellationSMS(&models.User{}, &models.BookingDetail{})
}
