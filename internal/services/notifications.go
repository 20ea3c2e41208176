package services

import (
	"fmt"
	"log"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/harentsoaR/booking-api/internal/config"
	"github.com/harentsoaR/booking-api/internal/models"
)

// NotificationService sends booking SMS through Twilio.
type NotificationService struct {
	client *twilio.RestClient
	from   string
	loc    *time.Location
}

// NewNotificationService returns nil when Twilio is not configured. A nil
// service drops every message.
func NewNotificationService(cfg config.Twilio, loc *time.Location) *NotificationService {
	if !cfg.Enabled() {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from: cfg.PhoneNumber,
		loc:  loc,
	}
}

func (s *NotificationService) SendBookingConfirmationSMS(customer *models.User, booking *models.BookingDetail) {
	s.send(customer, "Booking confirmed: %s on %s.", booking)
}

func (s *NotificationService) SendBookingCancellationSMS(customer *models.User, booking *models.BookingDetail) {
	s.send(customer, "Booking cancelled: %s on %s.", booking)
}

func (s *NotificationService) send(customer *models.User, format string, booking *models.BookingDetail) {
	if s == nil {
		return
	}
	if customer.Phone == "" {
		log.Println("SMS not sent: customer has no phone number.")
		return
	}
	title := "your appointment"
	if booking.Service != nil {
		title = booking.Service.Title
	}
	body := fmt.Sprintf(format, title, booking.StartTime.In(s.loc).Format("Jan 2 at 3:04 PM"))

	// Send in a goroutine so it doesn't block the API response
	go s.sendSMS(customer.Phone, body)
}

func (s *NotificationService) sendSMS(to, body string) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send SMS to %s: %v", to, err)
		return
	}
	if resp.Sid != nil {
		log.Printf("Successfully sent SMS to %s (sid %s)", to, *resp.Sid)
	}
}
