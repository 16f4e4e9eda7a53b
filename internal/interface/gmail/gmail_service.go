package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailService mails vehicle-change notifications to the administrators
type GmailService struct {
	gmailService *gmail.Service
	from         string
	to           []string
	timeout      time.Duration
	logger       logger.Logger
}

// NewGmailService creates a new Gmail notifier
func NewGmailService(ctx context.Context, tokenSource oauth2.TokenSource, from string, to []string, logger logger.Logger) (*GmailService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailService{
		gmailService: service,
		from:         from,
		to:           to,
		timeout:      10 * time.Second,
		logger:       logger,
	}, nil
}

// NotifyVehicleChange sends one message; failures are returned, never retried
func (s *GmailService) NotifyVehicleChange(ctx context.Context, n *entity.VehicleChangeNotification) error {
	if len(s.to) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw := encodeMessage(s.from, s.to, vehicleChangeSubject(n), vehicleChangeBody(n))
	sent, err := s.gmailService.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send vehicle change mail: %w", err)
	}

	s.logger.Info("Vehicle change mail sent",
		"messageID", sent.Id,
		"shiftID", n.ShiftID,
		"driverID", n.DriverID)
	return nil
}

func vehicleChangeSubject(n *entity.VehicleChangeNotification) string {
	return fmt.Sprintf("[TXApp] Changement de véhicule - chauffeur %d", n.DriverID)
}

func vehicleChangeBody(n *entity.VehicleChangeNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feuille de route: %d\r\n", n.ShiftID)
	fmt.Fprintf(&b, "Chauffeur: %d\r\n", n.DriverID)
	fmt.Fprintf(&b, "Ancien véhicule: %d\r\n", n.OldVehicleID)
	fmt.Fprintf(&b, "Nouveau véhicule: %d\r\n", n.NewVehicleID)
	fmt.Fprintf(&b, "Modifié par: %d\r\n", n.ChangedBy)
	fmt.Fprintf(&b, "Date: %s\r\n", n.Timestamp.Format(time.RFC3339))
	return b.String()
}

// encodeMessage builds an RFC 822 message in the base64url form the API expects
func encodeMessage(from string, to []string, subject, body string) string {
	var msg strings.Builder
	if from != "" {
		msg.WriteString("From: " + from + "\r\n")
	}
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: =?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(subject)) + "?=\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(msg.String()))
}

// NopNotifier drops notifications; used when Gmail is not configured
type NopNotifier struct{}

// NotifyVehicleChange implements repository.VehicleChangeNotifier
func (NopNotifier) NotifyVehicleChange(ctx context.Context, n *entity.VehicleChangeNotification) error {
	return nil
}

var (
	_ repository.VehicleChangeNotifier = (*GmailService)(nil)
	_ repository.VehicleChangeNotifier = NopNotifier{}
)
