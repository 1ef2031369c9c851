package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"

	"quickpark/internal/db"
	"quickpark/internal/entities"
)

//go:embed templates/reservation_email.html
var templateFS embed.FS

var reservationEmailTmpl = template.Must(template.ParseFS(templateFS, "templates/reservation_email.html"))

// NotifyService sends reservation emails and SMS to the renter. Failures are
// logged and never reach the caller.
type NotifyService struct {
	Users    UserStore
	Garages  GarageStore
	Email    EmailSender
	SMS      SMSSender
	Location *time.Location
	log      *logrus.Logger
}

func NewNotifyService(users UserStore, garages GarageStore, email EmailSender, sms SMSSender, log *logrus.Logger) *NotifyService {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		loc = time.FixedZone("CET", 1*60*60)
	}
	return &NotifyService{Users: users, Garages: garages, Email: email, SMS: sms, Location: loc, log: log}
}

func (s *NotifyService) ReservationConfirmed(ctx context.Context, res db.Reservation) {
	s.send(ctx, res, "confirmada")
}

func (s *NotifyService) ReservationCancelled(ctx context.Context, res db.Reservation) {
	s.send(ctx, res, "cancelada")
}

func (s *NotifyService) send(ctx context.Context, res db.Reservation, status string) {
	logger := s.log.WithFields(logrus.Fields{"reservation_id": res.ID, "status": status})

	user, err := s.Users.GetByID(ctx, res.RenterID)
	if err != nil {
		logger.WithError(err).Warn("notification skipped, renter not loaded")
		return
	}
	address := ""
	if g, err := s.Garages.GetByID(ctx, res.GarageID); err == nil {
		address = g.Address
	} else {
		logger.WithError(err).Warn("garage not loaded for notification")
	}
	data := s.emailData(user, res, address, status)

	if s.Email != nil && user.Email != "" {
		subject, plain, html, err := renderReservationEmail(data)
		if err != nil {
			logger.WithError(err).Error("could not render reservation email")
		} else if err := s.Email.SendEmail(ctx, user.Email, user.Name, subject, plain, html); err != nil {
			logger.WithError(err).Warn("reservation email not sent")
		}
	}
	if s.SMS != nil && user.Phone != "" {
		if err := s.SMS.SendSMS(ctx, user.Phone, reservationSMS(data)); err != nil {
			logger.WithError(err).Warn("reservation sms not sent")
		}
	}
}

func (s *NotifyService) emailData(user *db.User, res db.Reservation, address, status string) entities.ReservationEmailData {
	return entities.ReservationEmailData{
		UserName:           user.Name,
		ReservationID:      res.ID,
		GarageAddress:      address,
		StartTimeFormatted: res.StartTime.In(s.Location).Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   res.EndTime.In(s.Location).Format("02 Jan 2006 15:04 MST"),
		TotalFormatted:     res.TotalPrice.String(),
		Status:             status,
		CurrentYear:        time.Now().In(s.Location).Year(),
	}
}

func renderReservationEmail(d entities.ReservationEmailData) (subject, plain, html string, err error) {
	subject = fmt.Sprintf("Tu reserva en QuickPark está %s - #%d", d.Status, d.ReservationID)
	plain = fmt.Sprintf(
		"Hola %s,\n\nTu reserva #%d está %s.\n\n"+
			"Garaje: %s\n"+
			"Entrada: %s\n"+
			"Salida: %s\n"+
			"Total: %s €\n\n"+
			"Gracias por usar QuickPark.",
		d.UserName, d.ReservationID, d.Status, d.GarageAddress, d.StartTimeFormatted, d.EndTimeFormatted, d.TotalFormatted,
	)
	var buf bytes.Buffer
	if err := reservationEmailTmpl.Execute(&buf, d); err != nil {
		return "", "", "", err
	}
	return subject, plain, buf.String(), nil
}

func reservationSMS(d entities.ReservationEmailData) string {
	return fmt.Sprintf("QuickPark: tu reserva #%d está %s.\nEntrada: %s.\nMás detalles en tu correo.",
		d.ReservationID, d.Status, d.StartTimeFormatted)
}
