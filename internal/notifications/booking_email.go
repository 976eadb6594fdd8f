package notifications

import (
	"bytes"
	"html/template"

	"salonbook/internal/booking"
	"salonbook/internal/directory"
)

const bookingConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Bonjour {{.Name}},</p>
  <p>Votre rendez-vous est confirme. Voici les details :</p>
  <ul>
    <li>Prestation : {{.ServiceName}}</li>
    <li>Date : {{.Date}}</li>
    <li>Heure : {{.Start}} - {{.End}}</li>
    <li>Duree : {{.DurationMinutes}} minutes</li>
    <li>Prix : {{.Price}}</li>
    <li>Numero de reservation : {{.AppointmentID}}</li>
  </ul>
  <p>En cas d'empechement, merci de nous prevenir la veille au plus tard.</p>
  <p>A bientot.</p>
</body>
</html>`

var bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(bookingConfirmationTemplate))

type bookingConfirmationData struct {
	Name            string
	ServiceName     string
	Date            string
	Start           string
	End             string
	DurationMinutes int
	Price           int
	AppointmentID   string
}

func buildBookingConfirmationHTML(appointment booking.Appointment, service directory.Service) (string, error) {
	data := bookingConfirmationData{
		Name:            appointment.ClientName,
		ServiceName:     service.Name,
		Date:            appointment.Date,
		Start:           appointment.Start,
		End:             appointment.End,
		DurationMinutes: service.Duration,
		Price:           appointment.Price,
		AppointmentID:   appointment.ID,
	}
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
