package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/metrics"
	"github.com/Jogatev/chebeneleven-sub000/internal/model"
)

// Template names, also used as metric labels.
const (
	TemplateApplicationReceived = "application_received"
	TemplateStatusChanged       = "status_changed"
)

const layout = `<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; color: #2d3748; }
        .box { margin: 20px 0; padding: 15px; border: 1px solid #ddd; border-radius: 5px; }
        .ref { font-family: monospace; font-size: 16px; font-weight: bold; }
        .status { color: #2c5282; font-weight: bold; }
    </style>
</head>
<body>
{{template "content" .}}
</body>
</html>`

const applicationReceivedBody = `{{define "content"}}
    <h1>Thank you for applying, {{.FirstName}}!</h1>
    <p>We received your application for <strong>{{.JobTitle}}</strong>{{if .JobLocation}} in {{.JobLocation}}{{end}}.</p>
    <div class="box">
        <p>Your reference number:</p>
        <p class="ref">{{.ReferenceID}}</p>
        <p>Keep it to check the status of your application at any time.</p>
    </div>
    <p>Submitted on {{.Date.Format "Jan 02, 2006"}}.</p>
{{end}}`

const statusChangedBody = `{{define "content"}}
    <h1>Hello {{.FirstName}},</h1>
    <p>The status of your application for <strong>{{.JobTitle}}</strong> has changed.</p>
    <div class="box">
        <p>New status: <span class="status">{{.Status}}</span></p>
        <p>Reference: <span class="ref">{{.ReferenceID}}</span></p>
    </div>
    {{if eq .RawStatus "interview"}}<p>The hiring team will contact you shortly to schedule an interview.</p>{{end}}
    {{if eq .RawStatus "accepted"}}<p>Congratulations! The hiring team will be in touch with next steps.</p>{{end}}
{{end}}`

var templates = map[string]*template.Template{
	TemplateApplicationReceived: template.Must(template.Must(template.New("layout").Parse(layout)).Parse(applicationReceivedBody)),
	TemplateStatusChanged:       template.Must(template.Must(template.New("layout").Parse(layout)).Parse(statusChangedBody)),
}

type emailData struct {
	FirstName   string
	JobTitle    string
	JobLocation string
	ReferenceID string
	Status      string
	RawStatus   string
	Date        time.Time
}

// Notifier renders applicant emails and hands them to a Sender.
// Every method reports success and never returns an error: email is best effort.
type Notifier struct {
	Sender Sender
	Log    *zap.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(sender Sender, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{Sender: sender, Log: log}
}

// ApplicationReceived confirms a new application to the applicant.
func (n *Notifier) ApplicationReceived(ctx context.Context, app model.Application, job model.JobListing) bool {
	data := emailData{
		FirstName:   app.FirstName,
		JobTitle:    job.Title,
		JobLocation: job.Location,
		ReferenceID: app.ReferenceID,
		Date:        app.CreatedAt,
	}
	subject := fmt.Sprintf("Application received: %s (%s)", job.Title, app.ReferenceID)
	return n.send(ctx, TemplateApplicationReceived, app.Email, subject, data)
}

// StatusChanged tells the applicant about a status update.
func (n *Notifier) StatusChanged(ctx context.Context, app model.Application, job model.JobListing) bool {
	data := emailData{
		FirstName:   app.FirstName,
		JobTitle:    job.Title,
		JobLocation: job.Location,
		ReferenceID: app.ReferenceID,
		Status:      StatusLabel(app.Status),
		RawStatus:   app.Status,
		Date:        app.UpdatedAt,
	}
	subject := fmt.Sprintf("Application update: %s", job.Title)
	return n.send(ctx, TemplateStatusChanged, app.Email, subject, data)
}

func (n *Notifier) send(ctx context.Context, name, to, subject string, data emailData) bool {
	if n == nil || n.Sender == nil || to == "" {
		metrics.EmailsTotal.WithLabelValues(name, metrics.EmailSkipped).Inc()
		return false
	}

	var body bytes.Buffer
	if err := templates[name].Execute(&body, data); err != nil {
		metrics.EmailsTotal.WithLabelValues(name, metrics.EmailFailed).Inc()
		n.Log.Error("failed to render email", zap.String("template", name), zap.Error(err))
		return false
	}

	if err := n.Sender.Send(ctx, Message{To: to, Subject: subject, HTML: body.String()}); err != nil {
		metrics.EmailsTotal.WithLabelValues(name, metrics.EmailFailed).Inc()
		n.Log.Warn("failed to send email", zap.String("template", name), zap.String("to", to), zap.Error(err))
		return false
	}

	metrics.EmailsTotal.WithLabelValues(name, metrics.EmailSent).Inc()
	return true
}

// StatusLabel turns a stored status such as "under_review" into "Under Review".
func StatusLabel(status string) string {
	words := strings.Split(status, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
