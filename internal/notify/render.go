package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
)

// Message is a rendered event, ready for a transport.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

type layout struct {
	subject string
	text    *texttemplate.Template
	html    *template.Template
}

func newLayout(subject, text, html string) layout {
	return layout{
		subject: subject,
		text:    texttemplate.Must(texttemplate.New("text").Parse(text)),
		html:    template.Must(template.New("html").Parse(html)),
	}
}

var layouts = map[Kind]layout{
	KindWelcome: newLayout("Welcome to Courtside!",
		"Welcome {{.Name}}!\n\nYou are now subscribed to tournament notifications.",
		`<h2>Welcome, {{.Name}}!</h2><p>You are now subscribed to tournament notifications.</p>`),

	KindInvitation: newLayout("Invitation: %s",
		"New tournament: {{.Tournament}}\n\nLog in to join!",
		`<h3>New tournament: {{.Tournament}}</h3><p>Log in to join!</p>`),

	KindRegistration: newLayout("Registration Confirmation: %s",
		"Registration update: {{.Tournament}}\n\nStatus: {{.StatusUpper}}\n"+
			`{{if eq .Status "waitlist"}}You are on the waitlist.{{else}}You are a confirmed participant.{{end}}`,
		`<h3>Registration Confirmed</h3><p>Dear {{.Name}},</p>`+
			`<p>This confirms your registration for <b>{{.Tournament}}</b>.</p>`+
			`<p><b>Status:</b> {{if eq .Status "waitlist"}}You are on the WAITLIST.{{else}}You are registered as a PARTICIPANT.{{end}}</p>`),

	KindWithdrawal: newLayout("Withdrawal Confirmation: %s",
		"Withdrawal confirmed: {{.Tournament}}\n\nYou have been removed from the list.",
		`<h3>Withdrawal Confirmed</h3><p>You have been removed from <b>{{.Tournament}}</b>.</p>`),

	KindStatusUpdate: newLayout("Tournament Update: %s",
		`{{if eq .Status "started"}}Tournament STARTED: {{.Tournament}}`+"\n"+`Check your matches!`+
			`{{else if eq .Status "reset"}}Tournament RESET: {{.Tournament}}`+
			`{{else}}Update: {{.Tournament}} is now {{.Status}}.{{end}}`,
		`<h3>{{.Tournament}}</h3><p>The tournament is now <b>{{.Status}}</b>.</p>`),

	KindResults: newLayout("Results: %s",
		"Tournament finished: {{.Tournament}}\n\nResults:\n{{.Results}}",
		`<h3>{{.Tournament}} has finished</h3><pre>{{.Results}}</pre>`),

	KindDeleted: newLayout("Tournament Cancelled: %s",
		"Tournament cancelled: {{.Tournament}}",
		`<h3>{{.Tournament}} has been cancelled</h3>`),
}

// Render builds the subject and bodies for an event.
func Render(e Event) (Message, error) {
	l, ok := layouts[e.Kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", e.Kind)
	}

	data := struct {
		Name        string
		Tournament  string
		Status      string
		StatusUpper string
		Results     string
	}{
		Tournament:  e.Tournament,
		Status:      e.Status,
		StatusUpper: strings.ToUpper(e.Status),
		Results:     e.Results,
	}
	if e.Recipient != nil {
		data.Name = e.Recipient.FullName
	}

	var text, html bytes.Buffer
	if err := l.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", e.Kind, err)
	}
	if err := l.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", e.Kind, err)
	}

	subject := l.subject
	if strings.Contains(subject, "%s") {
		subject = fmt.Sprintf(subject, e.Tournament)
	}
	return Message{Subject: subject, Text: text.String(), HTML: html.String()}, nil
}
