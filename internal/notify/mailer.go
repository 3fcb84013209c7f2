// Package notify e-mails planners a summary of each committed simulation.
package notify

import (
	"context"
	"fmt"
	"html/template"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

var commitTemplate = template.Must(template.New("commit").Parse(`<p>Simulation <b>{{.Event.SessionName}}</b> was committed by {{.Event.PlannerID}}.</p>
<p>Schedule version {{.Event.BaseVersion}} &rarr; {{.Event.NewVersion}} ({{.Event.CommittedAt.Format "2006-01-02 15:04 MST"}})</p>
<table>
<tr><th>#</th><th>Change</th></tr>
{{range $i, $c := .Changes}}<tr><td>{{$i}}</td><td>{{$c}}</td></tr>
{{end}}</table>
`))

type Mailer struct {
	client *mail.Client
	from   string
	to     []string
}

func NewMailer(client *mail.Client, from string, to []string) *Mailer {
	return &Mailer{client: client, from: from, to: to}
}

// Message builds the summary mail for one commit event.
func (m *Mailer) Message(event domain.CommitEvent) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.to...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(fmt.Sprintf("Dispatch schedule updated to version %d: %s", event.NewVersion, event.SessionName))

	changes := make([]string, len(event.Changes))
	for i, c := range event.Changes {
		changes[i] = c.String()
	}
	data := struct {
		Event   domain.CommitEvent
		Changes []string
	}{event, changes}
	if err := msg.SetBodyHTMLTemplate(commitTemplate, data); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	return msg, nil
}

func (m *Mailer) Send(ctx context.Context, event domain.CommitEvent) error {
	msg, err := m.Message(event)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send commit mail: %w", err)
	}
	return nil
}
