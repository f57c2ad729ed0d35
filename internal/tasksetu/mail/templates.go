package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
)

// Message is a rendered email ready for a transport.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type layout struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func newLayout(name, subject, text, html string) layout {
	return layout{
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + ".txt").Funcs(funcs).Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Funcs(funcs).Parse(html)),
	}
}

var funcs = map[string]any{
	"date": func(t time.Time) string { return t.UTC().Format("2 Jan 2006 15:04 MST") },
	"role": func(r domain.Role) string {
		if r == domain.RoleOrgAdmin {
			return "an administrator"
		}
		return "a member"
	},
}

var (
	inviteLayout = newLayout("invite",
		`You're invited to join {{.OrganizationName}} on TaskSetu`,
		`Hello,

{{if .InviterName}}{{.InviterName}} has invited you{{else}}You have been invited{{end}} to join {{.OrganizationName}} on TaskSetu as {{role .Role}}.

Accept the invitation and choose a password here:
{{.AcceptURL}}

This link expires on {{date .ExpiresAt}}. If you were not expecting this email you can ignore it.
`,
		`<p>Hello,</p>
<p>{{if .InviterName}}{{.InviterName}} has invited you{{else}}You have been invited{{end}} to join <strong>{{.OrganizationName}}</strong> on TaskSetu as {{role .Role}}.</p>
<p><a href="{{.AcceptURL}}">Accept the invitation</a></p>
<p>This link expires on {{date .ExpiresAt}}. If you were not expecting this email you can ignore it.</p>
`)

	resetLayout = newLayout("reset",
		`Reset your TaskSetu password`,
		`Hello{{if .Name}} {{.Name}}{{end}},

Someone asked to reset the password for your TaskSetu account. Use this link to choose a new one:
{{.ResetURL}}

The link expires on {{date .ExpiresAt}}. If you did not ask for a reset, no action is needed.
`,
		`<p>Hello{{if .Name}} {{.Name}}{{end}},</p>
<p>Someone asked to reset the password for your TaskSetu account.</p>
<p><a href="{{.ResetURL}}">Choose a new password</a></p>
<p>The link expires on {{date .ExpiresAt}}. If you did not ask for a reset, no action is needed.</p>
`)

	verifyLayout = newLayout("verify",
		`Verify your email address`,
		`Hello{{if .Name}} {{.Name}}{{end}},

Please confirm your email address for TaskSetu:
{{.VerifyURL}}

The link expires on {{date .ExpiresAt}}.
`,
		`<p>Hello{{if .Name}} {{.Name}}{{end}},</p>
<p>Please confirm your email address for TaskSetu.</p>
<p><a href="{{.VerifyURL}}">Verify email</a></p>
<p>The link expires on {{date .ExpiresAt}}.</p>
`)
)

// ComposeInvite renders an invitation email.
func ComposeInvite(msg domain.InviteMessage) (Message, error) {
	return inviteLayout.render(msg.To, msg)
}

// ComposeReset renders a password reset email.
func ComposeReset(msg domain.ResetMessage) (Message, error) {
	return resetLayout.render(msg.To, msg)
}

// ComposeVerification renders an email verification email.
func ComposeVerification(msg domain.VerificationMessage) (Message, error) {
	return verifyLayout.render(msg.To, msg)
}

func (l layout) render(to string, data any) (Message, error) {
	var subject, text, html bytes.Buffer
	if err := l.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := l.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render text body: %w", err)
	}
	if err := l.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}
	return Message{To: to, Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}
