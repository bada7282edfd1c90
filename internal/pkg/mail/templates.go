package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	ttemplate "text/template"
	"time"
)

const newPostHTMLTpl = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
</head>
<body style="background-color:#fff;margin:0 auto;font-family:ui-sans-serif,system-ui,-apple-system,BlinkMacSystemFont,Segoe UI,Roboto,Helvetica Neue,Arial,Noto Sans,sans-serif;padding:.5rem">
  <table align="center" width="100%" role="presentation" cellspacing="0" cellpadding="0" border="0" style="max-width:100%;border-radius:.375rem;box-shadow:0 4px 6px -1px rgb(0 0 0 / .1),0 2px 4px -2px rgb(0 0 0 / .1);margin:40px auto;padding:20px;width:550px;position:relative;overflow:hidden;border:1px solid rgb(79,70,229)">
    <tbody>
      <tr><td>
        <p style="font-size:14px;line-height:24px;margin:16px 0">{{.OwnerName}} just published:</p>
        <h1 style="font-size:20px;text-align:center">{{.Title}}</h1>
        <div style="font-size:14px;line-height:24px;margin:16px 0;color:rgb(51,51,51)">{{.Summary}}</div>
        <table align="center" width="100%" role="presentation" border="0" cellpadding="0" cellspacing="0" style="text-align:center;margin-top:32px;margin-bottom:32px;position:relative">
          <tbody><tr><td>
            <a href="{{.PostURL}}" target="_blank" style="line-height:100%;text-decoration:none;display:inline-block;max-width:100%;padding:12px 20px;background-color:rgb(79,70,229);border-radius:.25rem;color:#fff;font-size:12px;font-weight:600;text-align:center">Read the full post</a>
            {{if .UnsubscribeURL}}
            <a href="{{.UnsubscribeURL}}" target="_blank" style="color:rgb(156,163,175);text-decoration:none;position:absolute;right:0;font-size:12px;top:.75rem">Unsubscribe</a>
            {{end}}
          </td></tr></tbody>
        </table>
        <hr style="width:100%;border:none;border-top:1px solid #eaeaea" />
        <p style="font-size:10px;line-height:24px;margin:16px 0;text-align:center;color:rgb(156,163,175)">This is an automated message, please do not reply.<br />&copy;{{year}} {{.OwnerName}}</p>
      </td></tr>
    </tbody>
  </table>
</body>
</html>`

const newPostTextTpl = `{{.OwnerName}} just published: {{.Title}}

Read it here: {{.PostURL}}
{{if .UnsubscribeURL}}
Unsubscribe: {{.UnsubscribeURL}}
{{end}}`

const welcomeHTMLTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">You're subscribed!</h2>
  <p>Thanks for subscribing to {{.SiteName}}. You'll get an email whenever a new post is published.</p>
  <p style="color:#999;font-size:12px">Changed your mind? <a href="{{.UnsubscribeURL}}">Unsubscribe here</a>.</p>
</div>
</body>
</html>`

const welcomeTextTpl = `You're subscribed!

Thanks for subscribing to {{.SiteName}}. You'll get an email whenever a new post is published.

Changed your mind? Unsubscribe: {{.UnsubscribeURL}}`

const commentNotifyTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">New comment on "{{.Title}}"</h2>
  <p><strong>{{.Author}}</strong> ({{.Mail}}) wrote:</p>
  <blockquote style="background:#f3f4f6;border-radius:8px;padding:8px 16px;color:#333;font-size:13px">{{.Content}}</blockquote>
  <p style="margin-top:24px">
    <a href="{{.PostURL}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Review comment</a>
  </p>
  <p style="color:#999;font-size:12px">IP: {{.IP}} &middot; Agent: {{.Agent}}</p>
</div>
</body>
</html>`

// PostNotificationData is the data for new-post notification emails.
type PostNotificationData struct {
	OwnerName      string
	Title          string
	Summary        template.HTML
	PostURL        string
	UnsubscribeURL string
}

// WelcomeData is the data for subscriber welcome emails.
type WelcomeData struct {
	SiteName       string
	UnsubscribeURL string
}

// CommentNotifyData is the data for owner comment notifications.
type CommentNotifyData struct {
	Title   string
	Author  string
	Mail    string
	Content string
	PostURL string
	IP      string
	Agent   string
}

func renderHTML(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderText(tpl string, data interface{}) (string, error) {
	t, err := ttemplate.New("").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendPostNotification sends a new-post email to one subscriber, with HTML
// and plain-text alternatives.
func (s *Sender) SendPostNotification(to string, data PostNotificationData) error {
	if strings.TrimSpace(data.OwnerName) == "" {
		data.OwnerName = "The author"
	}
	html, err := renderHTML(newPostHTMLTpl, data)
	if err != nil {
		return err
	}
	text, err := renderText(newPostTextTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: fmt.Sprintf("New post: %s", data.Title),
		HTML:    html,
		Text:    text,
	})
}

// SendWelcome sends the post-subscribe welcome email.
func (s *Sender) SendWelcome(to string, data WelcomeData) error {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "this site"
	}
	html, err := renderHTML(welcomeHTMLTpl, data)
	if err != nil {
		return err
	}
	text, err := renderText(welcomeTextTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: fmt.Sprintf("You're subscribed to %s", data.SiteName),
		HTML:    html,
		Text:    text,
	})
}

// SendCommentNotify tells the owner a new comment is waiting for moderation.
func (s *Sender) SendCommentNotify(to string, data CommentNotifyData) error {
	if strings.TrimSpace(data.IP) == "" {
		data.IP = "-"
	}
	if strings.TrimSpace(data.Agent) == "" {
		data.Agent = "-"
	}
	html, err := renderHTML(commentNotifyTpl, data)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: fmt.Sprintf("New comment on %q", data.Title),
		HTML:    html,
	})
}
