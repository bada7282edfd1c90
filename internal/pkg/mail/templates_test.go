package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostNotificationTemplates(t *testing.T) {
	data := PostNotificationData{
		OwnerName:      "Jane",
		Title:          "Shipping a side project",
		Summary:        "<p>It finally works.</p>",
		PostURL:        "https://example.com/posts/shipping",
		UnsubscribeURL: "https://example.com/unsubscribe/tok",
	}

	html, err := renderHTML(newPostHTMLTpl, data)
	require.NoError(t, err)
	assert.Contains(t, html, "Jane just published:")
	assert.Contains(t, html, "Shipping a side project")
	assert.Contains(t, html, "<p>It finally works.</p>")
	assert.Contains(t, html, data.UnsubscribeURL)

	text, err := renderText(newPostTextTpl, data)
	require.NoError(t, err)
	assert.Contains(t, text, data.PostURL)
	assert.Contains(t, text, data.UnsubscribeURL)
}

func TestPostNotificationWithoutUnsubscribeLink(t *testing.T) {
	html, err := renderHTML(newPostHTMLTpl, PostNotificationData{
		OwnerName: "Jane",
		Title:     "Untitled",
		PostURL:   "https://example.com/posts/untitled",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "Unsubscribe")
}

func TestWelcomeTemplates(t *testing.T) {
	html, err := renderHTML(welcomeHTMLTpl, WelcomeData{
		SiteName:       "My Corner",
		UnsubscribeURL: "https://example.com/unsubscribe/tok",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "My Corner")
	assert.Contains(t, html, "Unsubscribe here")
}

func TestSendDisabledIsNoop(t *testing.T) {
	sender := New(Config{Enable: false})
	err := sender.Send(Message{To: []string{"x@example.com"}, Subject: "hi", Text: "hello"})
	assert.NoError(t, err)
}
