// Package views renders the few HTML documents the service produces.
package views

import (
	"bytes"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/editorimages/internal/i18n"
)

// VerificationEmail is the body of the confirmation message.
func VerificationEmail(tr *i18n.Translator, link string) g.Node {
	return h.Div(
		h.H2(g.Text(tr.Text(i18n.VerifyEmailSubject))),
		h.P(g.Text(tr.Text(i18n.VerifyEmailBody))),
		h.P(h.A(h.Href(link), g.Text(link))),
	)
}

// VerifyResultPage is shown after a confirmation link is opened in a browser.
func VerifyResultPage(tr *i18n.Translator, verified bool) g.Node {
	title := tr.Text(i18n.VerifiedPageTitle)
	message := tr.Text(i18n.VerifiedPageMessage)
	if !verified {
		title = tr.Text(i18n.GenericErrorTitle)
		message = tr.Text(i18n.VerifyFailedPageMessage)
	}

	return c.HTML5(c.HTML5Props{
		Title:    title,
		Language: tr.Language().String(),
		Body: []g.Node{
			h.Main(
				c.Classes{"verify": true, "verify--failed": !verified},
				h.H1(g.Text(title)),
				h.P(g.Text(message)),
			),
		},
	})
}

// RenderString renders n for contexts that need a string, such as email bodies.
func RenderString(n g.Node) (string, error) {
	var buf bytes.Buffer
	if err := n.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
