// Package email delivers transactional messages.
//
// EmailSender has two implementations: a Postmark client for production and
// DevSender, which writes each message to disk as HTML plus JSON metadata.
// New picks between them based on Config.
//
// Message bodies are rendered from templ components in the templates
// subpackage:
//
//	body, err := templates.Render(ctx, templates.LoginCode(name, code, 15*time.Minute))
//	if err != nil {
//	    return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   addr,
//	    Subject:  templates.LoginCodeSubject,
//	    BodyHTML: body,
//	    Tag:      "otp",
//	})
package email
