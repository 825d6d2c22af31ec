package campaign

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"
)

type shellData struct {
	Title          string
	Date           string
	Content        template.HTML
	ViewOnlineURL  string
	UnsubscribeURL string
	Product        string
}

// The shell is a table layout with every style inlined; email clients strip
// <head> contents and ignore <style> blocks too unpredictably to rely on.
var shellTmpl = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="background-color:#D9DAD5; margin:0; padding:0; width:100%;">
  <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="background-color:#D9DAD5; border-collapse:collapse;">
    <tr>
      <td style="padding:24px 12px;">
        <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="width:100%; max-width:640px; margin:0 auto; border-collapse:collapse;">
          <tr>
            <td style="background-color:#F0F1ED; border:1px solid #C6CBC8; border-radius:12px; padding:20px;">
              <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="border-collapse:collapse;">
                <tr>
                  <td style="padding-bottom:16px; border-bottom:1px solid #C6CBC8;">
                    <h1 style="font-family:Georgia,'Times New Roman',serif; font-weight:700; font-size:28px; line-height:34px; color:#1F2A33; margin:0 0 10px 0;">{{.Title}}</h1>
                    <p style="font-family:system-ui,-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif; font-size:12px; line-height:18px; color:#7C93A3; margin:0;">{{.Date}}</p>
                  </td>
                </tr>
                <tr>
                  <td style="padding-top:16px;">
                    {{.Content}}
                  </td>
                </tr>
                <tr>
                  <td style="padding-top:24px; border-top:1px solid #C6CBC8;">
                    <p style="font-family:system-ui,-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif; font-size:12px; line-height:18px; color:#4F6473; margin:0 0 8px 0;"><a href="{{.ViewOnlineURL}}" style="color:#094881; text-decoration:underline;">View online</a></p>
                    <p style="font-family:system-ui,-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif; font-size:12px; line-height:18px; color:#4F6473; margin:0;">You are receiving this because you subscribed to {{.Product}}. <a href="{{.UnsubscribeURL}}" style="color:#4F6473; text-decoration:underline;">Unsubscribe</a></p>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

func renderShell(data shellData) (string, error) {
	var buf bytes.Buffer
	if err := shellTmpl.Execute(&buf, data); err != nil {
		return "", errors.Errorf("failed to render email shell: %v", err)
	}
	return buf.String(), nil
}
