package emails

import (
	"fmt"
	"strings"
	"time"
)

const (
	themeAccent  = "#F5A623"
	themeText    = "#E5E7EB"
	themeMuted   = "#9CA3AF"
	themeBgBody  = "#0B0F14"
	themeBgPanel = "#151B23"
)

// EmailLayout wraps content in the dark branded layout used by every email.
func EmailLayout(contentHTML string) string {
	return emailLayoutAt(contentHTML, time.Now())
}

func emailLayoutAt(contentHTML string, now time.Time) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>CODM Social</title>
  <style>
    body { margin: 0; padding: 0; background-color: %s; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; color: %s; }
    .panel { width: 600px; max-width: 100%%; margin: 40px auto; background-color: %s; border-radius: 8px; padding: 40px 48px; }
    .panel h1 { font-size: 22px; margin: 0 0 20px 0; }
    .panel p { font-size: 16px; line-height: 1.6; margin: 0 0 20px 0; }
    .cta { display: inline-block; background-color: %s; color: #0B0F14 !important; padding: 12px 32px; border-radius: 6px; font-weight: 700; text-decoration: none; }
    .footer { color: %s; font-size: 12px; text-align: center; margin-top: 32px; }
  </style>
</head>
<body>
  <div class="panel">%s
    <p class="footer">© %d CODM Social</p>
  </div>
</body>
</html>`, themeBgBody, themeText, themeBgPanel, themeAccent, themeMuted, contentHTML, now.Year())
}

// EscapeHTML escapes HTML specials for safe interpolation.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&#39;",
)
