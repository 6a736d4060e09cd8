package server

import (
	"github.com/gofiber/fiber/v2"
)

const landingPage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>kreta bridge</title>
	<style>
		body { margin: 2rem auto; max-width: 42rem; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.5; }
		code { background-color: #eee; padding: 0.1rem 0.3rem; border-radius: 3px; }
	</style>
</head>
<body>
	<h1>kreta bridge</h1>
	<p>Subscribe to your school timetable from any calendar app.</p>
	<h2>Feeds</h2>
	<ul>
		<li><code>/base64/&lt;blob&gt;/timetable.ics</code> – lessons only</li>
		<li><code>/base64/&lt;blob&gt;/combine.ics</code> – lessons with homework, exams and absences</li>
		<li><code>/base64/&lt;blob&gt;/absences.html</code> – absence statistics and forecast</li>
	</ul>
	<p>The blob is <code>base64url(username\npassword\ninstitute-id)</code>.</p>
	<h2>Sealed tokens</h2>
	<p>POST the same three lines to <code>/seal</code> to get an opaque token,
	then use <code>/k/&lt;token&gt;/…</code> instead of the base64 routes. Sealed
	urls do not expose the password to anyone who sees them.</p>
	<h2>Default account</h2>
	<p>When the server is started with a credentials file, the same feeds are
	available under <code>/my/…</code> without any credentials in the url. The
	file is watched, so editing it takes effect immediately.</p>
</body>
</html>
`

func (s *Server) handleLanding(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(landingPage)
}
