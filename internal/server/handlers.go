package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/absence"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/combine"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/schoolyear"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/credstore"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
	"github.com/kreta-tools/go-kreta-bridge/internal/presentation/htmlstats"
	"github.com/kreta-tools/go-kreta-bridge/internal/presentation/ics"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// credsResolver extracts credentials from the request path
type credsResolver func(c *fiber.Ctx) (*kreta.Credentials, error)

// calendarBuilder produces calendar text with a live portal session
type calendarBuilder func(c *fiber.Ctx, client portalClient, opts ics.Options) (string, error)

func credsFromBlob(c *fiber.Ctx) (*kreta.Credentials, error) {
	return credstore.DecodeBlob(c.Params("blob"))
}

func (s *Server) credsFromToken(c *fiber.Ctx) (*kreta.Credentials, error) {
	return s.sealer.Open(c.Params("token"))
}

// credsFromStore serves the default account from the watched credentials
// file; the store always holds the last good copy, so this cannot fail.
func (s *Server) credsFromStore(c *fiber.Ctx) (*kreta.Credentials, error) {
	creds := s.store.Credentials()
	return &creds, nil
}

// calendarHandler wraps a calendar builder with the shared plumbing: resolve
// credentials, acquire a session, render. Every failure ships as an error
// calendar with status 200, because calendar clients silently unsubscribe
// feeds that return http errors.
func (s *Server) calendarHandler(resolve credsResolver, build calendarBuilder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		calendar, err := s.buildCalendar(c, resolve, build)
		if err != nil {
			util.LogWarnf("calendar request failed: %v", err)
			calendar = ics.ErrorCalendar(err)
		}

		c.Set(fiber.HeaderContentType, "text/calendar")
		return c.SendString(calendar)
	}
}

func (s *Server) buildCalendar(c *fiber.Ctx, resolve credsResolver, build calendarBuilder) (string, error) {
	creds, err := resolve(c)
	if err != nil {
		return "", err
	}
	opts, err := ics.DecodeOptions(c.Query("opts"))
	if err != nil {
		return "", err
	}

	var calendar string
	err = s.sessions.WithClient(c.UserContext(), creds, func(client portalClient) error {
		var err error
		calendar, err = build(c, client, opts)
		return err
	})
	return calendar, err
}

// timetableCalendar renders the plain lesson feed for a month centered on
// today
func (s *Server) timetableCalendar(c *fiber.Ctx, client portalClient, opts ics.Options) (string, error) {
	from, to := oneMonthRange()
	lessons, err := client.Lessons(c.UserContext(), from, to)
	if err != nil {
		return "", err
	}
	return ics.LessonsCalendar(lessons, opts)
}

// combinedCalendar renders the merged timeline with remainder events
func (s *Server) combinedCalendar(c *fiber.Ctx, client portalClient, opts ics.Options) (string, error) {
	from, to := oneMonthRange()
	merged, remainder, err := combine.NewJoiner(client).MergeWithRemainder(c.UserContext(), from, to)
	if err != nil {
		return "", err
	}
	return ics.MergedCalendar(merged, remainder, opts)
}

// statsHandler serves the absence statistics page for the whole school year
func (s *Server) statsHandler(resolve credsResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := s.buildStatsPage(c, resolve)
		if err != nil {
			util.LogWarnf("absences request failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(page)
	}
}

func (s *Server) buildStatsPage(c *fiber.Ctx, resolve credsResolver) (string, error) {
	creds, err := resolve(c)
	if err != nil {
		return "", err
	}

	now := util.GetTimeProvider().Now()
	anchor := schoolyear.Anchor(now)

	var page string
	err = s.sessions.WithClient(c.UserContext(), creds, func(client portalClient) error {
		records, err := client.AbsencesSinceAnchor(c.UserContext(), anchor, now)
		if err != nil {
			return err
		}

		weekly, err := absence.SplitByWeekAndCategory(records, anchor)
		if err != nil {
			return err
		}

		page = htmlstats.StatsPage(absence.Aggregate(records), weekly, now)
		return nil
	})
	return page, err
}

// handleSeal mints a sealed token from a posted credentials triple. The body
// is the same newline format the base64 blobs use, so sealing an existing
// blob is a one-liner.
func (s *Server) handleSeal(c *fiber.Ctx) error {
	lines := strings.SplitN(strings.TrimRight(string(c.Body()), "\n"), "\n", 3)
	if len(lines) < 3 {
		return c.Status(fiber.StatusNotAcceptable).
			SendString("body must be three lines: username, password, institute id")
	}

	creds := &kreta.Credentials{
		Username:  strings.TrimSpace(lines[0]),
		Password:  lines[1],
		Institute: strings.TrimSpace(lines[2]),
	}

	token, err := s.sealer.Seal(creds)
	if err != nil {
		return c.Status(fiber.StatusNotAcceptable).SendString(err.Error())
	}
	return c.SendString(token)
}

// oneMonthRange is the fetch window of the calendar feeds: two weeks back,
// two weeks ahead.
func oneMonthRange() (time.Time, time.Time) {
	now := util.GetTimeProvider().Now()
	return now.AddDate(0, 0, -14), now.AddDate(0, 0, 14)
}
