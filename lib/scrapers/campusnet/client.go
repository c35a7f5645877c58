package campusnet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"campusnet-client/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/campusnet")

// the reserved credential pair that never touches the network and
// produces deterministic canned data for every operation
const (
	DemoUsername = "demo"
	DemoPassword = "demo"
)

const maxRedirectHops = 10

type Credentials struct {
	Username string
	Password string
}

// Client owns the authentication lifecycle against the portal and
// performs all page fetches. the session token is single-writer
// (only the active login/re-auth flow writes it) and multi-reader.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	mu      sync.RWMutex
	session Session
	// retained only for transparent re-authentication
	lastCredentials Credentials

	reauthInFlight atomic.Bool
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/campusnet/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := c.session
	out.Endpoints = make(map[string]string, len(c.session.Endpoints))
	for k, v := range c.session.Endpoints {
		out.Endpoints[k] = v
	}
	return out
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Token = token
}

func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.DemoMode || (c.session.Authenticated && c.session.Token != "")
}

func (c *Client) isDemo() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.DemoMode
}

func (c *Client) Logout() {
	c.mu.Lock()
	c.session = Session{}
	c.lastCredentials = Credentials{}
	c.mu.Unlock()
	c.reauthInFlight.Store(false)
}

// Login submits the portal's login form. success is signaled not by
// the status code but by the redirect directive in the response
// headers; its target embeds the fresh token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	if username == DemoUsername && password == DemoPassword {
		c.mu.Lock()
		c.session = Session{DemoMode: true, Authenticated: true}
		c.lastCredentials = Credentials{Username: username, Password: password}
		c.mu.Unlock()
		slog.InfoContext(ctx, "demo mode login")
		return nil
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"usrname":   username,
			"pass":      password,
			"APPNAME":   "CampusNet",
			"PRGNAME":   "LOGINCHECK",
			"ARGUMENTS": "clino,usrname,pass,menuno,menu_type,browser,platform",
			"clino":     "000000000000001",
			"menuno":    "000019",
			"menu_type": "classic",
		}).
		Post(scriptPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}

	refresh := res.Header().Get("Refresh")
	if refresh == "" {
		span.SetStatus(codes.Error, ErrLoginRejected.Error())
		return ErrLoginRejected
	}

	target := refreshTarget(refresh)
	token, err := ExtractToken(target)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("redirect_target", target))

	c.mu.Lock()
	c.session = Session{Token: token}
	c.lastCredentials = Credentials{Username: username, Password: password}
	c.mu.Unlock()

	home, err := c.FollowRedirects(ctx, target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to follow login redirects")
		return err
	}

	c.mu.Lock()
	c.session.Endpoints = ExtractHomeEndpoints(home, c.session.Token)
	c.session.Authenticated = true
	c.mu.Unlock()

	return nil
}

// the directive looks like "0; URL=/scripts/mgrqispi.dll?..."
func refreshTarget(refresh string) string {
	idx := strings.Index(strings.ToUpper(refresh), "URL=")
	if idx < 0 {
		return refresh
	}
	return strings.TrimSpace(refresh[idx+len("URL="):])
}

// FollowRedirects walks the opaque post-login chain until the home
// page shows up. every hop that carries a token rotates the stored
// one. the hop limit guards against a redirect cycle served by the
// portal.
func (c *Client) FollowRedirects(ctx context.Context, link string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FollowRedirects")
	defer span.End()

	for hop := 0; hop < maxRedirectHops; hop++ {
		res, err := c.Http.R().
			SetContext(ctx).
			Get(link)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch redirect hop")
			return "", err
		}

		body := res.String()
		doc, err := parseDocument(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse redirect hop")
			return "", err
		}

		if IsHomePage(doc) {
			span.SetAttributes(attribute.Int("hops", hop))
			return body, nil
		}
		if !IsRedirectPage(doc) {
			span.SetStatus(codes.Error, ErrUnrecognizedPage.Error())
			return "", ErrUnrecognizedPage
		}

		next, ok := NextRedirectUrl(doc)
		if !ok {
			span.SetStatus(codes.Error, ErrUnrecognizedPage.Error())
			return "", fmt.Errorf("%w: intermediate page without next hop", ErrUnrecognizedPage)
		}
		if token, err := ExtractToken(next); err == nil {
			c.setToken(token)
		}

		slog.DebugContext(ctx, "following portal redirect", "hop", hop, "next", next)
		link = next
	}

	span.SetStatus(codes.Error, ErrRedirectLoop.Error())
	return "", ErrRedirectLoop
}

// Reauthenticate replays the last-used credentials. it is
// single-flight: callers arriving during an in-flight attempt get
// ErrReauthInFlight instead of being queued. a failed attempt keeps
// the session untouched so the caller may retry or prompt anew.
func (c *Client) Reauthenticate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Reauthenticate")
	defer span.End()

	if !c.reauthInFlight.CompareAndSwap(false, true) {
		span.SetStatus(codes.Error, ErrReauthInFlight.Error())
		return ErrReauthInFlight
	}
	defer c.reauthInFlight.Store(false)

	c.mu.RLock()
	creds := c.lastCredentials
	c.mu.RUnlock()
	if creds.Username == "" {
		span.SetStatus(codes.Error, ErrNotAuthenticated.Error())
		return ErrNotAuthenticated
	}

	err := c.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "re-authentication failed")
		return err
	}
	return nil
}

func (c *Client) endpoint(name string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.session.Authenticated {
		return "", ErrNotAuthenticated
	}
	ep, ok := c.session.Endpoints[name]
	if !ok {
		return "", fmt.Errorf("no %q endpoint discovered on home page", name)
	}
	return WithToken(ep, c.session.Token), nil
}

// fetchPage GETs an endpoint and fails with ErrSessionExpired when
// the portal serves its access-denied page instead of content.
func (c *Client) fetchPage(ctx context.Context, link string) (string, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return "", err
	}
	body := res.String()
	if IsSessionExpiredPage(body) {
		return "", ErrSessionExpired
	}
	return body, nil
}

// FetchWeek fetches and parses the timetable for the week containing
// the given date.
func (c *Client) FetchWeek(ctx context.Context, date time.Time) (ScheduleWeek, error) {
	ctx, span := tracer.Start(ctx, "client:FetchWeek")
	defer span.End()

	if c.isDemo() {
		return demoWeek(date), nil
	}

	ep, err := c.endpoint(EndpointSchedule)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ScheduleWeek{}, err
	}

	body, err := c.fetchPage(ctx, WithDate(ep, date))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch schedule")
		return ScheduleWeek{}, err
	}

	week, err := ExtractScheduleWeek(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse schedule")
		return ScheduleWeek{}, err
	}
	return week, nil
}

// FetchGrades fetches the exam results for a semester; an empty
// semester id means the portal's currently selected one.
func (c *Client) FetchGrades(ctx context.Context, semester string) (GradeReport, error) {
	ctx, span := tracer.Start(ctx, "client:FetchGrades")
	defer span.End()

	if c.isDemo() {
		return demoGrades(semester), nil
	}

	ep, err := c.endpoint(EndpointGrades)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return GradeReport{}, err
	}
	if semester != "" {
		ep += ",-N" + semester
	}

	body, err := c.fetchPage(ctx, ep)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch grades")
		return GradeReport{}, err
	}

	return ExtractGradeReport(body, semester), nil
}

// Semesters lists the semesters the grade page offers.
func (c *Client) Semesters(ctx context.Context) ([]Semester, error) {
	ctx, span := tracer.Start(ctx, "client:Semesters")
	defer span.End()

	if c.isDemo() {
		return demoSemesters(), nil
	}

	ep, err := c.endpoint(EndpointGrades)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	body, err := c.fetchPage(ctx, ep)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch semester list")
		return nil, err
	}

	return ExtractSemesters(body), nil
}

// FetchNotifications reads the message inbox.
func (c *Client) FetchNotifications(ctx context.Context) ([]NotificationItem, error) {
	ctx, span := tracer.Start(ctx, "client:FetchNotifications")
	defer span.End()

	if c.isDemo() {
		return demoNotifications(), nil
	}

	ep, err := c.endpoint(EndpointNotifications)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	body, err := c.fetchPage(ctx, ep)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch notifications")
		return nil, err
	}

	return ExtractNotifications(body), nil
}

// EnrichWeek fills FullTitle/CourseCode on every event carrying a
// detail link, fetching all detail pages concurrently. a failed
// detail fetch degrades that one event to its pre-enrichment form,
// never the batch; the per-event failures come back joined.
func (c *Client) EnrichWeek(ctx context.Context, week *ScheduleWeek) error {
	ctx, span := tracer.Start(ctx, "client:EnrichWeek")
	defer span.End()

	if c.isDemo() {
		return nil
	}

	var errList []error
	lock := sync.Mutex{}
	wg := sync.WaitGroup{}

	for d := range week.Days {
		for e := range week.Days[d].Events {
			event := &week.Days[d].Events[e]
			if event.DetailUrl == "" {
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()

				body, err := c.fetchPage(ctx, event.DetailUrl)
				if err != nil {
					slog.WarnContext(ctx, "failed to fetch event detail", "url", event.DetailUrl, "err", err)
					lock.Lock()
					errList = append(errList, fmt.Errorf("detail %q: %w", event.Title, err))
					lock.Unlock()
					return
				}
				detail := ExtractEventDetail(body)

				lock.Lock()
				defer lock.Unlock()
				if detail.FullTitle != "" {
					event.FullTitle = detail.FullTitle
				}
				if detail.CourseCode != "" {
					event.CourseCode = detail.CourseCode
				}
				if event.Lecturer == "" {
					event.Lecturer = detail.Lecturer
				}
			}()
		}
	}

	wg.Wait()
	return errors.Join(errList...)
}
