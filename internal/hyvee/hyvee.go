// Package hyvee drives the Hy-Vee aisles-online storefront through a
// real browser. It implements the cart.Capability interface by scraping
// the search and cart pages; there is no public API for any of this, so
// every operation is best-effort DOM inspection with explicit timeouts.
package hyvee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/donaldgifford/grocery-autopilot/internal/cart"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

const (
	storefrontURL = baseURL + "/aisles-online/"
	cartURL       = baseURL + "/aisles-online/cart"

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	loginPattern = `(?i)^log ?in$`
)

// Config holds browser driver settings.
type Config struct {
	Bin         string        `yaml:"bin"`
	Headless    bool          `yaml:"headless"`
	NavTimeout  time.Duration `yaml:"nav_timeout"`
	StepDelay   time.Duration `yaml:"step_delay"`
	LoginSettle time.Duration `yaml:"login_settle"`
	ResultLimit int           `yaml:"result_limit"`
	UserAgent   string        `yaml:"user_agent"`
}

func (c *Config) applyDefaults() {
	if c.NavTimeout == 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.StepDelay == 0 {
		c.StepDelay = 2 * time.Second
	}
	if c.LoginSettle == 0 {
		c.LoginSettle = 4 * time.Second
	}
	if c.ResultLimit == 0 {
		c.ResultLimit = 5
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

// Driver implements cart.Capability against the live site.
type Driver struct {
	cfg      Config
	log      *slog.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// Option configures the Driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.log = l
	}
}

// NewDriver creates an unstarted driver. Call Start before use.
func NewDriver(cfg Config, opts ...Option) *Driver {
	cfg.applyDefaults()
	d := &Driver{
		cfg: cfg,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches Chrome and opens the working page. Launch or connect
// failures are setup problems, not run problems.
func (d *Driver) Start(ctx context.Context) error {
	l := launcher.New().Headless(d.cfg.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled").
		Set(flags.Flag("disable-dev-shm-usage")).
		Set(flags.NoSandbox)
	if d.cfg.Bin != "" {
		l = l.Bin(d.cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return domain.SetupRequiredError(
			fmt.Sprintf("Could not launch a browser: %v", err),
		)
	}
	d.launcher = l

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return domain.SetupRequiredError(
			fmt.Sprintf("Could not connect to the launched browser: %v", err),
		)
	}
	d.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("opening page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		d.log.Warn("failed to set viewport", "error", err)
	}
	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent: d.cfg.UserAgent,
	}).Call(page); err != nil {
		d.log.Warn("failed to set user agent", "error", err)
	}

	d.page = page
	d.log.Info("browser started", "headless", d.cfg.Headless)
	return nil
}

// Close shuts the page, browser, and launched Chrome process down.
func (d *Driver) Close() error {
	if d.page != nil {
		_ = d.page.Close()
		d.page = nil
	}
	var err error
	if d.browser != nil {
		err = d.browser.Close()
		d.browser = nil
	}
	if d.launcher != nil {
		d.launcher.Cleanup()
		d.launcher = nil
	}
	return err
}

// IsAuthenticated implements cart.Capability. Session state is judged by
// the presence of a Log In control on the storefront; marketing copy
// makes text like "Delivery" unreliable.
func (d *Driver) IsAuthenticated(ctx context.Context) (bool, error) {
	if err := d.navigate(ctx, storefrontURL); err != nil {
		return false, err
	}
	return !d.loginControlVisible(ctx), nil
}

// Login implements cart.Capability.
func (d *Driver) Login(ctx context.Context, creds cart.Credentials) error {
	if err := d.navigate(ctx, storefrontURL); err != nil {
		return err
	}

	if !d.loginControlVisible(ctx) {
		d.dismissPopups(ctx)
		return nil
	}

	if creds.Email == "" || creds.Password == "" {
		return domain.AuthRequiredError("Store credentials are not configured")
	}

	control, err := d.page.Context(ctx).Timeout(5 * time.Second).
		ElementR("a, button", loginPattern)
	if err != nil {
		return domain.AuthRequiredError(
			fmt.Sprintf("Could not open the store login UI: %v", err),
		)
	}
	if err := control.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return domain.AuthRequiredError(
			fmt.Sprintf("Could not open the store login UI: %v", err),
		)
	}
	sleep(ctx, time.Second)

	if err := d.fill(ctx,
		`input[type="email"], input[name*="email"], input[id*="email"]`,
		creds.Email,
	); err != nil {
		return domain.AuthRequiredError(
			fmt.Sprintf("Login form did not present an email field: %v", err),
		)
	}
	if err := d.fill(ctx,
		`input[type="password"], input[name*="password"], input[id*="password"]`,
		creds.Password,
	); err != nil {
		return domain.AuthRequiredError(
			fmt.Sprintf("Login form did not present a password field: %v", err),
		)
	}

	if err := d.clickLastLoginButton(ctx); err != nil {
		return domain.AuthRequiredError(
			fmt.Sprintf("Could not submit the login form: %v", err),
		)
	}
	sleep(ctx, d.cfg.LoginSettle)

	// A still-visible Log In control means the submit did not take.
	if d.loginControlVisible(ctx) {
		return domain.AuthRequiredError("Login did not succeed (Log In control still visible)")
	}

	d.dismissPopups(ctx)
	d.log.Info("store login established")
	return nil
}

// Locate implements cart.Capability. A product URL query goes straight
// to the product page; anything else runs a storefront search and takes
// the first result.
func (d *Driver) Locate(ctx context.Context, query string) (*cart.Candidate, error) {
	if strings.HasPrefix(query, "http") && strings.Contains(query, "/p/") {
		return d.locateOnProductPage(ctx, query)
	}

	results, err := d.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Search scrapes up to limit add-to-cart results for a query.
func (d *Driver) Search(ctx context.Context, query string, limit int) ([]cart.Candidate, error) {
	if limit <= 0 {
		limit = d.cfg.ResultLimit
	}

	if err := d.navigate(ctx, BuildSearchURL(query)); err != nil {
		return nil, err
	}
	// Nudge lazy-loaded result tiles into rendering.
	_ = d.page.Keyboard.Press(input.PageDown)
	sleep(ctx, 800*time.Millisecond)

	buttons, err := d.page.Context(ctx).Elements(`button[aria-label^="Add to cart"]`)
	if err != nil {
		return nil, fmt.Errorf("scanning search results: %w", err)
	}

	results := make([]cart.Candidate, 0, limit)
	for _, button := range buttons {
		if len(results) >= limit {
			break
		}
		label, err := button.Attribute("aria-label")
		if err != nil || label == nil || !strings.HasPrefix(*label, addPrefix) {
			continue
		}

		name, price := ParseAddLabel(*label)
		if price == "" {
			price = "N/A"
		}

		c := cart.Candidate{
			Name:     name,
			Price:    price,
			AddLabel: *label,
		}
		if href := productHref(button); href != "" {
			c.URL = absoluteURL(href)
			c.ProductID = ProductIDFromURL(c.URL)
		}
		results = append(results, c)
	}

	d.log.Debug("search scraped", "query", query, "results", len(results))
	return results, nil
}

// Add implements cart.Capability. The click is fire-and-observe; the
// caller verifies against a fresh cart snapshot.
func (d *Driver) Add(ctx context.Context, c *cart.Candidate) (bool, error) {
	if c.AddLabel == "" {
		return false, fmt.Errorf("candidate %q has no add-to-cart label", c.Name)
	}

	selector := fmt.Sprintf(`button[aria-label="%s"]`, cssEscape(c.AddLabel))
	button, err := d.page.Context(ctx).Timeout(5 * time.Second).Element(selector)
	if err != nil {
		if c.URL == "" {
			return false, nil
		}
		// The search page may have been re-rendered; fall back to the
		// product page's own add button.
		if err := d.navigate(ctx, c.URL); err != nil {
			return false, err
		}
		button, err = d.page.Context(ctx).Timeout(5 * time.Second).
			Element(`button[aria-label^="Add to cart"]`)
		if err != nil {
			return false, nil
		}
	}

	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, nil
	}
	sleep(ctx, 800*time.Millisecond)
	return true, nil
}

// Snapshot implements cart.Capability. Cart markup has been unstable
// across site releases, so names and product IDs are both collected
// through several selector fallbacks.
func (d *Driver) Snapshot(ctx context.Context) (*cart.Snapshot, error) {
	if err := d.navigate(ctx, cartURL); err != nil {
		return nil, fmt.Errorf("opening cart: %w", err)
	}

	items, err := d.page.Context(ctx).Elements(`article, [data-testid*="cart-item"]`)
	if err != nil {
		return nil, fmt.Errorf("scanning cart: %w", err)
	}

	snap := &cart.Snapshot{IDs: make(map[string]struct{})}
	for _, item := range items {
		if name := itemDisplayText(item); name != "" {
			snap.DisplayTexts = append(snap.DisplayTexts, name)
		}

		links, err := item.Timeout(500 * time.Millisecond).Elements(`a[href*="/p/"]`)
		if err != nil {
			continue
		}
		for _, link := range links {
			href, err := link.Attribute("href")
			if err != nil || href == nil {
				continue
			}
			if id := ProductIDFromURL(*href); id != "" {
				snap.IDs[id] = struct{}{}
			}
		}
	}

	d.log.Debug("cart snapshot",
		"items", len(snap.DisplayTexts), "ids", len(snap.IDs))
	return snap, nil
}

func (d *Driver) locateOnProductPage(ctx context.Context, url string) (*cart.Candidate, error) {
	if err := d.navigate(ctx, url); err != nil {
		return nil, err
	}

	button, err := d.page.Context(ctx).Timeout(5 * time.Second).
		Element(`button[aria-label^="Add to cart"]`)
	if err != nil {
		return nil, nil
	}
	label, err := button.Attribute("aria-label")
	if err != nil || label == nil {
		return nil, nil
	}

	name, price := ParseAddLabel(*label)
	if price == "" {
		price = "N/A"
	}
	return &cart.Candidate{
		Name:      name,
		Price:     price,
		URL:       url,
		ProductID: ProductIDFromURL(url),
		AddLabel:  *label,
	}, nil
}

func (d *Driver) navigate(ctx context.Context, url string) error {
	page := d.page.Context(ctx).Timeout(d.cfg.NavTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	_ = page.WaitLoad()
	sleep(ctx, d.cfg.StepDelay)
	return nil
}

func (d *Driver) loginControlVisible(ctx context.Context) bool {
	control, err := d.page.Context(ctx).Timeout(1500 * time.Millisecond).
		ElementR("a, button", loginPattern)
	if err != nil {
		return false
	}
	visible, err := control.Visible()
	return err == nil && visible
}

func (d *Driver) fill(ctx context.Context, selector, text string) error {
	el, err := d.page.Context(ctx).Timeout(15 * time.Second).Element(selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	return el.Input(text)
}

// clickLastLoginButton submits the login modal. The opener and the
// submit button share their text, so the last match is the submit.
func (d *Driver) clickLastLoginButton(ctx context.Context) error {
	buttons, err := d.page.Context(ctx).Elements("button")
	if err != nil {
		return err
	}

	var submit *rod.Element
	for _, b := range buttons {
		text, err := b.Text()
		if err != nil {
			continue
		}
		if normalizeButtonText(text) == "log in" {
			submit = b
		}
	}
	if submit == nil {
		return fmt.Errorf("no login submit button found")
	}
	return submit.Click(proto.InputMouseButtonLeft, 1)
}

// dismissPopups clears delivery prompts and marketing overlays.
// Failures are non-fatal.
func (d *Driver) dismissPopups(ctx context.Context) {
	sleep(ctx, 500*time.Millisecond)
	for _, pattern := range []string{`^Cancel$`, `^Continue to Site$`} {
		btn, err := d.page.Context(ctx).Timeout(time.Second).
			ElementR("button", pattern)
		if err != nil {
			continue
		}
		if visible, err := btn.Visible(); err == nil && visible {
			_ = btn.Click(proto.InputMouseButtonLeft, 1)
			sleep(ctx, 200*time.Millisecond)
		}
	}
	_ = d.page.Keyboard.Press(input.Escape)
}

// productHref returns the href of the first link in the button's
// enclosing result tile.
func productHref(button *rod.Element) string {
	container, err := button.Timeout(500 * time.Millisecond).ElementX("./ancestor::article")
	if err != nil {
		return ""
	}
	link, err := container.Timeout(500 * time.Millisecond).Element("a")
	if err != nil {
		return ""
	}
	href, err := link.Attribute("href")
	if err != nil || href == nil {
		return ""
	}
	return *href
}

// itemDisplayText pulls a display name out of one cart item element.
func itemDisplayText(item *rod.Element) string {
	for _, sel := range []string{
		"h2", "h3", `a[href*="/p/"]`, `[class*="name"]`, `[class*="title"]`,
	} {
		el, err := item.Timeout(500 * time.Millisecond).Element(sel)
		if err != nil {
			continue
		}
		text, err := el.Text()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}

func normalizeButtonText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
