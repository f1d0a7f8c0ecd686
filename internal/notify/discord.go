package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

const (
	colorGreen  = 0x2ECC71 // everything added or already present
	colorYellow = 0xF1C40F // some items skipped as unavailable
	colorRed    = 0xE74C3C // run aborted with failures
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendRunSummary sends one run report as a Discord embed.
func (d *DiscordNotifier) SendRunSummary(ctx context.Context, run *RunPayload) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildRunEmbed(run)},
	}
	return d.post(ctx, payload)
}

// SendUnavailable reports items that could not be added to the cart.
func (d *DiscordNotifier) SendUnavailable(
	ctx context.Context,
	records []domain.UnavailabilityRecord,
) error {
	if len(records) == 0 {
		return nil
	}

	// Discord caps embed descriptions; a handful of lines is plenty.
	limit := min(len(records), 15)
	lines := make([]string, 0, limit+1)
	for _, r := range records[:limit] {
		lines = append(lines, fmt.Sprintf("- %s (%s)", r.Item, r.Reason))
	}
	if len(records) > limit {
		lines = append(lines, fmt.Sprintf("... and %d more", len(records)-limit))
	}

	payload := discordWebhookPayload{
		Embeds: []discordEmbed{{
			Title:       fmt.Sprintf("%d items need manual attention", len(records)),
			Color:       colorYellow,
			Description: strings.Join(lines, "\n"),
		}},
	}
	return d.post(ctx, payload)
}

func buildRunEmbed(run *RunPayload) discordEmbed {
	report := run.Report
	embed := discordEmbed{
		Title: fmt.Sprintf("Grocery run: %s", run.ListName),
		Color: runColor(report),
		Fields: []discordEmbedField{
			{Name: "Target", Value: fmt.Sprint(report.TargetCount), Inline: true},
			{Name: "Added", Value: fmt.Sprint(report.Added), Inline: true},
			{Name: "In cart", Value: fmt.Sprint(report.AlreadyPresent), Inline: true},
			{Name: "Failed", Value: fmt.Sprint(report.Failed), Inline: true},
			{
				Name:   "Duration",
				Value:  report.Finished.Sub(report.Started).Round(time.Second).String(),
				Inline: true,
			},
		},
	}

	if len(report.AddedItems) > 0 {
		embed.Description = "Added: " + strings.Join(report.AddedItems, ", ")
	}
	if len(report.FailedItems) > 0 {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  "Could not add",
			Value: strings.Join(report.FailedItems, ", "),
		})
	}

	return embed
}

func runColor(report domain.RunReport) int {
	switch {
	case report.Failed == 0:
		return colorGreen
	case report.Added > 0 || report.AlreadyPresent > 0:
		return colorYellow
	default:
		return colorRed
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
