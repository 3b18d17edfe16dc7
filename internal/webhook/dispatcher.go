package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"heliroute/internal/config"
	"heliroute/internal/route"
)

type Dispatcher struct {
	config     config.WebhookConfig
	node       string
	events     chan Event
	client     *http.Client
	mu         sync.Mutex
	recentSent map[string]time.Time
	now        func() time.Time
}

func NewDispatcher(cfg config.WebhookConfig, node string) *Dispatcher {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Dispatcher{
		config: cfg,
		node:   node,
		events: make(chan Event, 100),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		recentSent: make(map[string]time.Time),
		now:        time.Now,
	}
}

// Run sends queued events until ctx is done. Snapshots arriving on updates
// are checked for alert conditions first.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan route.Snapshot) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			d.Observe(snap)
		case event := <-d.events:
			d.processEvent(event)
		case <-ticker.C:
			d.cleanupRecent()
		}
	}
}

// Observe queues the alerts a snapshot warrants.
func (d *Dispatcher) Observe(snap route.Snapshot) {
	if d.config.NoGo {
		if reason := noGoReason(snap.Stats); reason != "" && d.shouldSend("nogo:"+snap.Stats.Aircraft.Type+":"+reason) {
			d.Send(NewNoGoEvent(snap, reason))
		}
	}
	if d.config.Repairs && snap.Reason == "repair" && d.shouldSend("repair") {
		d.Send(NewRepairedEvent(snap))
	}
}

func (d *Dispatcher) Send(event Event) {
	if d.config.DiscordURL == "" {
		return
	}

	select {
	case d.events <- event:
	default:
		log.Printf("[WEBHOOK] Event queue full, dropping event")
	}
}

func (d *Dispatcher) processEvent(event Event) {
	if err := d.post(FormatDiscordMessage(event, d.node)); err != nil {
		log.Printf("[WEBHOOK] Failed to send %s: %v", event.Type, err)
		return
	}
	log.Printf("[WEBHOOK] Sent %s event", event.Type)
}

func (d *Dispatcher) post(msg DiscordMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	resp, err := d.client.Post(d.config.DiscordURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord returned status %d", resp.StatusCode)
	}
	return nil
}

func (d *Dispatcher) shouldSend(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if lastSent, ok := d.recentSent[key]; ok {
		if d.now().Sub(lastSent) < d.config.Cooldown {
			return false
		}
	}

	d.recentSent[key] = d.now()
	return true
}

func (d *Dispatcher) cleanupRecent() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for key, t := range d.recentSent {
		if now.Sub(t) > 2*d.config.Cooldown {
			delete(d.recentSent, key)
		}
	}
}

func (d *Dispatcher) SendTestWebhook() error {
	if d.config.DiscordURL == "" {
		return nil
	}

	return d.post(DiscordMessage{
		Username: "Heliroute",
		Embeds: []DiscordEmbed{
			{
				Title:       "🧪 Test Webhook",
				Description: "Webhook is configured correctly!",
				Color:       ColorInfo,
				Timestamp:   d.now().Format(time.RFC3339),
				Footer:      &DiscordFooter{Text: "Heliroute " + d.node},
			},
		},
	})
}
