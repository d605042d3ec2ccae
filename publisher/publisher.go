package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tweet_curator/config"
	"tweet_curator/history"
	"tweet_curator/logger"
)

type article struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Digest  string `json:"digest"`
	Content string `json:"content"`
}

// Publisher writes HTML digests to the outputs directory and optionally
// posts them to a webhook.
type Publisher struct {
	outputsDir string
	webhookURL string
	author     string
	client     *http.Client
	log        *logger.Logger
}

func New(cfg config.PublishConfig, outputsDir string, client *http.Client, log *logger.Logger) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		outputsDir: outputsDir,
		webhookURL: cfg.WebhookURL,
		author:     cfg.Author,
		client:     client,
		log:        log.With("component", "publisher"),
	}
}

// Publish writes <outputs>/<key>.html and returns its path.
func (p *Publisher) Publish(ctx context.Context, e history.Entry) (string, error) {
	if e.Key == "" {
		return "", fmt.Errorf("entry %s has no key", e.ID)
	}
	md := Render(e)
	doc, err := Document(e)
	if err != nil {
		return "", err
	}
	p.log.Debug("rendered digest", "key", e.Key, "topics", len(e.Result.Topics()))

	if err := os.MkdirAll(p.outputsDir, 0o755); err != nil {
		return "", fmt.Errorf("create outputs dir: %w", err)
	}
	path := filepath.Join(p.outputsDir, e.Key+".html")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	p.log.Info("digest written", "path", path)

	if p.webhookURL == "" {
		return path, nil
	}
	fragment, err := ToHTML(md)
	if err != nil {
		return "", err
	}
	art := article{
		Key:     e.Key,
		Title:   Title(e),
		Author:  p.author,
		Digest:  Summary(md, digestLength),
		Content: fragment,
	}
	if err := p.deliver(ctx, art); err != nil {
		return path, err
	}
	p.log.Info("digest delivered", "key", e.Key, "webhook", p.webhookURL)
	return path, nil
}

func (p *Publisher) deliver(ctx context.Context, art article) error {
	body, err := json.Marshal(art)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("deliver digest: webhook returned %d %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
