package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: queue
    type: SQS
    sqs:
      uri: https://sqs.eu-central-1.amazonaws.com/123/unzer
      region: eu-central-1
      endpoint: http://localhost:4566
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-central-1:123:unzer
      region: eu-central-1
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "queue" || enabled[1].ID != "topic" {
		t.Fatalf("expected queue and topic enabled, got %#v", enabled)
	}
	queue, ok := reg.ByID("queue")
	if !ok || queue.Type != TypeSQS {
		t.Fatalf("queue config missing or type not normalized: %#v", queue)
	}
	if queue.SQS.Region != "eu-central-1" || queue.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("inline aws settings not decoded: %#v", queue.SQS)
	}
	disabled, _ := reg.ByID("http1")
	if disabled.HTTP.Method != "POST" || disabled.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", disabled.HTTP)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.json")
	raw := `{"publishers":[{"id":"ps","type":"gcppubsub","gcppubsub":{"project_id":"p","topic":"t"}}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if cfg, ok := reg.ByID("ps"); !ok || cfg.PubSub.Topic != "t" {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	_, err := NewConfigRegistry([]PublisherConfig{
		{ID: "a", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://x"}},
		{ID: " a ", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://y"}},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfigRejectsMissingBlocks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		{ID: "s1", Type: TypeSNS},
		{ID: "g1", Type: TypeGCPPubSub, PubSub: &PubSubConfig{ProjectID: "p"}},
		{ID: "k1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q", AWSConfig: AWSConfig{Region: "r", AccessKeyID: "id"}}},
		{Type: TypeHTTP},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}
