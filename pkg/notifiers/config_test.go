package notifiers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigRegistryYAML(t *testing.T) {
	path := writeConfig(t, "notifiers.yaml", `
notifiers:
  - id: hook
    type: HTTP
    http:
      url: " https://hooks.example.com/resize "
      headers:
        X-Token: abc
        "": dropped
  - id: queue
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.us-east-1.amazonaws.com/123/resize
      region: us-east-1
      access_key_id: test
      secret_access_key: test
  - id: topic
    type: pubsub
    pubsub:
      project_id: demo
      topic: resize-events
`)

	reg, err := LoadConfigRegistry(path)
	if err != nil {
		t.Fatalf("LoadConfigRegistry: %v", err)
	}

	hook, ok := reg.ByID("hook")
	if !ok {
		t.Fatalf("hook missing")
	}
	want := HTTPConfig{
		URL:            "https://hooks.example.com/resize",
		Method:         "POST",
		Headers:        map[string]string{"X-Token": "abc"},
		TimeoutSeconds: httpDefaultTimeoutSeconds,
	}
	if diff := cmp.Diff(want, *hook.HTTP); diff != "" {
		t.Fatalf("http config mismatch (-want +got):\n%s", diff)
	}

	queue, _ := reg.ByID("queue")
	if queue.SQS.AccessKeyID != "test" {
		t.Fatalf("inline credentials not decoded: %#v", queue.SQS)
	}

	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "hook" || enabled[1].ID != "topic" {
		t.Fatalf("unexpected enabled notifiers: %#v", enabled)
	}
}

func TestLoadConfigRegistryRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing section": `{"notifiers":[{"id":"q","type":"sqs"}]}`,
		"missing region":  `{"notifiers":[{"id":"q","type":"sqs","sqs":{"uri":"u"}}]}`,
		"unknown type":    `{"notifiers":[{"id":"q","type":"smtp"}]}`,
		"bad url":         `{"notifiers":[{"id":"h","type":"http","http":{"url":"not a url"}}]}`,
		"duplicate": `{"notifiers":[
			{"id":"h","type":"http","http":{"url":"https://a.example"}},
			{"id":"h","type":"http","http":{"url":"https://b.example"}}]}`,
		"empty": `{"notifiers":[]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "notifiers.json", raw)
			if _, err := LoadConfigRegistry(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
