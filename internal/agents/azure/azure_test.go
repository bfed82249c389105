package azure

import "testing"

func TestConfigured(t *testing.T) {
	cases := []struct {
		cfg  Config
		want bool
	}{
		{Config{}, false},
		{Config{Endpoint: "https://x.openai.azure.com", APIKey: "k"}, false},
		{Config{Endpoint: "https://x.openai.azure.com", APIKey: "k", Deployment: "gpt4o"}, true},
	}
	for _, tc := range cases {
		if got := tc.cfg.Configured(); got != tc.want {
			t.Fatalf("expected Configured()=%v for %+v, got %v", tc.want, tc.cfg, got)
		}
	}
}

func TestNewUnconfiguredIsUnavailable(t *testing.T) {
	a := New(Config{APIKey: "k"}, nil)
	if a.Available() {
		t.Fatalf("expected unavailable agent")
	}
}

func TestNewConfiguredIsAvailable(t *testing.T) {
	a := New(Config{Endpoint: "https://example.openai.azure.com", APIKey: "k", Deployment: "gpt4o"}, nil)
	if !a.Available() {
		t.Fatalf("expected available agent")
	}
	if a.Model() != "gpt4o" {
		t.Fatalf("expected deployment as default model, got %s", a.Model())
	}
	if _, ok := a.Tools()["azure_summarize"]; !ok {
		t.Fatalf("expected azure_summarize tool")
	}
}
