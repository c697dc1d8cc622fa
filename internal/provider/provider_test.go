package provider

import "testing"

func TestLookupKnownProviders(t *testing.T) {
	for _, id := range []ID{OpenAI, Anthropic, Google} {
		cfg := Lookup(id)
		if cfg.ID != id {
			t.Errorf("Lookup(%s).ID = %s", id, cfg.ID)
		}
		if cfg.APIBaseURL == "" {
			t.Errorf("Lookup(%s): empty base URL", id)
		}
		if cfg.DefaultModel == "" {
			t.Errorf("Lookup(%s): empty default model", id)
		}
	}
}

func TestLookupUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown provider id")
		}
	}()
	Lookup("mistral")
}

func TestAllStableOrder(t *testing.T) {
	configs := All()
	if len(configs) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(configs))
	}
	want := []ID{OpenAI, Anthropic, Google}
	for i, cfg := range configs {
		if cfg.ID != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, cfg.ID, want[i])
		}
	}
}

func TestGoogleKeyPassedAsQueryParam(t *testing.T) {
	if Lookup(Google).APIKeyHeader != "" {
		t.Error("google key must be passed as query parameter, not a header")
	}
}

func TestValid(t *testing.T) {
	if !Valid(Anthropic) {
		t.Error("anthropic should be valid")
	}
	if Valid("cohere") {
		t.Error("cohere should not be valid")
	}
}
