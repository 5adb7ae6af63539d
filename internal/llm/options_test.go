package llm

import (
	"testing"

	"github.com/danieljhkim/gitmend/internal/config"
)

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"off", "explain", "suggest", "auto"} {
		if _, err := ParseMode(valid); err != nil {
			t.Errorf("ParseMode(%q) = %v, want nil", valid, err)
		}
	}
	if _, err := ParseMode("yolo"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}

func TestParseSafety(t *testing.T) {
	for _, valid := range []string{"cautious", "balanced", "experimental"} {
		if _, err := ParseSafety(valid); err != nil {
			t.Errorf("ParseSafety(%q) = %v, want nil", valid, err)
		}
	}
	if _, err := ParseSafety("reckless"); err == nil {
		t.Error("ParseSafety should reject unknown levels")
	}
}

func TestOptionsFrom(t *testing.T) {
	opts, err := OptionsFrom(config.LLMConfig{Mode: "suggest", Safety: "balanced", MaxTokens: 4096})
	if err != nil {
		t.Fatalf("OptionsFrom() error: %v", err)
	}
	if opts.Mode != ModeSuggest || opts.Safety != SafetyBalanced || opts.MaxTokens != 4096 {
		t.Errorf("OptionsFrom() = %+v", opts)
	}
	if !opts.Enabled() {
		t.Error("suggest mode should be enabled")
	}

	if _, err := OptionsFrom(config.LLMConfig{Mode: "bogus", Safety: "balanced"}); err == nil {
		t.Error("invalid mode must fail validation")
	}
	if _, err := OptionsFrom(config.LLMConfig{Mode: "off", Safety: "bogus"}); err == nil {
		t.Error("invalid safety must fail validation")
	}

	off, err := OptionsFrom(config.LLMConfig{Mode: "off", Safety: "cautious"})
	if err != nil {
		t.Fatalf("OptionsFrom() error: %v", err)
	}
	if off.Enabled() {
		t.Error("off mode must not be enabled")
	}
}

func TestShouldAutoApply(t *testing.T) {
	set := func(confidence Confidence, patches int) PatchSet {
		ps := PatchSet{Path: "a.go", Confidence: confidence}
		for i := 0; i < patches; i++ {
			ps.Patches = append(ps.Patches, "@@ -1 +1 @@")
		}
		return ps
	}

	tests := []struct {
		name   string
		ps     PatchSet
		safety Safety
		want   bool
	}{
		{"cautious high single", set(ConfidenceHigh, 1), SafetyCautious, true},
		{"cautious high pair", set(ConfidenceHigh, 2), SafetyCautious, false},
		{"cautious medium single", set(ConfidenceMedium, 1), SafetyCautious, false},
		{"balanced medium triple", set(ConfidenceMedium, 3), SafetyBalanced, true},
		{"balanced medium quad", set(ConfidenceMedium, 4), SafetyBalanced, false},
		{"balanced low", set(ConfidenceLow, 1), SafetyBalanced, false},
		{"experimental medium many", set(ConfidenceMedium, 7), SafetyExperimental, true},
		{"experimental low", set(ConfidenceLow, 1), SafetyExperimental, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldAutoApply(tt.ps, tt.safety); got != tt.want {
				t.Errorf("ShouldAutoApply() = %v, want %v", got, tt.want)
			}
		})
	}
}
