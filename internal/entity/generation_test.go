package entity

import (
	"strings"
	"testing"
)

func TestIdentitySubject(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     string
		authed   bool
	}{
		{"认证用户", Identity{UserID: 42}, "user:42", true},
		{"匿名访客", Identity{AnonID: "abc123"}, "anon:abc123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.identity.Subject(); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
			if got := tt.identity.IsAuthenticated(); got != tt.authed {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tt.authed)
			}
		})
	}
}

func TestNewProjectIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewProjectID()
		if !strings.HasPrefix(id, "proj_") {
			t.Fatalf("project id %q should have proj_ prefix", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate project id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsValidCategory(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"宠物", "pets", true},
		{"家庭", "family", true},
		{"儿童", "kids", true},
		{"带空白", " pets ", true},
		{"未知分类", "cars", false},
		{"空值", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCategory(tt.value); got != tt.want {
				t.Errorf("IsValidCategory(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestStyleCatalogue(t *testing.T) {
	styles := Styles()
	if len(styles) == 0 {
		t.Fatal("style catalogue should not be empty")
	}

	for _, style := range styles {
		if style.ID == "" || style.Name == "" {
			t.Errorf("style %+v missing id or name", style)
		}
		if style.Prompt == "" || style.RelaxedPrompt == "" {
			t.Errorf("style %q missing prompt fragments", style.ID)
		}
		if len(style.Categories) == 0 {
			t.Errorf("style %q has no categories", style.ID)
		}
	}

	if _, ok := StyleByID("baroque"); !ok {
		t.Error("baroque should be in the allow-list")
	}
	if _, ok := StyleByID("nonexistent"); ok {
		t.Error("unknown style should not resolve")
	}
	if _, ok := StyleByID(" baroque "); !ok {
		t.Error("style lookup should trim whitespace")
	}
}

func TestCreditBalanceHelpers(t *testing.T) {
	var nilBalance *DbCreditBalance
	if nilBalance.CanGenerate() {
		t.Error("nil balance cannot generate")
	}
	if nilBalance.CreditsRemaining() != 0 {
		t.Error("nil balance has zero credits")
	}

	balance := &DbCreditBalance{FreeRemaining: 1, PaidRemaining: 2}
	if !balance.CanGenerate() {
		t.Error("balance with credits should allow generation")
	}
	if balance.CreditsRemaining() != 3 {
		t.Errorf("CreditsRemaining() = %d, want 3", balance.CreditsRemaining())
	}

	empty := &DbCreditBalance{}
	if empty.CanGenerate() {
		t.Error("empty balance should not allow generation")
	}
}
