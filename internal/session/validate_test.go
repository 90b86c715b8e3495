package session

import (
	"errors"
	"testing"

	"github.com/matheus3301/mqchat/internal/config"
)

func TestValidateIdentity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"team", "team5b", false},
		{"guest", "x1", false},
		{"with hyphen", "my-team", false},
		{"with underscore", "my_team", false},
		{"max length", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"empty", "", true},
		{"uppercase", "Team5b", true},
		{"space", "team 5b", true},
		{"topic wildcard", "team+", true},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"slash", "team/5b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := &config.Config{Identity: "team3a"}

	tests := []struct {
		name    string
		flag    string
		cfg     *config.Config
		want    string
		wantErr error
	}{
		{"flag wins", "team5b", cfg, "team5b", nil},
		{"config fallback", "", cfg, "team3a", nil},
		{"nil config", "x1", nil, "x1", nil},
		{"nothing", "", &config.Config{}, "", ErrNoIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.flag, tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveInvalid(t *testing.T) {
	if _, err := Resolve("Team 5", nil); err == nil {
		t.Error("Resolve() expected error for invalid identity")
	}
}
