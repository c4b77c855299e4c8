package domain_test

import (
	"testing"
	"time"

	"github.com/akihokurino/canvas-nft-generator/domain"
)

func TestParseSchema(t *testing.T) {
	tests := []struct {
		raw     string
		want    domain.Schema
		wantErr bool
	}{
		{"ERC721", domain.SchemaERC721, false},
		{"ERC1155", domain.SchemaERC1155, false},
		{"erc721", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := domain.ParseSchema(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseNetwork(t *testing.T) {
	if _, err := domain.ParseNetwork("Avalanche"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := domain.ParseNetwork("Ethereum"); err == nil {
		t.Fatal("expected error for unknown network")
	}
}

func TestNewContractDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := domain.NewContract("0xcontract", "0xwallet", "[]", now)

	if c.Schema != domain.SchemaERC721 {
		t.Errorf("expected ERC721, got %v", c.Schema)
	}
	if c.Network != domain.NetworkAvalanche {
		t.Errorf("expected Avalanche, got %v", c.Network)
	}
}

func TestGenerateID(t *testing.T) {
	a := domain.GenerateID()
	b := domain.GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
