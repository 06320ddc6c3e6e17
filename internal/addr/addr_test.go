package addr

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExpandBareIPs(t *testing.T) {
	got, _, err := Expand(context.Background(), Options{Targets: []string{"127.0.0.1", "::1"}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 addresses, got %v", got)
	}
}

func TestExpandDeduplicatesPreservingOrder(t *testing.T) {
	got, _, err := Expand(context.Background(), Options{Targets: []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected dedup to 2 addresses, got %v", got)
	}
	if got[0].String() != "10.0.0.1" || got[1].String() != "10.0.0.2" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestExpandCIDRBlock(t *testing.T) {
	got, _, err := Expand(context.Background(), Options{Targets: []string{"192.168.1.0/30"}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// /30 has 4 addresses: .0 (network), .1, .2, .3 (broadcast) - net.ParseCIDR
	// based enumeration includes all of them since we do raw masked increment.
	if len(got) != 4 {
		t.Fatalf("expected 4 addresses in /30, got %d: %v", len(got), got)
	}
}

func TestExpandFileReference(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.txt")
	content := "127.0.0.1\n# a comment\n\n10.0.0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, _, err := Expand(context.Background(), Options{Targets: []string{"@" + path}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 addresses from file, got %v", got)
	}
}

func TestExpandEmptyResultIsAnError(t *testing.T) {
	_, _, err := Expand(context.Background(), Options{Targets: []string{"not a-valid.host!!name"}})
	if err == nil {
		t.Fatal("expected an error when nothing resolves")
	}
	if _, ok := err.(*AddressResolutionEmpty); !ok {
		t.Fatalf("expected *AddressResolutionEmpty, got %T", err)
	}
}

func TestExpandMissingFileErrors(t *testing.T) {
	_, _, err := Expand(context.Background(), Options{Targets: []string{"@/no/such/file"}})
	if err == nil {
		t.Fatal("expected an error for a missing target file")
	}
}
