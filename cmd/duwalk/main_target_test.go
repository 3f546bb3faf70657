package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestResolveScanTarget_DefaultLocal(t *testing.T) {
	target, err := resolveScanTarget(nil)
	if err != nil {
		t.Fatalf("resolveScanTarget returned error: %v", err)
	}
	if target.Remote {
		t.Fatal("expected local target")
	}
	if !reflect.DeepEqual(target.Roots, []string{"."}) {
		t.Fatalf("unexpected roots: %v", target.Roots)
	}
}

func TestResolveScanTarget_MultipleLocalRoots(t *testing.T) {
	args := []string{"/var", "/home", "does-not-need-to-exist"}
	target, err := resolveScanTarget(args)
	if err != nil {
		t.Fatalf("resolveScanTarget returned error: %v", err)
	}
	if target.Remote {
		t.Fatal("expected local target")
	}
	if !reflect.DeepEqual(target.Roots, args) {
		t.Fatalf("unexpected roots: %v", target.Roots)
	}
}

func TestResolveScanTarget_ExistingLocalPathWins(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "alice@server"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Chdir(root)

	target, err := resolveScanTarget([]string{"alice@server", "/tmp"})
	if err != nil {
		t.Fatalf("resolveScanTarget returned error: %v", err)
	}
	if target.Remote {
		t.Fatal("expected local target")
	}
	if !reflect.DeepEqual(target.Roots, []string{"alice@server", "/tmp"}) {
		t.Fatalf("unexpected roots: %v", target.Roots)
	}
}

func TestResolveScanTarget_RemoteDefaultPath(t *testing.T) {
	target, err := resolveScanTarget([]string{"alice@10.0.0.5"})
	if err != nil {
		t.Fatalf("resolveScanTarget returned error: %v", err)
	}
	if !target.Remote {
		t.Fatal("expected remote target")
	}
	if target.Target.Host != "10.0.0.5" || target.Target.Port != 22 {
		t.Fatalf("unexpected target: %+v", target.Target)
	}
	if !reflect.DeepEqual(target.Roots, []string{"."}) {
		t.Fatalf("unexpected roots: %v", target.Roots)
	}
}

func TestResolveScanTarget_RemotePortAndPath(t *testing.T) {
	target, err := resolveScanTarget([]string{"alice@10.0.0.5:2222:/var/log"})
	if err != nil {
		t.Fatalf("resolveScanTarget returned error: %v", err)
	}
	if !target.Remote {
		t.Fatal("expected remote target")
	}
	if target.Target.Port != 2222 {
		t.Fatalf("unexpected port: %d", target.Target.Port)
	}
	if !reflect.DeepEqual(target.Roots, []string{"/var/log"}) {
		t.Fatalf("unexpected roots: %v", target.Roots)
	}
}

func TestResolveScanTarget_RejectsRemoteWithExtraArgs(t *testing.T) {
	_, err := resolveScanTarget([]string{"alice@10.0.0.5", "/tmp"})
	if err == nil {
		t.Fatal("expected error for remote target mixed with other arguments")
	}
	if !strings.Contains(err.Error(), "only path argument") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveScanTarget_RejectsBadRemotePort(t *testing.T) {
	_, err := resolveScanTarget([]string{"alice@example.com:999999"})
	if err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}
