package probeinstall

import "testing"

func TestInstallerCloseEmpty(t *testing.T) {
	in := &Installer{}
	if err := in.Close(); err != nil {
		t.Fatalf("Close on an empty installer should not error, got %v", err)
	}
}

func TestAttachMultiNoSitesIsNoop(t *testing.T) {
	in := &Installer{}
	if err := in.AttachMulti(nil, nil, false); err != nil {
		t.Fatalf("AttachMulti with no sites should not error, got %v", err)
	}
	if len(in.links) != 0 {
		t.Fatalf("expected no links to be registered")
	}
}
