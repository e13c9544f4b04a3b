package netifaces

import "testing"

func TestInterfacesReturnsOnlyIPv4(t *testing.T) {
	infos, err := Interfaces()
	if err != nil {
		t.Fatalf("Interfaces: %v", err)
	}
	for _, info := range infos {
		if info.IP.To4() == nil {
			t.Errorf("interface %s has non-IPv4 address %s", info.Name, info.IP)
		}
		if info.Name == "" {
			t.Error("interface with empty name")
		}
	}
}

func TestFindByNameMissing(t *testing.T) {
	if _, err := FindByName("battlelan-no-such-interface"); err == nil {
		t.Error("FindByName of missing interface succeeded, want error")
	}
}

func TestFindByIPMissing(t *testing.T) {
	if _, err := FindByIP("203.0.113.77"); err == nil {
		t.Error("FindByIP of unassigned address succeeded, want error")
	}
}

func TestPrimaryIPv4(t *testing.T) {
	ip, err := PrimaryIPv4()
	if err != nil {
		// A machine with no IPv4 connectivity at all is a legal environment.
		t.Skipf("no primary IPv4 address: %v", err)
	}
	if ip.To4() == nil {
		t.Errorf("PrimaryIPv4 returned non-IPv4 address %s", ip)
	}
	if ip.IsLoopback() {
		t.Errorf("PrimaryIPv4 returned loopback %s", ip)
	}
}
