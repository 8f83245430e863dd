package ipv4

import "testing"

func TestRecomputeChecksumIsDeterministic(t *testing.T) {
	d := Datagram{TTL: 64, Protocol: ProtocolTCP, Source: Address{10, 0, 0, 1}, Destination: Address{10, 0, 0, 2}}
	c1 := d.RecomputeChecksum()
	c2 := d.RecomputeChecksum()
	if c1 != c2 {
		t.Fatalf("checksum must be deterministic for unchanged fields, got %d then %d", c1, c2)
	}
}

func TestRecomputeChecksumChangesWithTTL(t *testing.T) {
	d := Datagram{TTL: 64, Protocol: ProtocolTCP, Source: Address{10, 0, 0, 1}, Destination: Address{10, 0, 0, 2}}
	before := d.RecomputeChecksum()
	d.TTL--
	after := d.RecomputeChecksum()
	if before == after {
		t.Fatal("decrementing TTL must change the recomputed checksum")
	}
}

func TestAddressString(t *testing.T) {
	a := Address{192, 168, 0, 1}
	if got, want := a.String(), "192.168.0.1"; got != want {
		t.Fatalf("want %q got %q", want, got)
	}
}
