package parse

import "testing"

func TestResolveAddressFourLines(t *testing.T) {
	block := "Société Martin\nJean Dupont\n12 rue des Lilas\n75001 Paris\n0612345678\nFrance\n"
	addr := ResolveAddress(block)

	if addr.FullName != "Société Martin Jean Dupont" {
		t.Fatalf("fullName=%q", addr.FullName)
	}
	if addr.Street != "12 rue des Lilas" || addr.City != "75001 Paris" {
		t.Fatalf("street=%q city=%q", addr.Street, addr.City)
	}
	if addr.Phone != "0612345678" {
		t.Fatalf("phone=%q", addr.Phone)
	}
	if addr.RawBlock == "" {
		t.Fatal("raw block should keep the original lines")
	}
}

func TestResolveAddressTwoLines(t *testing.T) {
	addr := ResolveAddress("Jean Dupont\n12 rue des Lilas\n")

	if addr.FullName != "Jean Dupont" || addr.Street != "12 rue des Lilas" {
		t.Fatalf("addr=%+v", addr)
	}
	if addr.City != "" {
		t.Fatalf("city should stay empty for two-line blocks, got %q", addr.City)
	}
	if addr.Country != "France" {
		t.Fatalf("country=%q", addr.Country)
	}
}

func TestResolveAddressFiltersPhonesAndCountry(t *testing.T) {
	block := "Société Martin\nJean Dupont\n12 rue des Lilas\n75001 Paris\n0612345678\n0145678901\nfrance\n"
	addr := ResolveAddress(block)

	if addr.Phone != "0612345678, 0145678901" {
		t.Fatalf("phone=%q", addr.Phone)
	}
	if addr.City != "75001 Paris" {
		t.Fatalf("city=%q", addr.City)
	}
}

func TestResolveAddressKeepsInlinePhoneLine(t *testing.T) {
	// A line that contains more than the phone number is an address line;
	// the number is still collected.
	addr := ResolveAddress("Jean Dupont\nTél : 0612345678\n")

	if addr.Phone != "0612345678" {
		t.Fatalf("phone=%q", addr.Phone)
	}
	if addr.Street != "Tél : 0612345678" {
		t.Fatalf("street=%q", addr.Street)
	}
}
