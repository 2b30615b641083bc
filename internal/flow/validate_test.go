package flow

import "testing"

func TestValidName(t *testing.T) {
	valid := []string{"Ali Khan", "ab", "Sara", "John Doe Smith"}
	for _, s := range valid {
		if !ValidName(s) {
			t.Errorf("ValidName(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "a", "Ali123", "Ali_Khan", "Ali-Khan", "명수", "a!"}
	for _, s := range invalid {
		if ValidName(s) {
			t.Errorf("ValidName(%q) = true, want false", s)
		}
	}
}

func TestValidNameLength(t *testing.T) {
	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	if ValidName(string(long)) {
		t.Error("ValidName should reject names longer than 50 characters")
	}
	if !ValidName(string(long[:50])) {
		t.Error("ValidName should accept a 50 character name")
	}
}

func TestValidCNIC(t *testing.T) {
	if !ValidCNIC("12345-1234567-1") {
		t.Error("ValidCNIC rejected a well-formed CNIC")
	}
	if !ValidCNIC("  12345-1234567-1  ") {
		t.Error("ValidCNIC should trim surrounding whitespace")
	}

	invalid := []string{
		"",
		"1234-1234567-1",   // four digits in the first group
		"12345-123456-1",   // six digits in the middle group
		"12345-1234567-12", // two trailing digits
		"123451234567 1",
		"abcde-fghijkl-m",
		"12345-1234567-",
	}
	for _, s := range invalid {
		if ValidCNIC(s) {
			t.Errorf("ValidCNIC(%q) = true, want false", s)
		}
	}
}

func TestValidPhone(t *testing.T) {
	if !ValidPhone("03001234567") {
		t.Error("ValidPhone rejected a well-formed number")
	}

	invalid := []string{"", "0300123456", "030012345678", "13001234567", "0300-1234567", "+923001234567"}
	for _, s := range invalid {
		if ValidPhone(s) {
			t.Errorf("ValidPhone(%q) = true, want false", s)
		}
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "visitor@example.com", "first.last@sub.domain.org"}
	for _, s := range valid {
		if !ValidEmail(s) {
			t.Errorf("ValidEmail(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "plain", "a@b", "@b.co", "a@.co", "a b@c.co"}
	for _, s := range invalid {
		if ValidEmail(s) {
			t.Errorf("ValidEmail(%q) = true, want false", s)
		}
	}
}

func TestValidGroupSize(t *testing.T) {
	valid := []string{"1", "5", "10", " 3 "}
	for _, s := range valid {
		if !ValidGroupSize(s) {
			t.Errorf("ValidGroupSize(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "0", "11", "-1", "+3", "-5", "two", "1.5", "3x"}
	for _, s := range invalid {
		if ValidGroupSize(s) {
			t.Errorf("ValidGroupSize(%q) = true, want false", s)
		}
	}
}

func TestValidSupplier(t *testing.T) {
	for _, s := range Suppliers {
		if !ValidSupplier(s) {
			t.Errorf("ValidSupplier(%q) = false, want true", s)
		}
	}
	if ValidSupplier("Unknown Corp") {
		t.Error("ValidSupplier accepted a supplier not in the list")
	}
	if !ValidSupplier("Other") {
		t.Error("ValidSupplier should accept the Other escape value")
	}
}

// ValidSupplier accepts exactly the inputs the supplier step accepts: list
// numbers and case-insensitive names.
func TestValidSupplierMatchesStepBehavior(t *testing.T) {
	accepted := []string{"1", "6", "maclife", "MACLIFE", " prime computers ", "other"}
	for _, s := range accepted {
		if !ValidSupplier(s) {
			t.Errorf("ValidSupplier(%q) = false, want true", s)
		}
		if _, ok := matchSupplier(s); !ok {
			t.Errorf("matchSupplier(%q) rejected an input ValidSupplier accepts", s)
		}
	}
	rejected := []string{"0", "7", "-1", "maclifee", ""}
	for _, s := range rejected {
		if ValidSupplier(s) {
			t.Errorf("ValidSupplier(%q) = true, want false", s)
		}
	}
}

func TestValidRequired(t *testing.T) {
	if !ValidRequired("audit meeting") {
		t.Error("ValidRequired rejected plain text")
	}
	for _, s := range []string{"", "   ", "\t\n"} {
		if ValidRequired(s) {
			t.Errorf("ValidRequired(%q) = true, want false", s)
		}
	}
}
