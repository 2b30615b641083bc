package notify

import "testing"

func TestNewSMSNotifierRequiresConfig(t *testing.T) {
	for _, key := range []string{"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM_NUMBER", "RECEPTION_ADMIN_NUMBER"} {
		t.Setenv(key, "")
	}

	if _, err := NewSMSNotifier(); err == nil {
		t.Error("expected error with no credentials")
	}
	if _, err := NewSMSNotifier(WithAccountSID("AC123"), WithAuthToken("tok")); err == nil {
		t.Error("expected error with no from number")
	}
	if _, err := NewSMSNotifier(WithAccountSID("AC123"), WithAuthToken("tok"), WithFromNumber("+15550001")); err == nil {
		t.Error("expected error with no admin number")
	}

	n, err := NewSMSNotifier(
		WithAccountSID("AC123"),
		WithAuthToken("tok"),
		WithFromNumber("+15550001"),
		WithAdminNumber("+15550002"),
	)
	if err != nil {
		t.Fatalf("NewSMSNotifier failed with full config: %v", err)
	}
	if n.fromNumber != "+15550001" || n.adminNumber != "+15550002" {
		t.Errorf("numbers not applied: %+v", n)
	}
}
