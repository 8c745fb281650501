package classifier

import (
	"testing"

	"github.com/superparty/callcenter/internal/model/intent"
)

func TestDeriveLabel(t *testing.T) {
	cases := []struct {
		message string
		want    intent.Label
	}{
		{"vreau o rezervare", intent.Rezervare},
		{"Vreau să fac o programare pentru sâmbătă", intent.Rezervare},
		{"Cât costă o petrecere?", intent.Pret},
		{"care este pretul pentru 10 copii", intent.Pret},
		{"as dori sa modific rezervarea", intent.Modificare},
		{"vreau sa schimb data", intent.Modificare},
		{"anulez petrecerea de vineri", intent.Anulare},
		{"renunt la comanda", intent.Anulare},
		{"buna ziua, aveti program duminica?", intent.GeneralInfo},
		{"", intent.GeneralInfo},
	}

	for _, tc := range cases {
		if got := DeriveLabel(tc.message); got != tc.want {
			t.Errorf("DeriveLabel(%q) = %s, want %s", tc.message, got, tc.want)
		}
	}
}

func TestDeriveLabelIgnoresDiacriticsAndCase(t *testing.T) {
	if got := DeriveLabel("CÂT COSTĂ?"); got != intent.Pret {
		t.Fatalf("expected pret, got %s", got)
	}
	if got := DeriveLabel("Vreau o REZERVARE"); got != intent.Rezervare {
		t.Fatalf("expected rezervare, got %s", got)
	}
}
