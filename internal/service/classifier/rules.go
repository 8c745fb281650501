package classifier

import (
	"strings"

	"github.com/superparty/callcenter/internal/model/intent"
)

// Keyword rules derive the coarse intent label from the customer's own
// message, never from the generated reply. Rules are tested in order and
// the first hit wins; cancellation and modification outrank booking so
// that "anulez rezervarea" does not read as a new booking.
type rule struct {
	label    intent.Label
	keywords []string
}

var rules = []rule{
	{intent.Anulare, []string{"anul", "renunt", "sterg"}},
	{intent.Modificare, []string{"modific", "schimb", "mut", "reprogramare"}},
	{intent.Pret, []string{"pret", "cost", "tarif", "cat costa"}},
	{intent.Rezervare, []string{"rezerv", "vreau", "programare", "petrecere", "eveniment"}},
}

// DeriveLabel matches the message against the keyword rules. Matching is
// casefolded and diacritic-insensitive so "Cât costă" and "cat costa"
// are the same message.
func DeriveLabel(message string) intent.Label {
	folded := foldRomanian(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(folded, kw) {
				return r.label
			}
		}
	}
	return intent.GeneralInfo
}

var diacritics = strings.NewReplacer(
	"ă", "a", "â", "a", "î", "i", "ș", "s", "ş", "s", "ț", "t", "ţ", "t",
)

func foldRomanian(text string) string {
	return diacritics.Replace(strings.ToLower(text))
}
