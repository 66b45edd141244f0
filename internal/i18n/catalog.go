package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CLI message keys. English text is the key itself.
const (
	MsgSummary       = "%d rules in %d chains\n"
	MsgRoundTripOK   = "round trip OK\n"
	MsgRoundTripDiff = "round trip changed the rule set\n"
	MsgNoWarnings    = "no warnings\n"
	MsgWarnings      = "%d warnings\n"
	MsgApplied       = "applied %d rules\n"
	MsgSnapshotSaved = "snapshot written to %s\n"
)

func init() {
	for key, text := range map[string]string{
		MsgSummary:       "%d Regeln in %d Ketten\n",
		MsgRoundTripOK:   "Rundlauf OK\n",
		MsgRoundTripDiff: "Rundlauf hat den Regelsatz verändert\n",
		MsgNoWarnings:    "keine Warnungen\n",
		MsgWarnings:      "%d Warnungen\n",
		MsgApplied:       "%d Regeln angewendet\n",
		MsgSnapshotSaved: "Schnappschuss nach %s geschrieben\n",
	} {
		_ = message.SetString(language.German, key, text)
	}
}
