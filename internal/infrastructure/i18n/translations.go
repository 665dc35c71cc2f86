package i18n

import (
	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"vaops/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

// Ensure Translator implements the output.T port.
var _ output.T = (*Translator)(nil)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer. It owns the
// wording of the join/assignment outcomes the outer layer reports to pilots.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// Message keys for the three-way join outcome and gate operations.
const (
	KeyJoinedFull    = "join.assigned_full"
	KeyJoinedPartial = "join.assigned_partial"
	KeyJoinedNone    = "join.assigned_none"
	KeyGateAssigned  = "gate.assigned"
	KeyGateCleared   = "gate.cleared"
	KeyLeft          = "leave.confirmed"
	KeyRemoved       = "participant.removed"
)

// NewTranslator builds a Translator backed by go-i18n using the given default
// locale (e.g. "en").
//
// It currently loads translations from the embedded active.*.toml files.
func NewTranslator(defaultLocale string) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.fr.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("i18n: failed to load message file")
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
	}
}

// T renders the message identified by key for the given locale.
// If the key/locale is not found, it falls back to the default locale,
// then finally to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		log.Warn().Err(err).Str("key", key).Strs("locales", languages).Msg("i18n: localize failed")
		return key
	}
	return msg
}

// JoinOutcomeKey maps the number of bound slots to the message key the
// outer layer renders ("joined without gates" / "some gates assigned" /
// "both gates assigned").
func JoinOutcomeKey(gatesAssigned int) string {
	switch gatesAssigned {
	case 2:
		return KeyJoinedFull
	case 1:
		return KeyJoinedPartial
	}
	return KeyJoinedNone
}
