package locale

import (
	"embed"
	"fmt"

	"github.com/cloudfoundry-attic/jibber_jabber"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Strmap is the template data substituted into a localized message.
type Strmap map[string]interface{}

//go:embed *.yaml
var messageBundleFS embed.FS

var localizer *i18n.Localizer

// loadBundle loads tag's message file into bundle. chatqueue-inspector only
// ships en.yaml today, so any tag other than English is expected to fail
// here - the caller treats that as "no translation available", not a fatal
// error.
func loadBundle(bundle *i18n.Bundle, tag language.Tag) error {
	_, err := bundle.LoadMessageFileFS(messageBundleFS, fmt.Sprintf("%s.yaml", tag.String()))
	return err
}

func init() {
	hostTag := language.English
	if name, err := jibber_jabber.DetectLanguage(); err == nil {
		if tag, parseErr := language.Parse(name); parseErr == nil {
			hostTag = tag
		} else {
			logrus.Debugf("locale: could not parse host language %q, defaulting to English", name)
		}
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	if err := loadBundle(bundle, language.English); err != nil {
		panic(fmt.Sprintf("locale: failed to load bundled en.yaml: %v", err))
	}
	if hostTag != language.English {
		if err := loadBundle(bundle, hostTag); err != nil {
			logrus.Debugf("locale: no bundled translation for %s, staying on English", hostTag)
			hostTag = language.English
		}
	}

	localizer = i18n.NewLocalizer(bundle, hostTag.String(), language.English.String())
}

// Loc looks up id in the active message bundle and substitutes tmpl into
// it. A missing id degrades to a visible placeholder instead of an empty
// string, so a gap in en.yaml shows up in CLI output rather than vanishing.
func Loc(id string, tmpl Strmap) string {
	s, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: tmpl,
	})
	if err != nil {
		return fmt.Sprintf("[missing translation: %s]", id)
	}
	return s
}

// Locm is Loc for a message with a plural form selected by count. None of
// chatqueue-inspector's current messages branch on plural forms, but
// replay reports a packet count, so the entry point is kept distinct from
// Loc for when such a message grows a plural form.
func Locm(id string, tmpl Strmap, count int) string {
	s, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: tmpl,
		PluralCount:  count,
	})
	if err != nil {
		return fmt.Sprintf("[missing translation: %s]", id)
	}
	return s
}
