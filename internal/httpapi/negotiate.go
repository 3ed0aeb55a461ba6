package httpapi

import "golang.org/x/text/language"

// negotiate picks the available locale that best serves an
// Accept-Language header, or fallback when nothing matches.
func negotiate(acceptLanguage string, locales []string, fallback string) string {
	if acceptLanguage == "" || len(locales) == 0 {
		return fallback
	}

	supported := make([]language.Tag, 0, len(locales))
	names := make([]string, 0, len(locales))
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		names = append(names, l)
	}
	if len(supported) == 0 {
		return fallback
	}

	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return fallback
	}

	_, idx, conf := language.NewMatcher(supported).Match(desired...)
	if conf == language.No {
		return fallback
	}
	return names[idx]
}
