package dto

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale selects the language of user-facing messages.
type Locale string

const (
	LocaleRO Locale = "ro"
	LocaleEN Locale = "en"
)

var (
	supportedLocales = []Locale{LocaleRO, LocaleEN}
	localeMatcher    = language.NewMatcher([]language.Tag{language.Romanian, language.English})
)

// ParseLocale accepts a bare code such as "en" or "ro-MD" and falls back otherwise.
func ParseLocale(code string, fallback Locale) Locale {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range supportedLocales {
		if code == string(l) || strings.HasPrefix(code, string(l)+"-") {
			return l
		}
	}
	return fallback
}

// MatchLocale picks the best supported locale from an Accept-Language header.
func MatchLocale(acceptLanguage string, fallback Locale) Locale {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supportedLocales[idx]
}

type messageKey int

const (
	msgMissingDates messageKey = iota
	msgInvalidRange
	msgMinimumStayOne
	msgMinimumStayMany
	msgExtraGuests
	msgNights
	msgPersons
	msgInquiryMissingFields
	msgInquiryInvalidEmail
	msgInquiryReceived
	msgRateLimited
	msgInvalidRequest
	msgInternal
)

var catalog = map[Locale]map[messageKey]string{
	LocaleRO: {
		msgMissingDates:         "Vă rugăm să selectați datele de check-in și check-out.",
		msgInvalidRange:         "Data de check-out trebuie să fie după data de check-in.",
		msgMinimumStayOne:       "Rezervarea minimă este de %d noapte.",
		msgMinimumStayMany:      "Rezervarea minimă este de %d nopți.",
		msgExtraGuests:          "Oaspeți suplimentari",
		msgNights:               "zile",
		msgPersons:              "pers.",
		msgInquiryMissingFields: "Vă rugăm să completați toate câmpurile obligatorii.",
		msgInquiryInvalidEmail:  "Vă rugăm să introduceți o adresă de email validă.",
		msgInquiryReceived:      "Mulțumim! Mesajul dvs. a fost trimis cu succes. Vă vom contacta în curând.",
		msgRateLimited:          "Prea multe cereri. Vă rugăm să încercați din nou mai târziu.",
		msgInvalidRequest:       "Cererea nu este validă.",
		msgInternal:             "A apărut o eroare. Vă rugăm să încercați din nou.",
	},
	LocaleEN: {
		msgMissingDates:         "Please select check-in and check-out dates.",
		msgInvalidRange:         "Check-out date must be after check-in date.",
		msgMinimumStayOne:       "The minimum stay is %d night.",
		msgMinimumStayMany:      "The minimum stay is %d nights.",
		msgExtraGuests:          "Additional guests",
		msgNights:               "days",
		msgPersons:              "guests",
		msgInquiryMissingFields: "Please fill in all required fields.",
		msgInquiryInvalidEmail:  "Please enter a valid email address.",
		msgInquiryReceived:      "Thank you! Your message has been sent. We will get back to you soon.",
		msgRateLimited:          "Too many requests. Please try again later.",
		msgInvalidRequest:       "The request is not valid.",
		msgInternal:             "Something went wrong. Please try again.",
	},
}

func (l Locale) text(key messageKey) string {
	if msgs, ok := catalog[l]; ok {
		if s, ok := msgs[key]; ok {
			return s
		}
	}
	return catalog[LocaleRO][key]
}
