package dto

import (
	"errors"
	"fmt"

	domaininquiry "venue/internal/domain/inquiry"
	domainpricing "venue/internal/domain/pricing"
)

// QuoteErrorMessage renders a quote validation failure for the visitor.
func QuoteErrorMessage(err *domainpricing.QuoteError, locale Locale) string {
	switch err.Kind {
	case domainpricing.KindMissingDates:
		return locale.text(msgMissingDates)
	case domainpricing.KindInvalidRange:
		return locale.text(msgInvalidRange)
	case domainpricing.KindBelowMinimumStay:
		if err.MinNights == 1 {
			return fmt.Sprintf(locale.text(msgMinimumStayOne), err.MinNights)
		}
		return fmt.Sprintf(locale.text(msgMinimumStayMany), err.MinNights)
	default:
		return locale.text(msgInvalidRequest)
	}
}

// InquiryErrorMessage renders a contact form rejection; ok is false for errors
// that are not the visitor's to fix.
func InquiryErrorMessage(err error, locale Locale) (string, bool) {
	switch {
	case errors.Is(err, domaininquiry.ErrMissingFields):
		return locale.text(msgInquiryMissingFields), true
	case errors.Is(err, domaininquiry.ErrInvalidEmail):
		return locale.text(msgInquiryInvalidEmail), true
	default:
		return "", false
	}
}

func InquiryReceivedMessage(locale Locale) string { return locale.text(msgInquiryReceived) }

func RateLimitedMessage(locale Locale) string { return locale.text(msgRateLimited) }

func InvalidRequestMessage(locale Locale) string { return locale.text(msgInvalidRequest) }

func InternalErrorMessage(locale Locale) string { return locale.text(msgInternal) }
