package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// ExpirationDateLayout is the date form accepted for expirations.
const ExpirationDateLayout = "2006-01-02"

// ParseExpiration turns user input into epoch seconds. An integer is a number
// of days from now; otherwise the input must be a YYYY-MM-DD date, taken as
// local midnight. Empty input means no expiration and yields nil.
func ParseExpiration(raw string, now time.Time) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if days, err := strconv.Atoi(raw); err == nil {
		sse := now.AddDate(0, 0, days).Unix()
		return &sse, nil
	}

	date, err := time.ParseInLocation(ExpirationDateLayout, raw, now.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: expiration %q is neither a number of days nor a YYYY-MM-DD date", model.ErrValidation, raw)
	}
	sse := date.Unix()
	return &sse, nil
}
