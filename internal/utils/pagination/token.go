package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateFormat = time.DateOnly

// EncodeToken creates a base64 encoded cursor from the last entry of a page.
// Journal listings are ordered by (entry_date DESC, journal_number DESC), so the pair is unique.
func EncodeToken(entryDate time.Time, journalNumber int64) string {
	tokenStr := fmt.Sprintf("%s|%d", entryDate.UTC().Format(dateFormat), journalNumber)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (time.Time, int64, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}

	journalNumber, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || journalNumber < 1 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (journal number parse)")
	}

	return entryDate, journalNumber, nil
}
