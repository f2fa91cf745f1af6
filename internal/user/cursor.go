package user

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"usersvc/pkg/domain"
	"usersvc/pkg/storage"
)

var errMalformedCursor = errors.New("malformed cursor")

// EncodeCursor renders a page position as an opaque, URL safe token.
func EncodeCursor(c *storage.UserCursor) string {
	if c == nil {
		return ""
	}
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()

	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor. An empty token
// decodes to a nil cursor.
func DecodeCursor(token string) (*storage.UserCursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("could not decode cursor: %w", err)
	}

	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil, errMalformedCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("could not parse cursor time: %w", err)
	}

	userID, err := domain.ParseUserID(id)
	if err != nil {
		return nil, fmt.Errorf("could not parse cursor id: %w", err)
	}

	return &storage.UserCursor{CreatedAt: createdAt, ID: userID}, nil
}
