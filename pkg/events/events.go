// Package events publishes domain events to other systems.
//
//go:generate mockgen -package mockevents -source=events.go -destination=mock/mockevents.go
package events

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// UserCreatedRoutingKey is the routing key of UserCreated events.
const UserCreatedRoutingKey = "user.created"

// UserCreated is emitted once a user has been stored.
type UserCreated struct {
	ID         string
	Name       string
	DocumentID string
	CreatedAt  time.Time
}

func (e UserCreated) Encode(enc *jx.Encoder) {
	enc.ObjStart()
	enc.FieldStart("id")
	enc.Str(e.ID)
	enc.FieldStart("name")
	enc.Str(e.Name)
	enc.FieldStart("documentId")
	enc.Str(e.DocumentID)
	enc.FieldStart("createdAt")
	enc.Str(e.CreatedAt.UTC().Format(time.RFC3339Nano))
	enc.ObjEnd()
}

func (e *UserCreated) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			e.ID, err = d.Str()
		case "name":
			e.Name, err = d.Str()
		case "documentId":
			e.DocumentID, err = d.Str()
		case "createdAt":
			var s string
			if s, err = d.Str(); err == nil {
				e.CreatedAt, err = time.Parse(time.RFC3339Nano, s)
			}
		default:
			err = d.Skip()
		}

		return errors.Wrapf(err, "decode %s", key)
	})
}

// Bytes returns the JSON representation of the event.
func (e UserCreated) Bytes() []byte {
	enc := jx.GetEncoder()
	defer jx.PutEncoder(enc)

	e.Encode(enc)

	return append([]byte(nil), enc.Bytes()...)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishUserCreated(ctx context.Context, event UserCreated) error
	Close() error
}
