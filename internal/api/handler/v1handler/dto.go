package v1handler

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"usersvc/pkg/domain"
)

// UserRequest is the body of a create user request.
type UserRequest struct {
	Name       string `json:"name"       validate:"required,max=255"`
	DocumentID string `json:"documentId" validate:"required,max=64"`
}

// decodeOptStr reads a string, treating null as empty.
func decodeOptStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null() //nolint: wrapcheck
	}

	return d.Str() //nolint: wrapcheck
}

// Decode reads the request from d. Unknown fields are ignored.
func (r *UserRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "name":
			r.Name, err = decodeOptStr(d)
			if err != nil {
				return errors.Wrap(err, "decode name")
			}
		case "documentId":
			r.DocumentID, err = decodeOptStr(d)
			if err != nil {
				return errors.Wrap(err, "decode documentId")
			}
		default:
			return d.Skip() //nolint: wrapcheck
		}

		return nil
	})
}

// ToDomain maps the request to a user that has not been stored yet.
func (r UserRequest) ToDomain() domain.User {
	return domain.User{
		Name:       r.Name,
		DocumentID: r.DocumentID,
	}
}

// UserResponse is the public representation of a stored user.
type UserResponse struct {
	ID         string
	Name       string
	DocumentID string
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Name:       u.Name,
		DocumentID: u.DocumentID,
	}
}

func (r UserResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(r.ID)
	e.FieldStart("name")
	e.Str(r.Name)
	e.FieldStart("documentId")
	e.Str(r.DocumentID)
	e.ObjEnd()
}

func (r *UserResponse) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			r.ID, err = d.Str()
		case "name":
			r.Name, err = d.Str()
		case "documentId":
			r.DocumentID, err = d.Str()
		default:
			err = d.Skip()
		}

		return errors.Wrapf(err, "decode %s", key)
	})
}

// UserList is a page of users. NextCursor is empty on the last page.
type UserList struct {
	Items      []UserResponse
	NextCursor string
}

func NewUserList(users []domain.User, nextCursor string) UserList {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i]))
	}

	return UserList{Items: items, NextCursor: nextCursor}
}

func (l UserList) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range l.Items {
		item.Encode(e)
	}
	e.ArrEnd()
	e.FieldStart("nextCursor")
	if l.NextCursor == "" {
		e.Null()
	} else {
		e.Str(l.NextCursor)
	}
	e.ObjEnd()
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string
}

func (r ErrorResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("error")
	e.Str(r.Error)
	e.ObjEnd()
}
