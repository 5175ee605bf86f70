// Package tasklist holds the client-side task list and mediates every
// mutation through a remote Backend.
package tasklist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
)

// ID is a server-assigned identifier. It keeps the exact JSON token the
// server sent (number or string) so it can be echoed back unchanged.
type ID string

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return []byte(id), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return errors.New("invalid id token")
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	*id = ID(data)
	return nil
}

// String returns the identifier as it appears in a URL path.
func (id ID) String() string {
	s := string(id)
	if len(s) > 0 && s[0] == '"' {
		var unq string
		if err := json.Unmarshal([]byte(s), &unq); err == nil {
			return unq
		}
	}
	return s
}

// Task is a single to-do record as served by the backend.
type Task struct {
	ID      ID         `json:"id"`
	Title   string     `json:"title"`
	Status  bool       `json:"status"`
	// Created and Updated are server-owned and sent back untouched.
	Created json.RawMessage `json:"created,omitempty"`
	Updated json.RawMessage `json:"updated,omitempty"`
}

// Backend is the remote task collection.
type Backend interface {
	// List returns the whole collection in server order.
	List(ctx context.Context) ([]Task, error)

	// Create stores a new task with the given title and status false.
	Create(ctx context.Context, title string) (Task, error)

	// Update sends the full representation of t and returns the stored record.
	Update(ctx context.Context, t Task) (Task, error)

	// Delete removes the task with the given id.
	Delete(ctx context.Context, id ID) error
}
