package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidMessage = errors.New("invalid message")

// ImportRequestMessage asks a worker to import one directory of weather
// files into the database. The ID makes redelivery detectable.
type ImportRequestMessage struct {
	ID          string    `json:"id"`
	DataDir     string    `json:"data_dir"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewImportRequestMessage creates a request with a fresh random ID.
func NewImportRequestMessage(dataDir string) *ImportRequestMessage {
	return &ImportRequestMessage{
		ID:          uuid.NewString(),
		DataDir:     dataDir,
		RequestedAt: time.Now().UTC(),
	}
}

// Validate checks that the ID is a UUID and a directory is named.
func (m *ImportRequestMessage) Validate() error {
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("%w: id %q: %v", ErrInvalidMessage, m.ID, err)
	}
	if strings.TrimSpace(m.DataDir) == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalidMessage)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ImportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportRequestMessageFromJSON decodes and validates a message.
func ImportRequestMessageFromJSON(data []byte) (*ImportRequestMessage, error) {
	var msg ImportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
