package records

import (
	"embed"
	"fmt"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per record type.
const (
	SchemaUser         = "user"
	SchemaDispute      = "dispute"
	SchemaTaskTaken    = "task_taken"
	SchemaFeedback     = "feedback"
	SchemaLogEntry     = "log_entry"
	SchemaPayment      = "payment"
	SchemaComplaint    = "complaint"
	SchemaConversation = "conversation"
)

// Schema returns the embedded JSON schema for name.
func Schema(name string) ([]byte, error) {
	data, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("records: unknown schema %q", name)
	}
	return data, nil
}

// MustSchema is Schema for package-level wiring of the built-in names.
func MustSchema(name string) []byte {
	data, err := Schema(name)
	if err != nil {
		panic(err)
	}
	return data
}
