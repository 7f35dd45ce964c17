package sqlbackend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// These tests stay off the network: AKJUS Dolt/MySQL integration requires a
// live server (the same reason testcontainers-go was dropped from the
// stack, see DESIGN.md), so only the parts that don't need a connection are
// exercised here. No test in this repository runs an Open/Load/Save
// round-trip against this backend.

func TestSchemaDeclaresBothTables(t *testing.T) {
	assert.True(t, strings.Contains(schema, "kg_entities"))
	assert.True(t, strings.Contains(schema, "kg_relations"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("not-a-real-driver", "dsn")
	assert.Error(t, err)
}

func TestDriverNamesMatchRegisteredDrivers(t *testing.T) {
	assert.Equal(t, "mysql", DriverMySQL)
	assert.Equal(t, "dolt", DriverDolt)
}
