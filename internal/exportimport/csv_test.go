package exportimport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

func TestCSVRoundTrip(t *testing.T) {
	g := seedGraph()
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, g))

	decoded, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Len(t, decoded.Entities, 2)
	assert.Len(t, decoded.Relations, 1)
	assert.Equal(t, []string{"Engineer"}, decoded.Entities["Alice"].Observations)
	assert.Equal(t, 8, *decoded.Entities["Alice"].Importance)

	rel := decoded.Relations[kgtypes.RelationKey{From: "Alice", To: "Bob", Type: "knows"}]
	require.NotNil(t, rel)
	assert.Equal(t, 0.8, *rel.Weight)
}

func TestCSVGuardsFormulaInjection(t *testing.T) {
	g := kgtypes.NewGraph()
	g.Entities["=cmd"] = newEntity("=cmd")

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, g))
	assert.Contains(t, buf.String(), "'=cmd")

	decoded, err := DecodeCSV(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Contains(t, decoded.Entities, "=cmd")
}

func TestDecodeCSVRequiresEntitiesHeader(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("name,entityType\nAlice,person\n"))
	assert.Error(t, err)
}

func TestDecodeCSVRejectsOversizedInput(t *testing.T) {
	huge := strings.Repeat("a", MaxInputBytes+1)
	_, err := DecodeCSV(strings.NewReader(entitiesSectionHeader + "\n" + huge))
	assert.Error(t, err)
}

func TestDecodeCSVWithNoRelationsSection(t *testing.T) {
	g := kgtypes.NewGraph()
	g.Entities["Alice"] = newEntity("Alice")
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, g))

	onlyEntities := strings.SplitN(buf.String(), relationsSectionHeader, 2)[0]
	decoded, err := DecodeCSV(strings.NewReader(onlyEntities))
	require.NoError(t, err)
	assert.Len(t, decoded.Entities, 1)
	assert.Len(t, decoded.Relations, 0)
}
