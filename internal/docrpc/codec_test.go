package docrpc

import (
	"testing"

	"github.com/dmitrijs2005/marketsales/internal/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodec_IsRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodec_PutRequestRoundTrip(t *testing.T) {
	in := &PutRequest{
		Collection: "tickets",
		Document: documents.Document{ID: "t1", Fields: map[string]any{
			"userId":       "u1",
			"total":        "10.5",
			"lastModified": int64(1700000000000),
			"status":       int64(1),
			"productId":    nil,
		}},
	}

	b, err := Codec{}.Marshal(in)
	require.NoError(t, err)

	var out PutRequest
	require.NoError(t, Codec{}.Unmarshal(b, &out))

	assert.Equal(t, "tickets", out.Collection)
	assert.Equal(t, "t1", out.Document.ID)
	assert.Equal(t, "u1", out.Document.String("userId", ""))
	assert.Equal(t, int64(1700000000000), out.Document.Int64("lastModified", 0))
	assert.False(t, out.Document.Has("productId"))
}

func TestCodec_Deterministic(t *testing.T) {
	q := &QueryRequest{Query: documents.Query{Collection: "lines", Equals: map[string]any{"b": "2", "a": "1", "c": "3"}}}
	first, err := Codec{}.Marshal(q)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Codec{}.Marshal(q)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCodec_UnmarshalGarbage(t *testing.T) {
	var out QueryResponse
	require.Error(t, Codec{}.Unmarshal([]byte{0xff, 0x00}, &out))
}
