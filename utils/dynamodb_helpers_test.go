package utils

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

func TestExtractNumber(t *testing.T) {
	item := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberN{Value: "42"},
		"name":   &types.AttributeValueMemberS{Value: "Alice"},
		"bad":    &types.AttributeValueMemberN{Value: "not-a-number"},
	}

	n, ok := ExtractNumber(item, "userId")
	require.True(t, ok)
	require.Equal(t, int64(42), n)

	_, ok = ExtractNumber(item, "name")
	require.False(t, ok)
	_, ok = ExtractNumber(item, "bad")
	require.False(t, ok)
	_, ok = ExtractNumber(item, "missing")
	require.False(t, ok)
}
