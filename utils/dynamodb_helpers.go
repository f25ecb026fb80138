package utils

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractNumber safely extracts a numeric attribute as int64
func ExtractNumber(item map[string]types.AttributeValue, field string) (int64, bool) {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberN); ok {
			if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
