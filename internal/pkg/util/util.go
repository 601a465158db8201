package util

import (
	"fmt"
	"time"
)

// GenerateTimestampWithPrefix builds a human-scannable identifier such as
// "OM1706554501123456789". Uniqueness within one service instance is good
// enough for order ids; charges use UUIDs.
func GenerateTimestampWithPrefix(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}
