package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMaskPII 掩码保留首尾，长度与原文一致
func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "a*", MaskPII("ab"))
	assert.Equal(t, "a**d", MaskPII("abcd"))

	masked := MaskPII("myemail@example.com")
	assert.True(t, strings.HasPrefix(masked, "my"))
	assert.True(t, strings.HasSuffix(masked, "om"))
	assert.Len(t, masked, len("myemail@example.com"))
}

// TestTruncateString 超长字符串保留前后、中间省略
func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))

	long := strings.Repeat("x", 50)
	truncated := TruncateString(long, 11)
	assert.Contains(t, truncated, "...")
	assert.LessOrEqual(t, len(truncated), 11)
}

// TestSafeAttributeValue 敏感键掩码，普通键只截断
func TestSafeAttributeValue(t *testing.T) {
	assert.Contains(t, SafeAttributeValue("user_email", "someone@example.com", 100), "*")
	assert.Equal(t, "plain value", SafeAttributeValue("title", "plain value", 100))
}
