// Package acquire gathers briefing, outline and creator-profile content into a
// uniform bundle for the strategy pipeline. Failures surface as typed error
// strings with fixed prefixes rather than Go errors, so downstream validation
// can classify them without unwrapping.
package acquire

import "strings"

// Failure prefixes recognized across the pipeline. Any acquisition result
// whose document starts with one of these is treated as failed.
const (
	PrefixMissingFile  = "错误："
	PrefixBriefingRead = "读取PPT文件时出错"
	PrefixFileRead     = "读取文件时出错"
	PrefixRequest      = "请求失败"
	PrefixPageFetch    = "获取网页内容时出错"
	PrefixExtract      = "提取内容时出错"
	PrefixRetriesSpent = "超过最大重试次数"
)

var failurePrefixes = []string{
	PrefixMissingFile,
	PrefixBriefingRead,
	PrefixFileRead,
	PrefixRequest,
	PrefixPageFetch,
	PrefixExtract,
	PrefixRetriesSpent,
}

// IsFailure reports whether document text is a typed failure string.
func IsFailure(document string) bool {
	for _, prefix := range failurePrefixes {
		if strings.HasPrefix(document, prefix) {
			return true
		}
	}
	return false
}
