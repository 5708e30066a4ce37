// Package strutil 경보 본문을 메신저 메시지로 옮길 때 쓰는 문자열 유틸리티를 제공합니다.
package strutil

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// <br>, </p> 등 줄을 바꾸는 태그
	lineBreakTagRegexp = regexp.MustCompile(`(?i)<br\s*/?>|</p\s*>`)

	// < 다음에 영문자가 오는 경우만 태그로 인식합니다. "3 < 5"는 유지됩니다.
	htmlTagRegexp = regexp.MustCompile(`</?([a-zA-Z]+)[^>]*>`)
)

// NormalizeSpaces 문자열의 앞뒤 공백을 제거하고 연속된 공백을 하나로 축약합니다.
// 예: "  hello   world  " -> "hello world"
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeMultiLineSpaces 여러 줄 문자열의 각 줄을 정규화하고 연속된 빈 줄을 하나로 축약합니다.
// 앞뒤의 빈 줄도 제거됩니다.
func NormalizeMultiLineSpaces(s string) string {
	var (
		result      []string
		prevIsEmpty = true
	)

	for line := range strings.SplitSeq(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		normalized := NormalizeSpaces(line)
		if normalized == "" {
			if !prevIsEmpty {
				result = append(result, "")
			}
			prevIsEmpty = true
			continue
		}
		result = append(result, normalized)
		prevIsEmpty = false
	}

	if n := len(result); n > 0 && result[n-1] == "" {
		result = result[:n-1]
	}

	return strings.Join(result, "\n")
}

// StripHTMLTags HTML 태그를 제거하고 엔티티를 디코딩하여 순수한 텍스트를 반환합니다.
// <br>과 </p>는 줄바꿈으로 바꿉니다.
// 예: "<b>Hello</b><br/>&amp; World" -> "Hello\n& World"
func StripHTMLTags(s string) string {
	s = lineBreakTagRegexp.ReplaceAllString(s, "\n")
	s = htmlTagRegexp.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}

// SplitChunks s를 limit 바이트 이하의 조각으로 나눕니다.
//
// 가능한 한 줄 단위로 묶고, 한 줄이 limit보다 길면 UTF-8 문자 경계에서 자릅니다.
// 조각을 모두 이으면 원래 문자열과 같습니다.
func SplitChunks(s string, limit int) []string {
	if limit <= 0 || len(s) <= limit {
		return []string{s}
	}

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for len(s) > 0 {
		line, rest, found := strings.Cut(s, "\n")
		s = rest
		if found {
			line += "\n"
		}

		if current.Len()+len(line) > limit {
			flush()
		}
		for len(line) > limit {
			head, tail := safeSplit(line, limit)
			chunks = append(chunks, head)
			line = tail
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}

// safeSplit limit 바이트 이내의 가장 긴 UTF-8 경계에서 문자열을 자릅니다.
func safeSplit(s string, limit int) (string, string) {
	i := limit
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	if i == 0 {
		i = limit
	}
	return s[:i], s[i:]
}
